package users

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tin-dog/internal/middleware"
	"tin-dog/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var errPayloadTooLarge = apperr.New(apperr.CodePayloadTooLarge, "file too large")

// RegisterAuthRoutes monta /auth (público).
func RegisterAuthRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", registerHandler(svc))
		ar.Post("/login", loginHandler(svc))
	})
}

// RegisterProfileRoutes monta /user/profile. r ya debe exigir auth.
// maxBody acota el cuerpo multipart completo (imagen + campos).
func RegisterProfileRoutes(r chi.Router, svc *Service, maxBody int64) {
	r.Get("/user/profile", getProfileHandler(svc))
	r.Put("/user/profile", updateProfileHandler(svc, maxBody))
}

type registerRequest struct {
	OwnerName string `json:"ownerName" validate:"required"`
	DogName   string `json:"dogName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	DogAge    string `json:"dogAge"`
	DogBreed  string `json:"dogBreed"`
	DogBio    string `json:"dogBio"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// profileJSONRequest es la variante JSON del PUT (además de multipart).
type profileJSONRequest struct {
	Age        *string   `json:"age"`
	Breed      *string   `json:"breed"`
	Bio        *string   `json:"bio"`
	Location   *string   `json:"location"`
	Interests  *[]string `json:"interests"`
	Vaccinated *bool     `json:"vaccinated"`
	Neutered   *bool     `json:"neutered"`
}

type ProfileResponse struct {
	Age        string   `json:"age"`
	Breed      string   `json:"breed"`
	Bio        string   `json:"bio"`
	Image      string   `json:"image"`
	Location   string   `json:"location"`
	Interests  []string `json:"interests"`
	Vaccinated bool     `json:"vaccinated"`
	Neutered   bool     `json:"neutered"`
}

type UserResponse struct {
	ID        string          `json:"id"`
	OwnerName string          `json:"ownerName"`
	DogName   string          `json:"dogName"`
	Email     string          `json:"email"`
	Profile   ProfileResponse `json:"profile"`
	CreatedAt time.Time       `json:"createdAt"`
}

type authResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
}

type profileUpdateResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Profile ProfileResponse `json:"profile"`
}

// registerHandler godoc
// @Summary Registrar dueño y perro
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} authResponse
// @Failure 400 {object} map[string]string "duplicate_email / validation_error"
// @Router /api/auth/register [post]
func registerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteCode(w, apperr.CodeValidation, "invalid json")
			return
		}
		if err := validate.Struct(req); err != nil {
			apperr.WriteCode(w, apperr.CodeValidation, validationMessage(err))
			return
		}

		u, token, err := svc.Register(r.Context(), RegisterInput{
			OwnerName: req.OwnerName,
			DogName:   req.DogName,
			Email:     req.Email,
			Password:  req.Password,
			DogAge:    req.DogAge,
			DogBreed:  req.DogBreed,
			DogBio:    req.DogBio,
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			Success: true,
			Message: "User created successfully",
			User:    ToUserResponse(u),
			Token:   token,
		})
	}
}

// loginHandler godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} authResponse
// @Failure 401 {object} map[string]string "invalid_credentials"
// @Router /api/auth/login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteCode(w, apperr.CodeValidation, "invalid json")
			return
		}
		if err := validate.Struct(req); err != nil {
			// mismo mensaje que credenciales inválidas
			apperr.Write(w, ErrInvalidCredentials)
			return
		}

		u, token, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Message: "Login successful",
			User:    ToUserResponse(u),
			Token:   token,
		})
	}
}

// getProfileHandler godoc
// @Summary Perfil del usuario autenticado
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "not_found"
// @Router /api/user/profile [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Get(r.Context(), middleware.UserID(r.Context()))
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToUserResponse(u))
	}
}

// updateProfileHandler godoc
// @Summary Actualizar perfil (parcial)
// @Description multipart/form-data con campos opcionales y `image`; `interests` es un array JSON. También acepta JSON.
// @Tags user
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file false "Imagen (máx 5MB)"
// @Success 200 {object} profileUpdateResponse
// @Failure 400 {object} map[string]string "validation_error"
// @Failure 413 {object} map[string]string "payload_too_large"
// @Router /api/user/profile [put]
func updateProfileHandler(svc *Service, maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}

		var (
			patch ProfilePatch
			img   *ImageUpload
			err   error
		)

		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch mt {
		case "multipart/form-data":
			patch, img, err = parseMultipartPatch(r)
		default:
			patch, err = parseJSONPatch(r)
		}
		if err != nil {
			apperr.Write(w, err)
			return
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}

		p, err := svc.UpdateProfile(r.Context(), middleware.UserID(r.Context()), patch, img)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		writeJSON(w, http.StatusOK, profileUpdateResponse{
			Success: true,
			Message: "Profile updated successfully",
			Profile: toProfileResponse(p),
		})
	}
}

func parseMultipartPatch(r *http.Request) (ProfilePatch, *ImageUpload, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ProfilePatch{}, nil, errPayloadTooLarge
		}
		return ProfilePatch{}, nil, apperr.Wrap(ErrInvalidInput, err)
	}

	var patch ProfilePatch
	form := r.MultipartForm.Value

	str := func(key string) *string {
		v, ok := form[key]
		if !ok || len(v) == 0 {
			return nil
		}
		s := strings.TrimSpace(v[0])
		// campo vacío = no tocar
		if s == "" {
			return nil
		}
		return &s
	}

	patch.Age = str("age")
	patch.Breed = str("breed")
	patch.Bio = str("bio")
	patch.Location = str("location")

	if raw := str("interests"); raw != nil {
		var interests []string
		if err := json.Unmarshal([]byte(*raw), &interests); err != nil {
			return ProfilePatch{}, nil, apperr.Wrap(ErrInvalidInput, err)
		}
		patch.Interests = &interests
	}

	for key, dst := range map[string]**bool{"vaccinated": &patch.Vaccinated, "neutered": &patch.Neutered} {
		raw := str(key)
		if raw == nil {
			continue
		}
		b, err := strconv.ParseBool(*raw)
		if err != nil {
			return ProfilePatch{}, nil, apperr.Wrap(ErrInvalidInput, err)
		}
		*dst = &b
	}

	var img *ImageUpload
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		f, err := files[0].Open()
		if err != nil {
			return ProfilePatch{}, nil, apperr.Wrap(ErrInvalidInput, err)
		}
		// el archivo lo cierra RemoveAll/GC; el store lo consume completo antes
		img = &ImageUpload{Filename: files[0].Filename, Data: f}
	}

	return patch, img, nil
}

func parseJSONPatch(r *http.Request) (ProfilePatch, error) {
	var req profileJSONRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ProfilePatch{}, errPayloadTooLarge
		}
		return ProfilePatch{}, apperr.Wrap(ErrInvalidInput, err)
	}
	return ProfilePatch{
		Age:        req.Age,
		Breed:      req.Breed,
		Bio:        req.Bio,
		Location:   req.Location,
		Interests:  req.Interests,
		Vaccinated: req.Vaccinated,
		Neutered:   req.Neutered,
	}, nil
}

func ToUserResponse(u User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		OwnerName: u.OwnerName,
		DogName:   u.DogName,
		Email:     u.Email,
		Profile:   toProfileResponse(u.Profile),
		CreatedAt: u.CreatedAt,
	}
}

func toProfileResponse(p Profile) ProfileResponse {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return ProfileResponse{
		Age:        p.Age,
		Breed:      p.Breed,
		Bio:        p.Bio,
		Image:      p.Image,
		Location:   p.Location,
		Interests:  interests,
		Vaccinated: p.Vaccinated,
		Neutered:   p.Neutered,
	}
}

func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return "invalid input"
	}
	fe := ves[0]
	return strings.ToLower(fe.Field()) + " failed " + fe.Tag() + " validation"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
