package dogs

import (
	"encoding/json"
	"net/http"
	"time"

	"tin-dog/internal/middleware"
	"tin-dog/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta las rutas de candidatos. r ya debe exigir auth.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/dogs", func(dr chi.Router) {
		dr.Get("/", listCandidatesHandler(svc))
		dr.Get("/search", searchHandler(svc))
	})
}

// DogResponse es la tarjeta que consume el cliente.
type DogResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Age        string    `json:"age"`
	Breed      string    `json:"breed"`
	Image      string    `json:"image"`
	Bio        string    `json:"bio"`
	OwnerID    *string   `json:"ownerId"`
	Location   string    `json:"location"`
	Interests  []string  `json:"interests"`
	Vaccinated bool      `json:"vaccinated"`
	Neutered   bool      `json:"neutered"`
	CreatedAt  time.Time `json:"createdAt"`
}

// listCandidatesHandler godoc
// @Summary Mazo de candidatos
// @Description Perros que no son del usuario y con los que todavía no hizo match, en orden de catálogo.
// @Tags dogs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} DogResponse
// @Failure 401 {object} map[string]string "unauthorized"
// @Failure 403 {object} map[string]string "invalid_token"
// @Router /api/dogs [get]
func listCandidatesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deck, err := svc.ListCandidates(r.Context(), middleware.UserID(r.Context()))
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(deck))
	}
}

// searchHandler godoc
// @Summary Buscar perros
// @Description Filtra por raza, edad y ubicación (contains, case-insensitive). Solo excluye los perros propios.
// @Tags dogs
// @Produce json
// @Security BearerAuth
// @Param breed query string false "Raza"
// @Param age query string false "Edad"
// @Param location query string false "Ubicación"
// @Success 200 {array} DogResponse
// @Router /api/dogs/search [get]
func searchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		deck, err := svc.Search(r.Context(), middleware.UserID(r.Context()), Filter{
			Breed:    q.Get("breed"),
			Age:      q.Get("age"),
			Location: q.Get("location"),
		})
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponses(deck))
	}
}

func toResponses(deck Deck) []DogResponse {
	out := make([]DogResponse, 0)
	for d := range deck.All() {
		out = append(out, ToResponse(d))
	}
	return out
}

func ToResponse(d Dog) DogResponse {
	var owner *string
	if d.Owned() {
		o := d.OwnerID
		owner = &o
	}
	interests := d.Interests
	if interests == nil {
		interests = []string{}
	}
	return DogResponse{
		ID:         d.ID,
		Name:       d.Name,
		Age:        d.Age,
		Breed:      d.Breed,
		Image:      d.Image,
		Bio:        d.Bio,
		OwnerID:    owner,
		Location:   d.Location,
		Interests:  interests,
		Vaccinated: d.Vaccinated,
		Neutered:   d.Neutered,
		CreatedAt:  d.CreatedAt,
	}
}

// writeJSON está duplicado intencionalmente por módulo (dogs/users/matching).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
