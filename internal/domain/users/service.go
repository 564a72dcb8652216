package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/platform/keylock"
	"tin-dog/internal/platform/logger"
	"tin-dog/internal/ports/auth"
)

const minPasswordLen = 6

type Service struct {
	repo     Repository
	dogs     DogDirectory
	images   ImageStore
	tokens   auth.TokenIssuer
	verifier auth.AuthVerifier
	locks    *keylock.Locker
	log      logger.Logger

	hashCost int
	now      func() time.Time
}

type Deps struct {
	Repo     Repository
	Dogs     DogDirectory
	Images   ImageStore
	Tokens   auth.TokenIssuer
	Verifier auth.AuthVerifier
	Log      logger.Logger
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     d.Repo,
		dogs:     d.Dogs,
		images:   d.Images,
		tokens:   d.Tokens,
		verifier: d.Verifier,
		locks:    keylock.New(),
		log:      log.With(map[string]any{"component": "identity"}),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

type RegisterInput struct {
	OwnerName string
	DogName   string
	Email     string
	Password  string

	DogAge   string
	DogBreed string
	DogBio   string
}

// Register crea el usuario y su perro en el catálogo, y emite el token.
// Si algo falla después de crear el usuario, se deshace.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, string, error) {
	email := strings.TrimSpace(in.Email)
	ownerName := strings.TrimSpace(in.OwnerName)
	dogName := strings.TrimSpace(in.DogName)

	if email == "" || ownerName == "" || dogName == "" {
		return User{}, "", ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return User{}, "", ErrInvalidInput
	}

	// serializa registros concurrentes del mismo email
	unlock := s.locks.Lock("email:" + email)
	defer unlock()

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, "", ErrDuplicateEmail
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, "", err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		OwnerName:    ownerName,
		DogName:      dogName,
		Email:        email,
		PasswordHash: string(hash),
		Profile: Profile{
			Age:       strings.TrimSpace(in.DogAge),
			Breed:     strings.TrimSpace(in.DogBreed),
			Bio:       strings.TrimSpace(in.DogBio),
			Image:     defaultProfileImage,
			Interests: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, "", err
	}

	dog, err := s.dogs.CreateOwned(ctx, u.ID, dogInput(u.DogName, u.Profile))
	if err != nil {
		s.rollbackUser(ctx, u.ID, err)
		return User{}, "", err
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		_ = s.dogs.Delete(ctx, dog.ID)
		s.rollbackUser(ctx, u.ID, err)
		return User{}, "", err
	}

	s.log.Info("user registered", map[string]any{"user_id": u.ID, "dog_id": dog.ID})
	return sanitize(u), token, nil
}

// Authenticate no distingue email inexistente de password incorrecta.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, "", ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return User{}, "", err
	}
	return sanitize(u), token, nil
}

// VerifyToken es la primitiva de autorización: devuelve el userID del token.
func (s *Service) VerifyToken(ctx context.Context, token string) (string, error) {
	c, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	return sanitize(u), nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// UpdateProfile mezcla solo los campos presentes en patch. Es todo-o-nada:
// imagen guardada, perro espejado y usuario persistido, o nada de eso.
func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch, img *ImageUpload) (Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Profile{}, ErrNotFound
	}

	unlock := s.locks.Lock("user:" + userID)
	defer unlock()

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}

	next := patch.apply(u.Profile)

	var savedImage string
	if img != nil && img.Data != nil {
		if s.images == nil {
			return Profile{}, ErrInvalidInput
		}
		savedImage, err = s.images.Save(ctx, img.Filename, img.Data)
		if err != nil {
			return Profile{}, err
		}
		next.Image = savedImage
	}

	undoImage := func() {
		if savedImage == "" {
			return
		}
		if err := s.images.Remove(savedImage); err != nil {
			s.log.Warn("orphan image not removed", map[string]any{"ref": savedImage, "error": err.Error()})
		}
	}

	prevDog, dogErr := s.dogs.GetByOwner(ctx, userID)
	hasDog := dogErr == nil
	if dogErr != nil && !dogs.IsNotFound(dogErr) {
		undoImage()
		return Profile{}, dogErr
	}

	if hasDog {
		mirrored := prevDog
		applyProfileToDog(&mirrored, next)
		if err := s.dogs.Update(ctx, mirrored); err != nil {
			undoImage()
			return Profile{}, err
		}
	}

	u.Profile = next
	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		if hasDog {
			if rerr := s.dogs.Update(ctx, prevDog); rerr != nil {
				s.log.Error("dog rollback failed", map[string]any{"dog_id": prevDog.ID, "error": rerr.Error()})
			}
		}
		undoImage()
		return Profile{}, err
	}

	return next, nil
}

func (s *Service) rollbackUser(ctx context.Context, id string, cause error) {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error("user rollback failed", map[string]any{"user_id": id, "cause": cause.Error(), "error": err.Error()})
	}
}

func dogInput(name string, p Profile) dogs.CreateInput {
	return dogs.CreateInput{
		Name:       name,
		Age:        p.Age,
		Breed:      p.Breed,
		Image:      p.Image,
		Bio:        p.Bio,
		Location:   p.Location,
		Interests:  p.Interests,
		Vaccinated: p.Vaccinated,
		Neutered:   p.Neutered,
	}
}

func applyProfileToDog(d *dogs.Dog, p Profile) {
	d.Age = p.Age
	d.Breed = p.Breed
	d.Image = p.Image
	d.Bio = p.Bio
	d.Location = p.Location
	d.Interests = append([]string(nil), p.Interests...)
	d.Vaccinated = p.Vaccinated
	d.Neutered = p.Neutered
}

func sanitize(u User) User {
	u.PasswordHash = ""
	return u
}
