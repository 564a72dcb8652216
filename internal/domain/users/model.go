package users

import (
	"io"
	"time"

	"tin-dog/internal/platform/apperr"
)

const defaultProfileImage = "https://images.unsplash.com/photo-1552053831-71594a27632d?w=100"

var (
	ErrDuplicateEmail     = apperr.New(apperr.CodeDuplicateEmail, "user already exists")
	ErrInvalidCredentials = apperr.New(apperr.CodeInvalidCredentials, "invalid credentials")
	ErrInvalidInput       = apperr.New(apperr.CodeValidation, "invalid input")
	ErrNotFound           = apperr.New(apperr.CodeNotFound, "user not found")
)

// Profile describe al perro del usuario; se espeja en su Dog del catálogo.
type Profile struct {
	Age        string
	Breed      string
	Bio        string
	Image      string
	Location   string
	Interests  []string
	Vaccinated bool
	Neutered   bool
}

type User struct {
	ID        string
	OwnerName string
	DogName   string
	Email     string

	// PasswordHash nunca sale de este paquete hacia la API.
	PasswordHash string

	Profile Profile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfilePatch: punteros para PATCH real, nil = no tocar.
type ProfilePatch struct {
	Age        *string
	Breed      *string
	Bio        *string
	Location   *string
	Interests  *[]string
	Vaccinated *bool
	Neutered   *bool
}

func (p ProfilePatch) apply(cur Profile) Profile {
	next := cur
	next.Interests = append([]string(nil), cur.Interests...)

	if p.Age != nil {
		next.Age = *p.Age
	}
	if p.Breed != nil {
		next.Breed = *p.Breed
	}
	if p.Bio != nil {
		next.Bio = *p.Bio
	}
	if p.Location != nil {
		next.Location = *p.Location
	}
	if p.Interests != nil {
		next.Interests = append([]string(nil), (*p.Interests)...)
	}
	if p.Vaccinated != nil {
		next.Vaccinated = *p.Vaccinated
	}
	if p.Neutered != nil {
		next.Neutered = *p.Neutered
	}
	return next
}

// ImageUpload es la imagen opcional de un update de perfil.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}
