package users

import (
	"context"
	"io"

	"tin-dog/internal/domain/dogs"
)

type Repository interface {
	// Create devuelve ErrDuplicateEmail si el email ya existe (match exacto).
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	Count(ctx context.Context) (int, error)
}

// DogDirectory es lo que users necesita del catálogo para mantener
// el perro propio del usuario.
type DogDirectory interface {
	CreateOwned(ctx context.Context, ownerID string, in dogs.CreateInput) (dogs.Dog, error)
	GetByOwner(ctx context.Context, ownerID string) (dogs.Dog, error)
	Update(ctx context.Context, d dogs.Dog) error
	Delete(ctx context.Context, id string) error
}

// ImageStore persiste imágenes subidas y devuelve la referencia pública.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ref string) error
}
