package dogs

import (
	"time"

	"tin-dog/internal/platform/apperr"
)

var (
	ErrNotFound     = apperr.New(apperr.CodeNotFound, "dog not found")
	ErrInvalidInput = apperr.New(apperr.CodeValidation, "invalid input")
)

// Dog es una tarjeta swipeable. Puede ser del catálogo (OwnerID vacío)
// o representar la mascota de otro usuario.
type Dog struct {
	ID      string
	OwnerID string // "" = catálogo, sin dueño

	Name      string
	Age       string
	Breed     string
	Image     string
	Bio       string
	Location  string
	Interests []string

	Vaccinated bool
	Neutered   bool

	CreatedAt time.Time
	Seq       int64 // orden de inserción en el catálogo, lo asigna el repo
}

func (d Dog) Owned() bool { return d.OwnerID != "" }

// Filter de búsqueda; strings vacíos no filtran.
type Filter struct {
	Breed    string
	Age      string
	Location string
}
