package dogs

import "context"

type Repository interface {
	Create(ctx context.Context, d Dog) error
	Update(ctx context.Context, d Dog) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Dog, error)
	GetByOwner(ctx context.Context, ownerID string) (Dog, error)
	// List devuelve el catálogo en orden de inserción.
	List(ctx context.Context) ([]Dog, error)
	Count(ctx context.Context) (int, error)
}

// MatchIndex expone, para un usuario, los ids de las contrapartes con las que
// ya tiene match (ids de dog o de user). Lo implementa matching.Index; se define
// acá para evitar ciclos de imports (dogs <-> matching).
type MatchIndex interface {
	CounterpartsOf(ctx context.Context, userID string) (map[string]struct{}, error)
}
