package memory

import (
	"context"
	"errors"
	"slices"
	"strings"

	"tin-dog/internal/domain/dogs"
)

type dogRepo struct {
	s *Store
}

func (r *dogRepo) Create(ctx context.Context, d dogs.Dog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dog id required")
	}
	if _, exists := r.s.dogs[d.ID]; exists {
		return errors.New("dog already exists")
	}
	r.s.dogSeq++
	d.Seq = r.s.dogSeq
	r.s.dogs[d.ID] = cloneDog(d)
	r.s.dogOrder = append(r.s.dogOrder, d.ID)
	return nil
}

func (r *dogRepo) Update(ctx context.Context, d dogs.Dog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.dogs[d.ID]
	if !ok {
		return dogs.ErrNotFound
	}
	// el orden de catálogo no cambia con un update
	d.Seq = cur.Seq
	r.s.dogs[d.ID] = cloneDog(d)
	return nil
}

func (r *dogRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.dogs[id]; !ok {
		return nil
	}
	delete(r.s.dogs, id)
	r.s.dogOrder = slices.DeleteFunc(r.s.dogOrder, func(x string) bool { return x == id })
	return nil
}

func (r *dogRepo) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.dogs[id]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return cloneDog(d), nil
}

func (r *dogRepo) GetByOwner(ctx context.Context, ownerID string) (dogs.Dog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if ownerID == "" {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	for _, id := range r.s.dogOrder {
		if d := r.s.dogs[id]; d.OwnerID == ownerID {
			return cloneDog(d), nil
		}
	}
	return dogs.Dog{}, dogs.ErrNotFound
}

func (r *dogRepo) List(ctx context.Context) ([]dogs.Dog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]dogs.Dog, 0, len(r.s.dogOrder))
	for _, id := range r.s.dogOrder {
		out = append(out, cloneDog(r.s.dogs[id]))
	}
	return out, nil
}

func (r *dogRepo) Count(ctx context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.dogs), nil
}

func cloneDog(d dogs.Dog) dogs.Dog {
	d.Interests = append([]string(nil), d.Interests...)
	return d
}
