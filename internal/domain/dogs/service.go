package dogs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo    Repository
	matches MatchIndex
	now     func() time.Time
}

func NewService(repo Repository, matches MatchIndex) *Service {
	return &Service{
		repo:    repo,
		matches: matches,
		now:     time.Now,
	}
}

type CreateInput struct {
	Name       string
	Age        string
	Breed      string
	Image      string
	Bio        string
	Location   string
	Interests  []string
	Vaccinated bool
	Neutered   bool
}

// Create agrega un perro de catálogo (sin dueño).
func (s *Service) Create(ctx context.Context, in CreateInput) (Dog, error) {
	return s.create(ctx, "", in)
}

// CreateOwned agrega la mascota de ownerID. Un usuario tiene a lo sumo un perro.
func (s *Service) CreateOwned(ctx context.Context, ownerID string, in CreateInput) (Dog, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Dog{}, ErrInvalidInput
	}
	return s.create(ctx, ownerID, in)
}

func (s *Service) create(ctx context.Context, ownerID string, in CreateInput) (Dog, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Dog{}, ErrInvalidInput
	}

	d := Dog{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Name:       strings.TrimSpace(in.Name),
		Age:        strings.TrimSpace(in.Age),
		Breed:      strings.TrimSpace(in.Breed),
		Image:      strings.TrimSpace(in.Image),
		Bio:        strings.TrimSpace(in.Bio),
		Location:   strings.TrimSpace(in.Location),
		Interests:  normalizeInterests(in.Interests),
		Vaccinated: in.Vaccinated,
		Neutered:   in.Neutered,
		CreatedAt:  s.now(),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Dog{}, err
	}
	return s.repo.GetByID(ctx, d.ID)
}

func (s *Service) GetByID(ctx context.Context, id string) (Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Dog{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByOwner(ctx context.Context, ownerID string) (Dog, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, d Dog) error {
	d.Interests = normalizeInterests(d.Interests)
	return s.repo.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// ListCandidates: perros que no son de userID y con los que userID no tiene match.
// Un match vincula al usuario con el perro si la contraparte es el perro o su dueño.
func (s *Service) ListCandidates(ctx context.Context, userID string) (Deck, error) {
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return Deck{}, err
	}

	linked := map[string]struct{}{}
	if s.matches != nil {
		linked, err = s.matches.CounterpartsOf(ctx, userID)
		if err != nil {
			return Deck{}, err
		}
	}

	return Deck{
		catalog: catalog,
		keep: func(d Dog) bool {
			if d.OwnerID == userID {
				return false
			}
			if _, ok := linked[d.ID]; ok {
				return false
			}
			if d.Owned() {
				if _, ok := linked[d.OwnerID]; ok {
					return false
				}
			}
			return true
		},
	}, nil
}

// Search solo excluye por dueño (no por matches previos) y aplica filtros
// contains case-insensitive.
func (s *Service) Search(ctx context.Context, userID string, f Filter) (Deck, error) {
	catalog, err := s.repo.List(ctx)
	if err != nil {
		return Deck{}, err
	}

	breed := strings.ToLower(strings.TrimSpace(f.Breed))
	age := strings.ToLower(strings.TrimSpace(f.Age))
	location := strings.ToLower(strings.TrimSpace(f.Location))

	return Deck{
		catalog: catalog,
		keep: func(d Dog) bool {
			if d.OwnerID == userID {
				return false
			}
			if breed != "" && !strings.Contains(strings.ToLower(d.Breed), breed) {
				return false
			}
			if age != "" && !strings.Contains(strings.ToLower(d.Age), age) {
				return false
			}
			if location != "" && !strings.Contains(strings.ToLower(d.Location), location) {
				return false
			}
			return true
		},
	}, nil
}

// SeedSamples carga el catálogo de ejemplo solo si no hay perros.
func (s *Service) SeedSamples(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	created := 0
	for _, in := range sampleDogs() {
		if _, err := s.Create(ctx, in); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// IsNotFound evita que otros paquetes comparen contra errores del repo.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func normalizeInterests(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
