package matching

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	StrategyMutual        = "mutual"
	StrategyProbabilistic = "probabilistic"

	DefaultProbability = 0.3
)

// Strategy decide si un like (ya registrado en el ledger) produce match.
type Strategy interface {
	Name() string
	Decide(ctx context.Context, s Swipe) (bool, error)
}

// MutualLedger: hay match si el dueño del perro ya dio like a algún perro
// del actor. Los perros de catálogo nunca matchean.
type MutualLedger struct {
	swipes SwipeRepository
}

func NewMutualLedger(swipes SwipeRepository) *MutualLedger {
	return &MutualLedger{swipes: swipes}
}

func (m *MutualLedger) Name() string { return StrategyMutual }

func (m *MutualLedger) Decide(ctx context.Context, s Swipe) (bool, error) {
	if s.TargetOwnerID == "" {
		return false, nil
	}
	return m.swipes.HasLikeOnOwner(ctx, s.TargetOwnerID, s.ActorUserID)
}

// Probabilistic matchea con probabilidad p. Solo para demos.
type Probabilistic struct {
	p   float64
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewProbabilistic: seed 0 usa el reloj. Misma seed, misma secuencia.
func NewProbabilistic(p float64, seed uint64) *Probabilistic {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Probabilistic{p: p, rnd: rand.New(rand.NewPCG(seed, seed))}
}

func (p *Probabilistic) Name() string { return StrategyProbabilistic }

func (p *Probabilistic) Decide(ctx context.Context, s Swipe) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rnd.Float64() < p.p, nil
}

// NewStrategy arma la estrategia configurada.
func NewStrategy(name string, p float64, seed uint64, swipes SwipeRepository) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyMutual:
		return NewMutualLedger(swipes), nil
	case StrategyProbabilistic:
		return NewProbabilistic(p, seed), nil
	default:
		return nil, fmt.Errorf("matching: unknown strategy %q", name)
	}
}
