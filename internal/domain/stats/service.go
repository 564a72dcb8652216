package stats

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"tin-dog/internal/platform/logger"
)

const cacheKey = "tindog:stats"

type Stats struct {
	TotalUsers          int `json:"totalUsers"`
	TotalDogs           int `json:"totalDogs"`
	TotalMatches        int `json:"totalMatches"`
	ActiveConversations int `json:"activeConversations"`
}

// Counter es cualquier cosa que sepa contar su colección.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// CounterFunc adapta una función a Counter.
type CounterFunc func(ctx context.Context) (int, error)

func (f CounterFunc) Count(ctx context.Context) (int, error) { return f(ctx) }

// Cache es read-through; un error del cache nunca rompe el request.
type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Sources struct {
	Users         Counter
	Dogs          Counter
	Matches       Counter
	Conversations Counter
}

type Service struct {
	src   Sources
	cache Cache
	ttl   time.Duration
	log   logger.Logger

	// misses concurrentes comparten un solo conteo
	flight singleflight.Group
}

func NewService(src Sources, cache Cache, ttl time.Duration, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{src: src, cache: cache, ttl: ttl, log: log}
}

func (s *Service) Snapshot(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		var cached Stats
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.log.Debug("stats cache read failed", map[string]any{"error": err.Error()})
		}
		if hit {
			return cached, nil
		}
	}

	v, err, _ := s.flight.Do(cacheKey, func() (any, error) {
		return s.count(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	st := v.(Stats)

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, cacheKey, st, s.ttl); err != nil {
			s.log.Debug("stats cache write failed", map[string]any{"error": err.Error()})
		}
	}
	return st, nil
}

func (s *Service) count(ctx context.Context) (Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.TotalUsers, err = s.src.Users.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.TotalDogs, err = s.src.Dogs.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.TotalMatches, err = s.src.Matches.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.ActiveConversations, err = s.src.Conversations.Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}
