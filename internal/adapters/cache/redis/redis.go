package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tin-dog/internal/platform/logger"
)

// Cache es un cache JSON sobre Redis. Si Redis no responde al arrancar,
// queda en modo bypass: lecturas siempre miss, escrituras no-op.
type Cache struct {
	client *goredis.Client
	log    logger.Logger

	warnedUnavailable atomic.Bool
}

type Options struct {
	Addr     string
	Password string
	DB       int
}

func New(ctx context.Context, opts Options, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"component": "cache"})

	if strings.TrimSpace(opts.Addr) == "" {
		log.Info("redis not configured, bypassing cache", nil)
		return &Cache{log: log}
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unavailable, bypassing cache", map[string]any{"addr": opts.Addr, "error": err.Error()})
		_ = client.Close()
		return &Cache{log: log}
	}

	return &Cache{client: client, log: log}
}

// NewWithClient envuelve un cliente ya armado (tests).
func NewWithClient(client *goredis.Client, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{client: client, log: log}
}

func (c *Cache) Available() bool {
	return c != nil && c.client != nil
}

func (c *Cache) warnUnavailableOnce(err error) {
	if c.warnedUnavailable.CompareAndSwap(false, true) {
		c.log.Warn("redis error, serving without cache", map[string]any{"error": err.Error()})
	}
}

func (c *Cache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if !c.Available() {
		return false, nil
	}
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		c.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.Available() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		c.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.Available() {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (c *Cache) Close() error {
	if !c.Available() {
		return nil
	}
	return c.client.Close()
}
