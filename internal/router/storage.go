package router

import (
	"database/sql"
	"fmt"

	mem "tin-dog/internal/adapters/storage/memory"
	pg "tin-dog/internal/adapters/storage/postgres"
	"tin-dog/internal/adapters/storage/snapshot"
	"tin-dog/internal/config"
	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/matching"
	"tin-dog/internal/domain/users"
	"tin-dog/internal/platform/logger"
)

const (
	StorageMemory   = "memory"
	StorageSnapshot = "snapshot"
	StoragePostgres = "postgres"
)

// Storage agrupa los repositorios de un mismo backend.
type Storage struct {
	Kind string

	Users         users.Repository
	Dogs          dogs.Repository
	Swipes        matching.SwipeRepository
	Matches       matching.MatchRepository
	Conversations matching.ConversationRepository
	Pairs         matching.PairStore

	close func() error
}

// Close libera el backend. En modo snapshot persiste el estado a disco.
func (s Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// MemoryStorage envuelve un store en memoria (tests y modo dev).
func MemoryStorage(store *mem.Store) Storage {
	return Storage{
		Kind:          StorageMemory,
		Users:         store.Users(),
		Dogs:          store.Dogs(),
		Swipes:        store.Swipes(),
		Matches:       store.Matches(),
		Conversations: store.Conversations(),
		Pairs:         store.Pairs(),
	}
}

func PostgresStorage(db *sql.DB) Storage {
	m := pg.NewMatchingRepo(db)
	return Storage{
		Kind:          StoragePostgres,
		Users:         pg.NewUsersRepo(db),
		Dogs:          pg.NewDogsRepo(db),
		Swipes:        m.Swipes(),
		Matches:       m.Matches(),
		Conversations: m.Conversations(),
		Pairs:         m.Pairs(),
		close:         db.Close,
	}
}

// OpenStorage elige backend: DB_DSN gana; si no, DATA_DIR activa snapshots;
// si ninguno, in-memory puro.
func OpenStorage(cfg config.StorageConfig, log logger.Logger) (Storage, error) {
	if log == nil {
		log = logger.Nop()
	}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return Storage{}, fmt.Errorf("open postgres: %w", err)
		}
		log.Info("storage ready", map[string]any{"kind": StoragePostgres})
		return PostgresStorage(db), nil
	}

	store := mem.NewStore()
	if cfg.DataDir == "" {
		log.Info("storage ready", map[string]any{"kind": StorageMemory})
		return MemoryStorage(store), nil
	}

	if err := snapshot.Load(cfg.DataDir, store); err != nil {
		return Storage{}, err
	}
	s := MemoryStorage(store)
	s.Kind = StorageSnapshot
	s.close = func() error {
		if err := snapshot.Save(cfg.DataDir, store); err != nil {
			log.Error("snapshot save failed", map[string]any{"dir": cfg.DataDir, "error": err.Error()})
			return err
		}
		log.Info("snapshot saved", map[string]any{"dir": cfg.DataDir})
		return nil
	}
	log.Info("storage ready", map[string]any{"kind": StorageSnapshot, "dir": cfg.DataDir})
	return s, nil
}
