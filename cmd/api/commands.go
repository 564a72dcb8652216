package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	rediscache "tin-dog/internal/adapters/cache/redis"
	pg "tin-dog/internal/adapters/storage/postgres"
	"tin-dog/internal/config"
	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/platform/logger"
	"tin-dog/internal/router"
)

var (
	seedOverride string

	rootCmd = &cobra.Command{
		Use:           "tin-dog",
		Short:         "API de matching para dueños de perros",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el schema en la base apuntada por DB_DSN",
		RunE:  runMigrate,
	}
)

func init() {
	serveCmd.Flags().StringVar(&seedOverride, "seed", "", "carga el catálogo de ejemplo (true|false); default SEED_SAMPLE_DOGS")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if seedOverride != "" {
		switch seedOverride {
		case "true":
			cfg.Storage.Seed = true
		case "false":
			cfg.Storage.Seed = false
		default:
			return fmt.Errorf("invalid --seed %q", seedOverride)
		}
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := router.OpenStorage(cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("storage close failed", map[string]any{"error": err.Error()})
		}
	}()

	if cfg.Storage.Seed {
		n, err := dogs.NewService(st.Dogs, nil).SeedSamples(ctx)
		if err != nil {
			return fmt.Errorf("seed sample dogs: %w", err)
		}
		if n > 0 {
			log.Info("sample dogs seeded", map[string]any{"count": n})
		}
	}

	cache := rediscache.New(ctx, rediscache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password}, log)
	defer func() { _ = cache.Close() }()

	h, err := router.NewRouter(router.Options{
		Config:  cfg,
		Storage: st,
		Cache:   cache,
		Log:     log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      h,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":     cfg.HTTP.Addr,
			"storage":  st.Kind,
			"strategy": cfg.Match.Strategy,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Storage.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	log := newLogger(cfg)

	db, err := pg.Open(cfg.Storage.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := pg.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("schema applied", nil)
	return nil
}
