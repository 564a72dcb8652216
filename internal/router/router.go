package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tin-dog/internal/adapters/auth/jwt"
	"tin-dog/internal/adapters/storage/uploads"
	"tin-dog/internal/config"
	_ "tin-dog/internal/docs"
	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/matching"
	"tin-dog/internal/domain/stats"
	"tin-dog/internal/domain/users"
	"tin-dog/internal/middleware"
	"tin-dog/internal/platform/apperr"
	"tin-dog/internal/platform/logger"
	"tin-dog/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// holgura para los campos de texto del multipart además de la imagen
const multipartOverhead = 1 << 20

type Options struct {
	Config  config.Config
	Storage Storage

	// Opcional: read-through para /api/stats. nil = sin cache.
	Cache stats.Cache
	// Opcional: si viene nil se crea un registry propio.
	Metrics *metrics.Metrics
	Log     logger.Logger
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := opts.Config
	st := opts.Storage
	if st.Users == nil {
		return nil, errors.New("router: storage is required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	tokens, err := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	images, err := uploads.NewLocal(uploads.Options{
		Dir:           cfg.Upload.Dir,
		MaxBytes:      cfg.Upload.MaxBytes,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		Timeout:       cfg.Upload.Timeout,
	})
	if err != nil {
		return nil, err
	}
	strategy, err := matching.NewStrategy(cfg.Match.Strategy, cfg.Match.Probability, uint64(cfg.Match.Seed), st.Swipes)
	if err != nil {
		return nil, err
	}

	// Services por módulo
	dogsSvc := dogs.NewService(st.Dogs, matching.NewIndex(st.Matches))
	usersSvc := users.NewService(users.Deps{
		Repo:     st.Users,
		Dogs:     dogsSvc,
		Images:   images,
		Tokens:   tokens,
		Verifier: tokens,
		Log:      log,
	})
	convs := matching.NewConversations(matching.ConversationDeps{
		Repo:     st.Conversations,
		Matches:  st.Matches,
		Dogs:     dogsSvc,
		Users:    usersSvc,
		Observer: m,
		Log:      log,
	})
	engine := matching.NewEngine(matching.EngineDeps{
		Dogs:          dogsSvc,
		Swipes:        st.Swipes,
		Matches:       st.Matches,
		Conversations: st.Conversations,
		Pairs:         st.Pairs,
		Opener:        convs,
		Strategy:      strategy,
		Observer:      m,
		Log:           log,
	})
	statsSvc := stats.NewService(stats.Sources{
		Users:         usersSvc,
		Dogs:          dogsSvc,
		Matches:       stats.CounterFunc(engine.CountMatches),
		Conversations: convs,
	}, opts.Cache, cfg.Redis.StatsTTL, log)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(m.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apperr.WriteCode(w, apperr.CodeRouteNotFound, "route not found")
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"storage":   st.Kind,
			"strategy":  engine.Strategy(),
			"timestamp": time.Now().UTC(),
		})
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Handle("/uploads/*", http.StripPrefix(uploads.PublicPrefix, http.FileServer(http.Dir(images.Dir()))))

	authLimiter := middleware.NewIPRateLimiter(cfg.HTTP.AuthRatePerMin)

	r.Route("/api", func(api chi.Router) {
		// públicas
		api.Group(func(pub chi.Router) {
			pub.Use(authLimiter.Middleware)
			users.RegisterAuthRoutes(pub, usersSvc)
		})
		stats.RegisterRoutes(api, statsSvc)

		// requieren bearer token
		api.Group(func(priv chi.Router) {
			priv.Use(middleware.RequireAuth(tokens))
			users.RegisterProfileRoutes(priv, usersSvc, cfg.Upload.MaxBytes+multipartOverhead)
			dogs.RegisterRoutes(priv, dogsSvc)
			matching.RegisterRoutes(priv, engine, convs)
		})
	})

	return r, nil
}
