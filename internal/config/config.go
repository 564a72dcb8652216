package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP    HTTPConfig
	Auth    AuthConfig
	Storage StorageConfig
	Match   MatchConfig
	Upload  UploadConfig
	Redis   RedisConfig
	Log     LogConfig
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	AuthRatePerMin  int
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// StorageConfig: DBDSN tiene prioridad; si no, DataDir activa snapshots en disco;
// si ninguno, todo queda in-memory.
type StorageConfig struct {
	DBDSN   string
	DataDir string
	Seed    bool
}

type MatchConfig struct {
	Strategy    string // mutual|probabilistic
	Probability float64
	Seed        int64
}

type UploadConfig struct {
	Dir           string
	MaxBytes      int64
	MaxConcurrent int64
	Timeout       time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	StatsTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	App    string
}

const (
	defaultJWTSecret = "tin-dog-secret-key-2024"
	defaultTokenTTL  = 7 * 24 * time.Hour
	defaultMaxUpload = 5 << 20
)

// Load lee la configuración desde env. Si existe un .env en el cwd se carga
// primero (las variables ya definidas en el entorno ganan).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            ":" + valueOrDefault("PORT", "3000"),
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  splitCSV(valueOrDefault("ALLOWED_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			JWTSecret: valueOrDefault("JWT_SECRET", defaultJWTSecret),
		},
		Storage: StorageConfig{
			DBDSN:   strings.TrimSpace(os.Getenv("DB_DSN")),
			DataDir: strings.TrimSpace(os.Getenv("DATA_DIR")),
		},
		Match: MatchConfig{
			Strategy: strings.ToLower(valueOrDefault("MATCH_STRATEGY", "mutual")),
		},
		Upload: UploadConfig{
			Dir: valueOrDefault("UPLOAD_DIR", "uploads"),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Log: LogConfig{
			Level:  valueOrDefault("LOG_LEVEL", "info"),
			Format: valueOrDefault("LOG_FORMAT", "text"),
			App:    valueOrDefault("APP_NAME", "tin-dog"),
		},
	}

	var err error
	if cfg.Auth.TokenTTL, err = durationOrDefault("JWT_TTL", defaultTokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.Redis.StatsTTL, err = durationOrDefault("STATS_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Upload.Timeout, err = durationOrDefault("UPLOAD_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Storage.Seed, err = boolOrDefault("SEED_SAMPLE_DOGS", true); err != nil {
		return Config{}, err
	}
	if cfg.Upload.MaxBytes, err = intOrDefault("UPLOAD_MAX_BYTES", defaultMaxUpload); err != nil {
		return Config{}, err
	}
	if cfg.Upload.MaxConcurrent, err = intOrDefault("UPLOAD_MAX_CONCURRENT", 4); err != nil {
		return Config{}, err
	}
	if cfg.Match.Seed, err = intOrDefault("MATCH_SEED", time.Now().UnixNano()); err != nil {
		return Config{}, err
	}
	rate, err := intOrDefault("AUTH_RATE_PER_MIN", 60)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.AuthRatePerMin = int(rate)

	cfg.Match.Probability = 0.3
	if v := strings.TrimSpace(os.Getenv("MATCH_PROBABILITY")); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 || p > 1 {
			return Config{}, fmt.Errorf("invalid MATCH_PROBABILITY %q", v)
		}
		cfg.Match.Probability = p
	}

	switch cfg.Match.Strategy {
	case "mutual", "probabilistic":
	default:
		return Config{}, fmt.Errorf("invalid MATCH_STRATEGY %q (mutual|probabilistic)", cfg.Match.Strategy)
	}

	return cfg, nil
}

func valueOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(key string, fallback int64) (int64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitCSV(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
