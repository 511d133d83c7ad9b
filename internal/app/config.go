package app

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fxsml/dispatch/config"
)

// Stores selectable through Config.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config configures the toolbox service. Every field can be overridden
// through DISPATCH_TOOLBOX_{FIELD} environment variables.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string
	// Store selects the repository: memory, redis or sqlite.
	Store string
	// RedisURL is used by the redis store.
	RedisURL string `env:"REDIS_URL"`
	// SQLitePath is used by the sqlite store.
	SQLitePath string `env:"SQLITE_PATH"`
	// OTLPEndpoint enables tracing when set.
	OTLPEndpoint string `env:"OTLP_ENDPOINT"`
	// EventsTarget enables forwarding of notifications as CloudEvents to
	// this HTTP endpoint when set.
	EventsTarget string
	// EventsSource is the source attribute of forwarded events.
	EventsSource string
	// LogLevel is one of debug, info, warn or error.
	LogLevel string
	// SlowThreshold is the duration above which requests are logged as slow.
	SlowThreshold time.Duration
	// RateLimit limits dispatched requests per second. Zero disables it.
	RateLimit float64
	// RateBurst is the number of requests admitted at once under RateLimit.
	RateBurst int
	// MaxConcurrent limits requests running at the same time. Zero disables it.
	MaxConcurrent int64
	// MetricsBuffer is the number of request metrics queued for logging.
	// Metrics beyond it are dropped. Zero uses the middleware default.
	MetricsBuffer int
	// RetryAttempts limits attempts of retried queries.
	RetryAttempts int
	// RetryDelay is the initial delay between retried attempts.
	RetryDelay time.Duration
	// ShutdownTimeout bounds the graceful HTTP shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ListenAddr:      ":8080",
		Store:           StoreMemory,
		SQLitePath:      "toolbox.db",
		EventsSource:    "/toolbox",
		LogLevel:        "info",
		SlowThreshold:   200 * time.Millisecond,
		RateBurst:       10,
		RetryAttempts:   3,
		RetryDelay:      100 * time.Millisecond,
		ShutdownTimeout: 10 * time.Second,
	}
}

// LoadConfig returns DefaultConfig overlaid with environment variables.
func LoadConfig(l config.Loader) (Config, error) {
	cfg := DefaultConfig()
	if err := l.Load("toolbox", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("app: redis store requires a redis url")
		}
	default:
		return fmt.Errorf("app: unknown store %q", c.Store)
	}
	if c.RateLimit < 0 || c.MaxConcurrent < 0 || c.MetricsBuffer < 0 {
		return fmt.Errorf("app: limits must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("app: invalid log level %q", s)
	}
	return level, nil
}
