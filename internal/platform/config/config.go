package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	LogLevel    slog.Level

	StoreDriver string
	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	VoteQueueKey  string

	ConsumerPollInterval time.Duration
	ReconnectDelay       time.Duration
	TallyInterval        time.Duration
	ScoresTopic          string

	OptionA string
	OptionB string

	MetricsAddr       string
	RefreshRatePerSec float64
	RefreshBurst      int
	EnableSwagger     bool
}

func Load() (Config, error) {
	cfg := Config{
		ServiceName: envString("SERVICE_NAME", "voteflow"),
		HTTPPort:    envString("HTTP_PORT", "8080"),
		LogLevel:    envLevel("LOG_LEVEL", slog.LevelInfo),

		StoreDriver: strings.ToLower(envString("STORE_DRIVER", StoreDriverPostgres)),
		PostgresDSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SQLitePath:  envString("SQLITE_PATH", "voteflow.db"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		VoteQueueKey:  envString("VOTE_QUEUE_KEY", "votes"),

		ConsumerPollInterval: envDuration("CONSUMER_POLL_INTERVAL", 100*time.Millisecond),
		ReconnectDelay:       envDuration("RECONNECT_DELAY", time.Second),
		TallyInterval:        envDuration("TALLY_INTERVAL", time.Second),
		ScoresTopic:          envString("SCORES_TOPIC", "scores"),

		OptionA: envString("OPTION_A", "Cats"),
		OptionB: envString("OPTION_B", "Dogs"),

		MetricsAddr:       envString("METRICS_ADDR", ":9090"),
		RefreshRatePerSec: envFloat("REFRESH_RATE_PER_SEC", 5),
		RefreshBurst:      envInt("REFRESH_BURST", 10),
		EnableSwagger:     envBool("ENABLE_SWAGGER", true),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres"))
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be postgres or sqlite, got %q", c.StoreDriver))
	}
	if c.ConsumerPollInterval <= 0 {
		errs = append(errs, errors.New("CONSUMER_POLL_INTERVAL must be positive"))
	}
	if c.ReconnectDelay <= 0 {
		errs = append(errs, errors.New("RECONNECT_DELAY must be positive"))
	}
	if c.TallyInterval <= 0 {
		errs = append(errs, errors.New("TALLY_INTERVAL must be positive"))
	}
	if c.RefreshRatePerSec <= 0 || c.RefreshBurst <= 0 {
		errs = append(errs, errors.New("REFRESH_RATE_PER_SEC and REFRESH_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// StoreDSN is the connection string for the selected driver.
func (c Config) StoreDSN() string {
	if c.StoreDriver == StoreDriverSQLite {
		return c.SQLitePath
	}
	return c.PostgresDSN
}

func envString(name string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(name)); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(name string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

// envDuration accepts Go durations ("250ms") or a bare number of milliseconds.
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if value, err := time.ParseDuration(raw); err == nil {
		return value
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}

func envLevel(name string, fallback slog.Level) slog.Level {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return fallback
	}
	return level
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
