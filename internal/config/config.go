package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Target names a deployment shape of the service.
type Target string

const (
	// TargetServer is the long-running server that persists incidents.
	TargetServer Target = "server"
	// TargetFunction is the serverless-style echo endpoint.
	TargetFunction Target = "function"
)

// Store drivers.
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
)

// Normalizer profiles.
const (
	DefaultsFull    = "full"
	DefaultsMinimal = "minimal"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and tunes the incident store.
type StoreConfig struct {
	Driver         string
	FilePath       string
	Defaults       string
	LockTTLSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// NotificationConfig controls forwarding of created incidents.
type NotificationConfig struct {
	WebhookURL  string
	MaxAttempts int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("INCIDENT_STORE", StoreDriverFile))
	if driver != StoreDriverFile && driver != StoreDriverPostgres {
		return nil, fmt.Errorf("invalid INCIDENT_STORE %q", driver)
	}

	defaults := strings.ToLower(os.Getenv("INCIDENT_DEFAULTS"))
	if defaults != "" && defaults != DefaultsFull && defaults != DefaultsMinimal {
		return nil, fmt.Errorf("invalid INCIDENT_DEFAULTS %q", defaults)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "incident-intake"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3001"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:         driver,
			FilePath:       getEnv("INCIDENT_STORE_PATH", "incidents.json"),
			Defaults:       defaults,
			LockTTLSeconds: getEnvAsInt("INCIDENT_LOCK_TTL_SECONDS", 10),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Notification: NotificationConfig{
			WebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
			MaxAttempts: getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
		},
	}

	if cfg.Store.Driver == StoreDriverPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN required when INCIDENT_STORE=%s", StoreDriverPostgres)
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// DefaultsFor resolves the normalizer profile for a deployment target.
// An explicit INCIDENT_DEFAULTS wins; otherwise the function target fills
// every field and the server target passes customer fields through.
func (s StoreConfig) DefaultsFor(target Target) string {
	if s.Defaults != "" {
		return s.Defaults
	}
	if target == TargetFunction {
		return DefaultsFull
	}
	return DefaultsMinimal
}

// LockTTL returns how long an advisory store lock may be held.
func (s StoreConfig) LockTTL() time.Duration {
	if s.LockTTLSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.LockTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
