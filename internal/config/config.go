package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the agent.
type Config struct {
	App        AppConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Classifier ClassifierConfig
	Connector  ConnectorConfig
	Scheduler  SchedulerConfig
	Notifier   NotifierConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Format string
}

// AuthConfig secures the dashboard API.
type AuthConfig struct {
	JWTSecret             string
	AdminKey              string
	AccessTokenTTLMinutes int
}

// ClassifierConfig configures the remote classifier and the triage policy.
type ClassifierConfig struct {
	APIKey              string
	BaseURL             string
	Model               string
	TimeoutMs           int
	RetryCount          int
	FallbackEnabled     bool
	ConfidenceThreshold float64
}

// RemoteEnabled reports whether a remote classifier should be constructed.
func (c ClassifierConfig) RemoteEnabled() bool {
	return c.APIKey != ""
}

// Timeout returns the remote call timeout duration.
func (c ClassifierConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// ConnectorConfig selects and configures the inbound channel.
type ConnectorConfig struct {
	Channel        string
	BackendBaseURL string
	BackendToken   string
	GameID         int
	PkgID          int
}

// SchedulerConfig holds loop intervals.
type SchedulerConfig struct {
	PollIntervalMs   int
	RescanIntervalMs int
	DigestIntervalMs int
	DigestEnabled    bool
	DigestBatchSize  int
}

// PollInterval returns the poll loop interval duration.
func (s SchedulerConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// RescanInterval returns the rescan loop interval duration.
func (s SchedulerConfig) RescanInterval() time.Duration {
	return time.Duration(s.RescanIntervalMs) * time.Millisecond
}

// DigestInterval returns the digest loop interval duration.
func (s SchedulerConfig) DigestInterval() time.Duration {
	return time.Duration(s.DigestIntervalMs) * time.Millisecond
}

// NotifierConfig holds alert delivery endpoints.
type NotifierConfig struct {
	WebhookURL string
}

// Channel selector values.
const (
	ChannelMock          = "mock"
	ChannelTicketBackend = "ticket_backend"
)

// Load reads configuration from environment variables, applying defaults
// where possible. Validation is separate so all violations surface at once.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-agent"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AdminKey:              os.Getenv("AUTH_ADMIN_KEY"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Classifier: ClassifierConfig{
			APIKey:              os.Getenv("CLASSIFIER_API_KEY"),
			BaseURL:             getEnv("CLASSIFIER_BASE_URL", ""),
			Model:               getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
			TimeoutMs:           getEnvAsInt("CLASSIFIER_TIMEOUT_MS", 10000),
			RetryCount:          getEnvAsInt("CLASSIFIER_RETRY_COUNT", 3),
			FallbackEnabled:     getEnvAsBool("CLASSIFIER_FALLBACK_ENABLED", true),
			ConfidenceThreshold: getEnvAsFloat("CLASSIFIER_CONFIDENCE_THRESHOLD", 0.7),
		},
		Connector: ConnectorConfig{
			Channel:        getEnv("CHANNEL", ChannelMock),
			BackendBaseURL: os.Getenv("TICKET_BACKEND_BASE_URL"),
			BackendToken:   os.Getenv("TICKET_BACKEND_TOKEN"),
			GameID:         getEnvAsInt("TICKET_BACKEND_GAME_ID", 0),
			PkgID:          getEnvAsInt("TICKET_BACKEND_PKG_ID", 0),
		},
		Scheduler: SchedulerConfig{
			PollIntervalMs:   getEnvAsInt("POLL_INTERVAL_MS", 15000),
			RescanIntervalMs: getEnvAsInt("RESCAN_INTERVAL_MS", 300000),
			DigestIntervalMs: getEnvAsInt("DIGEST_INTERVAL_MS", 3600000),
			DigestEnabled:    getEnvAsBool("DIGEST_ENABLED", true),
			DigestBatchSize:  getEnvAsInt("DIGEST_BATCH_SIZE", 50),
		},
		Notifier: NotifierConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Validate checks the whole configuration eagerly and aggregates every
// violation into a single error instead of failing on the first one.
func (c *Config) Validate() error {
	var violations []error

	fail := func(format string, args ...any) {
		violations = append(violations, fmt.Errorf(format, args...))
	}

	switch c.Connector.Channel {
	case ChannelMock:
	case ChannelTicketBackend:
		if c.Connector.BackendBaseURL == "" {
			fail("TICKET_BACKEND_BASE_URL is required when CHANNEL=%s", ChannelTicketBackend)
		}
		if c.Connector.BackendToken == "" {
			fail("TICKET_BACKEND_TOKEN is required when CHANNEL=%s", ChannelTicketBackend)
		}
	default:
		fail("CHANNEL must be one of %q, %q; got %q", ChannelMock, ChannelTicketBackend, c.Connector.Channel)
	}

	if c.Connector.Channel != ChannelMock && c.Postgres.DSN == "" {
		fail("POSTGRES_DSN is required outside mock mode")
	}

	if c.Scheduler.PollIntervalMs < 1000 {
		fail("POLL_INTERVAL_MS must be at least 1000, got %d", c.Scheduler.PollIntervalMs)
	}
	if c.Scheduler.RescanIntervalMs <= 0 {
		fail("RESCAN_INTERVAL_MS must be positive, got %d", c.Scheduler.RescanIntervalMs)
	}
	if c.Scheduler.DigestEnabled && c.Scheduler.DigestIntervalMs <= 0 {
		fail("DIGEST_INTERVAL_MS must be positive, got %d", c.Scheduler.DigestIntervalMs)
	}

	if c.Classifier.ConfidenceThreshold < 0 || c.Classifier.ConfidenceThreshold > 1 {
		fail("CLASSIFIER_CONFIDENCE_THRESHOLD must be in [0,1], got %v", c.Classifier.ConfidenceThreshold)
	}
	if c.Classifier.RetryCount < 0 {
		fail("CLASSIFIER_RETRY_COUNT must not be negative, got %d", c.Classifier.RetryCount)
	}
	if c.Classifier.RemoteEnabled() && c.Classifier.TimeoutMs <= 0 {
		fail("CLASSIFIER_TIMEOUT_MS must be positive, got %d", c.Classifier.TimeoutMs)
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		fail("AUTH_JWT_SECRET must not be empty")
	}

	return errors.Join(violations...)
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

// MockMode reports whether the agent runs against in-memory collaborators.
func (c *Config) MockMode() bool {
	return c.Connector.Channel == ChannelMock
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

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
