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

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Cron      CronConfig
	Scheduler SchedulerConfig
	TLS       TLSConfig
	Firebase  FirebaseConfig
	Telemetry TelemetryConfig
	Log       LogConfig
	Messages  MessagesConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
}

// CronConfig guards /api/cron/*. An empty secret disables those endpoints.
type CronConfig struct {
	Secret string
}

type SchedulerConfig struct {
	Enabled bool
	// ScheduleTimes are HH:MM times of day for the balance repair sweep.
	ScheduleTimes []string
	// RecurringInterval is how often due recurring rules are processed.
	RecurringInterval time.Duration
	WorkerCount       int
	JobDelay          time.Duration
	QueueSize         int
	RunOnStartup      bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type FirebaseConfig struct {
	CredentialsFile string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

type LogConfig struct {
	Level   string
	Console bool
}

type MessagesConfig struct {
	Path string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	sched, err := loadScheduler()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: splitList(getEnv("ALLOWED_HOSTS", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "finanzas"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "finanzas"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Cron: CronConfig{
			Secret: getEnv("CRON_SECRET", ""),
		},
		Scheduler: sched,
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "finanzas-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Console: getBoolEnv("LOG_CONSOLE", false),
		},
		Messages: MessagesConfig{
			Path: getEnv("MESSAGES_FILE", ""),
		},
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return nil, fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if cfg.TLS.KeyPath == "" {
			return nil, fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	return cfg, nil
}

func loadScheduler() (SchedulerConfig, error) {
	workers, err := strconv.Atoi(getEnv("SCHEDULER_WORKERS", "3"))
	if err != nil || workers < 1 {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_WORKERS: %q", os.Getenv("SCHEDULER_WORKERS"))
	}
	jobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "0s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	interval, err := time.ParseDuration(getEnv("RECURRING_INTERVAL", "15m"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid RECURRING_INTERVAL: %w", err)
	}
	if interval < time.Minute {
		return SchedulerConfig{}, fmt.Errorf("RECURRING_INTERVAL must be at least 1m, got %s", interval)
	}
	queueSize, err := strconv.Atoi(getEnv("SCHEDULER_QUEUE_SIZE", "100"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}

	return SchedulerConfig{
		Enabled:           getBoolEnv("SCHEDULER_ENABLED", true),
		ScheduleTimes:     splitList(getEnv("SCHEDULER_TIMES", "04:00")),
		RecurringInterval: interval,
		WorkerCount:       workers,
		JobDelay:          jobDelay,
		QueueSize:         queueSize,
		RunOnStartup:      getBoolEnv("SCHEDULER_RUN_ON_STARTUP", true),
	}, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
