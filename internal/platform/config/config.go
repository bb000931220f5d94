package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"notify/internal/domain/notifications"
)

type Config struct {
	Addr                   string
	Environment            string
	DatabaseURL            string
	JWTSecret              string
	PublicURL              string
	RunMigrations          bool
	MigrationsDir          string
	EmailEnabled           bool
	EmailFrom              string
	SMTPHost               string
	SMTPPort               int
	SMTPUser               string
	SMTPPassword           string
	SMTPUseTLS             bool
	EmailMaxRetries        int
	EmailRetryDelay        time.Duration
	EmailAsync             bool
	EmailQueueSize         int
	EmailDefaultCategories map[string]bool
	ThreadMaxDepth         int
	MaxBodyBytes           int64
	MetricsEnabled         bool
}

// Load reads configuration from the environment after applying any local
// .env files. Values already present in the process environment win.
func Load() Config {
	loadEnvFiles(".env", ".env.local")

	return Config{
		Addr:                   getEnv("APP_ADDR", ":8080"),
		Environment:            getEnv("APP_ENV", "development"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTSecret:              getEnv("JWT_SECRET", ""),
		PublicURL:              strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:8080"), "/"),
		RunMigrations:          getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:          getEnv("MIGRATIONS_DIR", "migrations"),
		EmailEnabled:           getEnvBool("EMAIL_ENABLED", false),
		EmailFrom:              getEnv("EMAIL_FROM", "notifications@example.com"),
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:             getEnvBool("SMTP_USE_TLS", true),
		EmailMaxRetries:        getEnvInt("EMAIL_MAX_RETRIES", 3),
		EmailRetryDelay:        getEnvDuration("EMAIL_RETRY_DELAY", 2*time.Second),
		EmailAsync:             getEnvBool("EMAIL_ASYNC", true),
		EmailQueueSize:         getEnvInt("EMAIL_QUEUE_SIZE", 256),
		EmailDefaultCategories: getEnvSet("EMAIL_DEFAULT_CATEGORIES", "follow,follow_request,mention"),
		ThreadMaxDepth:         getEnvInt("THREAD_MAX_DEPTH", 256),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 65536)),
		MetricsEnabled:         getEnvBool("METRICS_ENABLED", true),
	}
}

func loadEnvFiles(files ...string) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			slog.Warn("env file load failed", "file", file, "err", err)
		}
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// getEnvSet parses a comma separated list into a set of enabled names. The
// value "none" yields an empty set.
func getEnvSet(key, fallback string) map[string]bool {
	out := map[string]bool{}
	raw := getEnv(key, fallback)
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return out
	}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out[item] = true
		}
	}
	return out
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.EmailMaxRetries < 0 {
		return fmt.Errorf("EMAIL_MAX_RETRIES must not be negative")
	}
	if c.EmailAsync && c.EmailQueueSize <= 0 {
		return fmt.Errorf("EMAIL_QUEUE_SIZE must be positive when EMAIL_ASYNC is true")
	}
	for category := range c.EmailDefaultCategories {
		if !notifications.KnownCategory(category) {
			return fmt.Errorf("EMAIL_DEFAULT_CATEGORIES has unknown category %q", category)
		}
	}
	if c.ThreadMaxDepth <= 0 {
		return fmt.Errorf("THREAD_MAX_DEPTH must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	return nil
}
