package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MinIO         MinIOConfig
	Auth          AuthConfig
	Scheduler     SchedulerConfig
	Notifications NotificationsConfig
	Log           LogConfig
}

type ServerConfig struct {
	Port    string
	Version string
}

type DatabaseConfig struct {
	URL           string
	RunMigrations bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type AuthConfig struct {
	JWTSecret string
	JWKSURL   string
}

// SchedulerConfig drives the daily renewal scans. Times are HH:MM in UTC.
type SchedulerConfig struct {
	Enabled           bool
	CheckExpiringAt   string
	AutoRenewAt       string
	RetryDelay        time.Duration
	MaxAttempts       int
	LockTTL           time.Duration
	WorkerConcurrency int
}

type NotificationsConfig struct {
	Transport  string // "log" or "webhook"
	WebhookURL string
	Timeout    time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_VERSION", "1.0.0")
	v.SetDefault("DATABASE_RUN_MIGRATIONS", true)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_BUCKET", "license-documents")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_CHECK_EXPIRING_AT", "02:00")
	v.SetDefault("SCHEDULER_AUTO_RENEW_AT", "03:00")
	v.SetDefault("SCHEDULER_RETRY_DELAY", "5m")
	v.SetDefault("SCHEDULER_MAX_ATTEMPTS", 3)
	v.SetDefault("SCHEDULER_LOCK_TTL", "1h")
	v.SetDefault("SCHEDULER_WORKER_CONCURRENCY", 5)
	v.SetDefault("NOTIFICATIONS_TRANSPORT", "log")
	v.SetDefault("NOTIFICATIONS_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
}

// Load reads configuration from the environment, optionally layered over the
// file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", p, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    v.GetString("SERVER_PORT"),
			Version: v.GetString("SERVER_VERSION"),
		},
		Database: DatabaseConfig{
			URL:           v.GetString("DATABASE_URL"),
			RunMigrations: v.GetBool("DATABASE_RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			JWKSURL:   v.GetString("AUTH_JWKS_URL"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("SCHEDULER_ENABLED"),
			CheckExpiringAt:   v.GetString("SCHEDULER_CHECK_EXPIRING_AT"),
			AutoRenewAt:       v.GetString("SCHEDULER_AUTO_RENEW_AT"),
			RetryDelay:        v.GetDuration("SCHEDULER_RETRY_DELAY"),
			MaxAttempts:       v.GetInt("SCHEDULER_MAX_ATTEMPTS"),
			LockTTL:           v.GetDuration("SCHEDULER_LOCK_TTL"),
			WorkerConcurrency: v.GetInt("SCHEDULER_WORKER_CONCURRENCY"),
		},
		Notifications: NotificationsConfig{
			Transport:  v.GetString("NOTIFICATIONS_TRANSPORT"),
			WebhookURL: v.GetString("NOTIFICATIONS_WEBHOOK_URL"),
			Timeout:    v.GetDuration("NOTIFICATIONS_TIMEOUT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if _, err := ParseClock(c.Scheduler.CheckExpiringAt); err != nil {
		errs = append(errs, fmt.Errorf("SCHEDULER_CHECK_EXPIRING_AT: %w", err))
	}
	if _, err := ParseClock(c.Scheduler.AutoRenewAt); err != nil {
		errs = append(errs, fmt.Errorf("SCHEDULER_AUTO_RENEW_AT: %w", err))
	}
	if c.Scheduler.MaxAttempts < 1 {
		errs = append(errs, errors.New("SCHEDULER_MAX_ATTEMPTS must be at least 1"))
	}
	switch c.Notifications.Transport {
	case "log":
	case "webhook":
		if c.Notifications.WebhookURL == "" {
			errs = append(errs, errors.New("NOTIFICATIONS_WEBHOOK_URL is required for the webhook transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NOTIFICATIONS_TRANSPORT %q", c.Notifications.Transport))
	}
	return errors.Join(errs...)
}

// ClockTime is an hour and minute of the day
type ClockTime struct {
	Hour   uint
	Minute uint
}

// ParseClock parses "HH:MM" (24h)
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time of day %q, want HH:MM", s)
	}
	return ClockTime{Hour: uint(t.Hour()), Minute: uint(t.Minute())}, nil
}
