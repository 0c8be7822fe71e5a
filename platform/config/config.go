// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDBMaxConns() int32
	GetDBMinConns() int32
}

// JWTConfig provides JWT validation settings for the admin middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq client and worker.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
	GetStageSweepCron() string
	GetReminderBackfillInterval() time.Duration
}

// LockConfig provides settings for the distributed slot lock.
type LockConfig interface {
	GetRedisURL() string
	GetSlotLockTTL() time.Duration
}

// BookingPolicyConfig provides the salon's booking rules.
type BookingPolicyConfig interface {
	GetSalonTimezone() string
	GetMinNoticeHours() int
	GetCancellationNoticeHours() int
	GetMaxAdvanceWeeks() int
	GetSlotIntervalMinutes() int
	GetApplyLunchBreak() bool
	GetReminderLeadTime() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                     string
	HTTPAddr                string
	DatabaseURL             string
	DBMaxConns              int
	DBMinConns              int
	MigrationsDisabled      bool
	JWTAccessSecret         string
	CORSAllowAll            bool
	CORSOrigins             []string
	CORSAllowCreds          bool
	RedisURL                string
	RedisTLSInsecure        bool
	AsynqQueueName          string
	AsynqConcurrency        int
	StageSweepCron          string
	ReminderBackfill        time.Duration
	SlotLockTTL             time.Duration
	SalonTimezone           string
	MinNoticeHours          int
	CancellationNoticeHours int
	MaxAdvanceWeeks         int
	SlotIntervalMinutes     int
	ApplyLunchBreak         bool
	ReminderLeadTime        time.Duration
	ScheduleSeedPath        string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetDBMaxConns() int32   { return int32(c.DBMaxConns) }
func (c *Config) GetDBMinConns() int32   { return int32(c.DBMinConns) }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string                        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool                  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string                  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int                   { return c.AsynqConcurrency }
func (c *Config) GetStageSweepCron() string                  { return c.StageSweepCron }
func (c *Config) GetReminderBackfillInterval() time.Duration { return c.ReminderBackfill }

// LockConfig implementation
func (c *Config) GetSlotLockTTL() time.Duration { return c.SlotLockTTL }

// BookingPolicyConfig implementation
func (c *Config) GetSalonTimezone() string           { return c.SalonTimezone }
func (c *Config) GetMinNoticeHours() int             { return c.MinNoticeHours }
func (c *Config) GetCancellationNoticeHours() int    { return c.CancellationNoticeHours }
func (c *Config) GetMaxAdvanceWeeks() int            { return c.MaxAdvanceWeeks }
func (c *Config) GetSlotIntervalMinutes() int        { return c.SlotIntervalMinutes }
func (c *Config) GetApplyLunchBreak() bool           { return c.ApplyLunchBreak }
func (c *Config) GetReminderLeadTime() time.Duration { return c.ReminderLeadTime }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                     getEnv("APP_ENV", "development"),
		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:             getEnv("DATABASE_URL", ""),
		DBMaxConns:              mustInt(getEnv("DB_MAX_CONNS", "20")),
		DBMinConns:              mustInt(getEnv("DB_MIN_CONNS", "2")),
		MigrationsDisabled:      strings.EqualFold(getEnv("MIGRATIONS_DISABLED", "false"), "true"),
		JWTAccessSecret:         getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:            corsAllowAll,
		CORSOrigins:             corsOrigins,
		CORSAllowCreds:          strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RedisTLSInsecure:        strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:          getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:        mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		StageSweepCron:          getEnv("STAGE_SWEEP_CRON", "0 6 * * *"),
		ReminderBackfill:        mustDuration(getEnv("REMINDER_BACKFILL_INTERVAL", "15m")),
		SlotLockTTL:             mustDuration(getEnv("SLOT_LOCK_TTL", "10s")),
		SalonTimezone:           getEnv("SALON_TIMEZONE", "Europe/London"),
		MinNoticeHours:          mustInt(getEnv("MIN_NOTICE_HOURS", "24")),
		CancellationNoticeHours: mustInt(getEnv("CANCELLATION_NOTICE_HOURS", "24")),
		MaxAdvanceWeeks:         mustInt(getEnv("MAX_ADVANCE_WEEKS", "12")),
		SlotIntervalMinutes:     mustInt(getEnv("SLOT_INTERVAL_MINUTES", "15")),
		ApplyLunchBreak:         strings.EqualFold(getEnv("APPLY_LUNCH_BREAK", "true"), "true"),
		ReminderLeadTime:        mustDuration(getEnv("REMINDER_LEAD_TIME", "24h")),
		ScheduleSeedPath:        getEnv("SCHEDULE_SEED_PATH", "config/schedule.yaml"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SlotIntervalMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_INTERVAL_MINUTES must be positive")
	}
	if cfg.DBMaxConns <= 0 || cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNS and DB_MAX_CONNS must satisfy 0 <= min <= max, max > 0")
	}
	if cfg.ReminderBackfill <= 0 {
		return nil, fmt.Errorf("REMINDER_BACKFILL_INTERVAL must be a positive duration")
	}
	if cfg.MaxAdvanceWeeks <= 0 {
		return nil, fmt.Errorf("MAX_ADVANCE_WEEKS must be positive")
	}
	if _, err := time.LoadLocation(cfg.SalonTimezone); err != nil {
		return nil, fmt.Errorf("SALON_TIMEZONE is invalid: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
