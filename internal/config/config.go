// Package config loads process configuration from the environment.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/presentation"
	"github.com/KirkDiggler/guild-progression/internal/scheduler"
)

// Store backends
const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full process configuration
type Config struct {
	Store    StoreConfig
	Log      LogConfig
	Schedule ScheduleConfig
	Reward   RewardConfig

	MetricsAddr string `env:"METRICS_ADDR"`

	// RankNames maps "start-end" level ranges to a rank title, as JSON
	RankNames string `env:"RANK_NAMES" envDefault:"{}"`
	// RankFallback names levels no range covers
	RankFallback string `env:"RANK_FALLBACK"`
}

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Backend   string `env:"STORE_BACKEND" envDefault:"redis"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	// RedisClusterAddrs selects cluster mode and replaces RedisAddr
	RedisClusterAddrs []string `env:"REDIS_CLUSTER_ADDRS" envSeparator:","`
	RedisPoolSize     int      `env:"REDIS_POOL_SIZE" envDefault:"10"`
	PostgresDSN       string   `env:"POSTGRES_DSN"`
}

// LogConfig configures slog
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// ScheduleConfig configures the daily reset trigger
type ScheduleConfig struct {
	Timezone string `env:"RESET_TIMEZONE" envDefault:"UTC"`
	// Spec is a cron spec evaluated in Timezone
	Spec       string `env:"RESET_SCHEDULE" envDefault:"@daily"`
	RunOnStart bool   `env:"RESET_ON_START" envDefault:"false"`
}

// RewardConfig configures task completion rewards
type RewardConfig struct {
	BaseExp int64 `env:"REWARD_BASE_EXP" envDefault:"20"`
	CoinDie int   `env:"REWARD_COIN_DIE" envDefault:"10"`
}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the environment parser cannot
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	switch c.Store.Backend {
	case StoreRedis:
		if len(c.Store.RedisClusterAddrs) == 0 {
			errors.ValidateRequired("REDIS_ADDR", c.Store.RedisAddr, vb)
		}
		for _, addr := range c.Store.RedisClusterAddrs {
			if strings.TrimSpace(addr) == "" {
				vb.Field("REDIS_CLUSTER_ADDRS", "must not contain empty addresses")
				break
			}
		}
	case StorePostgres:
		errors.ValidateRequired("POSTGRES_DSN", c.Store.PostgresDSN, vb)
	default:
		vb.Fieldf("STORE_BACKEND", "must be %q or %q", StoreRedis, StorePostgres)
	}

	if _, err := c.Schedule.Location(); err != nil {
		vb.Fieldf("RESET_TIMEZONE", "unknown time zone %q", c.Schedule.Timezone)
	}
	if _, err := scheduler.ParseSpec(c.Schedule.Spec); err != nil {
		vb.Fieldf("RESET_SCHEDULE", "invalid cron spec %q", c.Schedule.Spec)
	}
	if c.Reward.BaseExp < 1 {
		vb.Field("REWARD_BASE_EXP", "must be at least 1")
	}
	if c.Reward.CoinDie < 1 {
		vb.Field("REWARD_COIN_DIE", "must be at least 1")
	}
	if _, err := c.Ranks(); err != nil {
		vb.Field("RANK_NAMES", errors.GetMessage(err))
	}

	return vb.Build()
}

// Location resolves the reset time zone
func (s ScheduleConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// SlogLevel maps the configured level name, defaulting to info
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Ranks parses RankNames
func (c *Config) Ranks() (presentation.RankTable, error) {
	return presentation.ParseRanks(c.RankNames, c.RankFallback)
}
