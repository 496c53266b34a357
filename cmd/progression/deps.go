package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/guild-progression/internal/config"
	"github.com/KirkDiggler/guild-progression/internal/metrics"
	"github.com/KirkDiggler/guild-progression/internal/orchestrators/activity"
	"github.com/KirkDiggler/guild-progression/internal/orchestrators/progression"
	"github.com/KirkDiggler/guild-progression/internal/pkg/clock"
	"github.com/KirkDiggler/guild-progression/internal/pkg/idgen"
	"github.com/KirkDiggler/guild-progression/internal/postgres"
	redisclient "github.com/KirkDiggler/guild-progression/internal/redis"
	dailycounter "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter"
	"github.com/KirkDiggler/guild-progression/internal/repositories/player"
)

// app holds everything a command needs
type app struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	bus     events.EventBus

	players  player.Repository
	counters dailycounter.Repository

	progression progression.Service
	activity    activity.Service

	closers []func()
}

// loadConfig reads the environment and applies flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if storeBackend != "" || logLevel != "" {
		if storeBackend != "" {
			cfg.Store.Backend = storeBackend
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	setupLogging(cfg.Log.SlogLevel())
	return cfg, nil
}

// newApp connects the configured store and builds the orchestrators
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:     cfg,
		metrics: metrics.New(),
		bus:     events.NewBus(),
	}

	if err := a.connectStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	ranks, err := cfg.Ranks()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.progression, err = progression.NewOrchestrator(&progression.Config{
		PlayerRepo:    a.players,
		EventBus:      a.bus,
		DiceRoller:    dice.DefaultRoller,
		CounterRepo:   a.counters,
		Metrics:       a.metrics,
		Ranks:         ranks,
		RewardBaseExp: cfg.Reward.BaseExp,
		RewardCoinDie: cfg.Reward.CoinDie,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create progression orchestrator: %w", err)
	}

	a.activity, err = activity.NewOrchestrator(&activity.Config{
		CounterRepo: a.counters,
		Clock:       clock.New(),
		IDGenerator: idgen.NewUUID("reset"),
		Metrics:     a.metrics,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create activity orchestrator: %w", err)
	}

	return a, nil
}

func (a *app) connectStore(ctx context.Context) error {
	switch a.cfg.Store.Backend {
	case config.StoreRedis:
		client, err := newRedisClient(a.cfg.Store)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		if err := redisclient.Ping(ctx, client); err != nil {
			return err
		}

		if a.players, err = player.NewRedis(&player.RedisConfig{Client: client}); err != nil {
			return err
		}
		if a.counters, err = dailycounter.NewRedis(&dailycounter.RedisConfig{Client: client}); err != nil {
			return err
		}

	case config.StorePostgres:
		pool, err := postgres.Connect(ctx, a.cfg.Store.PostgresDSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pool.Close)

		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		if a.players, err = player.NewPostgres(&player.PostgresConfig{DB: pool}); err != nil {
			return err
		}
		if a.counters, err = dailycounter.NewPostgres(&dailycounter.PostgresConfig{DB: pool}); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}

	slog.Debug("store connected",
		"backend", a.cfg.Store.Backend,
		"redis_cluster", len(a.cfg.Store.RedisClusterAddrs) > 0)
	return nil
}

// newRedisClient builds a cluster client when cluster addresses are
// configured and a single-node client otherwise
func newRedisClient(store config.StoreConfig) (redisclient.Client, error) {
	opts := &redisclient.Options{PoolSize: store.RedisPoolSize}
	if len(store.RedisClusterAddrs) > 0 {
		return redisclient.NewClusterClient(store.RedisClusterAddrs, opts)
	}
	return redisclient.NewClient(store.RedisAddr, opts)
}

// Close releases store connections
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// setup loads config and builds the app for one command run
func setup(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg)
}
