package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"hexflow/internal/canvas"
	"hexflow/internal/config"
	"hexflow/internal/health"
	"hexflow/internal/seed"
	"hexflow/internal/store"
	"hexflow/internal/store/memory"
	"hexflow/internal/store/sqlite"
)

// flags are the command line overrides shared by every command.
type flags struct {
	configPath  string
	dbPath      string
	metricsAddr string
	seedPath    string
	memory      bool
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.dbPath != "" {
		cfg.Storage.Path = f.dbPath
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	return cfg, nil
}

// openStore opens the graph store and applies the seed file, if any. The
// returned close function is never nil.
func openStore(ctx context.Context, cfg *config.Config, f flags) (store.Graph, func() error, error) {
	var (
		st      store.Graph
		closeFn = func() error { return nil }
	)
	if f.memory {
		st = memory.New()
	} else {
		db, err := sqlite.New(cfg.Storage.Path)
		if err != nil {
			return nil, closeFn, err
		}
		st, closeFn = db, db.Close
	}

	if f.seedPath != "" {
		g, err := seed.Load(f.seedPath)
		if err != nil {
			closeFn()
			return nil, func() error { return nil }, err
		}
		if err := g.Apply(ctx, st); err != nil {
			closeFn()
			return nil, func() error { return nil }, fmt.Errorf("failed to apply seed %s: %w", f.seedPath, err)
		}
	}
	return st, closeFn, nil
}

func canvasOptions(cfg *config.Config) canvas.Options {
	opts := canvas.DefaultOptions()
	opts.Layout = cfg.Layout()
	opts.Curvature = cfg.Canvas.Curvature
	if cfg.Canvas.Seed != 0 {
		opts.Seed = cfg.Canvas.Seed
	}
	return opts
}

// newHistory picks the heartbeat history backend. An unreachable Redis
// falls back to memory.
func newHistory(ctx context.Context, cfg *config.Config) (health.History, func() error) {
	size := cfg.Health.HistorySize
	if cfg.Health.History != "redis" {
		return health.NewMemoryHistory(size), func() error { return nil }
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Health.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Failed to connect to redis at %s, keeping history in memory: %v", cfg.Health.RedisAddr, err)
		client.Close()
		return health.NewMemoryHistory(size), func() error { return nil }
	}
	return health.NewRedisHistory(client, size), client.Close
}

func newMonitor(ctx context.Context, cfg *config.Config, st store.Graph) (*health.Monitor, func() error) {
	history, closeHistory := newHistory(ctx, cfg)
	m := health.NewMonitor(st, health.NewHTTPChecker(), history, cfg.HealthSettings())
	m.Writer = st
	return m, closeHistory
}
