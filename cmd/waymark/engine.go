package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/waymark-ai/waymark"
	"github.com/waymark-ai/waymark/internal/config"
	"github.com/waymark-ai/waymark/internal/logging"
	"github.com/waymark-ai/waymark/pkg/adapters/file"
	loamAdapter "github.com/waymark-ai/waymark/pkg/adapters/loam"
	"github.com/waymark-ai/waymark/pkg/adapters/memory"
	redisAdapter "github.com/waymark-ai/waymark/pkg/adapters/redis"
	"github.com/waymark-ai/waymark/pkg/adapters/rest"
	"github.com/waymark-ai/waymark/pkg/adapters/sqlite"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/observability"
	"github.com/waymark-ai/waymark/pkg/ports"
)

// runtime bundles everything a command needs to drive the engine.
type runtime struct {
	engine   *waymark.Engine
	store    ports.Store
	source   ports.ArtifactSource
	config   *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	cleanup  func()
}

// buildRuntime wires the engine from configuration: store backend, artifact
// source, workflow table, metrics and locking.
func buildRuntime(cmd *cobra.Command) (*runtime, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(parseLevel(cfg.LogLevel))

	workflow := domain.DefaultWorkflow()
	if cfg.WorkflowFile != "" {
		workflow, err = domain.LoadWorkflow(cfg.WorkflowFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load workflow table: %w", err)
		}
	}

	cleanup := func() {}

	var store ports.Store
	var locker ports.DistributedLocker
	switch cfg.Store.Backend {
	case "memory":
		store = memory.NewStore()
	case "file":
		store = file.New(cfg.Store.Path)
	case "sqlite":
		s, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		store = s
		cleanup = func() { _ = s.Close() }
	case "redis":
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Store.Redis.Address,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		s := redisAdapter.NewFromClient(client, redisAdapter.WithTTL(cfg.Store.Redis.TTL))
		store = s
		locker = redisAdapter.NewLocker(client, "waymark:")
		cleanup = func() { _ = s.Close() }
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var source ports.ArtifactSource
	switch cfg.Source.Backend {
	case "memory":
		source = memory.NewSource()
	case "loam":
		source, err = loamAdapter.Open(cfg.Source.Path)
		if err != nil {
			cleanup()
			return nil, err
		}
	case "rest":
		var opts []rest.Option
		if cfg.Source.Token != "" {
			opts = append(opts, rest.WithBearerToken(cfg.Source.Token))
		}
		source = rest.New(cfg.Source.URL, opts...)
	default:
		cleanup()
		return nil, fmt.Errorf("unknown source backend %q", cfg.Source.Backend)
	}

	registry := prometheus.NewRegistry()

	engineOpts := []waymark.Option{
		waymark.WithWorkflow(workflow),
		waymark.WithLogger(logger),
	}
	if cfg.Server.Metrics {
		engineOpts = append(engineOpts, waymark.WithMetrics(observability.New(registry)))
	}
	if locker != nil {
		engineOpts = append(engineOpts,
			waymark.WithDistributedLocker(locker),
			waymark.WithLockTTL(cfg.Lock.TTL),
		)
	}

	engine, err := waymark.New(store, source, engineOpts...)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &runtime{
		engine:   engine,
		store:    store,
		source:   source,
		config:   cfg,
		logger:   logger,
		registry: registry,
		cleanup:  cleanup,
	}, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
