package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/elilinden/Support-bot/internal/api"
	"github.com/elilinden/Support-bot/internal/audit"
	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/config"
	"github.com/elilinden/Support-bot/internal/db"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
	"github.com/elilinden/Support-bot/internal/session"
	"github.com/elilinden/Support-bot/internal/upload"
)

// createCoachFromConfig builds the model collaborator and the coach.
func createCoachFromConfig(cfg *config.Config, logger *zap.Logger) (*coach.Coach, llm.Health, error) {
	opts := cfg.LLMOptions()
	provider, err := llm.NewProvider(opts, logger)
	if err != nil {
		return nil, llm.Health{}, fmt.Errorf("creating model provider: %w", err)
	}
	c := coach.New(provider, coach.Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
	}, logger.Named("coach"))
	return c, llm.CheckHealth(opts), nil
}

// backend is an opened session store with the resources behind it.
type backend struct {
	store   session.Store
	audit   *audit.Store
	closers []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openBackend opens the configured session store, wrapped in an LRU cache
// when store.cache_size is set. The SQLite database in data_dir also holds
// the turn audit trail, whatever the session backend.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backend, error) {
	b := &backend{}

	var database *db.DB
	if cfg.DataDir != "" {
		var err error
		database, err = db.Open(cfg.DBPath())
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		b.closers = append(b.closers, func() { database.Close() })
		b.audit = audit.NewStore(database)
	}

	var store session.Store
	switch cfg.Store.Backend {
	case config.StoreMemory:
		store = session.NewMemoryStore()
	case config.StoreSQLite:
		if database == nil {
			b.Close()
			return nil, fmt.Errorf("the sqlite backend needs data_dir")
		}
		store = session.NewSQLiteStore(database)
	case config.StoreRedis:
		client, err := session.ConnectRedis(ctx, cfg.Store.RedisURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { client.Close() })
		store = session.NewRedisStore(client)
	case config.StorePostgres:
		pool, err := session.ConnectPostgres(ctx, cfg.Store.PostgresURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		store = session.NewPostgresStore(pool)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Store.CacheSize > 0 {
		cached, err := session.NewCachedStore(store, cfg.Store.CacheSize)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("creating session cache: %w", err)
		}
		store = cached
	}
	b.store = store

	logger.Debug("session store ready",
		zap.String("backend", string(cfg.Store.Backend)),
		zap.Int("cache_size", cfg.Store.CacheSize),
		zap.Bool("audit", b.audit != nil))
	return b, nil
}

// createService wires the coaching service over an opened backend.
func createService(cfg *config.Config, c *coach.Coach, health llm.Health, b *backend, logger *zap.Logger) (*api.Service, error) {
	uploads, err := upload.New(upload.Options{
		MaxChars:        cfg.Upload.MaxChars,
		AllowedPatterns: cfg.Upload.AllowedPatterns,
	})
	if err != nil {
		return nil, err
	}
	return api.NewService(c, b.store, b.audit, uploads, api.Options{
		DefaultTone:   prompts.Tone(cfg.DefaultTone),
		DefaultCounty: cfg.DefaultCounty,
		Health:        health,
	}, logger.Named("api")), nil
}

// loadService validates the config and builds everything a command needs
// to run turns against stored sessions.
func loadService(ctx context.Context) (*api.Service, *backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	c, health, err := createCoachFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	svc, err := createService(cfg, c, health, b, logger)
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return svc, b, nil
}
