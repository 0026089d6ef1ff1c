package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/catalog/postgres"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/manager"
	"github.com/badno/monito/internal/matching"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/pricing"
)

// loadConfig loads config.yaml from --config, falling back to the
// default search path, and finally to compiled-in defaults if neither
// can be read.
func loadConfig() *config.Config {
	if cfgFile != "" {
		cfg, err := config.LoadFrom(cfgFile)
		if err == nil {
			return cfg
		}
		color.Yellow("  Warning: could not load %s, using defaults", cfgFile)
		return config.DefaultConfig()
	}
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// app bundles everything a subcommand needs against a live database:
// the store, the normalizer, and the three domain engines composed
// over it.
type app struct {
	store    *postgres.Store
	norm     *normalize.Normalizer
	matching *matching.Engine
	pricing  *pricing.Engine
	manager  *manager.Manager
	log      *zap.Logger
}

// connect opens the Postgres pool, runs pending migrations, and wires
// up the matching, pricing, and catalog manager engines over it. The
// caller must call close() when done.
func connect(ctx context.Context, cfg *config.Config) (*app, error) {
	log, _ := zap.NewProduction()
	if log == nil {
		log = zap.NewNop()
	}

	pgCfg := postgres.ConfigFromEnv(cfg.Database.Postgres.UsernameEnv, cfg.Database.Postgres.PasswordEnv)
	pgCfg.Host = cfg.Database.Postgres.Host
	pgCfg.Port = cfg.Database.Postgres.Port
	pgCfg.Database = cfg.Database.Postgres.Database
	pgCfg.SSLMode = cfg.Database.Postgres.SSLMode
	pgCfg.MaxConns = cfg.Database.Postgres.MaxConns
	pgCfg.MinConns = cfg.Database.Postgres.MinConns

	store := postgres.New(pgCfg)
	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := store.RunMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	norm := normalize.New(cfg.Tables.StopWords, cfg.Tables.BrandAliases)
	matchingEngine := matching.New(store, norm, cfg.Matching, log)
	pricingEngine := pricing.New(store, cfg.Pricing, log)
	catalogManager := manager.New(store, matchingEngine, pricingEngine, log)

	return &app{
		store:    store,
		norm:     norm,
		matching: matchingEngine,
		pricing:  pricingEngine,
		manager:  catalogManager,
		log:      log,
	}, nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
	a.store.Close()
}

// asStore exposes the connected Postgres store as a catalog.Store, the
// interface every engine above was actually built against.
func (a *app) asStore() catalog.Store { return a.store }
