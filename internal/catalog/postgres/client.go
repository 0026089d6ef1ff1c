// Package postgres is the Postgres-backed catalog.Store: master
// products, supplier prices, price history, suppliers, matches and
// categories, all behind pgx and golang-migrate.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/badno/monito/internal/catalog/clickhouse"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds Postgres connection configuration.
type Config struct {
	Host        string
	Port        int
	Database    string
	Username    string
	Password    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
	HealthCheck time.Duration
}

// DefaultConfig returns connection pool defaults suited to a batch
// ingestion workload.
func DefaultConfig() *Config {
	return &Config{
		Host:        "localhost",
		Port:        5432,
		Database:    "monito",
		SSLMode:     "prefer",
		MaxConns:    25,
		MinConns:    5,
		MaxConnLife: time.Hour,
		MaxConnIdle: 30 * time.Minute,
		HealthCheck: time.Minute,
	}
}

// ConfigFromEnv builds a Config from environment variables for the
// credential fields, leaving everything else at its default.
func ConfigFromEnv(usernameEnv, passwordEnv string) *Config {
	cfg := DefaultConfig()
	cfg.Username = os.Getenv(usernameEnv)
	cfg.Password = os.Getenv(passwordEnv)
	return cfg
}

// Store is the Postgres implementation of catalog.Store. Mirror is
// optional; when set, each newly inserted price row is also sent to the
// ClickHouse analytics mirror on a best-effort basis. In-place updates
// of an existing row are not mirrored.
type Store struct {
	pool   *pgxpool.Pool
	config *Config
	Mirror *clickhouse.Client
}

// New creates a disconnected Store; call Connect before use.
func New(cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Store{config: cfg}
}

// Connect opens the pool and verifies connectivity.
func (s *Store) Connect(ctx context.Context) error {
	connString := s.buildConnectionString()

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}

	poolConfig.MaxConns = s.config.MaxConns
	poolConfig.MinConns = s.config.MinConns
	poolConfig.MaxConnLifetime = s.config.MaxConnLife
	poolConfig.MaxConnIdleTime = s.config.MaxConnIdle
	poolConfig.HealthCheckPeriod = s.config.HealthCheck

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	s.pool = pool
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Pool returns the underlying pgx pool for callers that need raw
// access (migrations tooling, diagnostics).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Ping checks that the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return fmt.Errorf("database not connected")
	}
	return s.pool.Ping(ctx)
}

// Stats returns pool connection statistics.
func (s *Store) Stats() *pgxpool.Stat {
	if s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

// RunMigrations applies all pending schema migrations.
func (s *Store) RunMigrations() error {
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, s.buildConnectionString())
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// MigrationVersion reports the currently applied schema version.
func (s *Store) MigrationVersion() (uint, bool, error) {
	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, false, fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, s.buildConnectionString())
	if err != nil {
		return 0, false, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	return m.Version()
}

func (s *Store) buildConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.config.Username,
		s.config.Password,
		s.config.Host,
		s.config.Port,
		s.config.Database,
		s.config.SSLMode,
	)
}
