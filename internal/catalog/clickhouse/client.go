// Package clickhouse mirrors supplier price observations into
// ClickHouse for analytics queries that would be too slow against the
// Postgres source of truth (time-windowed trend and position queries).
package clickhouse

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/shopspring/decimal"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Secure   bool
	Debug    bool
}

// DefaultConfig returns sensible local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "monito",
		Secure:   false,
		Debug:    false,
	}
}

// ConfigFromEnv builds a Config from environment variables for the
// credential fields.
func ConfigFromEnv(usernameEnv, passwordEnv string) *Config {
	cfg := DefaultConfig()
	cfg.Username = os.Getenv(usernameEnv)
	cfg.Password = os.Getenv(passwordEnv)
	return cfg
}

// Client wraps a ClickHouse connection used as a write-through mirror.
type Client struct {
	conn   driver.Conn
	config *Config
}

// NewClient creates a disconnected Client; call Connect before use.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Client{config: cfg}
}

// Connect opens the connection and verifies it with a ping.
func (c *Client) Connect(ctx context.Context) error {
	protocol := clickhouse.Native
	if c.config.Secure {
		protocol = clickhouse.HTTP
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)},
		Auth: clickhouse.Auth{
			Database: c.config.Database,
			Username: c.config.Username,
			Password: c.config.Password,
		},
		Protocol: protocol,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout:     10 * time.Second,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
	if c.config.Debug {
		options.Debug = true
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return fmt.Errorf("open clickhouse connection: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping clickhouse: %w", err)
	}

	c.conn = conn
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Conn returns the underlying driver connection.
func (c *Client) Conn() driver.Conn { return c.conn }

// Ping checks the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return fmt.Errorf("clickhouse not connected")
	}
	return c.conn.Ping(ctx)
}

// InitSchema creates the price_observations table and its two rollup
// materialized views (daily min/max/avg, and cross-supplier position).
func (c *Client) InitSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS price_observations (
			product_id String,
			supplier_name String,
			price Decimal(14, 2),
			currency String DEFAULT 'IDR',
			observed_at DateTime64(3),
			observed_date Date
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(observed_date)
		ORDER BY (product_id, supplier_name, observed_at)
		TTL observed_date + INTERVAL 2 YEAR`,

		`CREATE MATERIALIZED VIEW IF NOT EXISTS price_daily_mv
		ENGINE = SummingMergeTree()
		PARTITION BY toYYYYMM(date)
		ORDER BY (product_id, supplier_name, date)
		AS SELECT
			product_id,
			supplier_name,
			toDate(observed_at) as date,
			min(price) as min_price,
			max(price) as max_price,
			avg(price) as avg_price,
			count() as observation_count
		FROM price_observations
		GROUP BY product_id, supplier_name, date`,

		`CREATE MATERIALIZED VIEW IF NOT EXISTS price_position_mv
		ENGINE = SummingMergeTree()
		PARTITION BY toYYYYMM(date)
		ORDER BY (product_id, date)
		AS SELECT
			product_id,
			toDate(observed_at) as date,
			min(price) as market_min,
			max(price) as market_max,
			avg(price) as market_avg,
			count(DISTINCT supplier_name) as supplier_count
		FROM price_observations
		GROUP BY product_id, date`,
	}

	for _, q := range queries {
		if err := c.conn.Exec(ctx, q); err != nil {
			return fmt.Errorf("execute schema query: %w", err)
		}
	}
	return nil
}

// InsertObservation appends one row to price_observations. Failures
// are the caller's to decide on; the Postgres write that triggers this
// mirror call has already committed.
func (c *Client) InsertObservation(ctx context.Context, productID, supplier string, price decimal.Decimal, currency string, observedAt time.Time) error {
	if c.conn == nil {
		return fmt.Errorf("clickhouse not connected")
	}
	return c.conn.Exec(ctx, `
		INSERT INTO price_observations (product_id, supplier_name, price, currency, observed_at, observed_date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, productID, supplier, price, currency, observedAt, observedAt)
}

// ObservationRecord is one row of a batched InsertObservations call.
type ObservationRecord struct {
	ProductID    string
	SupplierName string
	Price        decimal.Decimal
	Currency     string
	ObservedAt   time.Time
}

// InsertObservations bulk-appends via PrepareBatch, the efficient path
// for syncer-driven backfills.
func (c *Client) InsertObservations(ctx context.Context, records []ObservationRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (product_id, supplier_name, price, currency, observed_at, observed_date)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		observedDate := r.ObservedAt.Truncate(24 * time.Hour)
		if err := batch.Append(r.ProductID, r.SupplierName, r.Price, r.Currency, r.ObservedAt, observedDate); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	return batch.Send()
}

// GetObservationCount returns the total number of mirrored rows.
func (c *Client) GetObservationCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := c.conn.QueryRow(ctx, "SELECT count() FROM price_observations").Scan(&count); err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return count, nil
}
