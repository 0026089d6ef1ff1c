package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// SyncResult reports the outcome of one sync run.
type SyncResult struct {
	RecordsSynced int
	StartTime     time.Time
	EndTime       time.Time
	Errors        []string
}

// Syncer replicates supplier_prices rows from Postgres into the
// ClickHouse mirror in batches, independent of the per-write mirror
// calls Store.RecordSupplierPrice makes (this covers backfills and
// catch-up after the mirror was unreachable).
type Syncer struct {
	pgPool *pgxpool.Pool
	ch     *Client
}

// NewSyncer wires a Postgres pool and a connected ClickHouse client.
func NewSyncer(pgPool *pgxpool.Pool, ch *Client) *Syncer {
	return &Syncer{pgPool: pgPool, ch: ch}
}

// SyncPriceObservations copies every supplier_prices row with
// last_seen >= since into ClickHouse, 10000 rows per batch.
func (s *Syncer) SyncPriceObservations(ctx context.Context, since time.Time) (*SyncResult, error) {
	result := &SyncResult{StartTime: time.Now()}

	rows, err := s.pgPool.Query(ctx, `
		SELECT product_id, supplier_name, price, currency, last_seen
		FROM supplier_prices
		WHERE last_seen >= $1
		ORDER BY last_seen
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query postgres: %w", err)
	}
	defer rows.Close()

	var records []ObservationRecord
	for rows.Next() {
		var productID uuid.UUID
		var supplier, currency string
		var price decimal.Decimal
		var observedAt time.Time
		if err := rows.Scan(&productID, &supplier, &price, &currency, &observedAt); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("scan error: %v", err))
			continue
		}
		records = append(records, ObservationRecord{
			ProductID:    productID.String(),
			SupplierName: supplier,
			Price:        price,
			Currency:     currency,
			ObservedAt:   observedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if len(records) == 0 {
		result.EndTime = time.Now()
		return result, nil
	}

	const batchSize = 10000
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]
		if err := s.ch.InsertObservations(ctx, batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch insert error: %v", err))
			continue
		}
		result.RecordsSynced += len(batch)
	}

	result.EndTime = time.Now()
	return result, nil
}

// SyncAll replicates every row ever written.
func (s *Syncer) SyncAll(ctx context.Context) (*SyncResult, error) {
	return s.SyncPriceObservations(ctx, time.Time{})
}

// SyncRecent replicates only the last N days.
func (s *Syncer) SyncRecent(ctx context.Context, days int) (*SyncResult, error) {
	since := time.Now().AddDate(0, 0, -days)
	return s.SyncPriceObservations(ctx, since)
}

// GetLastSyncTime returns the newest observed_at currently mirrored,
// or the zero time if the mirror is empty.
func (s *Syncer) GetLastSyncTime(ctx context.Context) (time.Time, error) {
	var lastTime time.Time
	if err := s.ch.conn.QueryRow(ctx, "SELECT max(observed_at) FROM price_observations").Scan(&lastTime); err != nil {
		return time.Time{}, nil
	}
	return lastTime, nil
}

// SyncIncremental replicates only rows written since the last sync,
// with a one-minute overlap to tolerate clock skew between writers.
func (s *Syncer) SyncIncremental(ctx context.Context) (*SyncResult, error) {
	lastSync, err := s.GetLastSyncTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("get last sync time: %w", err)
	}
	if !lastSync.IsZero() {
		lastSync = lastSync.Add(-1 * time.Minute)
	}
	return s.SyncPriceObservations(ctx, lastSync)
}

// SyncStats reports row counts and date ranges on both sides of the
// mirror, for a dashboard drift check.
type SyncStats struct {
	TotalPGRecords int64
	TotalCHRecords uint64
	OldestPGRecord time.Time
	NewestPGRecord time.Time
	OldestCHRecord time.Time
	NewestCHRecord time.Time
}

// GetSyncStats compares the two stores' record counts and date ranges.
func (s *Syncer) GetSyncStats(ctx context.Context) (*SyncStats, error) {
	stats := &SyncStats{}

	if err := s.pgPool.QueryRow(ctx, "SELECT COUNT(*) FROM supplier_prices").Scan(&stats.TotalPGRecords); err != nil {
		return nil, fmt.Errorf("count postgres records: %w", err)
	}

	var oldest, newest *time.Time
	s.pgPool.QueryRow(ctx, "SELECT MIN(last_seen), MAX(last_seen) FROM supplier_prices").Scan(&oldest, &newest)
	if oldest != nil {
		stats.OldestPGRecord = *oldest
	}
	if newest != nil {
		stats.NewestPGRecord = *newest
	}

	chCount, err := s.ch.GetObservationCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count clickhouse records: %w", err)
	}
	stats.TotalCHRecords = chCount

	s.ch.conn.QueryRow(ctx, "SELECT min(observed_at), max(observed_at) FROM price_observations").Scan(&stats.OldestCHRecord, &stats.NewestCHRecord)

	return stats, nil
}
