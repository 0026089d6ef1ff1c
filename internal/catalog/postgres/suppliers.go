package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/pkg/models"
)

// CreateOrUpdateSupplier creates a supplier row on first sight and
// bumps its last_price_update on every subsequent call.
func (s *Store) CreateOrUpdateSupplier(ctx context.Context, name string) (models.Supplier, error) {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO suppliers (supplier_name, status, reliability_score, last_price_update)
		VALUES ($1, 'ACTIVE', 0, $2)
		ON CONFLICT (supplier_name) DO UPDATE SET last_price_update = $2
	`, name, now)
	if err != nil {
		return models.Supplier{}, errs.Wrap(errs.Internal, err, "create or update supplier")
	}

	var sup models.Supplier
	var status string
	var lastUpdate *time.Time
	err = s.pool.QueryRow(ctx, `
		SELECT supplier_name, status, reliability_score, last_price_update FROM suppliers WHERE supplier_name = $1
	`, name).Scan(&sup.SupplierName, &status, &sup.ReliabilityScore, &lastUpdate)
	if err != nil {
		return models.Supplier{}, errs.Wrap(errs.Internal, err, "reload supplier")
	}
	sup.Status = models.SupplierStatus(status)
	sup.LastPriceUpdate = lastUpdate
	return sup, nil
}

// GetSupplierPerformance computes how often a supplier holds the
// lowest current price across the products it quotes.
func (s *Store) GetSupplierPerformance(ctx context.Context, name string) (catalog.SupplierPerformance, error) {
	var reliability decimal.Decimal
	err := s.pool.QueryRow(ctx, `SELECT reliability_score FROM suppliers WHERE supplier_name = $1`, name).Scan(&reliability)
	if err == pgx.ErrNoRows {
		return catalog.SupplierPerformance{}, errs.New(errs.NotFound, "supplier not found: "+name)
	}
	if err != nil {
		return catalog.SupplierPerformance{}, errs.Wrap(errs.Internal, err, "load supplier")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supplier_prices WHERE supplier_name = $1`, name).Scan(&total); err != nil {
		return catalog.SupplierPerformance{}, errs.Wrap(errs.Internal, err, "count supplier prices")
	}

	var bestCount int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM supplier_prices sp
		WHERE sp.supplier_name = $1
		  AND sp.price = (SELECT MIN(price) FROM supplier_prices WHERE product_id = sp.product_id)
	`, name).Scan(&bestCount)
	if err != nil {
		return catalog.SupplierPerformance{}, errs.Wrap(errs.Internal, err, "count best-price products")
	}

	var competitiveness float64
	if total > 0 {
		competitiveness = 100 * float64(bestCount) / float64(total)
	}

	r, _ := reliability.Float64()
	return catalog.SupplierPerformance{
		SupplierName:         name,
		TotalProducts:        total,
		BestPriceProducts:    bestCount,
		PriceCompetitiveness: competitiveness,
		ReliabilityScore:     r,
	}, nil
}
