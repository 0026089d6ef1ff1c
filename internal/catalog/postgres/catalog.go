package postgres

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/errs"
)

// BulkImport upserts the supplier and every record's product/price in
// sequence, isolating per-record errors so one bad row never aborts
// the batch (the original bulk import's try/except-per-row shape). Any
// per-record failures are returned together as a *multierror.Error
// alongside the stats that counted them; the batch itself never aborts
// on their account.
func (s *Store) BulkImport(ctx context.Context, supplier string, records []catalog.ImportRecord) (catalog.ImportStats, error) {
	var stats catalog.ImportStats
	var errsAccum *multierror.Error

	if _, err := s.CreateOrUpdateSupplier(ctx, supplier); err != nil {
		return stats, err
	}

	for _, rec := range records {
		var existing uuid.UUID
		err := s.pool.QueryRow(ctx, `
			SELECT product_id FROM master_products
			WHERE lower(standard_name) = lower($1) AND brand = $2 AND status = 'ACTIVE'
		`, rec.StandardName, rec.Brand).Scan(&existing)

		var productID uuid.UUID
		switch err {
		case nil:
			productID = existing
			stats.Updated++
		case pgx.ErrNoRows:
			id, uerr := s.upsertMasterProduct(ctx, rec.StandardName, rec.Brand, rec.Category, rec.Size, rec.Unit, "")
			if uerr != nil {
				stats.Errors++
				errsAccum = multierror.Append(errsAccum, errs.Wrap(errs.InvalidInput, uerr, "import record "+rec.StandardName))
				continue
			}
			productID = id
			stats.Created++
		default:
			stats.Errors++
			errsAccum = multierror.Append(errsAccum, errs.Wrap(errs.Internal, err, "lookup record "+rec.StandardName))
			continue
		}

		originalName := rec.OriginalName
		if originalName == "" {
			originalName = rec.StandardName
		}
		_, perr := s.RecordSupplierPrice(ctx, catalog.RecordPriceInput{
			ProductID:    productID,
			Supplier:     supplier,
			Price:        rec.Price,
			Currency:     rec.Currency,
			OriginalName: originalName,
			Confidence:   rec.Confidence,
		})
		if perr != nil {
			stats.Errors++
			errsAccum = multierror.Append(errsAccum, perr)
			continue
		}
		stats.Added++
	}

	return stats, errsAccum.ErrorOrNil()
}

// GetUnifiedCatalog aggregates best/worst price and supplier count per
// product over the default price window, sorted by savings percentage
// descending.
func (s *Store) GetUnifiedCatalog(ctx context.Context, category string, limit int) ([]catalog.UnifiedCatalogEntry, error) {
	if limit <= 0 {
		limit = 1000
	}
	cutoff := time.Now().UTC().Add(-catalog.DefaultPriceWindow).Format("2006-01-02")

	query := `
		SELECT mp.product_id, mp.standard_name, mp.brand, mp.category, mp.size, mp.unit,
		       MIN(sp.price) AS best_price, MAX(sp.price) AS worst_price,
		       COUNT(DISTINCT sp.supplier_name) AS suppliers_count
		FROM master_products mp
		JOIN supplier_prices sp ON sp.product_id = mp.product_id
		WHERE mp.status = 'ACTIVE' AND sp.price_date >= $1
	`
	args := []any{cutoff}
	if category != "" {
		query += " AND mp.category = $2"
		args = append(args, category)
	}
	query += `
		GROUP BY mp.product_id, mp.standard_name, mp.brand, mp.category, mp.size, mp.unit
		LIMIT ` + limitPlaceholder(len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query unified catalog")
	}
	defer rows.Close()

	var out []catalog.UnifiedCatalogEntry
	for rows.Next() {
		var e catalog.UnifiedCatalogEntry
		var size *decimal.Decimal
		var best, worst decimal.Decimal
		if err := rows.Scan(&e.ProductID, &e.StandardName, &e.Brand, &e.Category, &size, &e.Unit, &best, &worst, &e.SuppliersCount); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan unified catalog row")
		}
		if size != nil {
			f, _ := size.Float64()
			e.Size = &f
		}
		e.BestPrice, _ = best.Float64()
		e.WorstPrice, _ = worst.Float64()

		var bestSupplier string
		if err := s.pool.QueryRow(ctx, `
			SELECT supplier_name FROM supplier_prices WHERE product_id = $1 AND price = $2 LIMIT 1
		`, e.ProductID, best).Scan(&bestSupplier); err == nil {
			e.BestSupplier = bestSupplier
		}

		e.SavingsPercent = catalog.SavingsPercent(e.BestPrice, e.WorstPrice)

		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].SavingsPercent > out[j].SavingsPercent })
	return out, nil
}

func limitPlaceholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// GetPriceComparisonForProduct loads a product's current prices plus
// the derived best/worst/savings summary.
func (s *Store) GetPriceComparisonForProduct(ctx context.Context, productID uuid.UUID) (*catalog.PriceComparison, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	prices, err := s.GetCurrentPrices(ctx, productID, catalog.DefaultPriceWindow)
	if err != nil {
		return nil, err
	}
	comparison := &catalog.PriceComparison{Product: *product, Prices: prices, SuppliersCount: len(prices)}
	if len(prices) == 0 {
		return comparison, nil
	}

	best, worst := prices[0], prices[0]
	for _, p := range prices {
		if p.Price.LessThan(best.Price) {
			best = p
		}
		if p.Price.GreaterThan(worst.Price) {
			worst = p
		}
	}
	comparison.BestPrice = &best
	comparison.WorstPrice = &worst

	if worst.Price.GreaterThan(best.Price) {
		savings := worst.Price.Sub(best.Price).Div(worst.Price).Mul(decimal.NewFromInt(100))
		comparison.PotentialSavings, _ = savings.Float64()
	}
	return comparison, nil
}

// GetSystemStatistics reports the catalog-wide counters used by the
// operator dashboard.
func (s *Store) GetSystemStatistics(ctx context.Context) (catalog.SystemStatistics, error) {
	var stats catalog.SystemStatistics

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM master_products WHERE status = 'ACTIVE'`).Scan(&stats.TotalProducts); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count products")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE status = 'ACTIVE'`).Scan(&stats.TotalSuppliers); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count suppliers")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM supplier_prices`).Scan(&stats.TotalPrices); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count prices")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&stats.TotalCategories); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count categories")
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_matches WHERE reviewed = false`).Scan(&stats.PendingMatches); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count pending matches")
	}

	var lastUpdate *time.Time
	if err := s.pool.QueryRow(ctx, `SELECT MAX(last_seen) FROM supplier_prices`).Scan(&lastUpdate); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "max last_seen")
	}
	stats.LastPriceUpdate = lastUpdate

	weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM price_history WHERE change_date >= $1`, weekAgo).Scan(&stats.RecentPriceChanges); err != nil {
		return stats, errs.Wrap(errs.Internal, err, "count recent price changes")
	}

	return stats, nil
}
