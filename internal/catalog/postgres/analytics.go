package postgres

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/pkg/models"
)

// GetPriceHistory returns productID's change history since the given
// time, oldest first, for trend analysis.
func (s *Store) GetPriceHistory(ctx context.Context, productID uuid.UUID, since time.Time) ([]models.PriceHistory, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT history_id, product_id, supplier_name, old_price, new_price, change_percentage, change_date, reason
		FROM price_history
		WHERE product_id = $1 AND change_date >= $2
		ORDER BY change_date ASC
	`, productID, since)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query price history")
	}
	defer rows.Close()

	var out []models.PriceHistory
	for rows.Next() {
		var h models.PriceHistory
		var reason string
		if err := rows.Scan(&h.HistoryID, &h.ProductID, &h.SupplierName, &h.OldPrice, &h.NewPrice, &h.ChangePercentage, &h.ChangeDate, &reason); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan price history row")
		}
		h.Reason = models.ChangeReason(reason)
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetSupplierCategoryPerformance breaks a supplier's performance down
// by product category: product count, how many of those it holds the
// best current price for, and its average quoted price.
func (s *Store) GetSupplierCategoryPerformance(ctx context.Context, supplierName string) (map[string]catalog.CategoryPerformance, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT mp.category, COUNT(DISTINCT mp.product_id), AVG(sp.price)
		FROM master_products mp
		JOIN supplier_prices sp ON sp.product_id = mp.product_id
		WHERE sp.supplier_name = $1
		GROUP BY mp.category
	`, supplierName)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query supplier category breakdown")
	}
	defer rows.Close()

	result := make(map[string]catalog.CategoryPerformance)
	for rows.Next() {
		var category string
		var count int
		var avgPrice decimal.Decimal
		if err := rows.Scan(&category, &count, &avgPrice); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan category row")
		}
		avg, _ := avgPrice.Float64()
		result[category] = catalog.CategoryPerformance{Category: category, ProductsCount: count, AvgPrice: avg}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for category, perf := range result {
		var bestCount int
		err := s.pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM master_products mp
			WHERE mp.category = $1
			  AND mp.product_id IN (
				SELECT sp.product_id FROM supplier_prices sp
				WHERE sp.supplier_name = $2
				  AND sp.price = (SELECT MIN(price) FROM supplier_prices WHERE product_id = sp.product_id)
			  )
		`, category, supplierName).Scan(&bestCount)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "count category best-price products")
		}
		perf.BestPriceProducts = bestCount
		if perf.ProductsCount > 0 {
			perf.Competitiveness = 100 * float64(bestCount) / float64(perf.ProductsCount)
		}
		result[category] = perf
	}

	return result, nil
}

// GetSupplierPriceVolatility returns the standard deviation of
// supplierName's change_percentage values over the given window, 0 if
// fewer than two samples exist.
func (s *Store) GetSupplierPriceVolatility(ctx context.Context, supplierName string, window time.Duration) (float64, error) {
	cutoff := time.Now().UTC().Add(-window)
	rows, err := s.pool.Query(ctx, `
		SELECT change_percentage FROM price_history
		WHERE supplier_name = $1 AND change_date >= $2 AND change_percentage IS NOT NULL
	`, supplierName, cutoff)
	if err != nil {
		return 0, errs.Wrap(errs.Internal, err, "query supplier price changes")
	}
	defer rows.Close()

	var changes []float64
	for rows.Next() {
		var pct decimal.Decimal
		if err := rows.Scan(&pct); err != nil {
			return 0, errs.Wrap(errs.Internal, err, "scan change_percentage")
		}
		f, _ := pct.Float64()
		changes = append(changes, f)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	if len(changes) < 2 {
		return 0, nil
	}

	var sum float64
	for _, c := range changes {
		sum += c
	}
	mean := sum / float64(len(changes))

	var variance float64
	for _, c := range changes {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(changes))

	return math.Sqrt(variance), nil
}

// GetMarketTrends aggregates every PriceHistory row in the given
// window into a single change-count/average/direction summary.
func (s *Store) GetMarketTrends(ctx context.Context, window time.Duration) (catalog.MarketTrends, error) {
	cutoff := time.Now().UTC().Add(-window)

	var trends catalog.MarketTrends
	var avgChange *decimal.Decimal
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       AVG(change_percentage),
		       COUNT(*) FILTER (WHERE change_percentage > 0),
		       COUNT(*) FILTER (WHERE change_percentage < 0)
		FROM price_history
		WHERE change_date >= $1
	`, cutoff).Scan(&trends.TotalChanges, &avgChange, &trends.PriceIncreases, &trends.PriceDecreases)
	if err != nil {
		return catalog.MarketTrends{}, errs.Wrap(errs.Internal, err, "query market trends")
	}
	if avgChange != nil {
		trends.AverageChange, _ = avgChange.Float64()
	}
	return trends, nil
}
