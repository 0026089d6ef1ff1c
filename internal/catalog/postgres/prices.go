package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/pkg/models"
)

// UpsertMasterProduct finds an existing active product by
// (standard_name, brand) or creates one, merging in non-empty fields.
func (s *Store) UpsertMasterProduct(ctx context.Context, fields catalog.UpsertFields) (uuid.UUID, error) {
	return s.upsertMasterProduct(ctx, fields.StandardName, fields.Brand, fields.Category, fields.Size, fields.Unit, fields.Description)
}

// RecordSupplierPrice upserts the (product, supplier, price_date) row.
// When the price changed, a PriceHistory row is appended; a brand new
// row is always logged with reason NEW_SUPPLIER.
func (s *Store) RecordSupplierPrice(ctx context.Context, in catalog.RecordPriceInput) (uuid.UUID, error) {
	priceDate := in.PriceDate
	if priceDate.IsZero() {
		priceDate = time.Now().UTC()
	}
	currency := in.Currency
	if currency == "" {
		currency = "IDR"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Internal, err, "begin price transaction")
	}
	defer tx.Rollback(ctx)

	var existingID uuid.UUID
	var oldPrice decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT price_id, price FROM supplier_prices
		WHERE product_id = $1 AND supplier_name = $2 AND price_date = $3
	`, in.ProductID, in.Supplier, priceDate.Format("2006-01-02")).Scan(&existingID, &oldPrice)

	newPrice := decimal.NewFromFloat(in.Price)

	switch err {
	case nil:
		if _, uerr := tx.Exec(ctx, `
			UPDATE supplier_prices SET price = $2, original_name = $3, last_seen = now()
			WHERE price_id = $1
		`, existingID, newPrice, in.OriginalName); uerr != nil {
			return uuid.Nil, errs.Wrap(errs.Internal, uerr, "update supplier price")
		}
		if !oldPrice.Equal(newPrice) {
			if herr := insertPriceHistory(ctx, tx, in.ProductID, in.Supplier, &oldPrice, newPrice, models.ChangeReasonPriceUpdate); herr != nil {
				return uuid.Nil, herr
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return uuid.Nil, errs.Wrap(errs.Internal, err, "commit price update")
		}
		return existingID, nil

	case pgx.ErrNoRows:
		id := uuid.New()
		if _, ierr := tx.Exec(ctx, `
			INSERT INTO supplier_prices (
				price_id, product_id, supplier_name, original_name, price, currency,
				price_date, unit, min_order_qty, confidence_score, source
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`, id, in.ProductID, in.Supplier, in.OriginalName, newPrice, currency,
			priceDate.Format("2006-01-02"), "", maxInt(in.MinOrderQty, 1), in.Confidence, string(in.Source)); ierr != nil {
			return uuid.Nil, errs.Wrap(errs.Internal, ierr, "insert supplier price")
		}
		if herr := insertPriceHistory(ctx, tx, in.ProductID, in.Supplier, nil, newPrice, models.ChangeReasonNewSupplier); herr != nil {
			return uuid.Nil, herr
		}
		if err := tx.Commit(ctx); err != nil {
			return uuid.Nil, errs.Wrap(errs.Internal, err, "commit price insert")
		}
		if s.Mirror != nil {
			_ = s.Mirror.InsertObservation(ctx, in.ProductID.String(), in.Supplier, newPrice, currency, priceDate)
		}
		return id, nil

	default:
		return uuid.Nil, errs.Wrap(errs.Internal, err, "lookup existing supplier price")
	}
}

func insertPriceHistory(ctx context.Context, tx pgx.Tx, productID uuid.UUID, supplier string, oldPrice *decimal.Decimal, newPrice decimal.Decimal, reason models.ChangeReason) error {
	var changePct *decimal.Decimal
	if oldPrice != nil && !oldPrice.IsZero() {
		pct := newPrice.Sub(*oldPrice).Div(*oldPrice).Mul(decimal.NewFromInt(100))
		changePct = &pct
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO price_history (history_id, product_id, supplier_name, old_price, new_price, change_percentage, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, uuid.New(), productID, supplier, oldPrice, newPrice, changePct, string(reason))
	if err != nil {
		return errs.Wrap(errs.Internal, err, "insert price history")
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// GetCurrentPrices returns prices observed within window (default 30
// days), cheapest first.
func (s *Store) GetCurrentPrices(ctx context.Context, productID uuid.UUID, window time.Duration) ([]models.SupplierPrice, error) {
	if window <= 0 {
		window = catalog.DefaultPriceWindow
	}
	cutoff := time.Now().UTC().Add(-window)

	rows, err := s.pool.Query(ctx, `
		SELECT price_id, product_id, supplier_name, original_name, price, currency,
		       price_date, unit, min_order_qty, confidence_score, source, last_seen
		FROM supplier_prices
		WHERE product_id = $1 AND price_date >= $2
		ORDER BY price ASC
	`, productID, cutoff.Format("2006-01-02"))
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query current prices")
	}
	defer rows.Close()

	var out []models.SupplierPrice
	for rows.Next() {
		p, err := scanSupplierPrice(rows)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan supplier price")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetBestPrice returns the cheapest current price for a product, or
// NotFound if none exist within the default window.
func (s *Store) GetBestPrice(ctx context.Context, productID uuid.UUID) (*models.SupplierPrice, error) {
	prices, err := s.GetCurrentPrices(ctx, productID, catalog.DefaultPriceWindow)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, errs.New(errs.NotFound, "no current prices for product "+productID.String())
	}
	return &prices[0], nil
}

func scanSupplierPrice(row pgx.Row) (models.SupplierPrice, error) {
	var p models.SupplierPrice
	var priceDate time.Time
	err := row.Scan(
		&p.PriceID, &p.ProductID, &p.SupplierName, &p.OriginalName, &p.Price, &p.Currency,
		&priceDate, &p.Unit, &p.MinOrderQty, &p.ConfidenceScore, &p.Source, &p.LastSeen,
	)
	p.PriceDate = priceDate
	return p, err
}
