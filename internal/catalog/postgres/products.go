package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/pkg/models"
)

// UpsertMasterProduct inserts a new master product or, when an
// existing ACTIVE row matches on (lower(standard_name), brand),
// merges in the caller's size/unit/description without clobbering
// non-empty existing fields (the find-or-create pattern the catalog
// was originally built around).
func (s *Store) upsertMasterProduct(ctx context.Context, standardName, brand, category string, size *float64, unit, description string) (uuid.UUID, error) {
	var existing uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT product_id FROM master_products
		WHERE lower(standard_name) = lower($1) AND brand = $2 AND status = 'ACTIVE'
	`, standardName, brand).Scan(&existing)

	if err == nil {
		_, uerr := s.pool.Exec(ctx, `
			UPDATE master_products SET
				category = CASE WHEN category = 'general' THEN $2 ELSE category END,
				size = COALESCE(size, $3),
				unit = COALESCE(NULLIF(unit, ''), $4),
				description = COALESCE(NULLIF(description, ''), $5),
				updated_at = now()
			WHERE product_id = $1
		`, existing, category, sizeParam(size), unit, description)
		if uerr != nil {
			return uuid.Nil, errs.Wrap(errs.Internal, uerr, "update master product")
		}
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, errs.Wrap(errs.Internal, err, "lookup master product")
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO master_products (product_id, standard_name, brand, category, size, unit, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'ACTIVE')
	`, id, standardName, brand, category, sizeParam(size), unit, description)
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Internal, err, "insert master product")
	}

	if _, cerr := s.pool.Exec(ctx, `
		INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING
	`, category); cerr != nil {
		return uuid.Nil, errs.Wrap(errs.Internal, cerr, "auto-create category")
	}

	return id, nil
}

func sizeParam(size *float64) any {
	if size == nil {
		return nil
	}
	return *size
}

// GetProduct loads a single master product by ID.
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*models.MasterProduct, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT product_id, standard_name, brand, category, size, unit, description,
		       status, merged_into, created_at, updated_at
		FROM master_products WHERE product_id = $1
	`, id)
	p, err := scanProduct(row)
	if err == pgx.ErrNoRows {
		return nil, errs.New(errs.NotFound, "product not found: "+id.String())
	}
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "scan product")
	}
	return p, nil
}

// SearchProducts matches standard_name by substring and, when given,
// filters to a single category.
func (s *Store) SearchProducts(ctx context.Context, term, category string, limit int) ([]models.MasterProduct, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT product_id, standard_name, brand, category, size, unit, description,
		       status, merged_into, created_at, updated_at
		FROM master_products
		WHERE status = 'ACTIVE'
	`
	args := []any{}
	argn := 1
	if term != "" {
		query += fmt.Sprintf(" AND lower(standard_name) LIKE $%d", argn)
		args = append(args, "%"+strings.ToLower(term)+"%")
		argn++
	}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argn)
		args = append(args, category)
		argn++
	}
	query += fmt.Sprintf(" ORDER BY standard_name LIMIT $%d", argn)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "search products")
	}
	defer rows.Close()

	var out []models.MasterProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan product row")
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// MergeProducts marks source MERGED pointing at target and moves its
// supplier prices to target; product_matches rows are left as they
// are. Runs in a single transaction.
func (s *Store) MergeProducts(ctx context.Context, sourceID, targetID uuid.UUID) error {
	if sourceID == targetID {
		return errs.New(errs.InvalidInput, "cannot merge a product into itself")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "begin merge transaction")
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		UPDATE master_products SET status = 'MERGED', merged_into = $2, updated_at = now()
		WHERE product_id = $1 AND status = 'ACTIVE'
	`, sourceID, targetID)
	if err != nil {
		return errs.Wrap(errs.Internal, err, "mark source merged")
	}
	if cmd.RowsAffected() == 0 {
		var status string
		if err := tx.QueryRow(ctx, `
			SELECT status FROM master_products WHERE product_id = $1
		`, sourceID).Scan(&status); err != nil {
			if err == pgx.ErrNoRows {
				return errs.New(errs.NotFound, "source product not found")
			}
			return errs.Wrap(errs.Internal, err, "lookup source product")
		}
		return errs.New(errs.MergeConflict, "source product is not active: "+status)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE supplier_prices SET product_id = $2 WHERE product_id = $1
	`, sourceID, targetID); err != nil {
		// supplier_prices has a (product_id, supplier_name, price_date) unique
		// constraint; a direct conflict here means target already has that
		// day's price, so the whole merge is rolled back and no row is lost.
		return errs.Wrap(errs.MergeConflict, err, "reparent supplier prices")
	}

	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(errs.Internal, err, "commit merge")
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.MasterProduct, error) {
	var p models.MasterProduct
	var brand, unit, description string
	var size *decimal.Decimal
	var status string
	var mergedInto *uuid.UUID

	if err := row.Scan(
		&p.ProductID, &p.StandardName, &brand, &p.Category, &size, &unit, &description,
		&status, &mergedInto, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	p.Brand = brand
	p.Unit = unit
	p.Description = description
	p.Size = size
	p.Status = models.ProductStatus(status)
	p.MergedInto = mergedInto
	return &p, nil
}
