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

// RecordMatch stores a and b in canonical order; if a match for this
// pair already exists (in either order) its ID is returned unchanged
// rather than inserting a duplicate.
func (s *Store) RecordMatch(ctx context.Context, a, b uuid.UUID, score float64, matchType models.MatchType, details catalog.MatchDetails) (uuid.UUID, error) {
	lo, hi := models.CanonicalPair(a, b)

	var existing uuid.UUID
	err := s.pool.QueryRow(ctx, `
		SELECT match_id FROM product_matches WHERE product_a_id = $1 AND product_b_id = $2
	`, lo, hi).Scan(&existing)
	if err == nil {
		return existing, nil
	}
	if err != pgx.ErrNoRows {
		return uuid.Nil, errs.Wrap(errs.Internal, err, "lookup existing match")
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO product_matches (
			match_id, product_a_id, product_b_id, similarity_score,
			name_similarity, brand_similarity, size_similarity, match_type
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, id, lo, hi, decimal.NewFromFloat(score),
		decimal.NewFromFloat(details.NameSimilarity), decimal.NewFromFloat(details.BrandSimilarity),
		decimal.NewFromFloat(details.SizeSimilarity), string(matchType))
	if err != nil {
		return uuid.Nil, errs.Wrap(errs.Internal, err, "insert product match")
	}
	return id, nil
}

// GetProductMatches returns non-rejected matches touching productID
// with similarity at or above minSimilarity.
func (s *Store) GetProductMatches(ctx context.Context, productID uuid.UUID, minSimilarity float64) ([]models.ProductMatch, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, product_a_id, product_b_id, similarity_score, name_similarity,
		       brand_similarity, size_similarity, match_type, reviewed, approved, reviewer, reviewed_at
		FROM product_matches
		WHERE (product_a_id = $1 OR product_b_id = $1)
		  AND similarity_score >= $2
		  AND match_type != 'REJECTED'
	`, productID, decimal.NewFromFloat(minSimilarity))
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query product matches")
	}
	defer rows.Close()
	return scanMatches(rows)
}

// GetUnreviewedMatches returns matches awaiting review with similarity
// at or above 0.7, highest-confidence first.
func (s *Store) GetUnreviewedMatches(ctx context.Context, limit int) ([]models.ProductMatch, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT match_id, product_a_id, product_b_id, similarity_score, name_similarity,
		       brand_similarity, size_similarity, match_type, reviewed, approved, reviewer, reviewed_at
		FROM product_matches
		WHERE reviewed = false AND similarity_score >= 0.7
		ORDER BY similarity_score DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "query unreviewed matches")
	}
	defer rows.Close()
	return scanMatches(rows)
}

// ApproveMatch marks a match reviewed and approved by reviewer.
func (s *Store) ApproveMatch(ctx context.Context, matchID uuid.UUID, reviewer string) error {
	cmd, err := s.pool.Exec(ctx, `
		UPDATE product_matches SET reviewed = true, approved = true, reviewer = $2, reviewed_at = $3
		WHERE match_id = $1
	`, matchID, reviewer, time.Now().UTC())
	if err != nil {
		return errs.Wrap(errs.Internal, err, "approve match")
	}
	if cmd.RowsAffected() == 0 {
		return errs.New(errs.NotFound, "match not found: "+matchID.String())
	}
	return nil
}

func scanMatches(rows pgx.Rows) ([]models.ProductMatch, error) {
	var out []models.ProductMatch
	for rows.Next() {
		var m models.ProductMatch
		var matchType string
		var reviewer string
		var reviewedAt *time.Time
		if err := rows.Scan(
			&m.MatchID, &m.ProductAID, &m.ProductBID, &m.SimilarityScore, &m.NameSimilarity,
			&m.BrandSimilarity, &m.SizeSimilarity, &matchType, &m.Reviewed, &m.Approved, &reviewer, &reviewedAt,
		); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "scan product match")
		}
		m.MatchType = models.MatchType(matchType)
		m.Reviewer = reviewer
		m.ReviewedAt = reviewedAt
		out = append(out, m)
	}
	return out, rows.Err()
}
