package matching

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/unitalgebra"
	"github.com/badno/monito/pkg/models"
)

// MatchCandidate is one scored candidate returned by FindMatches.
type MatchCandidate struct {
	Product         models.MasterProduct
	SimilarityScore float64
	MatchType       models.MatchType
	Details         catalog.MatchDetails
	ConfidenceLevel string
}

// ProcessStats is process_all's per-run counters.
type ProcessStats struct {
	ProductsProcessed int
	MatchesFound      int
	ExactMatches      int
	FuzzyMatches      int
	Errors            int
}

// AutoMergeSuggestion pairs a high-confidence unreviewed match with the
// two products it names, for an operator to confirm or reject.
type AutoMergeSuggestion struct {
	MatchID         uuid.UUID
	ProductA        models.MasterProduct
	ProductB        models.MasterProduct
	SimilarityScore float64
	MatchType       models.MatchType
	SuggestedAction string
	ConfidenceLevel string
}

// Engine finds and records candidate equivalences between
// MasterProducts. It holds no state of its own beyond its
// thresholds; every read and write goes through the Store.
type Engine struct {
	store catalog.Store
	norm  *normalize.Normalizer
	cfg   config.MatchingConfig
	log   *zap.Logger
}

// New builds an Engine over store, using norm for name/brand
// canonicalization and cfg's thresholds. A nil logger falls back to a
// no-op logger.
func New(store catalog.Store, norm *normalize.Normalizer, cfg config.MatchingConfig, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, norm: norm, cfg: cfg, log: log}
}

// FindMatches returns up to limit candidate matches for product. An
// exact match short-circuits fuzzy scoring entirely: if any exact
// matches exist they are returned alone, capped at limit.
func (e *Engine) FindMatches(ctx context.Context, product models.MasterProduct, limit int) ([]MatchCandidate, error) {
	e.log.Debug("finding matches", zap.String("product", product.StandardName))

	exact, err := e.findExactMatches(ctx, product)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		e.log.Info("found exact matches", zap.Int("count", len(exact)))
		if len(exact) > limit {
			exact = exact[:limit]
		}
		return exact, nil
	}

	candidates, err := e.categoryCandidates(ctx, product)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		e.log.Debug("no candidates in category", zap.String("category", product.Category))
		return nil, nil
	}

	var scored []MatchCandidate
	for _, candidate := range candidates {
		if candidate.ProductID == product.ProductID {
			continue
		}
		details, overall := e.score(product, candidate)
		if overall < e.cfg.FuzzyThreshold {
			continue
		}
		matchType := models.MatchTypeFuzzy
		if overall >= e.cfg.ExactThreshold {
			matchType = models.MatchTypeExact
		}
		scored = append(scored, MatchCandidate{
			Product:         candidate,
			SimilarityScore: overall,
			MatchType:       matchType,
			Details:         details,
			ConfidenceLevel: confidenceLevel(overall),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].SimilarityScore > scored[j].SimilarityScore })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	e.log.Info("found fuzzy matches", zap.Int("count", len(scored)))
	return scored, nil
}

// findExactMatches looks within product's category for candidates
// whose normalized name, normalized brand, and size all agree with
// product, per the exact-match gate.
func (e *Engine) findExactMatches(ctx context.Context, product models.MasterProduct) ([]MatchCandidate, error) {
	normalizedName := e.norm.Name(product.StandardName)

	candidates, err := e.store.SearchProducts(ctx, normalizedName, product.Category, 0)
	if err != nil {
		return nil, err
	}

	var exact []MatchCandidate
	for _, candidate := range candidates {
		if candidate.ProductID == product.ProductID {
			continue
		}
		if e.isExactMatch(product, candidate) {
			exact = append(exact, MatchCandidate{
				Product:         candidate,
				SimilarityScore: 1.0,
				MatchType:       models.MatchTypeExact,
				Details:         catalog.MatchDetails{NameSimilarity: 1.0, BrandSimilarity: 1.0, SizeSimilarity: 1.0},
				ConfidenceLevel: "high",
			})
		}
	}
	return exact, nil
}

// isExactMatch requires equal category, equal normalized name, equal
// normalized brand (both absent counts as equal), and sizes within
// ExactSizeTolerance of one another in the same unit family.
func (e *Engine) isExactMatch(a, b models.MasterProduct) bool {
	if a.Category != b.Category {
		return false
	}
	if e.norm.Name(a.StandardName) != e.norm.Name(b.StandardName) {
		return false
	}
	if e.norm.Brand(a.Brand) != e.norm.Brand(b.Brand) {
		return false
	}

	sizeA, unitA := sizeFloat(a), a.Unit
	sizeB, unitB := sizeFloat(b), b.Unit
	if sizeA == nil && sizeB == nil {
		return true
	}
	if sizeA == nil || sizeB == nil {
		return false
	}
	return unitalgebra.SizesEqual(*sizeA, unitA, *sizeB, unitB, e.cfg.ExactSizeTolerance)
}

// categoryCandidates fetches up to CandidateFetchLimit other products
// sharing product's category.
func (e *Engine) categoryCandidates(ctx context.Context, product models.MasterProduct) ([]models.MasterProduct, error) {
	limit := e.cfg.CandidateFetchLimit
	if limit <= 0 {
		limit = 100
	}
	return e.store.SearchProducts(ctx, "", product.Category, limit)
}

// score computes the detailed and overall similarity between two
// products using normalized names/brands and unit-aware sizes.
func (e *Engine) score(a, b models.MasterProduct) (catalog.MatchDetails, float64) {
	nameA, nameB := e.norm.Name(a.StandardName), e.norm.Name(b.StandardName)
	brandA, brandB := e.norm.Brand(a.Brand), e.norm.Brand(b.Brand)
	sizeA, sizeB := sizeFloat(a), sizeFloat(b)
	return detailedSimilarity(nameA, brandA, sizeA, a.Unit, nameB, brandB, sizeB, b.Unit)
}

func sizeFloat(p models.MasterProduct) *float64 {
	if p.Size == nil {
		return nil
	}
	f, _ := p.Size.Float64()
	return &f
}

// ProcessAll finds matches for every active product and records each
// one through the Store, skipping pairs that already exist. A single
// product's failure is logged and counted, never fatal to the batch.
func (e *Engine) ProcessAll(ctx context.Context, batchSize int) (ProcessStats, error) {
	var stats ProcessStats
	e.log.Info("starting batch processing for product matches")

	products, err := e.store.SearchProducts(ctx, "", "", 10000)
	if err != nil {
		return stats, err
	}

	for _, product := range products {
		matches, err := e.FindMatches(ctx, product, 5)
		if err != nil {
			e.log.Error("error processing product", zap.String("product_id", product.ProductID.String()), zap.Error(err))
			stats.Errors++
			continue
		}

		for _, m := range matches {
			if _, err := e.store.RecordMatch(ctx, product.ProductID, m.Product.ProductID, m.SimilarityScore, m.MatchType, m.Details); err != nil {
				e.log.Error("error recording match", zap.Error(err))
				stats.Errors++
				continue
			}
			stats.MatchesFound++
			if m.MatchType == models.MatchTypeExact {
				stats.ExactMatches++
			} else {
				stats.FuzzyMatches++
			}
		}

		stats.ProductsProcessed++
		if batchSize > 0 && stats.ProductsProcessed%batchSize == 0 {
			e.log.Info("batch processing progress", zap.Int("processed", stats.ProductsProcessed), zap.Int("total", len(products)))
		}
	}

	e.log.Info("batch processing completed",
		zap.Int("products_processed", stats.ProductsProcessed),
		zap.Int("matches_found", stats.MatchesFound),
		zap.Int("errors", stats.Errors))
	return stats, nil
}

// SuggestAutoMerges lists every unreviewed match at or above
// confidenceThreshold, resolving both products so a caller can render
// the suggestion without a second round trip.
func (e *Engine) SuggestAutoMerges(ctx context.Context, confidenceThreshold float64) ([]AutoMergeSuggestion, error) {
	unreviewed, err := e.store.GetUnreviewedMatches(ctx, 1000)
	if err != nil {
		return nil, err
	}

	var suggestions []AutoMergeSuggestion
	for _, match := range unreviewed {
		score, _ := match.SimilarityScore.Float64()
		if score < confidenceThreshold {
			continue
		}

		productA, err := e.store.GetProduct(ctx, match.ProductAID)
		if err != nil {
			e.log.Error("auto-merge: load product A failed", zap.Error(err))
			continue
		}
		productB, err := e.store.GetProduct(ctx, match.ProductBID)
		if err != nil {
			e.log.Error("auto-merge: load product B failed", zap.Error(err))
			continue
		}

		suggestions = append(suggestions, AutoMergeSuggestion{
			MatchID:         match.MatchID,
			ProductA:        *productA,
			ProductB:        *productB,
			SimilarityScore: score,
			MatchType:       match.MatchType,
			SuggestedAction: "auto_merge",
			ConfidenceLevel: confidenceLevel(score),
		})
	}

	e.log.Info("generated auto-merge suggestions", zap.Int("count", len(suggestions)))
	return suggestions, nil
}

// SearchByName is a thin pass-through to the Store's text search.
func (e *Engine) SearchByName(ctx context.Context, term string, limit int) ([]models.MasterProduct, error) {
	return e.store.SearchProducts(ctx, term, "", limit)
}

// GetSimilarProducts resolves productID then finds its matches. It
// returns an empty result, not an error, when the product doesn't
// exist, mirroring the original's "not found means no neighbors"
// behavior.
func (e *Engine) GetSimilarProducts(ctx context.Context, productID uuid.UUID, limit int) ([]MatchCandidate, error) {
	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		if kind, ok := errs.KindOf(err); ok && kind == errs.NotFound {
			return nil, nil
		}
		return nil, err
	}
	return e.FindMatches(ctx, *product, limit)
}
