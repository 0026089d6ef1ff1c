// Package pipeline runs ingestion concurrently: one task per input
// file, each running the preprocessor then the data adapter
// single-threaded internally, with stage outputs flowing into the
// Catalog Store through a bounded worker pool. Query-path
// operations (matching, pricing, the catalog manager) are not run
// here — they execute on the caller's own goroutine.
package pipeline

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/badno/monito/internal/adapter"
	"github.com/badno/monito/internal/catalog"
	"github.com/badno/monito/internal/config"
	"github.com/badno/monito/internal/errs"
	"github.com/badno/monito/internal/normalize"
	"github.com/badno/monito/internal/preprocessor"
)

// FileTask is one file to ingest: its path and the supplier its
// records should be attributed to.
type FileTask struct {
	Path     string
	Supplier string
}

// FileResult is one task's outcome. Err is set only for whole-file
// failures (a ParseFailure or internal error); per-record problems are
// folded into Stats instead and never fail the task.
type FileResult struct {
	Task  FileTask
	Stats catalog.ImportStats
	Err   error
}

// Runner drives a bounded worker pool over a batch of FileTasks.
type Runner struct {
	store      catalog.Store
	norm       *normalize.Normalizer
	cfg        config.PreprocessorConfig
	categories map[string]string
	workers    int
	log        *zap.Logger
}

// New builds a Runner with workers concurrent slots (at least 1). A
// nil logger falls back to a no-op logger.
func New(store catalog.Store, norm *normalize.Normalizer, cfg config.PreprocessorConfig, categories map[string]string, workers int, log *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: store, norm: norm, cfg: cfg, categories: categories, workers: workers, log: log}
}

// Run ingests every task concurrently, bounded by the Runner's worker
// count, and returns one FileResult per task in input order. A
// cancelled ctx stops launching new tasks; tasks already running are
// allowed to finish so a poisoned file never corrupts a sibling's
// transaction: a poisoned file fails only its own task.
func (r *Runner) Run(ctx context.Context, tasks []FileTask) []FileResult {
	results := make([]FileResult, len(tasks))
	sem := make(chan struct{}, r.workers)

	group, groupCtx := errgroup.WithContext(context.Background())
	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-groupCtx.Done():
				return nil
			}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				results[i] = FileResult{Task: task, Err: ctx.Err()}
				return nil
			default:
			}

			results[i] = r.ingestOne(ctx, task)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

// ingestOne runs preprocessing, adaptation, and the catalog import for
// a single file, single-threaded internally (spreadsheet parsing is
// CPU-bound and not safely reentrant per workbook handle).
func (r *Runner) ingestOne(ctx context.Context, task FileTask) FileResult {
	started := time.Now()
	r.log.Info("ingesting file", zap.String("path", task.Path), zap.String("supplier", task.Supplier))

	data, err := os.ReadFile(task.Path)
	if err != nil {
		r.log.Error("ingest read failed", zap.String("path", task.Path), zap.Error(err))
		return FileResult{Task: task, Err: err}
	}

	result := preprocessor.Process(task.Path, data, r.cfg)
	batch := adapter.Build(result, task.Supplier, r.norm, r.categories)

	records := make([]catalog.ImportRecord, 0, len(batch.Records))
	for _, rec := range batch.Records {
		price, _ := rec.Price.Float64()
		records = append(records, catalog.ImportRecord{
			StandardName: rec.StandardName,
			Brand:        rec.Brand,
			Category:     rec.Category,
			Size:         rec.Size,
			Unit:         rec.Unit,
			OriginalName: rec.OriginalName,
			Price:        price,
			Currency:     rec.Currency,
			Confidence:   rec.Confidence,
		})
	}

	stats, err := r.store.BulkImport(ctx, task.Supplier, records)
	if err != nil {
		r.log.Error("ingest bulk import failed", zap.String("path", task.Path), zap.Error(err))
		return FileResult{Task: task, Stats: stats, Err: err}
	}
	if result.Error != "" {
		r.log.Error("ingest parse failed", zap.String("path", task.Path), zap.String("error", result.Error))
		return FileResult{Task: task, Stats: stats, Err: errs.New(errs.ParseFailure, result.Error)}
	}

	r.log.Info("ingested file",
		zap.String("path", task.Path),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("added_prices", stats.Added),
		zap.Int("errors", stats.Errors),
		zap.Duration("elapsed", time.Since(started)))
	return FileResult{Task: task, Stats: stats}
}
