package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AltKhyin/reviewcanvas/internal/document/migrate"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/repos"
)

const defaultMigrationConcurrency = 4

// ReviewMigrationResult is the per-review outcome of a table-block pass.
type ReviewMigrationResult struct {
	ReviewID            int64   `json:"reviewId"`
	Changed             bool    `json:"changed"`
	MigratedBlocks      int     `json:"migratedBlocks"`
	DroppedFields       int     `json:"droppedFields"`
	ComplexityReduction float64 `json:"complexityReduction"`
	Skipped             bool    `json:"skipped"`
	Error               string  `json:"error,omitempty"`
}

// BatchReport aggregates one batch run.
type BatchReport struct {
	Processed              int                     `json:"processed"`
	Succeeded              int                     `json:"succeeded"`
	Failed                 int                     `json:"failed"`
	Skipped                int                     `json:"skipped"`
	Elapsed                time.Duration           `json:"elapsed"`
	AvgComplexityReduction float64                 `json:"avgComplexityReduction"`
	Results                []ReviewMigrationResult `json:"results"`
}

type MigrationService interface {
	// MigrateReview lifts one review to canonical v3 if needed and runs the
	// table-block migration, persisting only when something changed.
	MigrateReview(ctx context.Context, reviewID int64) ReviewMigrationResult
	// RunBatch iterates review ids with bounded concurrency. A nil id list
	// means every review in the store.
	RunBatch(ctx context.Context, reviewIDs []int64, concurrency int) (*BatchReport, error)
}

type migrationService struct {
	log         *logger.Logger
	repo        repos.ReviewRepo
	persistence ContentPersistenceService
}

func NewMigrationService(baseLog *logger.Logger, repo repos.ReviewRepo, persistence ContentPersistenceService) MigrationService {
	return &migrationService{
		log:         baseLog.With("service", "MigrationService"),
		repo:        repo,
		persistence: persistence,
	}
}

func (s *migrationService) MigrateReview(ctx context.Context, reviewID int64) ReviewMigrationResult {
	result := ReviewMigrationResult{ReviewID: reviewID}

	record, err := s.persistence.Load(ctx, reviewID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if record == nil || (record.Document == nil && len(record.Raw) == 0) {
		result.Skipped = true
		return result
	}

	doc := record.Document
	lifted := false
	if doc == nil {
		var report migrate.Report
		doc, report = migrate.ToCanonical(rawPayload(record.Raw), record.Classification)
		lifted = true
		if len(report.MobileOnlyNodeIDs) > 0 {
			s.log.Warn("Mobile-only blocks flagged for manual review",
				"review_id", reviewID, "node_ids", report.MobileOnlyNodeIDs)
		}
	}

	changed, stats := migrate.MigrateTableBlocks(doc)
	result.Changed = changed || lifted
	result.MigratedBlocks = stats.Migrated
	result.DroppedFields = stats.DroppedFields
	result.ComplexityReduction = stats.ComplexityReduction

	if !result.Changed {
		result.Skipped = true
		return result
	}
	if _, err := s.persistence.Save(ctx, reviewID, doc); err != nil {
		result.Error = err.Error()
		result.Changed = false
		return result
	}
	return result
}

func (s *migrationService) RunBatch(ctx context.Context, reviewIDs []int64, concurrency int) (*BatchReport, error) {
	started := time.Now()
	if reviewIDs == nil {
		ids, err := s.repo.ListIDs(ctx, nil)
		if err != nil {
			return nil, err
		}
		reviewIDs = ids
	}
	if concurrency <= 0 {
		concurrency = defaultMigrationConcurrency
	}

	report := &BatchReport{Results: make([]ReviewMigrationResult, len(reviewIDs))}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range reviewIDs {
		g.Go(func() error {
			result := s.MigrateReview(gctx, id)
			mu.Lock()
			report.Results[i] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var reductionSum float64
	reductionCount := 0
	for _, r := range report.Results {
		report.Processed++
		switch {
		case r.Error != "":
			report.Failed++
		case r.Skipped:
			report.Skipped++
		default:
			report.Succeeded++
		}
		if r.MigratedBlocks > 0 {
			reductionSum += r.ComplexityReduction
			reductionCount++
		}
	}
	if reductionCount > 0 {
		report.AvgComplexityReduction = reductionSum / float64(reductionCount)
	}
	report.Elapsed = time.Since(started)

	s.log.Info("Table-block batch migration finished",
		"processed", report.Processed,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"elapsed", report.Elapsed,
		"avg_complexity_reduction", report.AvgComplexityReduction)
	return report, nil
}

func rawPayload(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
