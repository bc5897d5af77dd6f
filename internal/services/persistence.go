package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/AltKhyin/reviewcanvas/internal/document"
	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/repos"
	"github.com/AltKhyin/reviewcanvas/internal/types"
)

// PersistedRecord is what the persistence layer hands back for one review.
// Document is populated only when the stored payload was canonical v3;
// legacy/v2 payloads come back as Raw plus their classification so the caller
// can run the migration engine.
type PersistedRecord struct {
	ReviewID       int64
	Classification document.Classification
	Document       *document.Document
	Raw            json.RawMessage
	UpdatedAt      time.Time
}

// SavePolicy tunes the retry and integrity-verification behavior.
type SavePolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// IntegrityDiffThreshold is the byte-length delta above which a post-write
	// mismatch is logged at critical severity with truncated previews instead
	// of a character-level diff.
	IntegrityDiffThreshold int
}

func DefaultSavePolicy() SavePolicy {
	return SavePolicy{
		MaxAttempts:            3,
		BackoffBase:            1 * time.Second,
		BackoffCap:             30 * time.Second,
		IntegrityDiffThreshold: 64,
	}
}

// CacheInvalidator is the published-render cache hook; nil disables it.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, reviewID int64)
}

type ContentPersistenceService interface {
	Save(ctx context.Context, reviewID int64, doc *document.Document) (*PersistedRecord, error)
	Load(ctx context.Context, reviewID int64) (*PersistedRecord, error)
}

type contentPersistenceService struct {
	log    *logger.Logger
	repo   repos.ReviewRepo
	policy SavePolicy
	cache  CacheInvalidator
	// sleep is swappable so tests do not wait out real backoff.
	sleep func(time.Duration)
}

func NewContentPersistenceService(baseLog *logger.Logger, repo repos.ReviewRepo, policy SavePolicy, cache CacheInvalidator) ContentPersistenceService {
	if policy.MaxAttempts <= 0 {
		policy = DefaultSavePolicy()
	}
	return &contentPersistenceService{
		log:    baseLog.With("service", "ContentPersistenceService"),
		repo:   repo,
		policy: policy,
		cache:  cache,
		sleep:  time.Sleep,
	}
}

// Save validates the document, performs an update-if-exists-else-insert keyed
// by the review id, then re-reads the just-written record to detect silent
// write corruption. Validation failures and malformed identifiers are fatal
// and never retried; transport failures retry with exponential backoff. An
// integrity mismatch is logged but does not fail the save, because the write
// itself reported success.
func (s *contentPersistenceService) Save(ctx context.Context, reviewID int64, doc *document.Document) (*PersistedRecord, error) {
	if reviewID <= 0 {
		return nil, fmt.Errorf("%w: review id %d", pkgerrors.ErrInvalidArgument, reviewID)
	}
	if err := document.Validate(doc); err != nil {
		return nil, err
	}

	doc.Metadata.UpdatedAt = time.Now().UTC()
	if doc.Metadata.EditorVersion == "" {
		doc.Metadata.EditorVersion = document.EditorVersion
	}
	intended, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", pkgerrors.ErrValidation, err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lastErr = s.upsert(ctx, reviewID, intended, doc.Metadata.EditorVersion)
		if lastErr == nil {
			break
		}
		if !retryable(lastErr) {
			return nil, lastErr
		}
		if attempt < s.policy.MaxAttempts {
			delay := s.backoff(attempt)
			s.log.Warn("Save attempt failed, backing off",
				"review_id", reviewID, "attempt", attempt, "delay", delay, "error", lastErr)
			s.sleep(delay)
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("save review %d after %d attempts: %w", reviewID, s.policy.MaxAttempts, lastErr)
	}

	record := &PersistedRecord{
		ReviewID:       reviewID,
		Classification: document.Classify(intended),
		Document:       doc,
		Raw:            intended,
		UpdatedAt:      doc.Metadata.UpdatedAt,
	}
	s.verifyWrite(ctx, reviewID, intended, record)

	if s.cache != nil {
		s.cache.Invalidate(ctx, reviewID)
	}
	return record, nil
}

func (s *contentPersistenceService) upsert(ctx context.Context, reviewID int64, content []byte, editorVersion string) error {
	_, err := s.repo.GetByID(ctx, nil, reviewID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			_, createErr := s.repo.Create(ctx, nil, &types.Review{
				ID:                reviewID,
				Status:            "draft",
				StructuredContent: content,
				EditorVersion:     editorVersion,
			})
			return createErr
		}
		return err
	}
	return s.repo.UpdateContent(ctx, nil, reviewID, content, editorVersion)
}

// verifyWrite re-reads the record and compares it against the intended
// payload, ignoring metadata timestamps. Divergence is a
// detectable-but-unrecoverable-locally condition surfaced to operators.
func (s *contentPersistenceService) verifyWrite(ctx context.Context, reviewID int64, intended []byte, record *PersistedRecord) {
	stored, err := s.repo.GetByID(ctx, nil, reviewID)
	if err != nil {
		s.log.Warn("Post-write verification read failed", "review_id", reviewID, "error", err)
		return
	}
	record.UpdatedAt = stored.UpdatedAt
	persisted := []byte(stored.StructuredContent)
	if documentsEquivalent(intended, persisted) {
		return
	}

	delta := len(persisted) - len(intended)
	if delta < 0 {
		delta = -delta
	}
	if delta <= s.policy.IntegrityDiffThreshold {
		idx, intendedCtx, persistedCtx := firstDivergence(intended, persisted)
		s.log.Warn("Integrity mismatch after save",
			"review_id", reviewID,
			"intended_bytes", len(intended),
			"persisted_bytes", len(persisted),
			"first_divergence", idx,
			"intended_excerpt", intendedCtx,
			"persisted_excerpt", persistedCtx)
		return
	}
	s.log.Error("Critical integrity mismatch after save",
		"review_id", reviewID,
		"intended_bytes", len(intended),
		"persisted_bytes", len(persisted),
		"byte_delta", delta,
		"intended_preview", truncate(intended, 160),
		"persisted_preview", truncate(persisted, 160))
}

// Load fetches and shape-checks a stored document. Not-found is a
// distinguished non-error outcome (nil record). Empty content means a review
// that never saw the editor; callers start from an empty canonical document.
// A non-empty payload whose shape cannot be confirmed is a fatal load error:
// callers must not auto-save over data they could not validate.
func (s *contentPersistenceService) Load(ctx context.Context, reviewID int64) (*PersistedRecord, error) {
	if reviewID <= 0 {
		return nil, fmt.Errorf("%w: review id %d", pkgerrors.ErrInvalidArgument, reviewID)
	}
	stored, err := s.repo.GetByID(ctx, nil, reviewID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	raw := []byte(stored.StructuredContent)
	record := &PersistedRecord{
		ReviewID:  reviewID,
		Raw:       raw,
		UpdatedAt: stored.UpdatedAt,
	}
	if emptyContent(raw) {
		record.Raw = nil
		record.Classification = document.Classification{Format: document.FormatUnknown}
		return record, nil
	}

	record.Classification = document.Classify(raw)
	switch record.Classification.Format {
	case document.FormatV3:
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: stored document unreadable: %v", pkgerrors.ErrValidation, err)
		}
		if err := document.Validate(&doc); err != nil {
			return nil, fmt.Errorf("load review %d: %w", reviewID, err)
		}
		record.Document = &doc
	case document.FormatV2, document.FormatLegacy:
		// Older generations are handed back raw for the migration engine.
	default:
		return nil, fmt.Errorf("%w: review %d has unrecognized stored document shape", pkgerrors.ErrValidation, reviewID)
	}
	return record, nil
}

func (s *contentPersistenceService) backoff(attempt int) time.Duration {
	delay := s.policy.BackoffBase << (attempt - 1)
	if delay > s.policy.BackoffCap {
		delay = s.policy.BackoffCap
	}
	return delay
}

func retryable(err error) bool {
	if errors.Is(err, pkgerrors.ErrValidation) || errors.Is(err, pkgerrors.ErrInvalidArgument) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, gorm.ErrInvalidData) {
		return false
	}
	return true
}

// documentsEquivalent compares two serialized documents ignoring metadata
// timestamps, which legitimately differ when the store stamps its own clock.
func documentsEquivalent(a, b []byte) bool {
	if bytes.Equal(a, b) {
		return true
	}
	na, okA := normalizeDoc(a)
	nb, okB := normalizeDoc(b)
	if !okA || !okB {
		return false
	}
	return bytes.Equal(na, nb)
}

func normalizeDoc(raw []byte) ([]byte, bool) {
	var doc document.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	doc.Metadata.CreatedAt = time.Time{}
	doc.Metadata.UpdatedAt = time.Time{}
	out, err := json.Marshal(&doc)
	if err != nil {
		return nil, false
	}
	return out, true
}

func firstDivergence(a, b []byte) (int, string, string) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	idx := n
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			idx = i
			break
		}
	}
	return idx, excerpt(a, idx), excerpt(b, idx)
}

func excerpt(raw []byte, idx int) string {
	const window = 40
	start := idx - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(raw) {
		end = len(raw)
	}
	return string(raw[start:end])
}

func truncate(raw []byte, n int) string {
	if len(raw) <= n {
		return string(raw)
	}
	return string(raw[:n]) + "..."
}

func emptyContent(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
