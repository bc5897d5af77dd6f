package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AltKhyin/reviewcanvas/internal/document"
	"github.com/AltKhyin/reviewcanvas/internal/document/migrate"
	"github.com/AltKhyin/reviewcanvas/internal/editor"
	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
)

// SessionManager owns the live editing sessions, one per review. Opening an
// already-open review returns the existing session so concurrent editor tabs
// share state instead of clobbering each other on save.
type SessionManager interface {
	Open(ctx context.Context, reviewID int64) (*editor.Session, error)
	Get(reviewID int64) (*editor.Session, bool)
	// Save persists the session document immediately, bypassing the autosave
	// debounce, and clears the dirty flag on success.
	Save(ctx context.Context, reviewID int64) (*PersistedRecord, error)
	// Close flushes a dirty session, stops its autosave scheduler and removes
	// it from the manager.
	Close(ctx context.Context, reviewID int64) error
	// Shutdown closes every open session; used on process exit.
	Shutdown(ctx context.Context)
}

type managedSession struct {
	session  *editor.Session
	autosave *editor.AutosaveScheduler
}

type sessionManager struct {
	mu          sync.Mutex
	log         *logger.Logger
	persistence ContentPersistenceService
	idle        time.Duration
	sessions    map[int64]*managedSession
}

func NewSessionManager(baseLog *logger.Logger, persistence ContentPersistenceService, autosaveIdle time.Duration) SessionManager {
	if autosaveIdle <= 0 {
		autosaveIdle = editor.DefaultAutosaveIdle
	}
	return &sessionManager{
		log:         baseLog.With("service", "SessionManager"),
		persistence: persistence,
		idle:        autosaveIdle,
		sessions:    map[int64]*managedSession{},
	}
}

// Open loads the review, lifts older document generations to the canonical
// shape in memory, and hands back a session with autosave armed on the first
// mutation. The lifted shape is not persisted until an edit dirties the
// session; opening a review is read-only.
func (m *sessionManager) Open(ctx context.Context, reviewID int64) (*editor.Session, error) {
	if reviewID <= 0 {
		return nil, fmt.Errorf("%w: review id %d", pkgerrors.ErrInvalidArgument, reviewID)
	}

	m.mu.Lock()
	if ms, ok := m.sessions[reviewID]; ok {
		m.mu.Unlock()
		return ms.session, nil
	}
	m.mu.Unlock()

	record, err := m.persistence.Load(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	var doc *document.Document
	switch {
	case record == nil || (record.Document == nil && len(record.Raw) == 0):
		doc = document.Empty()
	case record.Document != nil:
		doc = record.Document
	default:
		var report migrate.Report
		doc, report = migrate.ToCanonical([]byte(record.Raw), record.Classification)
		if len(report.MobileOnlyNodeIDs) > 0 {
			m.log.Warn("Opened review has mobile-only blocks",
				"review_id", reviewID, "node_ids", report.MobileOnlyNodeIDs)
		}
		migrate.MigrateTableBlocks(doc)
	}

	session := editor.NewSession(reviewID, doc)
	scheduler := editor.NewAutosaveScheduler(m.idle, func() {
		m.autosaveFire(reviewID)
	})
	session.SetDirtyHook(scheduler.Arm)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Lost the race with another Open for the same review.
	if ms, ok := m.sessions[reviewID]; ok {
		scheduler.Stop()
		return ms.session, nil
	}
	m.sessions[reviewID] = &managedSession{session: session, autosave: scheduler}
	m.log.Info("Editing session opened", "review_id", reviewID, "nodes", len(doc.Nodes))
	return session, nil
}

func (m *sessionManager) Get(reviewID int64) (*editor.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.sessions[reviewID]
	if !ok {
		return nil, false
	}
	return ms.session, true
}

func (m *sessionManager) Save(ctx context.Context, reviewID int64) (*PersistedRecord, error) {
	m.mu.Lock()
	ms, ok := m.sessions[reviewID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("session for review %d: %w", reviewID, pkgerrors.ErrNotFound)
	}

	doc, gen := ms.session.Checkpoint()
	record, err := m.persistence.Save(ctx, reviewID, doc)
	if err != nil {
		return nil, err
	}
	ms.session.MarkSaved(gen)
	return record, nil
}

func (m *sessionManager) Close(ctx context.Context, reviewID int64) error {
	m.mu.Lock()
	ms, ok := m.sessions[reviewID]
	if ok {
		delete(m.sessions, reviewID)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session for review %d: %w", reviewID, pkgerrors.ErrNotFound)
	}

	ms.autosave.Stop()
	if ms.session.Dirty() {
		doc, gen := ms.session.Checkpoint()
		if _, err := m.persistence.Save(ctx, reviewID, doc); err != nil {
			return fmt.Errorf("flush on close: %w", err)
		}
		ms.session.MarkSaved(gen)
	}
	m.log.Info("Editing session closed", "review_id", reviewID)
	return nil
}

func (m *sessionManager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil {
			m.log.Error("Session close failed during shutdown", "review_id", id, "error", err)
		}
	}
}

// autosaveFire runs off the scheduler goroutine; a failed autosave leaves the
// session dirty so the next edit re-arms the countdown.
func (m *sessionManager) autosaveFire(reviewID int64) {
	m.mu.Lock()
	ms, ok := m.sessions[reviewID]
	m.mu.Unlock()
	if !ok || !ms.session.Dirty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	doc, gen := ms.session.Checkpoint()
	if _, err := m.persistence.Save(ctx, reviewID, doc); err != nil {
		m.log.Error("Autosave failed", "review_id", reviewID, "error", err)
		return
	}
	ms.session.MarkSaved(gen)
	m.log.Debug("Autosave persisted", "review_id", reviewID)
}
