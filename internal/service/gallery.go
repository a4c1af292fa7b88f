package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

// CommitState is the lifecycle state of a gallery session.
type CommitState string

const (
	StateClean      CommitState = "clean"
	StateDirty      CommitState = "dirty"
	StateCommitting CommitState = "committing"
	StateFailed     CommitState = "failed"
)

// Workspace is the resolved remote location of the gallery.
type Workspace struct {
	Store    domain.ContentStore
	Settings domain.Settings
}

// WorkspaceResolver resolves the store and settings a session works against.
type WorkspaceResolver interface {
	Workspace(ctx context.Context) (*Workspace, error)
}

// GalleryService opens gallery sessions and records their commits.
type GalleryService struct {
	workspaces WorkspaceResolver
	commits    domain.CommitLogRepository
	now        func() time.Time
}

// NewGalleryService creates a new GalleryService. commits may be nil.
func NewGalleryService(workspaces WorkspaceResolver, commits domain.CommitLogRepository) *GalleryService {
	return &GalleryService{workspaces: workspaces, commits: commits, now: time.Now}
}

// Open reads the gallery document and starts an edit session on it.
func (s *GalleryService) Open(ctx context.Context) (*GallerySession, error) {
	ws, err := s.workspaces.Workspace(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}

	file, err := ws.Store.ReadFile(ctx, ws.Settings.GalleryPath)
	if err != nil {
		return nil, fmt.Errorf("read gallery: %w", err)
	}

	return &GallerySession{
		EditSession: LoadSession(string(file.Content), file.SHA),
		store:       ws.Store,
		settings:    ws.Settings,
		commits:     s.commits,
		now:         s.now,
	}, nil
}

// RecentCommits returns the latest commit log entries.
func (s *GalleryService) RecentCommits(ctx context.Context, limit int) ([]domain.CommitRecord, error) {
	if s.commits == nil {
		return nil, nil
	}
	return s.commits.ListRecent(ctx, limit)
}

// CommitResult describes a successful commit.
type CommitResult struct {
	PreviousSHA string
	SHA         string
	Edits       int
	Deletions   int
	Additions   int
}

// GallerySession is an EditSession bound to the remote file it was read
// from. Only one commit, retry or reload runs at a time per session.
type GallerySession struct {
	*EditSession

	store    domain.ContentStore
	settings domain.Settings
	commits  domain.CommitLogRepository
	now      func() time.Time

	flight     sync.Mutex
	committing atomic.Bool

	stateMu sync.Mutex
	lastErr error
}

// Settings returns the settings the session was opened with.
func (g *GallerySession) Settings() domain.Settings {
	return g.settings
}

// State reports where the session is in its commit lifecycle.
func (g *GallerySession) State() CommitState {
	if g.committing.Load() {
		return StateCommitting
	}
	g.stateMu.Lock()
	failed := g.lastErr != nil
	g.stateMu.Unlock()
	switch {
	case failed:
		return StateFailed
	case g.HasPendingChanges():
		return StateDirty
	default:
		return StateClean
	}
}

// LastError returns the error of the last failed commit, if any.
func (g *GallerySession) LastError() error {
	g.stateMu.Lock()
	defer g.stateMu.Unlock()
	return g.lastErr
}

func (g *GallerySession) setLastErr(err error) {
	g.stateMu.Lock()
	g.lastErr = err
	g.stateMu.Unlock()
}

// begin takes the single-flight guard.
func (g *GallerySession) begin() (func(), error) {
	if !g.flight.TryLock() {
		return nil, domain.ErrCommitInProgress
	}
	g.committing.Store(true)
	return func() {
		g.committing.Store(false)
		g.flight.Unlock()
	}, nil
}

// Commit writes the pending changes back with the session's base version.
// A version mismatch returns domain.ErrConflict and keeps every pending
// change. A concurrent call returns domain.ErrCommitInProgress.
func (g *GallerySession) Commit(ctx context.Context, message string) (*CommitResult, error) {
	done, err := g.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	return g.commit(ctx, message)
}

// Retry re-reads the remote version of the gallery and commits the pending
// changes on top of it. Gallery entries changed remotely in the meantime are
// replaced; the rest of the document is taken from the fresh copy.
func (g *GallerySession) Retry(ctx context.Context, message string) (*CommitResult, error) {
	done, err := g.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	g.mu.Lock()
	pending := g.dirty()
	g.mu.Unlock()
	if !pending {
		return nil, domain.ErrNothingToCommit
	}

	file, err := g.store.ReadFile(ctx, g.settings.GalleryPath)
	if err != nil {
		g.setLastErr(err)
		return nil, fmt.Errorf("refresh gallery: %w", err)
	}

	// The records must never sit on a version token they were not decoded
	// from unless they carry changes to write over it.
	g.mu.Lock()
	if !g.dirty() {
		g.reset(string(file.Content), file.SHA)
		g.mu.Unlock()
		return nil, domain.ErrNothingToCommit
	}
	g.rebase(string(file.Content), file.SHA)
	g.mu.Unlock()

	return g.commit(ctx, message)
}

// Reload discards pending changes and reads the gallery again.
func (g *GallerySession) Reload(ctx context.Context) error {
	done, err := g.begin()
	if err != nil {
		return err
	}
	defer done()

	file, err := g.store.ReadFile(ctx, g.settings.GalleryPath)
	if err != nil {
		return fmt.Errorf("read gallery: %w", err)
	}

	g.mu.Lock()
	g.reset(string(file.Content), file.SHA)
	g.mu.Unlock()
	g.setLastErr(nil)
	return nil
}

// commit runs with the single-flight guard held. The session lock is held
// for the whole write so edits cannot slip in between encode and reload.
func (g *GallerySession) commit(ctx context.Context, message string) (*CommitResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.dirty() {
		return nil, domain.ErrNothingToCommit
	}

	content, err := g.render()
	if err != nil {
		g.setLastErr(err)
		return nil, err
	}

	result := &CommitResult{
		PreviousSHA: g.baseSHA,
		Edits:       len(g.edits),
		Deletions:   len(g.deletions),
		Additions:   len(g.additions),
	}
	if message == "" {
		message = defaultCommitMessage(result)
	}

	sha, err := g.store.WriteFile(ctx, g.settings.GalleryPath, []byte(content), g.baseSHA, message)
	if err != nil {
		g.setLastErr(err)
		return nil, fmt.Errorf("write gallery: %w", err)
	}
	result.SHA = sha
	g.setLastErr(nil)

	// Reload so the next cycle starts from what the store actually holds.
	file, err := g.store.ReadFile(ctx, g.settings.GalleryPath)
	if err != nil {
		slog.Warn("reload gallery after commit", "error", err)
		g.reset(content, sha)
	} else {
		g.reset(string(file.Content), file.SHA)
	}

	g.record(ctx, message, result)
	return result, nil
}

func (g *GallerySession) record(ctx context.Context, message string, result *CommitResult) {
	if g.commits == nil {
		return
	}
	rec := &domain.CommitRecord{
		Path:        g.settings.GalleryPath,
		Message:     message,
		PreviousSHA: result.PreviousSHA,
		NewSHA:      result.SHA,
		Edits:       result.Edits,
		Deletions:   result.Deletions,
		Additions:   result.Additions,
		CreatedAt:   g.now().UTC(),
	}
	if err := g.commits.Create(ctx, rec); err != nil {
		slog.Warn("record commit", "error", err)
	}
}

func defaultCommitMessage(r *CommitResult) string {
	return fmt.Sprintf("Update photo gallery: %d edited, %d deleted, %d added", r.Edits, r.Deletions, r.Additions)
}
