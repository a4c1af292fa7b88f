package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/gallery"
)

// memStore is an in-memory ContentStore with GitHub-like sha semantics.
type memStore struct {
	mu      sync.Mutex
	files   map[string]*domain.RemoteFile
	version int
	writes  int
	uploads []string

	// When set, WriteFile signals entered and then blocks until release is closed.
	entered chan struct{}
	release chan struct{}
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]*domain.RemoteFile)}
}

func (m *memStore) put(path, content string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version++
	sha := fmt.Sprintf("sha-%d", m.version)
	m.files[path] = &domain.RemoteFile{Path: path, Content: []byte(content), SHA: sha}
	return sha
}

func (m *memStore) content(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[path]; ok {
		return string(f.Content)
	}
	return ""
}

func (m *memStore) ReadFile(_ context.Context, path string) (*domain.RemoteFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, domain.ErrNotFound)
	}
	cp := *f
	cp.Content = append([]byte(nil), f.Content...)
	return &cp, nil
}

func (m *memStore) WriteFile(_ context.Context, path string, content []byte, sha, _ string) (string, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	f, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("write %s: %w", path, domain.ErrNotFound)
	}
	if f.SHA != sha {
		return "", fmt.Errorf("write %s: %w", path, domain.ErrConflict)
	}
	m.version++
	f.SHA = fmt.Sprintf("sha-%d", m.version)
	f.Content = append([]byte(nil), content...)
	return f.SHA, nil
}

func (m *memStore) UploadBinary(_ context.Context, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[path]; ok {
		return fmt.Errorf("upload %s: %w: file exists", path, domain.ErrInvalidInput)
	}
	m.version++
	m.files[path] = &domain.RemoteFile{Path: path, Content: data, SHA: fmt.Sprintf("sha-%d", m.version)}
	m.uploads = append(m.uploads, path)
	return nil
}

type staticWorkspace struct {
	ws  *Workspace
	err error
}

func (s staticWorkspace) Workspace(context.Context) (*Workspace, error) {
	return s.ws, s.err
}

type memCommitLog struct {
	mu      sync.Mutex
	records []domain.CommitRecord
}

func (l *memCommitLog) Create(_ context.Context, r *domain.CommitRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r.ID = int64(len(l.records) + 1)
	l.records = append(l.records, *r)
	return nil
}

func (l *memCommitLog) ListRecent(_ context.Context, limit int) ([]domain.CommitRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.CommitRecord
	for i := len(l.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.records[i])
	}
	return out, nil
}

func setupGallery(t *testing.T) (*GalleryService, *memStore, *memCommitLog) {
	t.Helper()
	store := newMemStore()
	store.put("photos.html", threePhotoPage())
	log := &memCommitLog{}
	ws := &Workspace{Store: store, Settings: domain.DefaultSettings()}
	return NewGalleryService(staticWorkspace{ws: ws}, log), store, log
}

func TestGalleryService_Open(t *testing.T) {
	svc, _, _ := setupGallery(t)

	g, err := svc.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if g.BaseSHA() != "sha-1" {
		t.Errorf("BaseSHA = %q, want sha-1", g.BaseSHA())
	}
	if n := len(g.ActiveRecords()); n != 3 {
		t.Errorf("records = %d, want 3", n)
	}
	if g.State() != StateClean {
		t.Errorf("State = %q, want clean", g.State())
	}
}

func TestGalleryService_OpenErrors(t *testing.T) {
	notConfigured := NewGalleryService(staticWorkspace{err: domain.ErrNotConfigured}, nil)
	if _, err := notConfigured.Open(context.Background()); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}

	settings := domain.DefaultSettings()
	settings.GalleryPath = "missing.html"
	missing := NewGalleryService(staticWorkspace{ws: &Workspace{Store: newMemStore(), Settings: settings}}, nil)
	if _, err := missing.Open(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCommit_Success(t *testing.T) {
	svc, store, log := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)

	g.SetField("photo_0", FieldYear, "2021")
	g.MarkDeleted("photo_1")
	if g.State() != StateDirty {
		t.Errorf("State = %q, want dirty", g.State())
	}
	before := g.BaseSHA()

	res, err := g.Commit(ctx, "")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if res.SHA == before || g.BaseSHA() == before {
		t.Errorf("token not refreshed: before %q, result %q, session %q", before, res.SHA, g.BaseSHA())
	}
	if g.BaseSHA() != res.SHA {
		t.Errorf("session token %q, want %q", g.BaseSHA(), res.SHA)
	}
	snap := g.Snapshot()
	if len(snap.PendingEdits) != 0 || len(snap.PendingDeletions) != 0 {
		t.Errorf("pending not cleared: %+v", snap)
	}
	if g.State() != StateClean {
		t.Errorf("State = %q, want clean", g.State())
	}

	written := store.content("photos.html")
	if strings.Contains(written, "images/b.jpg") {
		t.Error("deleted photo still written")
	}
	if !strings.Contains(written, `<span class="photo-year">2021</span>`) {
		t.Error("edit not written")
	}
	if !strings.HasSuffix(written, "<footer>x</footer></body></html>") {
		t.Error("surrounding document changed")
	}

	// Records come from the reloaded document, ids renumbered.
	var ids []string
	for _, p := range g.ActiveRecords() {
		ids = append(ids, p.ID+"="+p.Filename())
	}
	if diff := cmp.Diff([]string{"photo_0=a.jpg", "photo_1=c.jpg"}, ids); diff != "" {
		t.Errorf("reloaded records mismatch (-want +got):\n%s", diff)
	}

	if len(log.records) != 1 {
		t.Fatalf("commit log = %d entries, want 1", len(log.records))
	}
	rec := log.records[0]
	if rec.PreviousSHA != before || rec.NewSHA != res.SHA || rec.Edits != 1 || rec.Deletions != 1 {
		t.Errorf("commit record = %+v", rec)
	}
	if !strings.HasPrefix(rec.Message, "Update photo gallery") {
		t.Errorf("default message = %q", rec.Message)
	}
}

func TestCommit_NothingToCommit(t *testing.T) {
	svc, store, _ := setupGallery(t)
	g, _ := svc.Open(context.Background())

	if _, err := g.Commit(context.Background(), "noop"); !errors.Is(err, domain.ErrNothingToCommit) {
		t.Errorf("err = %v, want ErrNothingToCommit", err)
	}
	if store.writes != 0 {
		t.Errorf("writes = %d, want 0", store.writes)
	}
}

func TestCommit_ConflictPreservesPendingState(t *testing.T) {
	svc, store, log := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)

	g.SetField("photo_0", FieldLocation, "Marseille")
	g.MarkDeleted("photo_2")
	before := g.Snapshot()

	// Another tab writes first.
	store.put("photos.html", strings.Replace(threePhotoPage(), "<h1>Photos</h1>", "<h1>My Photos</h1>", 1))

	_, err := g.Commit(ctx, "edit")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Errorf("pending state changed on conflict (-before +after):\n%s", diff)
	}
	if g.State() != StateFailed {
		t.Errorf("State = %q, want failed", g.State())
	}
	if !errors.Is(g.LastError(), domain.ErrConflict) {
		t.Errorf("LastError = %v", g.LastError())
	}
	if len(log.records) != 0 {
		t.Error("failed commit was logged")
	}
}

func TestRetry_AfterConflict(t *testing.T) {
	svc, store, _ := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)

	g.SetField("photo_0", FieldLocation, "Marseille")
	remoteSHA := store.put("photos.html", strings.Replace(threePhotoPage(), "<h1>Photos</h1>", "<h1>My Photos</h1>", 1))

	if _, err := g.Commit(ctx, "edit"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("first commit err = %v, want ErrConflict", err)
	}

	res, err := g.Retry(ctx, "edit")
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if res.PreviousSHA != remoteSHA {
		t.Errorf("retry based on %q, want fresh %q", res.PreviousSHA, remoteSHA)
	}

	written := store.content("photos.html")
	if !strings.Contains(written, "<h1>My Photos</h1>") {
		t.Error("retry dropped the remote change outside the gallery")
	}
	if !strings.Contains(written, ">Marseille<") {
		t.Error("retry dropped the pending edit")
	}
	if g.State() != StateClean || g.LastError() != nil {
		t.Errorf("State = %q, LastError = %v", g.State(), g.LastError())
	}
}

func TestRetry_NothingPendingKeepsBaseVersion(t *testing.T) {
	svc, store, _ := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)
	baseSHA := g.BaseSHA()

	otherTab := gallery.EncodeBlock(domain.Photo{Src: "images/other-tab.jpg", Alt: "Photo", Location: "Oslo"})
	store.put("photos.html", strings.Replace(threePhotoPage(), `<div class="photos-grid">`, `<div class="photos-grid">`+"\n"+otherTab, 1))

	if _, err := g.Retry(ctx, "noop"); !errors.Is(err, domain.ErrNothingToCommit) {
		t.Fatalf("Retry err = %v, want ErrNothingToCommit", err)
	}
	if g.BaseSHA() != baseSHA {
		t.Fatalf("BaseSHA moved to %q without a decode of that version", g.BaseSHA())
	}

	g.SetField("photo_0", FieldLocation, "Nice")
	if _, err := g.Commit(ctx, "edit"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("Commit err = %v, want ErrConflict", err)
	}
	if !strings.Contains(store.content("photos.html"), "images/other-tab.jpg") {
		t.Fatal("the concurrent remote photo was overwritten")
	}
}

func TestCommit_SingleFlight(t *testing.T) {
	svc, store, _ := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)
	g.SetField("photo_0", FieldYear, "1999")

	store.entered = make(chan struct{})
	store.release = make(chan struct{})

	errc := make(chan error, 1)
	go func() {
		_, err := g.Commit(ctx, "first")
		errc <- err
	}()

	<-store.entered
	if g.State() != StateCommitting {
		t.Errorf("State = %q, want committing", g.State())
	}
	if _, err := g.Commit(ctx, "second"); !errors.Is(err, domain.ErrCommitInProgress) {
		t.Errorf("concurrent commit err = %v, want ErrCommitInProgress", err)
	}
	if _, err := g.Retry(ctx, "second"); !errors.Is(err, domain.ErrCommitInProgress) {
		t.Errorf("concurrent retry err = %v, want ErrCommitInProgress", err)
	}
	close(store.release)

	if err := <-errc; err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if store.writes != 1 {
		t.Errorf("writes = %d, want 1", store.writes)
	}
}

func TestReload_DiscardsPending(t *testing.T) {
	svc, store, _ := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)

	g.MarkDeleted("photo_0")
	sha := store.put("photos.html", onePhotoPage)

	if err := g.Reload(ctx); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if g.HasPendingChanges() {
		t.Error("reload kept pending changes")
	}
	if g.BaseSHA() != sha || len(g.ActiveRecords()) != 1 {
		t.Errorf("reload state: sha %q, records %d", g.BaseSHA(), len(g.ActiveRecords()))
	}
}

func TestRecentCommits(t *testing.T) {
	svc, _, _ := setupGallery(t)
	ctx := context.Background()
	g, _ := svc.Open(ctx)

	for _, year := range []string{"2001", "2002"} {
		g.SetField("photo_0", FieldYear, year)
		if _, err := g.Commit(ctx, "year "+year); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}

	recent, err := svc.RecentCommits(ctx, 10)
	if err != nil {
		t.Fatalf("RecentCommits: %v", err)
	}
	if len(recent) != 2 || recent[0].Message != "year 2002" {
		t.Errorf("recent = %+v", recent)
	}

	none, _ := NewGalleryService(staticWorkspace{}, nil).RecentCommits(ctx, 10)
	if none != nil {
		t.Errorf("nil log returned %v", none)
	}
}
