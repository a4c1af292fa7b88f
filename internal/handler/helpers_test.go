package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/gallery"
	"github.com/msomdec/gallery-admin/internal/handler"
	"github.com/msomdec/gallery-admin/internal/repository/sqlite"
	"github.com/msomdec/gallery-admin/internal/service"
)

const (
	testJWTSecret = "test-secret-for-handler-tests-0123456789"
	testPassword  = "correct horse battery"
)

// fakeStore is an in-memory content store with GitHub-like version tokens.
type fakeStore struct {
	mu      sync.Mutex
	files   map[string]*domain.RemoteFile
	version int
}

func newFakeStore() *fakeStore {
	return &fakeStore{files: make(map[string]*domain.RemoteFile)}
}

func (f *fakeStore) put(path, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.version++
	f.files[path] = &domain.RemoteFile{Path: path, Content: []byte(content), SHA: fmt.Sprintf("sha-%d", f.version)}
}

func (f *fakeStore) content(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.files[path]; ok {
		return string(file.Content)
	}
	return ""
}

func (f *fakeStore) ReadFile(_ context.Context, path string) (*domain.RemoteFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *file
	return &cp, nil
}

func (f *fakeStore) WriteFile(_ context.Context, path string, content []byte, sha, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	if file.SHA != sha {
		return "", domain.ErrConflict
	}
	f.version++
	next := fmt.Sprintf("sha-%d", f.version)
	f.files[path] = &domain.RemoteFile{Path: path, Content: content, SHA: next}
	return next, nil
}

func (f *fakeStore) UploadBinary(_ context.Context, path string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; ok {
		return fmt.Errorf("%w: %s exists", domain.ErrInvalidInput, path)
	}
	f.version++
	f.files[path] = &domain.RemoteFile{Path: path, Content: data, SHA: fmt.Sprintf("sha-%d", f.version)}
	return nil
}

func galleryPage() string {
	fragment := gallery.Encode([]domain.Photo{
		{Src: "images/a.jpg", Alt: "Eiffel", Location: "Paris", Year: "2020"},
		{Src: "images/b.jpg", Alt: "Photo", Location: domain.UnsetLocation},
		{Src: "images/c.jpg", Alt: "Harbor", Location: "Lisbon", Year: "2018"},
	}, nil)
	return "<html><body><h1>Photos</h1>\n<div class=\"photos-grid\">" + fragment + "</div>\n<footer>x</footer></body></html>"
}

type testEnv struct {
	server   *httptest.Server
	store    *fakeStore
	auth     *service.AuthService
	settings *service.SettingsService
	token    string
}

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	hash, err := service.HashPassword(testPassword, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return service.NewAuthService(hash, testJWTSecret)
}

// newTestEnv starts the full route table against a sqlite database and an
// in-memory gallery store.
func newTestEnv(t *testing.T, catalog *service.CatalogService) *testEnv {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := newFakeStore()
	store.put("photos.html", galleryPage())

	defaults := domain.DefaultSettings()
	defaults.RepoOwner = "me"
	defaults.RepoName = "site"
	settings := service.NewSettingsService(db.Settings(), defaults, func(s domain.Settings) (domain.ContentStore, error) {
		if s.RepoOwner == "" || s.RepoName == "" {
			return nil, domain.ErrNotConfigured
		}
		return store, nil
	})
	galleries := service.NewGalleryService(settings, db.Commits())

	auth := newTestAuthService(t)
	limiter := service.NewTokenBucket(0, 3)
	t.Cleanup(limiter.Close)

	if catalog == nil {
		catalog = service.NewCatalogService(nil, service.CatalogConfig{})
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:           auth,
		Limiter:        limiter,
		Gallery:        galleries,
		Settings:       settings,
		Catalog:        catalog,
		DB:             db,
		Workers:        2,
		MaxUploadBytes: 8 << 20,
	})
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	token, err := auth.Login(testPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	return &testEnv{server: srv, store: store, auth: auth, settings: settings, token: token}
}

// client returns an authenticated client that keeps the gallery session
// cookie and does not follow redirects.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	u, _ := url.Parse(e.server.URL)
	jar.SetCookies(u, []*http.Cookie{{Name: "auth_token", Value: e.token, Path: "/"}})
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (e *testEnv) postForm(t *testing.T, c *http.Client, path string, form url.Values, datastar bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if datastar {
		req.Header.Set("Datastar-Request", "true")
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, c *http.Client, path string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
