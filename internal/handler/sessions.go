package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/gallery-admin/internal/service"
)

const (
	sessionCookie  = "gallery_session"
	sessionIdleTTL = 12 * time.Hour
)

// SessionRegistry keeps one gallery edit session per browser tab group,
// keyed by a random cookie value.
type SessionRegistry struct {
	galleries *service.GalleryService
	secure    bool
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	session  *service.GallerySession
	lastUsed time.Time
}

// NewSessionRegistry creates a new SessionRegistry.
func NewSessionRegistry(galleries *service.GalleryService, secureCookies bool) *SessionRegistry {
	return &SessionRegistry{
		galleries: galleries,
		secure:    secureCookies,
		now:       time.Now,
		sessions:  make(map[string]*registryEntry),
	}
}

// Lookup returns the session of the request, or nil when it has none.
func (sr *SessionRegistry) Lookup(r *http.Request) *service.GallerySession {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	sr.mu.Lock()
	defer sr.mu.Unlock()
	e, ok := sr.sessions[cookie.Value]
	if !ok {
		return nil
	}
	e.lastUsed = sr.now()
	return e.session
}

// Ensure returns the session of the request, opening a new one and setting
// its cookie when there is none.
func (sr *SessionRegistry) Ensure(ctx context.Context, w http.ResponseWriter, r *http.Request) (*service.GallerySession, error) {
	if g := sr.Lookup(r); g != nil {
		return g, nil
	}

	g, err := sr.galleries.Open(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	sr.mu.Lock()
	sr.evictIdle()
	sr.sessions[id] = &registryEntry{session: g, lastUsed: sr.now()}
	sr.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/admin",
		HttpOnly: true,
		Secure:   sr.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return g, nil
}

// Clear drops every session. Pending edits are lost.
func (sr *SessionRegistry) Clear() {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	clear(sr.sessions)
}

// Len returns the number of open sessions.
func (sr *SessionRegistry) Len() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return len(sr.sessions)
}

// evictIdle drops sessions unused for longer than sessionIdleTTL unless
// they still hold pending changes. Caller holds sr.mu.
func (sr *SessionRegistry) evictIdle() {
	cutoff := sr.now().Add(-sessionIdleTTL)
	for id, e := range sr.sessions {
		if e.lastUsed.Before(cutoff) && !e.session.HasPendingChanges() {
			delete(sr.sessions, id)
		}
	}
}
