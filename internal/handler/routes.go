package handler

import (
	"net/http"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
)

// Services are the dependencies of the HTTP routes.
type Services struct {
	Auth     *service.AuthService
	Limiter  *service.TokenBucket // Login attempts; nil disables limiting
	Gallery  *service.GalleryService
	Settings *service.SettingsService
	Catalog  *service.CatalogService
	DB       domain.Database // Pinged by /healthz; may be nil

	Workers        int
	MaxUploadBytes int64
	SecureCookies  bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, svc Services) {
	sessions := NewSessionRegistry(svc.Gallery, svc.SecureCookies)
	authHandler := NewAuthHandler(svc.Auth, svc.Limiter, svc.SecureCookies)
	galleryHandler := NewGalleryHandler(svc.Gallery, sessions, svc.Workers, svc.MaxUploadBytes)
	settingsHandler := NewSettingsHandler(svc.Settings, sessions)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	healthHandler := NewHealthHandler(svc.DB)

	protect := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(svc.Auth, h)
	}

	mux.HandleFunc("GET /healthz", healthHandler.HandleHealthz)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
	})

	// Auth
	mux.HandleFunc("GET /login", authHandler.HandleLoginPage)
	mux.HandleFunc("POST /login", authHandler.HandleLogin)
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	// Gallery editor
	mux.Handle("GET /admin", protect(galleryHandler.HandleAdmin))
	mux.Handle("GET /admin/photos", protect(galleryHandler.HandleList))
	mux.Handle("POST /admin/reload", protect(galleryHandler.HandleReload))
	mux.Handle("POST /admin/photos/{id}", protect(galleryHandler.HandleEdit))
	mux.Handle("POST /admin/photos/{id}/field", protect(galleryHandler.HandleField))
	mux.Handle("POST /admin/photos/{id}/delete", protect(galleryHandler.HandleDelete))
	mux.Handle("POST /admin/photos/{id}/restore", protect(galleryHandler.HandleRestore))
	mux.Handle("POST /admin/batch", protect(galleryHandler.HandleBatch))
	mux.Handle("GET /admin/filter", protect(galleryHandler.HandleFilter))
	mux.Handle("GET /admin/preview", protect(galleryHandler.HandlePreview))
	mux.Handle("POST /admin/commit", protect(galleryHandler.HandleCommit))
	mux.Handle("POST /admin/retry", protect(galleryHandler.HandleRetry))
	mux.Handle("POST /admin/uploads", protect(galleryHandler.HandleUpload))
	mux.Handle("GET /admin/commits", protect(galleryHandler.HandleCommits))

	// Settings
	mux.Handle("GET /admin/settings", protect(settingsHandler.HandleGet))
	mux.Handle("POST /admin/settings", protect(settingsHandler.HandleSave))

	// Public lists
	mux.HandleFunc("GET /api/restaurants", catalogHandler.HandleRestaurants)
	mux.HandleFunc("GET /api/books", catalogHandler.HandleBooks)
	mux.HandleFunc("GET /api/gear", catalogHandler.HandleGear)
}
