package handler

import (
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
	"github.com/msomdec/gallery-admin/internal/view"
)

// AuthHandler handles admin sign in and sign out.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *service.TokenBucket
	secure  bool
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(auth *service.AuthService, limiter *service.TokenBucket, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, secure: secureCookies}
}

// HandleLoginPage renders the sign-in form, or sends signed-in admins on
// to the gallery.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if authenticateRequest(r, h.auth) == nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	view.LoginPage("").Render(r.Context(), w)
}

// HandleLogin checks the submitted password and sets the auth cookie.
// POST /login
// Form: password=...
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	key := clientIP(r)
	if h.limiter != nil && !h.limiter.Allow(key) {
		wait := h.limiter.RetryAfter(key)
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		w.WriteHeader(http.StatusTooManyRequests)
		view.LoginPage("Too many attempts. Try again later.").Render(r.Context(), w)
		return
	}

	token, err := h.auth.Login(r.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.Warn("failed admin login", "remote", key)
			w.WriteHeader(http.StatusUnauthorized)
			view.LoginPage("Wrong password.").Render(r.Context(), w)
			return
		}
		slog.Error("login admin", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// HandleLogout clears the auth cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
