package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
	"github.com/msomdec/gallery-admin/internal/view"
)

// SettingsHandler handles the remembered settings.
type SettingsHandler struct {
	settings *service.SettingsService
	sessions *SessionRegistry
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService, sessions *SessionRegistry) *SettingsHandler {
	return &SettingsHandler{settings: settings, sessions: sessions}
}

// HandleGet renders the settings form, or returns JSON when asked for it.
// GET /admin/settings
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		slog.Error("get settings", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, toSettingsDTO(s))
		return
	}
	notice := ""
	if r.URL.Query().Get("saved") == "1" {
		notice = "Settings saved."
	}
	view.SettingsPage(s, notice, false).Render(r.Context(), w)
}

// HandleSave validates and stores the submitted settings. Open edit
// sessions are dropped when the gallery moves to another repository,
// branch or file.
// POST /admin/settings
func (h *SettingsHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	current, err := h.settings.Get(r.Context())
	if err != nil {
		slog.Error("get settings", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	next, err := settingsFromForm(r, current)
	if err == nil {
		next, err = h.settings.Save(r.Context(), next)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			if wantsJSON(r) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			w.WriteHeader(http.StatusUnprocessableEntity)
			view.SettingsPage(current, err.Error(), true).Render(r.Context(), w)
			return
		}
		slog.Error("save settings", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if movedGallery(current, next) {
		slog.Info("gallery location changed, dropping edit sessions", "sessions", h.sessions.Len())
		h.sessions.Clear()
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, toSettingsDTO(next))
		return
	}
	http.Redirect(w, r, "/admin/settings?saved=1", http.StatusSeeOther)
}

// settingsFromForm overlays the submitted fields on current. Missing
// fields keep their value; the checkbox is read as unchecked when absent.
func settingsFromForm(r *http.Request, current domain.Settings) (domain.Settings, error) {
	if err := r.ParseForm(); err != nil {
		return domain.Settings{}, domain.ErrInvalidInput
	}
	s := current
	text := func(key string, dst *string) {
		if vs, ok := r.PostForm[key]; ok && len(vs) > 0 {
			*dst = strings.TrimSpace(vs[0])
		}
	}
	number := func(key string, dst *int) error {
		v := strings.TrimSpace(r.PostForm.Get(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		*dst = n
		return nil
	}

	text("owner", &s.RepoOwner)
	text("repo", &s.RepoName)
	text("branch", &s.Branch)
	text("gallery_path", &s.GalleryPath)
	text("image_dir", &s.ImageDir)
	if err := number("max_width", &s.MaxWidth); err != nil {
		return domain.Settings{}, err
	}
	if err := number("jpeg_quality", &s.JPEGQuality); err != nil {
		return domain.Settings{}, err
	}
	s.AutoOptimize = r.PostForm.Get("auto_optimize") == "true"
	return s, nil
}

func movedGallery(a, b domain.Settings) bool {
	return a.RepoOwner != b.RepoOwner || a.RepoName != b.RepoName ||
		a.Branch != b.Branch || a.GalleryPath != b.GalleryPath
}
