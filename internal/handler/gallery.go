package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
	"github.com/msomdec/gallery-admin/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

const recentCommitsShown = 5

// GalleryHandler handles the gallery editor. Datastar requests get
// server-sent event patches; other clients get JSON.
type GalleryHandler struct {
	galleries *service.GalleryService
	sessions  *SessionRegistry
	workers   int
	maxUpload int64
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(galleries *service.GalleryService, sessions *SessionRegistry, workers int, maxUploadBytes int64) *GalleryHandler {
	return &GalleryHandler{galleries: galleries, sessions: sessions, workers: workers, maxUpload: maxUploadBytes}
}

// HandleAdmin renders the gallery editor, opening a session on first visit.
// GET /admin
func (h *GalleryHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	g, err := h.sessions.Ensure(r.Context(), w, r)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
			return
		}
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("open gallery", "error", err)
		}
		w.WriteHeader(status)
		view.ErrorPage(status, http.StatusText(status), msg).Render(r.Context(), w)
		return
	}

	view.AdminPage(h.galleryView(r, g, queryFrom(r), "")).Render(r.Context(), w)
}

// HandleList returns the filtered photos and counters as JSON.
// GET /admin/photos
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"photos":  toPhotoStateDTOs(g.Filter(queryFrom(r))),
		"deleted": toPhotoDTOs(g.Deleted()),
		"stats":   toStatsDTO(g),
	})
}

// HandleReload discards pending changes and reads the gallery again.
// POST /admin/reload
func (h *GalleryHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := g.Reload(r.Context()); err != nil {
		h.fail(w, r, g, "reload gallery", err)
		return
	}
	h.respondApp(w, r, g, "Reloaded from GitHub.")
}

// HandleField sets one field of a photo.
// POST /admin/photos/{id}/field
// Form: field=location|year|alt|description|tags, value=...
func (h *GalleryHandler) HandleField(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := g.SetField(id, r.FormValue("field"), r.FormValue("value")); err != nil {
		h.fail(w, r, g, "set photo field", err)
		return
	}
	h.respondPhoto(w, r, g, id)
}

// HandleEdit replaces every editable field of a photo from the edit form.
// POST /admin/photos/{id}
// Form: alt, location, year, tags, description
func (h *GalleryHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	next := domain.Photo{
		Alt:         r.FormValue("alt"),
		Location:    r.FormValue("location"),
		Year:        r.FormValue("year"),
		Tags:        domain.ParseTags(r.FormValue("tags")),
		Description: r.FormValue("description"),
	}
	if err := g.Update(id, next); err != nil {
		h.fail(w, r, g, "edit photo", err)
		return
	}
	h.respondPhoto(w, r, g, id)
}

// respondPhoto answers a single-photo edit with the updated card.
func (h *GalleryHandler) respondPhoto(w http.ResponseWriter, r *http.Request, g *service.GallerySession, id string) {
	p, found := g.Lookup(id)
	if !isDatastar(r) {
		if !found {
			writeError(w, http.StatusNotFound, "Photo not found.")
			return
		}
		dto := toPhotoStateDTOs([]service.PhotoState{p})[0]
		writeJSON(w, http.StatusOK, map[string]any{"photo": dto, "stats": toStatsDTO(g)})
		return
	}

	sse := datastar.NewSSE(w, r)
	if found {
		sse.PatchElementTempl(view.PhotoCard(p, g.Settings()))
	}
	h.patchCounters(sse, g, "")
}

// HandleDelete marks a photo for deletion.
// POST /admin/photos/{id}/delete
func (h *GalleryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	g.MarkDeleted(id)

	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"stats": toStatsDTO(g)})
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.RemoveElementByID(view.CardID(id))
	sse.PatchElementTempl(
		view.DeletedList(g.Deleted(), g.Settings()),
		datastar.WithSelectorID(view.DeletedID),
		datastar.WithModeInner(),
	)
	h.patchCounters(sse, g, "")
}

// HandleRestore cancels a pending deletion.
// POST /admin/photos/{id}/restore
func (h *GalleryHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	g.Restore(r.PathValue("id"))

	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"stats": toStatsDTO(g)})
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchGrid(sse, g, service.Query{})
	sse.PatchElementTempl(
		view.DeletedList(g.Deleted(), g.Settings()),
		datastar.WithSelectorID(view.DeletedID),
		datastar.WithModeInner(),
	)
	h.patchCounters(sse, g, "")
}

// HandleBatch applies one patch to many photos. The targets are the listed
// ids, or every photo of select_year, or every photo whose location
// contains select_location.
// POST /admin/batch
// Form: id=...&id=... | select_year=... | select_location=...,
// location, year, tags, description
func (h *GalleryHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, g, "parse batch form", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	ids := r.Form["id"]
	switch {
	case len(ids) > 0:
	case r.FormValue("select_year") != "":
		ids = g.SelectByYear(r.FormValue("select_year"))
	case r.FormValue("select_location") != "":
		ids = g.SelectByLocation(r.FormValue("select_location"))
	default:
		h.fail(w, r, g, "batch edit", fmt.Errorf("%w: choose which photos to edit", domain.ErrInvalidInput))
		return
	}

	patch := domain.PhotoPatch{
		Location:    r.FormValue("location"),
		Year:        r.FormValue("year"),
		Tags:        domain.ParseTags(r.FormValue("tags")),
		Description: r.FormValue("description"),
	}
	n, err := g.ApplyBatch(ids, patch)
	if err != nil {
		h.fail(w, r, g, "batch edit", err)
		return
	}

	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"updated": n, "stats": toStatsDTO(g)})
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchGrid(sse, g, service.Query{})
	h.patchCounters(sse, g, "Updated "+strconv.Itoa(n)+" photo(s).")
}

// HandleFilter narrows and orders the photo grid.
// GET /admin/filter?q=&year=&location=&missing=&sort=
func (h *GalleryHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	q := queryFrom(r)

	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"photos": toPhotoStateDTOs(g.Filter(q))})
		return
	}

	sse := datastar.NewSSE(w, r)
	h.patchGrid(sse, g, q)
}

// HandlePreview returns the gallery document as it would be committed.
// GET /admin/preview
func (h *GalleryHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	doc, err := g.Preview()
	if err != nil {
		h.fail(w, r, g, "preview gallery", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Security-Policy", "sandbox")
	w.Write([]byte(doc))
}

// HandleCommit writes the pending changes to GitHub.
// POST /admin/commit
// Form: message (optional)
func (h *GalleryHandler) HandleCommit(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := g.Commit(r.Context(), r.FormValue("message"))
	if err != nil {
		h.fail(w, r, g, "commit gallery", err)
		return
	}
	slog.Info("gallery committed", "sha", res.SHA, "edits", res.Edits, "deletions", res.Deletions, "additions", res.Additions)
	h.respondCommit(w, r, g, res)
}

// HandleRetry commits the pending changes on top of the latest remote
// version, after a conflict.
// POST /admin/retry
// Form: message (optional)
func (h *GalleryHandler) HandleRetry(w http.ResponseWriter, r *http.Request) {
	g, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := g.Retry(r.Context(), r.FormValue("message"))
	if err != nil {
		h.fail(w, r, g, "retry gallery commit", err)
		return
	}
	slog.Info("gallery committed after retry", "sha", res.SHA, "previous", res.PreviousSHA)
	h.respondCommit(w, r, g, res)
}

// HandleCommits returns the commit log.
// GET /admin/commits?limit=20
func (h *GalleryHandler) HandleCommits(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.galleries.RecentCommits(r.Context(), limit)
	if err != nil {
		slog.Error("list commits", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commits": toCommitRecordDTOs(records)})
}

// session returns the request's edit session, writing the error response
// when none can be opened.
func (h *GalleryHandler) session(w http.ResponseWriter, r *http.Request) (*service.GallerySession, bool) {
	g, err := h.sessions.Ensure(r.Context(), w, r)
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("open gallery", "error", err)
		}
		writeError(w, status, msg)
		return nil, false
	}
	return g, true
}

// fail reports err. Datastar clients see it in the status banner.
func (h *GalleryHandler) fail(w http.ResponseWriter, r *http.Request, g *service.GallerySession, op string, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op, "error", err)
	} else {
		slog.Debug(op, "error", err)
	}
	if isDatastar(r) {
		sse := datastar.NewSSE(w, r)
		h.patchCounters(sse, g, msg)
		return
	}
	writeError(w, status, msg)
}

func (h *GalleryHandler) respondCommit(w http.ResponseWriter, r *http.Request, g *service.GallerySession, res *service.CommitResult) {
	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"commit": toCommitResultDTO(res), "stats": toStatsDTO(g)})
		return
	}
	h.respondApp(w, r, g, "Committed "+shortSHA(res.SHA)+".")
}

func (h *GalleryHandler) respondApp(w http.ResponseWriter, r *http.Request, g *service.GallerySession, notice string) {
	if !isDatastar(r) {
		writeJSON(w, http.StatusOK, map[string]any{"stats": toStatsDTO(g)})
		return
	}
	sse := datastar.NewSSE(w, r)
	sse.PatchElementTempl(
		view.GalleryApp(h.galleryView(r, g, service.Query{}, notice)),
		datastar.WithSelectorID(view.AppID),
		datastar.WithModeInner(),
	)
}

func (h *GalleryHandler) patchGrid(sse *datastar.ServerSentEventGenerator, g *service.GallerySession, q service.Query) {
	sse.PatchElementTempl(
		view.PhotoGrid(g.Filter(q), g.Settings()),
		datastar.WithSelectorID(view.GridID),
		datastar.WithModeInner(),
	)
}

// patchCounters refreshes the stats bar and the status banner.
func (h *GalleryHandler) patchCounters(sse *datastar.ServerSentEventGenerator, g *service.GallerySession, notice string) {
	sse.PatchElementTempl(
		view.StatsBar(g.Stats()),
		datastar.WithSelectorID(view.StatsID),
		datastar.WithModeInner(),
	)
	sse.PatchElementTempl(
		view.CommitStatus(g.State(), notice),
		datastar.WithSelectorID(view.StatusID),
		datastar.WithModeInner(),
	)
}

func (h *GalleryHandler) galleryView(r *http.Request, g *service.GallerySession, q service.Query, notice string) view.Gallery {
	if notice == "" {
		if err := g.LastError(); err != nil {
			_, notice = errorStatus(err)
		}
	}
	commits, err := h.galleries.RecentCommits(r.Context(), recentCommitsShown)
	if err != nil {
		slog.Warn("list recent commits", "error", err)
	}
	return view.Gallery{
		Settings: g.Settings(),
		Photos:   g.Filter(q),
		Deleted:  g.Deleted(),
		Stats:    g.Stats(),
		Facets:   g.Facets(),
		Query:    q,
		State:    g.State(),
		Notice:   notice,
		Commits:  commits,
	}
}

func queryFrom(r *http.Request) service.Query {
	v := r.URL.Query()
	return service.Query{
		Search:   v.Get("q"),
		Year:     v.Get("year"),
		Location: v.Get("location"),
		Missing:  v.Get("missing"),
		Sort:     v.Get("sort"),
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
