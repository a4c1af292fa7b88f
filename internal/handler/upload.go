package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
	"github.com/msomdec/gallery-admin/internal/view"
)

const multipartMemory = 32 << 20

// HandleUpload optimizes, uploads and publishes new photos.
// POST /admin/uploads
// Multipart: photos (one or more files), alt, location, year, tags, message
func (h *GalleryHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.uploadFailed(w, r, nil, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Uploads are limited to %d MB.", h.maxUpload>>20))
			return
		}
		h.uploadFailed(w, r, nil, http.StatusBadRequest, "Invalid upload.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		h.uploadFailed(w, r, nil, http.StatusBadRequest, "Choose at least one photo.")
		return
	}

	tags := domain.ParseTags(r.FormValue("tags"))
	uploads := make([]service.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			slog.Error("open uploaded file", "error", err)
			h.uploadFailed(w, r, nil, http.StatusBadRequest, "Could not read "+fh.Filename+".")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.Error("read uploaded file", "error", err)
			h.uploadFailed(w, r, nil, http.StatusBadRequest, "Could not read "+fh.Filename+".")
			return
		}
		uploads = append(uploads, service.Upload{
			Filename: fh.Filename,
			Data:     data,
			Alt:      r.FormValue("alt"),
			Location: r.FormValue("location"),
			Year:     r.FormValue("year"),
			Tags:     tags,
		})
	}

	g, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := g.PublishUploads(r.Context(), uploads, h.workers, r.FormValue("message"))
	if err != nil {
		status, msg := errorStatus(err)
		if status >= http.StatusInternalServerError {
			slog.Error("publish uploads", "error", err)
		}
		var photos []service.PublishedPhoto
		if res != nil {
			photos = res.Photos
		}
		h.uploadFailed(w, r, photos, status, msg)
		return
	}
	slog.Info("photos published", "count", len(res.Photos), "sha", res.Commit.SHA)

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"photos": toUploadedPhotoDTOs(res.Photos),
			"commit": toCommitResultDTO(res.Commit),
		})
		return
	}
	w.WriteHeader(http.StatusCreated)
	view.UploadResult(res.Photos, "").Render(r.Context(), w)
}

func (h *GalleryHandler) uploadFailed(w http.ResponseWriter, r *http.Request, photos []service.PublishedPhoto, status int, msg string) {
	if wantsJSON(r) {
		writeError(w, status, msg)
		return
	}
	w.WriteHeader(status)
	view.UploadResult(photos, msg).Render(r.Context(), w)
}

