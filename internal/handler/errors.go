package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/github"
)

// errorStatus maps an error to a response status and a message that is
// safe to show to the admin.
func errorStatus(err error) (int, string) {
	var remote *github.RemoteError
	switch {
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "The gallery changed on GitHub since it was loaded. Retry to commit on top of the latest version."
	case errors.Is(err, domain.ErrCommitInProgress):
		return http.StatusConflict, "A commit is already in progress."
	case errors.Is(err, domain.ErrNothingToCommit):
		return http.StatusBadRequest, "There are no changes to commit."
	case errors.Is(err, domain.ErrNotConfigured):
		return http.StatusServiceUnavailable, "The gallery repository is not configured."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "The gallery file was not found."
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "GitHub rejected the access token."
	case errors.Is(err, domain.ErrGalleryNotFound),
		errors.Is(err, domain.ErrGalleryAmbiguous),
		errors.Is(err, domain.ErrMalformedGallery):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.As(err, &remote):
		return http.StatusBadGateway, "GitHub error: " + remote.Message
	default:
		return http.StatusInternalServerError, "An unexpected error occurred. Please try again."
	}
}
