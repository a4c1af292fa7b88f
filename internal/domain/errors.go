package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotConfigured    = errors.New("not configured")
	ErrConflict         = errors.New("version conflict")
	ErrCommitInProgress = errors.New("commit already in progress")
	ErrNothingToCommit  = errors.New("nothing to commit")
	ErrGalleryNotFound  = errors.New("gallery container not found")
	ErrGalleryAmbiguous = errors.New("gallery container is not unique")
	ErrMalformedGallery = errors.New("malformed gallery container")
)
