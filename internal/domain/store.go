package domain

import "context"

// RemoteFile is a file read from the remote content store.
type RemoteFile struct {
	Path    string
	Content []byte
	SHA     string // Version token; changes on every successful write
}

// ContentStore is a path-addressed, versioned file store (a GitHub repository).
type ContentStore interface {
	ReadFile(ctx context.Context, path string) (*RemoteFile, error)
	// WriteFile replaces an existing file. It fails with ErrConflict when sha
	// no longer matches the remote version.
	WriteFile(ctx context.Context, path string, content []byte, sha, message string) (newSHA string, err error)
	// UploadBinary creates a new file. The path must not exist yet.
	UploadBinary(ctx context.Context, path string, data []byte, message string) error
}
