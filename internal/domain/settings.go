package domain

import (
	"context"
	"time"
)

// Settings are the tunables an admin may ask the server to remember.
// Access tokens and passwords are deliberately not part of this type.
type Settings struct {
	RepoOwner    string
	RepoName     string
	Branch       string
	GalleryPath  string
	ImageDir     string
	MaxWidth     int
	JPEGQuality  int
	AutoOptimize bool
	UpdatedAt    time.Time
}

// DefaultSettings returns the settings used before anything was remembered.
func DefaultSettings() Settings {
	return Settings{
		Branch:       "main",
		GalleryPath:  "photos.html",
		ImageDir:     "images",
		MaxWidth:     1920,
		JPEGQuality:  85,
		AutoOptimize: true,
	}
}

// SettingsRepository persists remembered settings.
type SettingsRepository interface {
	Get(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}

// CommitRecord is an audit entry for a successful gallery commit.
type CommitRecord struct {
	ID          int64
	Path        string
	Message     string
	PreviousSHA string
	NewSHA      string
	Edits       int
	Deletions   int
	Additions   int
	CreatedAt   time.Time
}

// CommitLogRepository stores CommitRecords.
type CommitLogRepository interface {
	Create(ctx context.Context, record *CommitRecord) error
	ListRecent(ctx context.Context, limit int) ([]CommitRecord, error)
}
