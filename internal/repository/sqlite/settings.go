package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/gallery-admin/internal/domain"
)

// SettingsRepository implements domain.SettingsRepository. It keeps a
// single row; tokens and passwords have no column.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SQLite-backed SettingsRepository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db.SqlDB}
}

func (r *SettingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	s := &domain.Settings{}
	err := r.db.QueryRowContext(ctx,
		`SELECT repo_owner, repo_name, branch, gallery_path, image_dir,
		        max_width, jpeg_quality, auto_optimize, updated_at
		 FROM settings WHERE id = 1`,
	).Scan(&s.RepoOwner, &s.RepoName, &s.Branch, &s.GalleryPath, &s.ImageDir,
		&s.MaxWidth, &s.JPEGQuality, &s.AutoOptimize, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s *domain.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, repo_owner, repo_name, branch, gallery_path, image_dir,
		                       max_width, jpeg_quality, auto_optimize, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   repo_owner = excluded.repo_owner,
		   repo_name = excluded.repo_name,
		   branch = excluded.branch,
		   gallery_path = excluded.gallery_path,
		   image_dir = excluded.image_dir,
		   max_width = excluded.max_width,
		   jpeg_quality = excluded.jpeg_quality,
		   auto_optimize = excluded.auto_optimize,
		   updated_at = excluded.updated_at`,
		s.RepoOwner, s.RepoName, s.Branch, s.GalleryPath, s.ImageDir,
		s.MaxWidth, s.JPEGQuality, s.AutoOptimize, s.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
