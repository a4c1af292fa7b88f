package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

// CommitLogRepository implements domain.CommitLogRepository.
type CommitLogRepository struct {
	db *sql.DB
}

// NewCommitLogRepository creates a new SQLite-backed CommitLogRepository.
func NewCommitLogRepository(db *DB) *CommitLogRepository {
	return &CommitLogRepository{db: db.SqlDB}
}

func (r *CommitLogRepository) Create(ctx context.Context, rec *domain.CommitRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO commit_log (path, message, previous_sha, new_sha, edits, deletions, additions, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Path, rec.Message, rec.PreviousSHA, rec.NewSHA, rec.Edits, rec.Deletions, rec.Additions, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert commit record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id
	return nil
}

// ListRecent returns up to limit records, newest first.
func (r *CommitLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.CommitRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, path, message, previous_sha, new_sha, edits, deletions, additions, created_at
		 FROM commit_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query commit log: %w", err)
	}
	defer rows.Close()

	var records []domain.CommitRecord
	for rows.Next() {
		var rec domain.CommitRecord
		if err := rows.Scan(&rec.ID, &rec.Path, &rec.Message, &rec.PreviousSHA, &rec.NewSHA,
			&rec.Edits, &rec.Deletions, &rec.Additions, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commit record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
