package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
)

func TestCommitLogRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	repo := db.Commits()
	ctx := context.Background()

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		rec := &domain.CommitRecord{
			Path:        "photos.html",
			Message:     fmt.Sprintf("commit %d", i),
			PreviousSHA: fmt.Sprintf("sha-%d", i),
			NewSHA:      fmt.Sprintf("sha-%d", i+1),
			Edits:       i,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(ctx, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.ID == 0 {
			t.Fatal("expected ID to be set")
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d records, want 2", len(recent))
	}
	if recent[0].Message != "commit 3" || recent[1].Message != "commit 2" {
		t.Errorf("order = %q, %q", recent[0].Message, recent[1].Message)
	}
	if recent[0].Edits != 3 || recent[0].NewSHA != "sha-4" {
		t.Errorf("record = %+v", recent[0])
	}
	if !recent[0].CreatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("created_at = %v", recent[0].CreatedAt)
	}
}

func TestCommitLogRepository_Empty(t *testing.T) {
	db := newTestDB(t)

	recent, err := db.Commits().ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("got %d records, want 0", len(recent))
	}
}
