package migrations_test

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/gallery-admin/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRun(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO settings (id) VALUES (1)"); err != nil {
		t.Fatalf("insert settings: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO settings (id) VALUES (2)"); err == nil {
		t.Fatal("settings must hold a single row")
	}
	if _, err := db.ExecContext(ctx,
		"INSERT INTO commit_log (path, message, previous_sha, new_sha) VALUES ('photos.html', 'm', 'a', 'b')"); err != nil {
		t.Fatalf("insert commit_log: %v", err)
	}
}

func TestRun_Idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := migrations.Run(ctx, db); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if diff := cmp.Diff([]string{"001_settings.sql", "002_commit_log.sql"}, applied); diff != "" {
		t.Errorf("applied mismatch (-want +got):\n%s", diff)
	}
}

func TestRunFS_FailedMigrationRollsBack(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_ok.sql":  {Data: []byte("CREATE TABLE ok (id INTEGER);")},
		"002_bad.sql": {Data: []byte("CREATE TABLE broken (;")},
		"notes.txt":   {Data: []byte("ignored")},
	}
	if err := migrations.RunFS(ctx, db, fsys); err == nil {
		t.Fatal("expected error from broken migration")
	}

	applied, err := migrations.Applied(ctx, db)
	if err != nil {
		t.Fatalf("Applied: %v", err)
	}
	if diff := cmp.Diff([]string{"001_ok.sql"}, applied); diff != "" {
		t.Errorf("applied mismatch (-want +got):\n%s", diff)
	}
}
