// Shared helpers for the store integration tests. Everything here talks
// to a real PostgreSQL; tests skip when none is reachable.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"propage/internal/database"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB connects to the test database, migrates it to the current schema,
// and registers a close on test cleanup. Defaults line up with
// docker-compose.yml; POSTGRES_* variables override them.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("POSTGRES_USER", "propage"),
		envOr("POSTGRES_PASSWORD", "changeme"),
		envOr("POSTGRES_HOST", "localhost"),
		envOr("POSTGRES_PORT", "5432"),
		envOr("POSTGRES_DB", "propage"),
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	// Migrate points goose at the embedded FS; put the global back.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanProfiles removes test profiles by email. Call in t.Cleanup().
func cleanProfiles(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM profiles WHERE email = $1", email)
	}
}

// cleanTemplates removes test templates by slug. Nested rows go with the
// foreign-key cascades. Call in t.Cleanup().
func cleanTemplates(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, slug := range slugs {
		db.Exec("DELETE FROM profile_templates WHERE slug = $1", slug)
	}
}

// cleanImages removes test image records by storage key. Call in t.Cleanup().
func cleanImages(t *testing.T, db *sql.DB, keys ...string) {
	t.Helper()
	for _, key := range keys {
		db.Exec("DELETE FROM images WHERE s3_key = $1", key)
	}
}
