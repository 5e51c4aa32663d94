// Package testutil provides shared test helpers for setting up the
// posts database and an assets directory.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/mannaz/internal/mediastore"
	"github.com/starford/mannaz/internal/poststore"
)

// TestDB creates a temporary SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *poststore.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mannaz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := poststore.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestAssets creates a temporary assets directory with a media store.
func TestAssets(t *testing.T) (string, *mediastore.FS) {
	t.Helper()
	dir := t.TempDir()
	media, err := mediastore.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, media
}
