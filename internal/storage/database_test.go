package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSlotRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	t.Run("empty slot", func(t *testing.T) {
		_, ok, err := db.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected empty slot to report not found")
		}
	})

	t.Run("put replaces value", func(t *testing.T) {
		if err := db.Put(ctx, "k", "first"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := db.Put(ctx, "k", "second"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		got, ok, err := db.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("Expected value, but got ok=%v err=%v", ok, err)
		}
		if got != "second" {
			t.Errorf("Expected 'second', but got '%s'", got)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := db.Delete(ctx, "k"); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, ok, _ := db.Get(ctx, "k"); ok {
			t.Error("Expected slot to be empty after delete")
		}
		if err := db.Delete(ctx, "k"); err != nil {
			t.Errorf("Expected deleting an empty slot to succeed, but got %v", err)
		}
	})
}

func TestOpenPersistsAcrossConnections(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Put(ctx, StorageKey, "{}"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	db.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer reopened.Close()
	if got, ok, _ := reopened.Get(ctx, StorageKey); !ok || got != "{}" {
		t.Errorf("Expected stored value to survive reopen, but got '%s' (ok=%v)", got, ok)
	}
}
