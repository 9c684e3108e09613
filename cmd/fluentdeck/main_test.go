package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorfennell/fluentdeck/internal/config"
)

func TestLoadLibrary(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	deckFile := filepath.Join(dir, "greetings.md")
	if err := os.WriteFile(deckFile, []byte("PT: Olá\nEN: Hello\n---\nPT: Tchau\nEN: Bye\n"), 0o644); err != nil {
		t.Fatalf("Failed to write deck: %v", err)
	}

	t.Run("loads deck directory", func(t *testing.T) {
		cfg := &config.Config{Decks: config.DecksConfig{Dir: dir, ReposDir: t.TempDir()}}
		lib, err := loadLibrary(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("loadLibrary() returned an unexpected error: %v", err)
		}
		cats := lib.Categories()
		if len(cats) != 1 || cats[0].Cards != 2 {
			t.Errorf("Expected one deck with 2 cards, but got %+v", cats)
		}
	})

	t.Run("missing deck directory is skipped", func(t *testing.T) {
		cfg := &config.Config{Decks: config.DecksConfig{Dir: filepath.Join(dir, "nope"), ReposDir: t.TempDir()}}
		lib, err := loadLibrary(context.Background(), cfg, logger)
		if err != nil {
			t.Fatalf("loadLibrary() returned an unexpected error: %v", err)
		}
		if len(lib.Categories()) != 0 {
			t.Errorf("Expected no decks, but got %+v", lib.Categories())
		}
	})

	t.Run("bad verbs file fails", func(t *testing.T) {
		verbs := filepath.Join(dir, "verbs.yaml")
		if err := os.WriteFile(verbs, []byte("- [unclosed"), 0o644); err != nil {
			t.Fatalf("Failed to write verbs: %v", err)
		}
		cfg := &config.Config{Decks: config.DecksConfig{Dir: dir, Verbs: verbs, ReposDir: t.TempDir()}}
		if _, err := loadLibrary(context.Background(), cfg, logger); err == nil {
			t.Error("Expected an error for an unparsable verbs file")
		}
	})
}
