package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/fluentdeck/internal/config"
	"github.com/conorfennell/fluentdeck/internal/deck"
	"github.com/conorfennell/fluentdeck/internal/logging"
	"github.com/conorfennell/fluentdeck/internal/storage"
	"github.com/conorfennell/fluentdeck/internal/store"
	"github.com/conorfennell/fluentdeck/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "fluentdeck: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// 1. Configuration and logging
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Progress storage. Without a database the tracker runs in memory only.
	var slot storage.Slot
	if cfg.DB.Path != "" {
		db, err := storage.Open(cfg.DB.Path)
		if err != nil {
			logger.Warn("Progress storage unavailable, progress will not be saved", "path", cfg.DB.Path, "error", err)
		} else {
			defer db.Close()
			slot = db
			logger.Info("Database opened", "path", cfg.DB.Path)
		}
	}
	st := store.New(storage.NewProgressRepository(slot, logger), store.WithLogger(logger))
	st.Hydrate(ctx)

	// 3. Study content
	reload := func(ctx context.Context) (*deck.Library, error) {
		return loadLibrary(ctx, cfg, logger)
	}
	lib, err := reload(ctx)
	if lib == nil {
		return err
	}
	if err != nil {
		logger.Warn("Some decks failed to load", "error", err)
	}
	logger.Info("Study content loaded", "decks", len(lib.Categories()), "verbs", len(lib.Verbs()))

	// 4. HTTP API
	srv := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: web.NewServer(st, lib, web.Options{
			CardCount:  cfg.Drill.CardCount,
			VerbRounds: cfg.Drill.VerbRounds,
			Reload:     reload,
			Logger:     logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.HTTP.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadLibrary syncs the configured git sources and loads every deck
// directory plus the verb dataset. A returned library with a non-nil error
// means some decks were skipped.
func loadLibrary(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*deck.Library, error) {
	var dirs []string
	if cfg.Decks.Dir != "" {
		if _, err := os.Stat(cfg.Decks.Dir); err != nil {
			logger.Warn("Deck directory unavailable", "dir", cfg.Decks.Dir, "error", err)
		} else {
			dirs = append(dirs, cfg.Decks.Dir)
		}
	}
	dirs = append(dirs, deck.SyncSources(ctx, cfg.Decks.Sources, cfg.Decks.ReposDir, logger)...)

	lib, loadErr := deck.LoadDirs(logger, dirs...)
	if lib == nil {
		return nil, loadErr
	}

	verbs, err := deck.LoadVerbs(cfg.Decks.Verbs)
	if err != nil {
		return nil, fmt.Errorf("failed to load verbs: %w", err)
	}
	return lib.WithVerbs(verbs), loadErr
}
