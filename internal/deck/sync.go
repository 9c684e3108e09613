package deck

import (
	"context"
	"log/slog"

	"github.com/conorfennell/fluentdeck/internal/gitsource"
)

// SyncSources brings every git deck source up to date under reposDir and
// returns the checkout directories that synced. A failing source is logged
// and skipped so the others still load.
func SyncSources(ctx context.Context, sources []string, reposDir string, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.Default()
	}
	if len(sources) == 0 {
		return nil
	}

	logger.Info("Syncing deck sources", "count", len(sources))
	var dirs []string
	for _, src := range sources {
		local, err := gitsource.LocalPath(reposDir, src)
		if err != nil {
			logger.Error("Error determining local path for git repo", "url", src, "error", err)
			continue
		}
		if err := gitsource.Sync(ctx, src, local, logger); err != nil {
			logger.Error("Error syncing git repo", "url", src, "error", err)
			continue
		}
		dirs = append(dirs, local)
	}
	logger.Info("Deck sync complete", "synced", len(dirs), "failed", len(sources)-len(dirs))
	return dirs
}
