// Package gitsource keeps local checkouts of git repositories that publish
// deck files.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones a git repository if it doesn't exist at the given path,
// or pulls the latest changes if it does.
func Sync(ctx context.Context, repoURL, localPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("Cloning deck repository", "url", repoURL, "path", localPath)
		_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
			URL:      repoURL,
			Depth:    1,
			Progress: io.Discard,
		})
		if err != nil {
			return fmt.Errorf("failed to clone repo %s: %w", repoURL, err)
		}
	case err == nil:
		logger.Info("Pulling deck repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("failed to open existing repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to get worktree for repo at %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("failed to pull changes for repo at %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("error checking path %s: %w", localPath, err)
	}
	return nil
}

// LocalPath maps a repository URL to a checkout directory under baseDir.
// Both https URLs and scp-like "git@host:owner/repo.git" forms are accepted.
func LocalPath(baseDir, repoURL string) (string, error) {
	parsed, err := url.Parse(repoURL)
	if err == nil && (parsed.Scheme == "https" || parsed.Scheme == "http" || parsed.Scheme == "file") {
		p := strings.TrimSuffix(strings.Trim(parsed.Path, "/"), ".git")
		if p == "" {
			return "", fmt.Errorf("could not parse git URL: %s", repoURL)
		}
		host := parsed.Host
		if host == "" {
			host = "local"
		}
		return filepath.Join(baseDir, host, filepath.FromSlash(p)), nil
	}

	user, rest, ok := strings.Cut(repoURL, "@")
	if ok && user != "" {
		host, p, ok := strings.Cut(rest, ":")
		if ok && host != "" && p != "" {
			return filepath.Join(baseDir, host, filepath.FromSlash(strings.TrimSuffix(p, ".git"))), nil
		}
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
