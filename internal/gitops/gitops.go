// Package gitops versions generated documentation in a git repository. It
// wraps go-git so no git binary is required at runtime.
package gitops

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// gitignore keeps the state database out of version control.
const gitignore = ".pbnj/\n"

// committer is the identity used when the repository has no configured user.
var committer = object.Signature{Name: "pbnj", Email: "pbnj@localhost"}

// Client operates on the git repository rooted at a project directory.
type Client struct {
	dir    string
	logger *slog.Logger
}

// New creates a client for the repository at dir.
func New(dir string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{dir: dir, logger: logger}
}

// IsRepo reports whether dir is inside an initialized repository.
func (c *Client) IsRepo() bool {
	_, err := git.PlainOpen(c.dir)
	return err == nil
}

// Init creates a repository at dir with a .gitignore excluding the state
// directory, and commits it. Initializing an existing repository is an error.
func (c *Client) Init() error {
	if _, err := git.PlainInit(c.dir, false); err != nil {
		if errors.Is(err, git.ErrRepositoryAlreadyExists) {
			return fmt.Errorf("repository already initialized at %s", c.dir)
		}
		return fmt.Errorf("init repository: %w", err)
	}

	path := filepath.Join(c.dir, ".gitignore")
	if err := os.WriteFile(path, []byte(gitignore), 0o600); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}

	hash, committed, err := c.CommitAll("Initialize documentation repository")
	if err != nil {
		return err
	}
	if committed {
		c.logger.Info("repository initialized", "dir", c.dir, "commit", hash)
	}
	return nil
}

// CommitAll stages every change and commits it. A clean worktree commits
// nothing and returns committed=false.
func (c *Client) CommitAll(message string) (string, bool, error) {
	repo, err := git.PlainOpen(c.dir)
	if err != nil {
		return "", false, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", false, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", false, fmt.Errorf("worktree status: %w", err)
	}
	if status.IsClean() {
		c.logger.Debug("worktree clean, nothing to commit", "dir", c.dir)
		return "", false, nil
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", false, fmt.Errorf("stage changes: %w", err)
	}

	sig := committer
	sig.When = time.Now()
	hash, err := wt.Commit(message, &git.CommitOptions{Author: &sig})
	if err != nil {
		return "", false, fmt.Errorf("commit: %w", err)
	}

	c.logger.Info("committed documentation", "commit", hash.String(), "files", len(status))
	return hash.String(), true, nil
}

// Status returns whether the worktree is clean and the sorted list of
// changed paths.
func (c *Client) Status() (bool, []string, error) {
	repo, err := git.PlainOpen(c.dir)
	if err != nil {
		return false, nil, fmt.Errorf("open repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, nil, fmt.Errorf("open worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, nil, fmt.Errorf("worktree status: %w", err)
	}

	files := make([]string, 0, len(status))
	for path := range status {
		files = append(files, path)
	}
	sort.Strings(files)
	return status.IsClean(), files, nil
}
