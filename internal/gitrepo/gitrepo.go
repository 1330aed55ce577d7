// Package gitrepo versions the notes root with an embedded git
// implementation, so no git binary is needed.
package gitrepo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	// InitialMessage is the message of the commit made by Init.
	InitialMessage = "Initial commit: Research Notes"
	// DefaultBranch is the branch Init creates.
	DefaultBranch = "main"
	// FallbackAuthor is used when the global git config has no user.name.
	FallbackAuthor = "Research Notes"
	fallbackEmail  = "research-notes@localhost"
)

var (
	// ErrNothingToCommit is returned by CommitAll on a clean worktree.
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrAlreadyInitialized is returned by Init when root is already a repository.
	ErrAlreadyInitialized = errors.New("git repository already initialized")
	// ErrNotRepository is returned when root has no repository.
	ErrNotRepository = errors.New("not a git repository")
)

// IsRepository reports whether root holds a git repository.
func IsRepository(root string) bool {
	_, err := git.PlainOpen(root)
	return err == nil
}

// Init creates a repository at root on DefaultBranch, writes a .gitignore
// with the given patterns when none exists, and commits everything.
func Init(root string, ignore []string, now time.Time) (plumbing.Hash, error) {
	if IsRepository(root) {
		return plumbing.ZeroHash, ErrAlreadyInitialized
	}

	repo, err := git.PlainInitWithOptions(root, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("init repository: %w", err)
	}

	if len(ignore) > 0 {
		if err := writeIgnore(root, ignore); err != nil {
			return plumbing.ZeroHash, err
		}
	}

	return commit(repo, InitialMessage, now, true)
}

// CommitAll stages every change under root (including deletions) and
// commits it.
func CommitAll(root, message string, now time.Time) (plumbing.Hash, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return plumbing.ZeroHash, ErrNotRepository
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("open repository: %w", err)
	}
	return commit(repo, message, now, false)
}

func commit(repo *git.Repository, message string, now time.Time, allowEmpty bool) (plumbing.Hash, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("stage changes: %w", err)
	}

	if !allowEmpty {
		status, err := wt.Status()
		if err != nil {
			return plumbing.ZeroHash, fmt.Errorf("read status: %w", err)
		}
		if status.IsClean() {
			return plumbing.ZeroHash, ErrNothingToCommit
		}
	}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:            Author(now),
		AllowEmptyCommits: allowEmpty,
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit: %w", err)
	}
	return hash, nil
}

// Author returns the commit signature: user.name and user.email from the
// global git config, or FallbackAuthor.
func Author(now time.Time) *object.Signature {
	sig := &object.Signature{Name: FallbackAuthor, Email: fallbackEmail, When: now}
	cfg, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

// Head returns the hash and message of the current commit.
func Head(root string) (plumbing.Hash, string, error) {
	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return plumbing.ZeroHash, "", ErrNotRepository
	}
	if err != nil {
		return plumbing.ZeroHash, "", err
	}
	ref, err := repo.Head()
	if err != nil {
		return plumbing.ZeroHash, "", err
	}
	c, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return plumbing.ZeroHash, "", err
	}
	return ref.Hash(), c.Message, nil
}

func writeIgnore(root string, patterns []string) error {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	content := strings.Join(patterns, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write .gitignore: %w", err)
	}
	return nil
}

// CommitMessage prefixes message with the configured prefix.
func CommitMessage(prefix, message string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return message
	}
	return prefix + " " + message
}
