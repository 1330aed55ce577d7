// Package watcher keeps the SQLite mirror in step with edits made to the
// notes tree while `lab watch` is running.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/index"
	"github.com/aidanlsb/labnotes/internal/logging"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// DefaultDebounce is how long a path must stay quiet before it is re-read.
const DefaultDebounce = 100 * time.Millisecond

// Watcher monitors projects/ and refreshes index rows for changed entities.
type Watcher struct {
	vault         *vault.Vault
	db            *index.Database
	debounceDelay time.Duration
	log           *zap.Logger

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex

	onReindex func(path string, err error)
	ready     chan struct{}
}

// Config holds configuration options for the Watcher.
type Config struct {
	Vault         *vault.Vault
	Database      *index.Database
	DebounceDelay time.Duration // Default: DefaultDebounce
	Logger        *zap.Logger
	// OnReindex is called after every refresh attempt, with the absolute
	// path of the metadata file.
	OnReindex func(path string, err error)
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Vault == nil {
		return nil, errors.New("vault is required")
	}
	if cfg.Database == nil {
		return nil, errors.New("database is required")
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		vault:         cfg.Vault,
		db:            cfg.Database,
		debounceDelay: debounce,
		log:           logging.OrNop(cfg.Logger).Named("watcher"),
		pending:       make(map[string]time.Time),
		onReindex:     cfg.OnReindex,
		ready:         make(chan struct{}),
	}, nil
}

// Ready is closed once the initial watches are in place.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Start watches projects/ until ctx is cancelled. It returns nil on
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	root := w.vault.ProjectsDir()
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return fmt.Errorf("projects directory %s is missing", root)
	}

	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	w.addWatchRecursive(root, false)
	w.log.Debug("watching", zap.String("dir", root))
	close(w.ready)

	done := make(chan struct{})
	defer func() { <-done }()
	go func() {
		defer close(done)
		w.processDebounced(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// ReindexFile refreshes the row of one metadata file. Paths that are not
// entity files are ignored.
func (w *Watcher) ReindexFile(path string) error {
	if !filepath.IsAbs(path) {
		path = filepath.Join(w.vault.Root, path)
	}
	_, err := w.db.Refresh(w.vault, path)
	return err
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	_, isEntity := paths.EntityFromRel(paths.Rel(w.vault.Root, path))

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// Files written before the watch was added produce no events.
			w.addWatchRecursive(path, true)
			return
		}
		if isEntity {
			w.scheduleReindex(path)
		}

	case event.Has(fsnotify.Write):
		if isEntity {
			w.scheduleReindex(path)
		}

	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if isEntity {
			// Refresh drops the row once the file is gone.
			w.scheduleReindex(path)
			return
		}
		rel := paths.Rel(w.vault.Root, path)
		if n, err := w.db.RemoveUnder(rel); err != nil {
			w.log.Warn("failed to drop rows", zap.String("dir", rel), zap.Error(err))
		} else if n > 0 {
			w.log.Debug("dropped rows", zap.String("dir", rel), zap.Int64("rows", n))
		}
	}
}

func (w *Watcher) scheduleReindex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounceDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending refreshes every path that has been quiet for the debounce
// delay.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounceDelay {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		err := w.ReindexFile(path)
		if w.onReindex != nil {
			w.onReindex(path, err)
		}
		if err != nil {
			w.log.Warn("failed to reindex", zap.String("path", path), zap.Error(err))
		} else {
			w.log.Debug("reindexed", zap.String("path", path))
		}
	}
}

// addWatchRecursive watches dir and every directory below it. With schedule
// set, entity files already present are queued for a refresh.
func (w *Watcher) addWatchRecursive(dir string, schedule bool) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if shouldIgnoreDir(d.Name()) {
				return filepath.SkipDir
			}
			if err := w.fsWatcher.Add(path); err != nil {
				w.log.Warn("failed to watch", zap.String("dir", path), zap.Error(err))
			}
			return nil
		}
		if schedule {
			if _, ok := paths.EntityFromRel(paths.Rel(w.vault.Root, path)); ok {
				w.scheduleReindex(path)
			}
		}
		return nil
	})
}

// Artifacts can hold large datasets, and nothing in them is indexed.
func shouldIgnoreDir(name string) bool {
	return name == paths.ArtifactsDir || strings.HasPrefix(name, ".")
}
