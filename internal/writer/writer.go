// Package writer creates projects, ideas, and experiments and rewrites their
// status in place.
//
// Every operation validates its input and resolves its parents before the
// first filesystem mutation, so a rejected call leaves the tree untouched.
// Existing files are only ever rewritten field by field.
package writer

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// Writer mutates the notes tree behind a Vault.
type Writer struct {
	vault   *vault.Vault
	storage config.StorageConfig
	now     func() time.Time
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithStorage sets how AttachArtifact treats large files.
func WithStorage(s config.StorageConfig) Option {
	return func(w *Writer) { w.storage = s }
}

// New returns a Writer for v.
func New(v *vault.Vault, opts ...Option) *Writer {
	w := &Writer{
		vault:   v,
		storage: config.DefaultWorkspace().Storage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Writer) log() *zap.Logger { return w.vault.Logger() }

// Result describes a completed write.
type Result struct {
	// Entity is the created or updated entity, re-read from disk.
	Entity *vault.Entity
	// Touched lists other existing files that were rewritten, such as the
	// parent's metadata file or validation.md.
	Touched []string
	// Created lists the files that did not exist before the call.
	Created []string
	// Timestamp is the value written to created/updated.
	Timestamp time.Time
}

// Ref names an entity by the titles along its path. Project is always set;
// Idea and Experiment narrow the reference to deeper levels.
type Ref struct {
	Project    string
	Idea       string
	Experiment string
}

// Kind returns the kind of entity the reference points at.
func (r Ref) Kind() model.Kind {
	switch {
	case r.Experiment != "":
		return model.KindExperiment
	case r.Idea != "":
		return model.KindIdea
	default:
		return model.KindProject
	}
}

func (r Ref) String() string {
	parts := []string{r.Project}
	if r.Idea != "" {
		parts = append(parts, r.Idea)
	}
	if r.Experiment != "" {
		parts = append(parts, r.Experiment)
	}
	return strings.Join(parts, " / ")
}

// Resolve looks up the referenced entity.
func (w *Writer) Resolve(r Ref) (*vault.Entity, error) {
	if strings.TrimSpace(r.Project) == "" {
		return nil, &model.ValidationError{Field: "project", Reason: "project title is required"}
	}
	if r.Experiment != "" && r.Idea == "" {
		return nil, &model.ValidationError{Field: "idea", Reason: "an experiment reference needs its idea"}
	}
	switch r.Kind() {
	case model.KindExperiment:
		return w.vault.Experiment(r.Project, r.Idea, r.Experiment)
	case model.KindIdea:
		return w.vault.Idea(r.Project, r.Idea)
	default:
		return w.vault.Project(r.Project)
	}
}

// CollisionError is returned when the entity to create already exists, either
// by title within its parent or by directory name.
type CollisionError struct {
	Kind  model.Kind
	Title string
	Path  string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s '%s' already exists at %s", e.Kind, e.Title, e.Path)
}

// bumpUpdated sets the updated field of an existing metadata file. A parent
// that cannot be rewritten is logged; the child has already been written.
func (w *Writer) bumpUpdated(metaPath string, now time.Time) bool {
	err := atomicfile.Update(metaPath, func(content string) (string, error) {
		return parser.SetFields(content, parser.Field{Key: "updated", Value: now})
	})
	if err != nil {
		w.log().Warn("could not bump parent updated timestamp", zap.String("path", metaPath), zap.Error(err))
		return false
	}
	return true
}
