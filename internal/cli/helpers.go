package cli

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/gitrepo"
	"github.com/aidanlsb/labnotes/internal/index"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/vault"
	"github.com/aidanlsb/labnotes/internal/writer"
)

// entityJSON is the JSON shape of an entity in command output.
type entityJSON struct {
	Kind     model.Kind `json:"kind"`
	Title    string     `json:"title"`
	Status   string     `json:"status,omitempty"`
	Type     string     `json:"type,omitempty"`
	Project  string     `json:"project,omitempty"`
	Idea     string     `json:"idea,omitempty"`
	Tags     []string   `json:"tags"`
	Priority string     `json:"priority,omitempty"`
	Created  string     `json:"created,omitempty"`
	Updated  string     `json:"updated,omitempty"`
	Path     string     `json:"path"`
}

func toEntityJSON(e *vault.Entity) entityJSON {
	row := index.RowFromEntity(e)
	return entityJSON{
		Kind:     row.Kind,
		Title:    row.Title,
		Status:   row.Status,
		Type:     e.Meta.String("type"),
		Project:  row.Project,
		Idea:     row.Idea,
		Tags:     row.Tags,
		Priority: row.Priority,
		Created:  row.Created,
		Updated:  row.Updated,
		Path:     row.Path,
	}
}

// parentContext renders "Project / Idea" for an entity's parents.
func parentContext(e *vault.Entity) string {
	switch {
	case e.IdeaTitle != "":
		return e.ProjectTitle + " / " + e.IdeaTitle
	default:
		return e.ProjectTitle
	}
}

func newWriter() *writer.Writer {
	return writer.New(sess.vault,
		writer.WithClock(now),
		writer.WithStorage(sess.workspace.Storage),
	)
}

// openIndex opens the sqlite mirror configured for the root.
func openIndex() (*index.Database, error) {
	db, err := index.Open(sess.workspace.DatabasePath(sess.root))
	if err != nil {
		return nil, withCode(ErrDatabaseError, err, "Run 'lab reindex' to rebuild it")
	}
	return db, nil
}

// afterWrite runs the collaborators enabled in config.yaml once a write
// command has succeeded: the sqlite mirror is refreshed for every touched
// entity file and the change is committed. Their failures are warnings;
// the notes on disk are already correct.
func afterWrite(message string, files ...string) []Warning {
	var warnings []Warning
	ws := sess.workspace

	if ws.Database.Enabled {
		if err := refreshIndex(files); err != nil {
			sess.log.Warn("index update failed", zap.Error(err))
			warnings = append(warnings, Warning{
				Code:    WarnIndexUpdateFailed,
				Message: fmt.Sprintf("index not updated: %v (run 'lab reindex')", err),
			})
		}
	}

	if ws.Git.AutoCommit {
		warnings = append(warnings, autoCommit(message)...)
	}

	if ws.Notion.SyncOnChange {
		warnings = append(warnings, Warning{
			Code:    WarnUnsupported,
			Message: "notion.sync_on_change is set, but sync only runs through 'lab sync'",
		})
	}
	return warnings
}

func refreshIndex(files []string) error {
	db, err := openIndex()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, f := range files {
		if _, ok := paths.EntityFromRel(paths.Rel(sess.root, f)); !ok {
			continue
		}
		if _, err := db.Refresh(sess.vault, f); err != nil {
			return err
		}
	}
	return nil
}

func autoCommit(message string) []Warning {
	ws := sess.workspace
	var warnings []Warning

	if !gitrepo.IsRepository(sess.root) {
		return []Warning{{
			Code:    WarnCommitFailed,
			Message: "git.auto_commit is set, but the root is not a git repository (run 'lab git init')",
		}}
	}
	msg := gitrepo.CommitMessage(ws.Git.CommitMessagePrefix, message)
	if _, err := gitrepo.CommitAll(sess.root, msg, now()); err != nil && !errors.Is(err, gitrepo.ErrNothingToCommit) {
		sess.log.Warn("auto-commit failed", zap.Error(err))
		warnings = append(warnings, Warning{Code: WarnCommitFailed, Message: "auto-commit failed: " + err.Error()})
	}
	if ws.Git.AutoPush {
		warnings = append(warnings, Warning{
			Code:    WarnUnsupported,
			Message: "git.auto_push is not supported; push the repository yourself",
		})
	}
	return warnings
}

// resultFiles lists every file a writer result changed.
func resultFiles(res *writer.Result) []string {
	files := []string{res.Entity.MetaPath}
	files = append(files, res.Touched...)
	return append(files, res.Created...)
}

// finish prints the outcome of a command: data in the JSON envelope, or
// the text lines followed by any warnings.
func finish(data interface{}, warnings []Warning, meta *Meta, text func()) {
	if jsonOutput {
		if meta != nil && meta.Root == "" && sess != nil {
			meta.Root = sess.root
		}
		outputSuccess(data, warnings, meta)
		return
	}
	text()
	printWarnings(warnings)
}
