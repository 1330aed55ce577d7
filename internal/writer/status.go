package writer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/parser"
	"github.com/aidanlsb/labnotes/internal/paths"
	"github.com/aidanlsb/labnotes/internal/template"
)

// StatusResult extends Result with the status transition.
type StatusResult struct {
	Result
	Previous string
	Status   string
	// Validated reports whether validation.md now carries a validated
	// timestamp (ideas moved to validated or rejected).
	Validated bool
}

// UpdateStatus sets the status of the referenced entity and stamps updated.
//
// For ideas the status is mirrored into validation.md: its validated field
// is set to now for the terminal statuses validated and rejected and cleared
// to null otherwise. A missing validation.md is recreated.
func (w *Writer) UpdateStatus(ref Ref, status string) (*StatusResult, error) {
	kind := ref.Kind()
	canonical, err := model.CheckStatus(kind, status)
	if err != nil {
		return nil, err
	}

	e, err := w.Resolve(ref)
	if err != nil {
		return nil, err
	}

	now := w.now()
	err = atomicfile.Update(e.MetaPath, func(content string) (string, error) {
		return parser.SetFields(content,
			parser.Field{Key: "status", Value: canonical},
			parser.Field{Key: "updated", Value: now},
		)
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", e.RelPath, err)
	}

	res := &StatusResult{
		Result:   Result{Timestamp: now},
		Previous: e.Status(),
		Status:   canonical,
	}

	if kind == model.KindIdea {
		path, created, err := w.mirrorValidation(e.Dir, e.Title(), e.ProjectTitle, canonical, now)
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", paths.ValidationFile, err)
		}
		if created {
			res.Created = append(res.Created, path)
		} else {
			res.Touched = append(res.Touched, path)
		}
		res.Validated = isTerminal(canonical)
	}

	res.Entity = w.vault.Load(kind, e.Dir)
	return res, nil
}

func isTerminal(ideaStatus string) bool {
	return ideaStatus == "validated" || ideaStatus == "rejected"
}

// mirrorValidation writes status (and the validated stamp) into the
// validation.md of ideaDir, recreating the file from its template when it is
// missing. It reports whether the file had to be created.
func (w *Writer) mirrorValidation(ideaDir, ideaTitle, projectTitle, status string, now time.Time) (string, bool, error) {
	path := filepath.Join(ideaDir, paths.ValidationFile)

	var validated any
	if isTerminal(status) {
		validated = now
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		vars := template.NewVariables(ideaTitle, string(model.KindIdea), filepath.Base(ideaDir), now)
		vars.Project = projectTitle
		if err := w.writeValidation(path, ideaTitle, status, vars); err != nil {
			return path, false, err
		}
		w.log().Debug("recreated missing validation file", zap.String("path", path))
		if validated == nil {
			return path, true, nil
		}
		return path, true, atomicfile.Update(path, func(content string) (string, error) {
			return parser.SetFields(content, parser.Field{Key: "validated", Value: validated})
		})
	}

	err := atomicfile.Update(path, func(content string) (string, error) {
		return parser.SetFields(content,
			parser.Field{Key: "status", Value: status},
			parser.Field{Key: "validated", Value: validated},
		)
	})
	return path, false, err
}
