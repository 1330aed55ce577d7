package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/gitrepo"
	"github.com/aidanlsb/labnotes/internal/index"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/notion"
	"github.com/aidanlsb/labnotes/internal/shellquote"
	"github.com/aidanlsb/labnotes/internal/vault"
	"github.com/aidanlsb/labnotes/internal/writer"
)

// Error codes for structured error responses.
const (
	ErrRootNotFound     = "ROOT_NOT_FOUND"
	ErrConfigInvalid    = "CONFIG_INVALID"
	ErrObjectNotFound   = "OBJECT_NOT_FOUND"
	ErrObjectExists     = "OBJECT_EXISTS"
	ErrValidationFailed = "VALIDATION_FAILED"
	ErrFileNotFound     = "FILE_NOT_FOUND"
	ErrFileExists       = "FILE_EXISTS"
	ErrDatabaseError    = "DATABASE_ERROR"
	ErrGitError         = "GIT_ERROR"
	ErrInternal         = "INTERNAL_ERROR"
)

// Warning codes for non-fatal issues.
const (
	WarnIndexUpdateFailed = "INDEX_UPDATE_FAILED"
	WarnCommitFailed      = "COMMIT_FAILED"
	WarnUnsupported       = "UNSUPPORTED"
	WarnSkippedKind       = "KIND_SKIPPED"
)

// cliError is an error that already carries its code.
type cliError struct {
	code       string
	err        error
	suggestion string
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func withCode(code string, err error, suggestion string) error {
	return &cliError{code: code, err: err, suggestion: suggestion}
}

// failure is the classified form of an error.
type failure struct {
	Code        string
	Message     string
	Details     interface{}
	Suggestions []string
}

// classify maps an error to its code and the hints shown with it.
func classify(err error) failure {
	f := failure{Code: ErrInternal, Message: err.Error()}

	var (
		ce   *cliError
		re   *config.RootError
		nf   *vault.NotFoundError
		ve   *model.ValidationError
		coll *writer.CollisionError
	)
	switch {
	case errors.As(err, &ce):
		f.Code = ce.code
		if ce.suggestion != "" {
			f.Suggestions = []string{ce.suggestion}
		}

	case errors.As(err, &re), errors.Is(err, config.ErrRootNotFound):
		f.Code = ErrRootNotFound
		f.Suggestions = []string{
			"Pass --root /path/to/research-notes",
			"Set " + config.RootEnvVar,
			"Run 'lab init' to create ~/" + config.DefaultRootName,
		}
		if re != nil {
			f.Details = map[string]interface{}{"tried": re.Tried}
		}

	case errors.As(err, &nf):
		f.Code = ErrObjectNotFound
		if len(nf.Alternatives) > 0 {
			f.Suggestions = []string{"Available: " + strings.Join(nf.Alternatives, ", ")}
		} else {
			f.Suggestions = []string{"Create it with: " + createCommand(nf)}
		}
		f.Details = map[string]interface{}{"kind": nf.Kind, "title": nf.Title, "alternatives": nf.Alternatives}

	case errors.As(err, &ve):
		f.Code = ErrValidationFailed
		if len(ve.Allowed) > 0 {
			f.Suggestions = []string{"Allowed values: " + strings.Join(ve.Allowed, ", ")}
		}
		f.Details = map[string]interface{}{"field": ve.Field, "value": ve.Value}

	case errors.As(err, &coll):
		f.Code = ErrObjectExists
		f.Suggestions = []string{"Choose a different title"}
		f.Details = map[string]interface{}{"kind": coll.Kind, "path": coll.Path}

	case errors.Is(err, notion.ErrNotConfigured):
		f.Code = ErrConfigInvalid
		f.Suggestions = []string{"Edit config.yaml: set notion.enabled, notion.token and notion.database_id"}

	case errors.Is(err, index.ErrIndexLocked):
		f.Code = ErrDatabaseError
		f.Suggestions = []string{"Another process is rebuilding the index; try again shortly"}

	case errors.Is(err, gitrepo.ErrNotRepository):
		f.Code = ErrGitError
		f.Suggestions = []string{"Run 'lab git init' first"}

	case errors.Is(err, os.ErrExist):
		f.Code = ErrFileExists

	case errors.Is(err, os.ErrNotExist):
		f.Code = ErrFileNotFound
	}
	return f
}

// createCommand suggests the command that would create a missing entity.
func createCommand(nf *vault.NotFoundError) string {
	switch nf.Kind {
	case model.KindIdea:
		return shellquote.Command("lab idea new", nf.Parent, nf.Title)
	case model.KindExperiment:
		return shellquote.Command("lab experiment new <project>", nf.Parent, nf.Title)
	default:
		return shellquote.Command("lab project new", nf.Title)
	}
}
