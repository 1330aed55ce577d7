// Package notion prepares the notes tree for an external workspace
// database. The CLI does no network I/O, so the only shipped client prints
// the sync plan.
package notion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aidanlsb/labnotes/internal/config"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// ErrNotConfigured is wrapped by CheckConfig failures.
var ErrNotConfigured = errors.New("notion sync is not configured")

// Properties lists the database columns a Record fills.
var Properties = []string{"Name (Title)", "Type (Select)", "Status (Select)", "Tags (Multi-select)", "Created (Date)", "Updated (Date)", "Priority (Select)"}

// Record is one row of the workspace database.
type Record struct {
	Name     string     `json:"name"`
	Kind     model.Kind `json:"kind"`
	Type     string     `json:"type"`
	Status   string     `json:"status,omitempty"`
	Tags     []string   `json:"tags"`
	Created  string     `json:"created,omitempty"`
	Updated  string     `json:"updated,omitempty"`
	Priority string     `json:"priority,omitempty"`
	Path     string     `json:"path"`
}

// Client pushes records to a workspace database.
type Client interface {
	Push(ctx context.Context, databaseID string, records []Record) (int, error)
}

// CheckConfig rejects a config that cannot be synced.
func CheckConfig(cfg config.NotionConfig) error {
	switch {
	case !cfg.Enabled:
		return fmt.Errorf("%w: set notion.enabled to true in config.yaml", ErrNotConfigured)
	case strings.TrimSpace(cfg.Token) == "":
		return fmt.Errorf("%w: notion.token is empty", ErrNotConfigured)
	case strings.TrimSpace(cfg.DatabaseID) == "":
		return fmt.Errorf("%w: notion.database_id is empty", ErrNotConfigured)
	}
	return nil
}

// Collect builds records for every entity, or for one project and
// everything under it when projectTitle is set.
func Collect(v *vault.Vault, projectTitle string) ([]Record, error) {
	if projectTitle != "" {
		if _, err := v.Project(projectTitle); err != nil {
			return nil, err
		}
	}

	var out []Record
	err := v.Walk(model.ScopeAll, func(e *vault.Entity) error {
		if projectTitle != "" {
			owner := e.ProjectTitle
			if e.Kind == model.KindProject {
				owner = e.Title()
			}
			if !strings.EqualFold(strings.TrimSpace(owner), strings.TrimSpace(projectTitle)) {
				if e.Kind == model.KindProject {
					return vault.SkipChildren
				}
				return nil
			}
		}
		out = append(out, NewRecord(e))
		return nil
	})
	return out, err
}

// NewRecord maps an entity to a record. Projects use their research type as
// Type; ideas and experiments use their kind.
func NewRecord(e *vault.Entity) Record {
	tags := e.Meta.Tags()
	list := tags.List
	if !tags.IsList {
		list = model.SplitTags(tags.Raw)
	}
	if list == nil {
		list = []string{}
	}

	typ := string(e.Kind)
	if e.Kind == model.KindProject {
		if t := e.Meta.String("type"); t != "" {
			typ = t
		}
	}

	return Record{
		Name:     e.Title(),
		Kind:     e.Kind,
		Type:     typ,
		Status:   e.Status(),
		Tags:     list,
		Created:  e.Meta.String("created"),
		Updated:  e.Meta.String("updated"),
		Priority: e.Meta.String("priority"),
		Path:     e.RelPath,
	}
}

// PlanPrinter is a Client that describes the sync instead of performing it.
type PlanPrinter struct {
	Out io.Writer
}

// Push writes one line per record and reports how many would be synced.
func (p *PlanPrinter) Push(ctx context.Context, databaseID string, records []Record) (int, error) {
	fmt.Fprintf(p.Out, "Database ID: %s\n", databaseID)
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		line := fmt.Sprintf("  would sync %-10s %s", r.Kind, r.Name)
		if r.Status != "" {
			line += " [" + r.Status + "]"
		}
		fmt.Fprintln(p.Out, line)
	}
	return len(records), nil
}
