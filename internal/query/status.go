package query

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// ByStatus returns every entity in scope whose status equals status
// (case-insensitive). Kinds whose vocabulary does not contain status are
// listed in Result.Skipped instead of being searched.
func ByStatus(v *vault.Vault, status string, scope model.Scope) (*Result, error) {
	scope, err := checkScope(scope)
	if err != nil {
		return nil, err
	}
	want := normalize(status)
	if want == "" {
		return nil, &model.ValidationError{Field: "status", Reason: "status cannot be empty"}
	}

	res := &Result{}
	active := map[model.Kind]bool{}
	for _, kind := range scope.Kinds() {
		if model.ValidStatus(kind, want) {
			active[kind] = true
			continue
		}
		res.Skipped = append(res.Skipped, Skip{
			Kind: kind,
			Reason: fmt.Sprintf("'%s' is not a %s status (valid: %s)",
				status, kind, strings.Join(model.Statuses(kind), ", ")),
		})
	}
	if len(active) == 0 {
		return res, nil
	}

	err = v.Walk(scope, func(e *vault.Entity) error {
		if active[e.Kind] && normalize(e.Status()) == want {
			res.add(Match{Entity: e})
		}
		return nil
	})
	return res, err
}
