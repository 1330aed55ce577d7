package vault

import (
	"errors"

	"github.com/aidanlsb/labnotes/internal/model"
)

// SkipChildren can be returned by a WalkFunc to skip the entity's ideas or
// experiments without stopping the walk.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every entity in scope.
type WalkFunc func(e *Entity) error

// Walk visits the Project → Idea → Experiment tree in directory order,
// calling fn for every entity whose kind is in scope. Parents are always
// read (for context) even when they are out of scope.
func (v *Vault) Walk(scope model.Scope, fn WalkFunc) error {
	if scope == "" {
		scope = model.ScopeAll
	}
	wantIdeas := scope.Includes(model.KindIdea)
	wantExperiments := scope.Includes(model.KindExperiment)

	for _, project := range v.Projects() {
		skip, err := visit(scope, project, fn)
		if err != nil {
			return err
		}
		if skip || !(wantIdeas || wantExperiments) {
			continue
		}

		for _, idea := range v.Children(project) {
			skip, err := visit(scope, idea, fn)
			if err != nil {
				return err
			}
			if skip || !wantExperiments {
				continue
			}

			for _, exp := range v.Children(idea) {
				if _, err := visit(scope, exp, fn); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Collect returns every entity in scope.
func (v *Vault) Collect(scope model.Scope) ([]*Entity, error) {
	var out []*Entity
	err := v.Walk(scope, func(e *Entity) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

func visit(scope model.Scope, e *Entity, fn WalkFunc) (skip bool, err error) {
	if !scope.Includes(e.Kind) {
		return false, nil
	}
	if err := fn(e); err != nil {
		if errors.Is(err, SkipChildren) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}
