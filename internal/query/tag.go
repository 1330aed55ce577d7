package query

import (
	"strings"

	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/vault"
)

// ByTag returns every entity in scope carrying tag.
//
// A list-valued tags field matches on case-insensitive membership. Older
// notes with a plain string tags field match when tag is a case-insensitive
// substring of that string.
func ByTag(v *vault.Vault, tag string, scope model.Scope) (*Result, error) {
	scope, err := checkScope(scope)
	if err != nil {
		return nil, err
	}
	want := normalize(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if want == "" {
		return nil, &model.ValidationError{Field: "tag", Reason: "tag cannot be empty"}
	}

	res := &Result{}
	err = v.Walk(scope, func(e *vault.Entity) error {
		if HasTag(e, want) {
			res.add(Match{Entity: e})
		}
		return nil
	})
	return res, err
}

// HasTag reports whether e carries tag. tag must already be lowercased.
func HasTag(e *vault.Entity, tag string) bool {
	tags := e.Meta.Tags()
	if tags.IsList {
		for _, t := range tags.List {
			if normalize(t) == tag {
				return true
			}
		}
		return false
	}
	return tags.Raw != "" && strings.Contains(strings.ToLower(tags.Raw), tag)
}
