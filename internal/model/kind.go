// Package model defines the entity kinds, their status vocabularies, and the
// validation rules applied before anything is written to the notes tree.
package model

import (
	"fmt"
	"strings"
)

// Kind is the type of a notes entity.
type Kind string

const (
	KindProject    Kind = "project"
	KindIdea       Kind = "idea"
	KindExperiment Kind = "experiment"
)

// Kinds lists every kind in tree order (parents first).
var Kinds = []Kind{KindProject, KindIdea, KindExperiment}

// MetaFile is the name of the file holding the entity's front-matter.
func (k Kind) MetaFile() string {
	return string(k) + ".md"
}

// Plural is the scope name for the kind.
func (k Kind) Plural() string {
	return string(k) + "s"
}

// Title returns the capitalized kind name used in messages.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// ParseKind converts a kind name (singular or plural, any case) to a Kind.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if norm == string(k) || norm == k.Plural() {
			return k, nil
		}
	}
	return "", &ValidationError{
		Field:   "kind",
		Value:   s,
		Reason:  "unknown entity kind",
		Allowed: []string{string(KindProject), string(KindIdea), string(KindExperiment)},
	}
}

// Scope selects which kinds a query covers.
// It implements pflag.Value so an invalid --scope is rejected while parsing flags.
type Scope string

const (
	ScopeProjects    Scope = "projects"
	ScopeIdeas       Scope = "ideas"
	ScopeExperiments Scope = "experiments"
	ScopeAll         Scope = "all"
)

var scopeNames = []string{string(ScopeProjects), string(ScopeIdeas), string(ScopeExperiments), string(ScopeAll)}

// ParseScope validates a scope name.
func ParseScope(s string) (Scope, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, name := range scopeNames {
		if norm == name {
			return Scope(name), nil
		}
	}
	return "", &ValidationError{Field: "scope", Value: s, Reason: "invalid scope", Allowed: scopeNames}
}

// Includes reports whether the scope covers kind.
func (s Scope) Includes(k Kind) bool {
	return s == ScopeAll || string(s) == k.Plural()
}

// Kinds returns the kinds covered by the scope in tree order.
func (s Scope) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds {
		if s.Includes(k) {
			out = append(out, k)
		}
	}
	return out
}

func (s *Scope) String() string {
	if *s == "" {
		return string(ScopeAll)
	}
	return string(*s)
}

func (s *Scope) Set(v string) error {
	parsed, err := ParseScope(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Scope) Type() string { return "scope" }

var statuses = map[Kind][]string{
	KindProject:    {"active", "on-hold", "completed"},
	KindIdea:       {"unverified", "planned", "in-progress", "validated", "rejected", "on-hold"},
	KindExperiment: {"planned", "in-progress", "completed", "failed"},
}

// Statuses returns the status vocabulary of kind. The first entry is the
// status a newly created entity starts in.
func Statuses(k Kind) []string {
	return append([]string(nil), statuses[k]...)
}

// InitialStatus is the status written when an entity is created.
func InitialStatus(k Kind) string {
	if list := statuses[k]; len(list) > 0 {
		return list[0]
	}
	return ""
}

// ValidStatus reports whether status (case-insensitive) belongs to kind's vocabulary.
func ValidStatus(k Kind, status string) bool {
	return contains(statuses[k], status)
}

// CheckStatus returns the canonical status or a ValidationError.
func CheckStatus(k Kind, status string) (string, error) {
	if !ValidStatus(k, status) {
		return "", &ValidationError{
			Field:   "status",
			Value:   status,
			Reason:  fmt.Sprintf("invalid %s status", k),
			Allowed: Statuses(k),
		}
	}
	return strings.ToLower(strings.TrimSpace(status)), nil
}

// Priorities are the allowed priority values.
var Priorities = []string{"low", "medium", "high"}

// DefaultPriority is used when no priority is given.
const DefaultPriority = "medium"

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	return contains(Priorities, p)
}

// ProjectTypes are the allowed project types.
var ProjectTypes = []string{"academic", "engineering", "direction"}

// DefaultProjectType is used when no type is given.
const DefaultProjectType = "academic"

// ValidProjectType reports whether t is a known project type.
func ValidProjectType(t string) bool {
	return contains(ProjectTypes, t)
}

func contains(list []string, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
