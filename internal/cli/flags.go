package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/aidanlsb/labnotes/internal/model"
)

var (
	_ pflag.Value = (*enumFlag)(nil)
	_ pflag.Value = (*model.Scope)(nil)
)

// enumFlag is a pflag.Value restricted to one of the model's vocabularies,
// so a bad --priority or --type fails while flags are parsed.
type enumFlag struct {
	value string
	kind  string
	check func(string) (string, error)
}

func newPriorityFlag() *enumFlag {
	return &enumFlag{kind: "priority", check: model.CheckPriority}
}

func newProjectTypeFlag() *enumFlag {
	return &enumFlag{kind: "type", check: model.CheckProjectType}
}

func (f *enumFlag) String() string { return f.value }

func (f *enumFlag) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		f.value = ""
		return nil
	}
	canonical, err := f.check(v)
	if err != nil {
		return err
	}
	f.value = canonical
	return nil
}

func (f *enumFlag) Type() string { return f.kind }

// Value returns the parsed value, or the vocabulary's default when the flag
// was not given.
func (f *enumFlag) Value() string {
	v, _ := f.check(f.value)
	return v
}

func joinAllowed(values []string) string {
	return strings.Join(values, "|")
}
