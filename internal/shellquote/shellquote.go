// Package shellquote renders titles as shell arguments for the commands
// suggested in hints.
package shellquote

import "strings"

// Quote wraps s in single quotes, escaping any internal single quotes.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Arg quotes s when a shell would split or interpret it. Titles almost
// always contain spaces.
func Arg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n#[]()|&;<>*?$`!\"'\\~{}") {
		return Quote(s)
	}
	return s
}

// Command joins a command name and its arguments, quoting each argument.
func Command(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, Arg(a))
	}
	return strings.Join(parts, " ")
}
