package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aidanlsb/labnotes/internal/ui"
)

var (
	// Global JSON output flag
	jsonOutput bool

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal warning.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count int    `json:"count"`
	Root  string `json:"root,omitempty"`
}

func outputJSON(resp Response) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// outputSuccess outputs a successful JSON response.
func outputSuccess(data interface{}, warnings []Warning, meta *Meta) {
	outputJSON(Response{
		OK:       true,
		Data:     data,
		Warnings: warnings,
		Meta:     meta,
	})
}

// reportError prints a failed command: the JSON envelope on stdout, or the
// message and its suggestions on stderr.
func reportError(err error) {
	f := classify(err)
	if jsonOutput {
		info := &ErrorInfo{Code: f.Code, Message: f.Message, Details: f.Details}
		if len(f.Suggestions) > 0 {
			info.Suggestion = f.Suggestions[0]
		}
		outputJSON(Response{OK: false, Error: info})
		return
	}
	fmt.Fprintln(stderr, ui.Error(f.Message))
	for _, s := range f.Suggestions {
		fmt.Fprintln(stderr, "  "+ui.Hint(s))
	}
}

// printWarnings shows warnings in text mode.
func printWarnings(warnings []Warning) {
	for _, w := range warnings {
		fmt.Fprintln(stderr, ui.Warning(w.Message))
	}
}
