package testutil

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	// binaryPath caches the path to the built lab binary.
	binaryPath string
	buildMu    sync.Mutex
	buildErr   error
)

// CLIResult represents the result of running a CLI command.
type CLIResult struct {
	OK       bool
	Data     interface{}
	Error    *CLIError
	Warnings []CLIWarning
	Meta     *CLIMeta
	RawJSON  string
	Stderr   string
	ExitCode int
}

// CLIError represents a structured error from the CLI.
type CLIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Suggestion string                 `json:"suggestion,omitempty"`
}

// CLIWarning represents a warning from the CLI.
type CLIWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

// CLIMeta contains metadata from the response.
type CLIMeta struct {
	Count int    `json:"count"`
	Root  string `json:"root,omitempty"`
}

// BuildCLI builds the lab binary and returns its path.
// This is called automatically by RunCLI.
func BuildCLI(t *testing.T) string {
	t.Helper()

	buildMu.Lock()
	defer buildMu.Unlock()

	// Reuse previously built binary if it still exists.
	if binaryPath != "" {
		if _, err := os.Stat(binaryPath); err == nil {
			return binaryPath
		}
		binaryPath = ""
		buildErr = nil
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		buildErr = err
	} else {
		tmpDir, err := os.MkdirTemp("", "lab-cli-bin-*")
		if err != nil {
			buildErr = err
		} else {
			binName := "lab"
			if runtime.GOOS == "windows" {
				binName = "lab.exe"
			}

			binaryPath = filepath.Join(tmpDir, binName)
			cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/lab")
			cmd.Dir = projectRoot
			output, err := cmd.CombinedOutput()
			if err != nil {
				buildErr = &BuildError{Output: string(output), Err: err}
				binaryPath = ""
			}
		}
	}

	if buildErr != nil {
		t.Fatalf("failed to build CLI: %v", buildErr)
	}

	return binaryPath
}

// BuildError represents an error building the CLI binary.
type BuildError struct {
	Output string
	Err    error
}

func (e *BuildError) Error() string {
	return e.Err.Error() + "\n" + e.Output
}

// findProjectRoot walks up the directory tree to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// RunCLI runs the binary with --json and decodes the envelope. HOME points
// at a fresh temp dir and RESEARCH_NOTES_* variables are dropped, so the
// user's own config never leaks into a test.
func RunCLI(t *testing.T, args ...string) *CLIResult {
	t.Helper()
	return RunCLIInDir(t, "", args...)
}

// RunCLIInDir is RunCLI with the working directory set to dir.
func RunCLIInDir(t *testing.T, dir string, args ...string) *CLIResult {
	t.Helper()
	binary := BuildCLI(t)

	cmd := exec.Command(binary, append([]string{"--json"}, args...)...)
	cmd.Dir = dir
	cmd.Env = isolatedEnv(t.TempDir())

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := &CLIResult{RawJSON: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}

	var resp struct {
		OK       bool         `json:"ok"`
		Data     interface{}  `json:"data,omitempty"`
		Error    *CLIError    `json:"error,omitempty"`
		Warnings []CLIWarning `json:"warnings,omitempty"`
		Meta     *CLIMeta     `json:"meta,omitempty"`
	}
	if err := json.Unmarshal([]byte(result.RawJSON), &resp); err != nil {
		result.OK = false
		result.Error = &CLIError{
			Code:    "PARSE_ERROR",
			Message: "Failed to parse JSON output: " + err.Error(),
			Details: map[string]interface{}{"raw": result.RawJSON, "stderr": result.Stderr},
		}
		return result
	}

	result.OK = resp.OK
	result.Data = resp.Data
	result.Error = resp.Error
	result.Warnings = resp.Warnings
	result.Meta = resp.Meta
	return result
}

// RunCLI runs a command against this root.
func (r *TestRoot) RunCLI(args ...string) *CLIResult {
	r.t.Helper()
	return RunCLI(r.t, append([]string{"--root", r.Path}, args...)...)
}

func isolatedEnv(home string) []string {
	var env []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		switch {
		case strings.HasPrefix(key, "RESEARCH_NOTES_"),
			key == "HOME", key == "USERPROFILE", key == "XDG_CONFIG_HOME":
			continue
		}
		env = append(env, kv)
	}
	return append(env, "HOME="+home, "USERPROFILE="+home, "XDG_CONFIG_HOME="+filepath.Join(home, ".config"))
}

// MustSucceed fails the test if the CLI command did not succeed.
func (r *CLIResult) MustSucceed(t *testing.T) *CLIResult {
	t.Helper()
	if !r.OK {
		errMsg := "unknown error"
		if r.Error != nil {
			errMsg = r.Error.Code + ": " + r.Error.Message
		}
		t.Fatalf("expected command to succeed, got error: %s\nRaw output: %s", errMsg, r.RawJSON)
	}
	if r.ExitCode != 0 {
		t.Fatalf("succeeded with exit code %d", r.ExitCode)
	}
	return r
}

// MustFail fails the test if the CLI command did not fail with the expected code.
func (r *CLIResult) MustFail(t *testing.T, expectedCode string) *CLIResult {
	t.Helper()
	if r.OK {
		t.Fatalf("expected command to fail with code %s, but it succeeded\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.Error == nil {
		t.Fatalf("expected error with code %s, but error is nil\nRaw output: %s", expectedCode, r.RawJSON)
	}
	if r.Error.Code != expectedCode {
		t.Fatalf("expected error code %s, got %s: %s\nRaw output: %s", expectedCode, r.Error.Code, r.Error.Message, r.RawJSON)
	}
	if r.ExitCode == 0 {
		t.Fatalf("failed command exited 0\nRaw output: %s", r.RawJSON)
	}
	return r
}

// HasWarning reports whether a warning with code was emitted.
func (r *CLIResult) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

// DataMap returns Data as an object, or nil.
func (r *CLIResult) DataMap() map[string]interface{} {
	m, _ := r.Data.(map[string]interface{})
	return m
}

// DataList extracts a list from the Data field. With an empty key Data
// itself must be the list.
func (r *CLIResult) DataList(key string) []interface{} {
	if key == "" {
		list, _ := r.Data.([]interface{})
		return list
	}
	list, _ := r.DataMap()[key].([]interface{})
	return list
}

// DataString extracts a string from the Data field.
func (r *CLIResult) DataString(key string) string {
	s, _ := r.DataMap()[key].(string)
	return s
}
