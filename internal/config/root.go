package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/labnotes/internal/paths"
)

// RootEnvVar overrides the notes root when it names an existing directory.
const RootEnvVar = "RESEARCH_NOTES_ROOT"

// DefaultRootName is the directory under the home directory used as a last resort.
const DefaultRootName = "research-notes"

// maxSearchDepth bounds the upward search for config.yaml.
const maxSearchDepth = 10

// ErrRootNotFound is returned when no notes root could be determined.
var ErrRootNotFound = errors.New("research notes root not found")

// RootError reports every candidate that was tried.
type RootError struct {
	Tried []string
}

func (e *RootError) Error() string {
	if len(e.Tried) == 0 {
		return ErrRootNotFound.Error()
	}
	return fmt.Sprintf("%s (tried %s)", ErrRootNotFound, strings.Join(e.Tried, ", "))
}

func (e *RootError) Unwrap() error { return ErrRootNotFound }

// RootOptions are the inputs to ResolveRoot. Zero values fall back to the
// process environment.
type RootOptions struct {
	// Flag is an explicit root (from --root). It must exist.
	Flag string
	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string
	// WorkDir is where the upward search starts. Defaults to os.Getwd.
	WorkDir string
	// Home is the user's home directory. Defaults to os.UserHomeDir.
	Home string
	// Global is the loaded global config, if any.
	Global *Config
}

// ResolveRoot determines the notes root. Sources are tried in order:
// the explicit flag, RESEARCH_NOTES_ROOT, an upward search for a config.yaml
// marker, the global default_root, and finally ~/research-notes.
func ResolveRoot(opts RootOptions) (string, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	home := opts.Home
	if home == "" {
		home, _ = os.UserHomeDir()
	}

	var tried []string

	if opts.Flag != "" {
		root := expandHome(opts.Flag, home)
		if isDir(root) {
			return absPath(root), nil
		}
		return "", &RootError{Tried: []string{root}}
	}

	if env := getenv(RootEnvVar); env != "" {
		root := expandHome(env, home)
		if isDir(root) {
			return absPath(root), nil
		}
		tried = append(tried, RootEnvVar+"="+env)
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if workDir != "" {
		if root, ok := FindMarker(workDir); ok {
			return root, nil
		}
		tried = append(tried, "config.yaml above "+workDir)
	}

	if root := opts.Global.DefaultRootPath(home); root != "" {
		if isDir(root) {
			return absPath(root), nil
		}
		tried = append(tried, "default_root="+root)
	}

	if home != "" {
		root := filepath.Join(home, DefaultRootName)
		if isDir(root) {
			return root, nil
		}
		tried = append(tried, root)
	}

	return "", &RootError{Tried: tried}
}

// FindMarker searches start and up to nine of its ancestors for a
// config.yaml that belongs to a notes root.
func FindMarker(start string) (string, bool) {
	current := absPath(start)
	for i := 0; i < maxSearchDepth; i++ {
		if IsMarker(filepath.Join(current, paths.ConfigFile)) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return "", false
}

// IsMarker reports whether path is a config.yaml with a notion or database
// section at the top level.
func IsMarker(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var top map[string]any
	if err := yaml.Unmarshal(data, &top); err != nil {
		return false
	}
	_, hasNotion := top["notion"]
	_, hasDatabase := top["database"]
	return hasNotion || hasDatabase
}

func isDir(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
