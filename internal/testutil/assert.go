package testutil

import (
	"os"
	"reflect"
	"strings"

	"github.com/aidanlsb/labnotes/internal/parser"
)

// AssertFileExists fails the test if the file does not exist.
func (r *TestRoot) AssertFileExists(relPath string) {
	r.t.Helper()
	if _, err := os.Stat(r.Abs(relPath)); os.IsNotExist(err) {
		r.t.Errorf("expected file to exist: %s", relPath)
	}
}

// AssertFileNotExists fails the test if the file exists.
func (r *TestRoot) AssertFileNotExists(relPath string) {
	r.t.Helper()
	if _, err := os.Stat(r.Abs(relPath)); err == nil {
		r.t.Errorf("expected file to not exist: %s", relPath)
	}
}

// AssertFileContains fails the test if the file does not contain the substring.
func (r *TestRoot) AssertFileContains(relPath, substr string) {
	r.t.Helper()
	content := r.ReadFile(relPath)
	if !strings.Contains(content, substr) {
		r.t.Errorf("expected file %s to contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertFileNotContains fails the test if the file contains the substring.
func (r *TestRoot) AssertFileNotContains(relPath, substr string) {
	r.t.Helper()
	content := r.ReadFile(relPath)
	if strings.Contains(content, substr) {
		r.t.Errorf("expected file %s to not contain %q, got:\n%s", relPath, substr, content)
	}
}

// AssertDirExists fails the test if the directory does not exist.
func (r *TestRoot) AssertDirExists(relPath string) {
	r.t.Helper()
	info, err := os.Stat(r.Abs(relPath))
	if os.IsNotExist(err) {
		r.t.Errorf("expected directory to exist: %s", relPath)
		return
	}
	if err == nil && !info.IsDir() {
		r.t.Errorf("expected %s to be a directory, but it's a file", relPath)
	}
}

// Frontmatter decodes the front-matter of a file in the root.
func (r *TestRoot) Frontmatter(relPath string) parser.Metadata {
	r.t.Helper()
	meta, err := parser.DecodeFrontmatter(r.ReadFile(relPath))
	if err != nil {
		r.t.Fatalf("failed to decode front-matter of %s: %v", relPath, err)
	}
	return meta
}

// AssertField fails the test unless the front-matter key of relPath equals want.
// Use nil for YAML null and []string for lists.
func (r *TestRoot) AssertField(relPath, key string, want any) {
	r.t.Helper()
	meta := r.Frontmatter(relPath)
	got, ok := meta[key]
	if !ok {
		r.t.Errorf("expected %s to have field %q", relPath, key)
		return
	}
	if !reflect.DeepEqual(got, want) {
		r.t.Errorf("%s: field %q = %#v, want %#v", relPath, key, got, want)
	}
}
