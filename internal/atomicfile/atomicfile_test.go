package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "idea.md")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new"), 0); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Fatalf("content = %q", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.md")
	if err := os.WriteFile(path, []byte("status: active\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Update(path, func(content string) (string, error) {
		return strings.Replace(content, "active", "completed", 1), nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "status: completed\n" {
		t.Fatalf("content = %q", data)
	}

	boom := errors.New("boom")
	err = Update(path, func(string) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "status: completed\n" {
		t.Fatalf("failed update changed content: %q", data)
	}
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plot.png")
	dst := filepath.Join(dir, "artifacts-plot.png")
	if err := os.WriteFile(src, []byte{0x89, 'P', 'N', 'G'}, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Copy(src, dst); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "\x89PNG" {
		t.Fatalf("copied content = %q", data)
	}

	if err := Copy(src, dst); !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist on second copy, got %v", err)
	}
	if err := Copy(dir, filepath.Join(dir, "x")); err == nil {
		t.Fatal("expected error copying a directory")
	}
}
