package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := New(false, &buf)
	logger.Debug("hidden")
	logger.Warn("skipping unreadable metadata", zap.String("path", "projects/a/project.md"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug output leaked at default level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "projects/a/project.md") {
		t.Fatalf("expected warning with path, got %q", out)
	}

	buf.Reset()
	verbose := New(true, &buf)
	verbose.Debug("shown")
	_ = verbose.Sync()
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("verbose logger should emit debug, got %q", buf.String())
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Fatal("OrNop should return the given logger")
	}
}

func TestNewObserved(t *testing.T) {
	logger, logs := NewObserved()
	logger.Debug("walk", zap.String("kind", "idea"))
	if logs.FilterMessage("walk").Len() != 1 {
		t.Fatalf("expected one observed entry, got %d", logs.Len())
	}
}
