package buildinfo

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = orig })
}

func withLdflags(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestCurrentFromBuildInfo(t *testing.T) {
	withLdflags(t, "", "", "")
	withBuildInfo(t, &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Path: "github.com/aidanlsb/labnotes", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-10-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	info := Current()
	if info.Version != "v0.3.0" || info.Commit != "abc123" || !info.Modified || info.GoVersion != "go1.24.0" {
		t.Fatalf("Current() = %+v", info)
	}
}

func TestCurrentFallsBackToLdflags(t *testing.T) {
	withLdflags(t, "v1.0.0", "def456", "2026-10-19")
	withBuildInfo(t, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true)

	info := Current()
	if info.Version != "v1.0.0" || info.Commit != "def456" || info.CommitTime != "2026-10-19" {
		t.Fatalf("Current() = %+v", info)
	}
	if info.ModulePath != defaultModulePath {
		t.Fatalf("ModulePath = %q", info.ModulePath)
	}
}

func TestCurrentWithoutBuildInfo(t *testing.T) {
	withLdflags(t, "", "", "")
	withBuildInfo(t, nil, false)

	if info := Current(); info.Version != "devel" {
		t.Fatalf("Version = %q, want devel", info.Version)
	}
}
