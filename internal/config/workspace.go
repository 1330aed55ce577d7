package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/paths"
)

// EnvPrefix prefixes environment overrides of config.yaml values.
// RESEARCH_NOTES_GIT_AUTO_COMMIT=true sets git.auto_commit.
const EnvPrefix = "RESEARCH_NOTES_"

const maxConfigFileSize = 1024 * 1024 // 1MB

// Workspace is the per-root config.yaml.
type Workspace struct {
	Notion   NotionConfig   `koanf:"notion" yaml:"notion"`
	Database DatabaseConfig `koanf:"database" yaml:"database"`
	Storage  StorageConfig  `koanf:"storage" yaml:"storage"`
	Git      GitConfig      `koanf:"git" yaml:"git"`
}

// NotionConfig configures the optional workspace sync.
type NotionConfig struct {
	Enabled        bool   `koanf:"enabled" yaml:"enabled"`
	Token          string `koanf:"token" yaml:"token"`
	DatabaseID     string `koanf:"database_id" yaml:"database_id"`
	SyncOnChange   bool   `koanf:"sync_on_change" yaml:"sync_on_change"`
	ProjectsPageID string `koanf:"projects_page_id" yaml:"projects_page_id"`
}

// DatabaseConfig configures the sqlite mirror of the notes tree.
type DatabaseConfig struct {
	Enabled    bool   `koanf:"enabled" yaml:"enabled"`
	Path       string `koanf:"path" yaml:"path"`
	AutoBackup bool   `koanf:"auto_backup" yaml:"auto_backup"`
	// BackupInterval is in seconds.
	BackupInterval int `koanf:"backup_interval" yaml:"backup_interval"`
}

// StorageConfig controls how experiment artifacts are stored.
type StorageConfig struct {
	SymlinkLargeFiles bool `koanf:"symlink_large_files" yaml:"symlink_large_files"`
	// SymlinkThreshold is in megabytes.
	SymlinkThreshold int    `koanf:"symlink_threshold" yaml:"symlink_threshold"`
	ExternalStorage  string `koanf:"external_storage" yaml:"external_storage"`
}

// GitConfig controls the version-control collaborator.
type GitConfig struct {
	AutoCommit          bool   `koanf:"auto_commit" yaml:"auto_commit"`
	AutoPush            bool   `koanf:"auto_push" yaml:"auto_push"`
	CommitMessagePrefix string `koanf:"commit_message_prefix" yaml:"commit_message_prefix"`
}

// DefaultWorkspace returns the configuration `lab init` writes.
func DefaultWorkspace() *Workspace {
	return &Workspace{
		Database: DatabaseConfig{
			Path:           ".research-notes.db",
			AutoBackup:     true,
			BackupInterval: 3600,
		},
		Storage: StorageConfig{
			SymlinkThreshold: 10,
		},
		Git: GitConfig{
			CommitMessagePrefix: "[Research Notes]",
		},
	}
}

// DatabasePath returns the absolute location of the sqlite mirror.
func (w *Workspace) DatabasePath(root string) string {
	if filepath.IsAbs(w.Database.Path) {
		return w.Database.Path
	}
	return filepath.Join(root, w.Database.Path)
}

// SymlinkThresholdBytes converts the storage threshold to bytes.
func (w *Workspace) SymlinkThresholdBytes() int64 {
	return w.Storage.ThresholdBytes()
}

// ThresholdBytes converts SymlinkThreshold to bytes.
func (s StorageConfig) ThresholdBytes() int64 {
	return int64(s.SymlinkThreshold) * 1024 * 1024
}

// Validate rejects settings that cannot be acted on.
func (w *Workspace) Validate() error {
	if w.Database.Enabled && strings.TrimSpace(w.Database.Path) == "" {
		return fmt.Errorf("database.path is required when database.enabled is true")
	}
	if w.Database.BackupInterval < 0 {
		return fmt.Errorf("database.backup_interval must not be negative")
	}
	if w.Storage.SymlinkThreshold < 0 {
		return fmt.Errorf("storage.symlink_threshold must not be negative")
	}
	return nil
}

// LoadWorkspace loads <root>/config.yaml, then overrides it with
// RESEARCH_NOTES_<SECTION>_<FIELD> environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables
//  2. config.yaml
//  3. DefaultWorkspace
func LoadWorkspace(root string) (*Workspace, error) {
	k := koanf.New(".")
	configPath := filepath.Join(root, paths.ConfigFile)

	content, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if len(content) > maxConfigFileSize {
			return nil, fmt.Errorf("config file %s exceeds %d bytes", configPath, maxConfigFileSize)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultWorkspace()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps RESEARCH_NOTES_GIT_AUTO_COMMIT to git.auto_commit.
// Split on the first underscore only (section.field_name pattern).
// Variables without a section, such as RESEARCH_NOTES_ROOT, are ignored.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	switch parts[0] {
	case "notion", "database", "storage", "git":
		return parts[0] + "." + parts[1]
	default:
		return ""
	}
}

// WriteWorkspace writes cfg to <root>/config.yaml.
func WriteWorkspace(root string, cfg *Workspace) error {
	data, err := yamlv3.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := atomicfile.WriteFile(filepath.Join(root, paths.ConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", paths.ConfigFile, err)
	}
	return nil
}
