package vault

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/logging"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
)

// FindProjectByTitle returns the directory of the project whose title
// matches (case-insensitive, trimmed) among the subdirectories of projectsDir.
func FindProjectByTitle(projectsDir, title string, log *zap.Logger) (string, bool) {
	return findByTitle(projectsDir, model.KindProject, title, log)
}

// FindIdeaByTitle returns the directory of the matching idea under projectDir/ideas.
func FindIdeaByTitle(projectDir, title string, log *zap.Logger) (string, bool) {
	return findByTitle(paths.ChildDir(projectDir, model.KindProject), model.KindIdea, title, log)
}

// FindExperimentByTitle returns the directory of the matching experiment
// under ideaDir/experiments.
func FindExperimentByTitle(ideaDir, title string, log *zap.Logger) (string, bool) {
	return findByTitle(paths.ChildDir(ideaDir, model.KindIdea), model.KindExperiment, title, log)
}

// findByTitle scans the immediate subdirectories of containerDir that hold
// kind's metadata file. The first title match wins.
func findByTitle(containerDir string, kind model.Kind, title string, log *zap.Logger) (string, bool) {
	log = logging.OrNop(log)
	want := strings.ToLower(strings.TrimSpace(title))

	for _, dir := range candidateDirs(containerDir, kind) {
		metaPath := paths.MetaPath(dir, kind)
		meta, err := readMeta(metaPath)
		if err != nil {
			log.Warn("skipping unreadable metadata", zap.String("path", metaPath), zap.Error(err))
			continue
		}
		if strings.ToLower(strings.TrimSpace(meta.String("title"))) == want {
			return dir, true
		}
	}
	return "", false
}

// candidateDirs lists the subdirectories of containerDir that contain kind's
// metadata file. A missing containerDir yields nothing.
func candidateDirs(containerDir string, kind model.Kind) []string {
	entries, err := os.ReadDir(containerDir)
	if err != nil {
		return nil
	}

	var out []string
	for _, e := range entries {
		dir := filepath.Join(containerDir, e.Name())
		if !e.IsDir() {
			// Follow symlinked directories.
			st, err := os.Stat(dir)
			if err != nil || !st.IsDir() {
				continue
			}
		}
		if st, err := os.Stat(paths.MetaPath(dir, kind)); err != nil || st.IsDir() {
			continue
		}
		out = append(out, dir)
	}
	return out
}
