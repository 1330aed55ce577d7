package writer

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aidanlsb/labnotes/internal/atomicfile"
	"github.com/aidanlsb/labnotes/internal/model"
	"github.com/aidanlsb/labnotes/internal/paths"
)

// Artifact describes a file attached to an experiment.
type Artifact struct {
	// Path is the entry inside the experiment's artifacts/ directory.
	Path string
	// Linked is true when Path is a symlink rather than a copy.
	Linked bool
	// Target is where the symlink points (empty for copies).
	Target string
	Size   int64
}

// AttachArtifact places srcPath in the artifacts/ directory of the referenced
// experiment. Small files are copied. With storage.symlink_large_files set,
// files above the threshold are linked instead: to a copy under
// storage.external_storage when that is configured, otherwise to srcPath
// itself. An existing entry with the same name is never replaced.
func (w *Writer) AttachArtifact(ref Ref, srcPath string) (*Artifact, error) {
	if ref.Kind() != model.KindExperiment {
		return nil, &model.ValidationError{Field: "experiment", Reason: "artifacts can only be attached to an experiment"}
	}

	src, err := filepath.Abs(srcPath)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", srcPath, err)
	}
	st, err := os.Stat(src)
	if err != nil {
		return nil, fmt.Errorf("artifact source: %w", err)
	}
	if st.IsDir() {
		return nil, &model.ValidationError{Field: "file", Value: srcPath, Reason: "artifact must be a regular file"}
	}

	exp, err := w.Resolve(ref)
	if err != nil {
		return nil, err
	}

	artifactsDir := filepath.Join(exp.Dir, paths.ArtifactsDir)
	if err := os.MkdirAll(artifactsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory: %w", err)
	}
	dst := filepath.Join(artifactsDir, filepath.Base(src))
	if _, err := os.Lstat(dst); err == nil {
		return nil, fmt.Errorf("artifact %s: %w", paths.Rel(w.vault.Root, dst), os.ErrExist)
	}

	art := &Artifact{Path: dst, Size: st.Size()}
	if !w.storage.SymlinkLargeFiles || st.Size() <= w.storage.ThresholdBytes() {
		if err := atomicfile.Copy(src, dst); err != nil {
			return nil, fmt.Errorf("copy artifact: %w", err)
		}
		return art, nil
	}

	target := src
	if w.storage.ExternalStorage != "" {
		rel, err := filepath.Rel(w.vault.ProjectsDir(), exp.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolve external storage path: %w", err)
		}
		target = filepath.Join(w.storage.ExternalStorage, rel, filepath.Base(src))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create external storage directory: %w", err)
		}
		if err := atomicfile.Copy(src, target); err != nil {
			return nil, fmt.Errorf("copy artifact to external storage: %w", err)
		}
	}

	if err := os.Symlink(target, dst); err != nil {
		return nil, fmt.Errorf("link artifact: %w", err)
	}
	w.log().Debug("linked large artifact",
		zap.String("path", dst),
		zap.String("target", target),
		zap.Int64("size", st.Size()),
	)
	art.Linked = true
	art.Target = target
	return art, nil
}
