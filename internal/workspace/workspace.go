// Package workspace owns the directories shared with the external
// classifier: the drop folder for drawings, the folder the classifier moves
// annotated images into, and the result log.
package workspace

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

const (
	DefaultImagesDir    = "images"
	DefaultAnnotatedDir = "resultfile"
	DefaultLogName      = "result.txt"
	DefaultExt          = "png"

	stagingDirName = ".handoff"
	tempPattern    = "artifact-*.tmp"
)

var (
	// ErrInvalidLabel is returned for labels that are not a single path element.
	ErrInvalidLabel = errors.New("invalid artifact label")
	// ErrNotArtifact is returned by Discard for paths outside ImagesDir.
	ErrNotArtifact = errors.New("not an artifact path")
)

// Layout names every path in the workspace.
type Layout struct {
	Root         string
	ImagesDir    string
	AnnotatedDir string
	LogPath      string
	// Ext is the artifact extension without the dot: png or jpg.
	Ext string
}

// New returns the default layout under root.
func New(root string) Layout {
	return Layout{
		Root:         root,
		ImagesDir:    filepath.Join(root, DefaultImagesDir),
		AnnotatedDir: filepath.Join(root, DefaultAnnotatedDir),
		LogPath:      filepath.Join(root, DefaultLogName),
		Ext:          DefaultExt,
	}
}

// Ensure creates the directories. The log file itself is left to the
// classifier.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.ImagesDir, l.AnnotatedDir, filepath.Dir(l.LogPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workspace dir %s: %w", dir, err)
		}
	}
	return nil
}

func (l Layout) ext() string {
	ext := strings.ToLower(strings.TrimPrefix(l.Ext, "."))
	if ext == "" {
		return DefaultExt
	}
	return ext
}

// ArtifactName is the file name the classifier will see for label.
func (l Layout) ArtifactName(label string) string {
	return label + "." + l.ext()
}

// ArtifactPath is where Handoff writes label's drawing.
func (l Layout) ArtifactPath(label string) string {
	return filepath.Join(l.ImagesDir, l.ArtifactName(label))
}

// StagingDir holds artifacts while they are being encoded. It sits next to
// ImagesDir, not inside it, so the final rename appears in ImagesDir as a
// new file rather than as a move within the directory.
func (l Layout) StagingDir() string {
	return filepath.Join(filepath.Dir(filepath.Clean(l.ImagesDir)), stagingDirName)
}

// AnnotatedPath is where the classifier leaves the processed image.
func (l Layout) AnnotatedPath(imageFile string) string {
	return filepath.Join(l.AnnotatedDir, filepath.Base(imageFile))
}

// Handoff encodes img into the images directory under the label's artifact
// name. The file is encoded in StagingDir and renamed into ImagesDir, so the
// classifier sees exactly one complete file appear and never a temp file.
func (l Layout) Handoff(label string, img image.Image) (string, error) {
	if err := validLabel(label); err != nil {
		return "", err
	}
	for _, dir := range []string{l.ImagesDir, l.StagingDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	tmp, err := os.CreateTemp(l.StagingDir(), tempPattern)
	if err != nil {
		return "", fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	switch l.ext() {
	case "jpg", "jpeg":
		err = jpeg.Encode(tmp, img, &jpeg.Options{Quality: 95})
	default:
		err = png.Encode(tmp, img)
	}
	if err != nil {
		tmp.Close()
		cleanup()
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close artifact: %w", err)
	}

	dst := l.ArtifactPath(label)
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return dst, nil
}

// Archive moves images/<imageFile> into AnnotatedDir the way the classifier
// does after scoring it. It returns the new path, or "" when there is no
// such artifact.
func (l Layout) Archive(imageFile string) (string, error) {
	name := filepath.Base(imageFile)
	if err := validLabel(name); err != nil {
		return "", err
	}
	src := filepath.Join(l.ImagesDir, name)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat artifact: %w", err)
	}
	if err := os.MkdirAll(l.AnnotatedDir, 0o755); err != nil {
		return "", fmt.Errorf("create annotated dir: %w", err)
	}
	dst := l.AnnotatedPath(name)
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("archive artifact: %w", err)
	}
	return dst, nil
}

// Discard removes one handed-off artifact from ImagesDir. A missing file is
// not an error.
func (l Layout) Discard(path string) error {
	if path == "" {
		return nil
	}
	if filepath.Dir(filepath.Clean(path)) != filepath.Clean(l.ImagesDir) {
		return fmt.Errorf("%w: %s", ErrNotArtifact, path)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("discard artifact: %w", err)
	}
	return nil
}

// Purge deletes every file in the images, annotated, and staging
// directories and empties the result log. Missing directories and a missing
// log are fine.
func (l Layout) Purge() error {
	var errs []error
	for _, dir := range []string{l.ImagesDir, l.AnnotatedDir, l.StagingDir()} {
		if err := clearDir(dir); err != nil {
			errs = append(errs, err)
		}
	}
	if err := resultlog.Truncate(l.LogPath); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", dir, err)
	}
	var errs []error
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func validLabel(label string) error {
	if label == "" || label == "." || label == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	if strings.ContainsAny(label, `/\`) || filepath.Base(label) != label {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}
