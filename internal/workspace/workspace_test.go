package workspace

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(3, 3, color.Black)
	return img
}

func TestHandoff_WritesPNGWithoutTempFiles(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Ensure(); err != nil {
		t.Fatal(err)
	}

	path, err := l.Handoff("cat", testImage())
	if err != nil {
		t.Fatalf("Handoff: %v", err)
	}
	if filepath.Base(path) != "cat.png" {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("artifact is not a PNG: %v", err)
	}

	entries, _ := os.ReadDir(l.ImagesDir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("images dir has %d entries, want 1", len(entries))
	}
}

func TestHandoff_AppearsAsCreateInImagesDir(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Ensure(); err != nil {
		t.Fatal(err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer w.Close()
	if err := w.Add(l.ImagesDir); err != nil {
		t.Skipf("watch images dir: %v", err)
	}

	if _, err := l.Handoff("cat", testImage()); err != nil {
		t.Fatal(err)
	}

	var created bool
	timeout := time.After(2 * time.Second)
	for !created {
		select {
		case ev := <-w.Events:
			if name := filepath.Base(ev.Name); name != "cat.png" {
				t.Errorf("classifier would see %s (%s)", name, ev.Op)
				continue
			}
			if ev.Has(fsnotify.Create) {
				created = true
			}
		case err := <-w.Errors:
			t.Fatalf("watch error: %v", err)
		case <-timeout:
			t.Fatal("no create event for cat.png")
		}
	}

	entries, err := os.ReadDir(l.StagingDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir has %d leftover entries", len(entries))
	}
}

func TestHandoff_StagingOutsideImagesDir(t *testing.T) {
	l := New(t.TempDir())
	if filepath.Dir(l.StagingDir()) != filepath.Dir(l.ImagesDir) {
		t.Errorf("staging %s is not a sibling of %s", l.StagingDir(), l.ImagesDir)
	}
	if strings.HasPrefix(l.StagingDir(), l.ImagesDir+string(filepath.Separator)) {
		t.Errorf("staging %s is inside images dir", l.StagingDir())
	}
}

func TestDiscard(t *testing.T) {
	l := New(t.TempDir())
	path, err := l.Handoff("owl", testImage())
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Discard(path); err != nil {
		t.Fatalf("Discard: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("artifact still present: %v", err)
	}
	if err := l.Discard(path); err != nil {
		t.Errorf("second Discard: %v", err)
	}
	if err := l.Discard(l.LogPath); !errors.Is(err, ErrNotArtifact) {
		t.Errorf("Discard outside images dir: err = %v", err)
	}
}

func TestArchive_MovesIntoAnnotated(t *testing.T) {
	l := New(t.TempDir())
	path, err := l.Handoff("bus", testImage())
	if err != nil {
		t.Fatal(err)
	}

	dst, err := l.Archive("bus.png")
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if dst != l.AnnotatedPath("bus.png") {
		t.Errorf("dst = %s", dst)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("artifact still in images dir")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Errorf("annotated copy missing: %v", err)
	}

	dst, err = l.Archive("missing.png")
	if err != nil || dst != "" {
		t.Errorf("Archive(missing) = %q, %v; want empty, nil", dst, err)
	}
}

func TestHandoff_OverwritesSameLabel(t *testing.T) {
	l := New(t.TempDir())
	for i := 0; i < 2; i++ {
		if _, err := l.Handoff("tree", testImage()); err != nil {
			t.Fatal(err)
		}
	}
	entries, _ := os.ReadDir(l.ImagesDir)
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1", len(entries))
	}
}

func TestHandoff_JPEG(t *testing.T) {
	l := New(t.TempDir())
	l.Ext = ".JPG"
	path, err := l.Handoff("fish", testImage())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "fish.jpg" {
		t.Errorf("path = %s", path)
	}
}

func TestHandoff_RejectsPathLabels(t *testing.T) {
	l := New(t.TempDir())
	for _, label := range []string{"", "..", "a/b", `a\b`} {
		if _, err := l.Handoff(label, testImage()); !errors.Is(err, ErrInvalidLabel) {
			t.Errorf("label %q: err = %v", label, err)
		}
	}
}

func TestPurge_EmptiesWorkspace(t *testing.T) {
	l := New(t.TempDir())
	if err := l.Ensure(); err != nil {
		t.Fatal(err)
	}
	l.Handoff("bus", testImage())
	os.WriteFile(l.AnnotatedPath("bus.png"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(l.StagingDir(), "artifact-1.tmp"), []byte("x"), 0o644)
	os.WriteFile(l.LogPath, []byte("ImageFile: bus.png | PredictedClass: bus | Confidence: 0.9 | Result: yes\n"), 0o644)

	if err := l.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}

	for _, dir := range []string{l.ImagesDir, l.AnnotatedDir, l.StagingDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("%s not empty: %d entries", dir, len(entries))
		}
	}
	info, err := os.Stat(l.LogPath)
	if err != nil || info.Size() != 0 {
		t.Errorf("log not truncated: %v %v", info, err)
	}
}

func TestPurge_MissingWorkspace(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "never-created"))
	if err := l.Purge(); err != nil {
		t.Errorf("Purge on missing workspace: %v", err)
	}
	if _, err := os.Stat(l.LogPath); !os.IsNotExist(err) {
		t.Error("Purge created the log")
	}
}
