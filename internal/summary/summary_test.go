package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/sketchquiz/internal/quiz"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_SixRows(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "result.txt")
	labels := []string{"cat", "bus", "key", "star", "tree", "fish", "clock"}
	var sb strings.Builder
	for i, l := range labels {
		result := "yes"
		if i%2 == 1 {
			result = "no"
		}
		sb.WriteString("Image: " + l + ".png | Predicted Class: " + l + " | Confidence: 0.75 | Result: " + result + "\n")
	}
	writeFile(t, logPath, sb.String())

	s, err := Build(logPath, dir, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Rows) != 6 || s.Total != 6 {
		t.Fatalf("rows = %d, total = %d", len(s.Rows), s.Total)
	}
	for i, r := range s.Rows {
		if r.QuestionNumber != i+1 {
			t.Errorf("row %d number = %d", i, r.QuestionNumber)
		}
		if r.Prompt != labels[i] {
			t.Errorf("row %d prompt = %q", i, r.Prompt)
		}
		want := quiz.OutcomeCorrect
		if i%2 == 1 {
			want = quiz.OutcomeIncorrect
		}
		if r.Outcome != want {
			t.Errorf("row %d outcome = %s, want %s", i, r.Outcome, want)
		}
	}
	if s.Correct != 3 || s.Incorrect != 3 {
		t.Errorf("correct=%d incorrect=%d", s.Correct, s.Incorrect)
	}
	if s.Accuracy() != 0.5 {
		t.Errorf("accuracy = %v", s.Accuracy())
	}
}

func TestBuild_SkipsShortLinesKeepsNumbering(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "result.txt")
	writeFile(t, logPath,
		"Image: cat.png | Predicted Class: cat | Confidence: 0.9 | Result: yes\n"+
			"Image: bus.png | Predicted Class: bus | Result: yes\n"+
			"Image: key.png | Predicted Class: star | Confidence: 0.2 | Result: no\n")

	s, err := Build(logPath, dir, 6)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(s.Rows))
	}
	if s.Rows[1].QuestionNumber != 3 || s.Rows[1].PredictedLabel != "star" {
		t.Errorf("second row = %+v", s.Rows[1])
	}
}

func TestBuild_MissingLog(t *testing.T) {
	s, err := Build(filepath.Join(t.TempDir(), "none.txt"), "", 6)
	if err != nil {
		t.Fatal(err)
	}
	if s.Total != 0 || s.Accuracy() != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestBuild_FindsAnnotatedImage(t *testing.T) {
	dir := t.TempDir()
	annotated := filepath.Join(dir, "resultfile")
	os.MkdirAll(annotated, 0o755)
	writeFile(t, filepath.Join(annotated, "cat.png"), "not really a png")
	logPath := filepath.Join(dir, "result.txt")
	writeFile(t, logPath,
		"Image: cat.png | Predicted Class: cat | Confidence: 0.9 | Result: yes\n"+
			"Image: bus.png | Predicted Class: bus | Confidence: 0.9 | Result: yes\n")

	s, err := Build(logPath, annotated, 6)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Rows[0].ImageFound || s.Rows[1].ImageFound {
		t.Errorf("found = %v/%v", s.Rows[0].ImageFound, s.Rows[1].ImageFound)
	}
	if got := Thumbnail(s.Rows[0], 4, 2); got != "" {
		t.Errorf("undecodable image gave thumbnail %q", got)
	}
}

func TestMerge_AddsUnresolved(t *testing.T) {
	s := &Summary{}
	s.add(Row{QuestionNumber: 1, ImageFile: "cat.png", Outcome: quiz.OutcomeCorrect})

	attempts := []quiz.QuestionAttempt{
		{Label: "cat", ArtifactName: "cat.png", Outcome: quiz.OutcomeCorrect},
		{Label: "bus", ArtifactName: "bus.png", Outcome: quiz.OutcomeUnresolved},
	}
	s = Merge(s, attempts)

	if s.Total != 2 || s.Unresolved != 1 {
		t.Fatalf("total=%d unresolved=%d", s.Total, s.Unresolved)
	}
	if s.Rows[1].Prompt != "bus" || s.Rows[1].QuestionNumber != 2 {
		t.Errorf("merged row = %+v", s.Rows[1])
	}
}
