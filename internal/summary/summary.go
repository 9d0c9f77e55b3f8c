// Package summary aggregates classifier verdicts into the end-of-session
// report.
package summary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/abhisek/sketchquiz/internal/quiz"
	"github.com/abhisek/sketchquiz/internal/resultlog"
)

// Row is one question in the report.
type Row struct {
	QuestionNumber int
	Prompt         string
	PredictedLabel string
	ImageFile      string
	ImagePath      string
	ImageFound     bool
	Confidence     float64
	HasConfidence  bool
	Outcome        quiz.Outcome
}

// Summary is the aggregated report.
type Summary struct {
	Rows       []Row
	Total      int
	Correct    int
	Incorrect  int
	Unresolved int
}

// Accuracy is the share of correct answers over all rows.
func (s *Summary) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Build reads the first n lines of the result log. Lines that do not parse
// are skipped, but the numbering still follows line position. Fewer than n
// lines gives a partial summary; a missing log gives an empty one.
func Build(logPath, annotatedDir string, n int) (*Summary, error) {
	s := &Summary{}
	lines, err := resultlog.Read(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read result log: %w", err)
	}

	all := lines.All()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	for i, line := range all {
		rec, err := resultlog.Parse(line)
		if err != nil {
			continue
		}
		s.add(rowFromRecord(i+1, rec, annotatedDir))
	}
	return s, nil
}

// Merge adds an unresolved row for every attempt the log has no line for.
func Merge(s *Summary, attempts []quiz.QuestionAttempt) *Summary {
	if s == nil {
		s = &Summary{}
	}
	seen := make(map[string]bool, len(s.Rows))
	for _, r := range s.Rows {
		seen[strings.ToLower(r.ImageFile)] = true
	}
	next := 0
	for _, r := range s.Rows {
		next = max(next, r.QuestionNumber)
	}
	for _, a := range attempts {
		if seen[strings.ToLower(a.ArtifactName)] {
			continue
		}
		next++
		s.add(Row{
			QuestionNumber: next,
			Prompt:         a.Label,
			ImageFile:      a.ArtifactName,
			Outcome:        quiz.OutcomeUnresolved,
		})
	}
	return s
}

func (s *Summary) add(r Row) {
	s.Rows = append(s.Rows, r)
	s.Total++
	switch r.Outcome {
	case quiz.OutcomeCorrect:
		s.Correct++
	case quiz.OutcomeIncorrect:
		s.Incorrect++
	default:
		s.Unresolved++
	}
}

func rowFromRecord(num int, rec resultlog.Record, annotatedDir string) Row {
	file := filepath.Base(rec.ImageFile)
	r := Row{
		QuestionNumber: num,
		Prompt:         strings.TrimSuffix(file, filepath.Ext(file)),
		PredictedLabel: rec.PredictedClass,
		ImageFile:      rec.ImageFile,
		Confidence:     rec.Confidence,
		HasConfidence:  rec.HasConfidence,
		Outcome:        quiz.OutcomeFromRecord(rec),
	}
	if annotatedDir != "" {
		r.ImagePath = filepath.Join(annotatedDir, file)
		if info, err := os.Stat(r.ImagePath); err == nil && !info.IsDir() {
			r.ImageFound = true
		}
	}
	return r
}
