// Package resultlog reads and writes the shared recognition log.
//
// The external classifier appends one line per processed image:
//
//	ImageFile: cat.png | PredictedClass: cat | Confidence: 0.90 | Result: yes
//
// Fields are pipe-delimited "Key: value" pairs. A line needs at least
// MinFields fields and must carry an image file and a yes/no result.
package resultlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinFields is the minimum number of pipe-delimited fields in a valid line.
const MinFields = 4

// ErrMalformedRecord marks a line that cannot be parsed into a Record.
var ErrMalformedRecord = errors.New("malformed recognition record")

// Field is one "Key: value" segment of a log line.
type Field struct {
	Key   string
	Value string
}

// Record is one parsed verdict from the classifier.
type Record struct {
	ImageFile      string
	PredictedClass string
	Confidence     float64
	HasConfidence  bool
	Correct        bool
	Fields         []Field
	Raw            string
}

// Verdict returns the raw result word ("yes" or "no").
func (r Record) Verdict() string {
	if r.Correct {
		return "yes"
	}
	return "no"
}

// Matches reports whether the record refers to the given artifact file name.
func (r Record) Matches(artifact string) bool {
	return artifact != "" && strings.EqualFold(strings.TrimSpace(r.ImageFile), artifact)
}

// Parse parses a single log line. Field keys are matched by name, not by
// position, so extra informational fields may appear in any order.
func Parse(line string) (Record, error) {
	line = strings.TrimRight(line, "\r\n")
	parts := strings.Split(line, "|")
	if len(parts) < MinFields {
		return Record{}, fmt.Errorf("%w: %d fields, want at least %d", ErrMalformedRecord, len(parts), MinFields)
	}

	rec := Record{Raw: line, Fields: make([]Field, 0, len(parts))}
	var haveResult bool

	for _, part := range parts {
		key, value, _ := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		rec.Fields = append(rec.Fields, Field{Key: key, Value: value})

		switch normalizeKey(key) {
		case "imagefile", "image", "file":
			rec.ImageFile = value
		case "predictedclass", "prediction", "class", "predicted":
			rec.PredictedClass = value
		case "confidence":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				rec.Confidence = f
				rec.HasConfidence = true
			}
		case "result":
			switch strings.ToLower(value) {
			case "yes":
				rec.Correct = true
				haveResult = true
			case "no":
				rec.Correct = false
				haveResult = true
			default:
				return Record{}, fmt.Errorf("%w: result %q", ErrMalformedRecord, value)
			}
		}
	}

	if rec.ImageFile == "" {
		return Record{}, fmt.Errorf("%w: missing image file", ErrMalformedRecord)
	}
	if !haveResult {
		return Record{}, fmt.Errorf("%w: missing result", ErrMalformedRecord)
	}
	return rec, nil
}

// Format renders a record as a log line, without the trailing newline.
func Format(rec Record) string {
	fields := []string{
		"ImageFile: " + rec.ImageFile,
		"PredictedClass: " + rec.PredictedClass,
		"Confidence: " + strconv.FormatFloat(rec.Confidence, 'f', 2, 64),
		"Result: " + rec.Verdict(),
	}
	return strings.Join(fields, " | ")
}

func normalizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, key)
}
