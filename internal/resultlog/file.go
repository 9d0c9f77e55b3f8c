package resultlog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Lines holds the contents of the log split into lines.
type Lines struct {
	// Complete are newline-terminated lines, oldest first.
	Complete []string
	// Tail is a trailing line with no newline yet; the writer may still be
	// appending to it.
	Tail string
}

// All returns the complete lines followed by the tail, if any.
func (l Lines) All() []string {
	if l.Tail == "" {
		return l.Complete
	}
	return append(append([]string(nil), l.Complete...), l.Tail)
}

// Read loads the whole log. A missing file is reported with an error that
// satisfies errors.Is(err, fs.ErrNotExist).
func Read(path string) (Lines, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lines{}, err
	}

	var out Lines
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			out.Tail = strings.TrimRight(string(data), "\r")
			break
		}
		line := strings.TrimRight(string(data[:i]), "\r")
		if strings.TrimSpace(line) != "" {
			out.Complete = append(out.Complete, line)
		}
		data = data[i+1:]
	}
	if strings.TrimSpace(out.Tail) == "" {
		out.Tail = ""
	}
	return out, nil
}

// Truncate empties the log if it exists. A missing log is not an error.
func Truncate(path string) error {
	err := os.Truncate(path, 0)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("truncate result log: %w", err)
	}
	return nil
}

// Append writes one record as a single newline-terminated write, so a
// concurrent reader sees either the whole line or none of it.
func Append(path string, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	if _, err := f.WriteString(Format(rec) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append result log: %w", err)
	}
	return f.Close()
}
