// Package resultsync detects the classifier's verdict for a handed-off
// artifact by polling the shared result log.
//
// There is no direct link to the classifier process. The log is re-read on
// a fixed interval; when the platform supports it, a filesystem watch on the
// log's directory wakes the poller early.
package resultsync

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/abhisek/sketchquiz/internal/resultlog"
)

// DefaultInterval is the gap between log reads.
const DefaultInterval = time.Second

// ErrClosed is returned by Wait after Close.
var ErrClosed = errors.New("synchronizer closed")

// Status describes what a single check of the log found.
type Status int

const (
	StatusMissingLog Status = iota
	StatusEmpty
	StatusMalformed
	StatusUnmatched
	StatusMatched
	StatusUnreadable
)

func (s Status) String() string {
	switch s {
	case StatusMissingLog:
		return "missing-log"
	case StatusEmpty:
		return "empty"
	case StatusMalformed:
		return "malformed"
	case StatusUnmatched:
		return "unmatched"
	case StatusMatched:
		return "matched"
	case StatusUnreadable:
		return "unreadable"
	}
	return "unknown"
}

// Options configures a Synchronizer.
type Options struct {
	LogPath string
	// Interval between reads. Zero means DefaultInterval.
	Interval time.Duration
	// Delay before the first read of each run.
	Delay  time.Duration
	Logger *slog.Logger
}

// Synchronizer reads the result log on behalf of the session controller.
// Check may be called from any goroutine.
type Synchronizer struct {
	logPath  string
	interval time.Duration
	delay    time.Duration
	logger   *slog.Logger

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a synchronizer. Call Watch to enable early wake-ups.
func New(opts Options) *Synchronizer {
	s := &Synchronizer{
		logPath:  filepath.Clean(opts.LogPath),
		interval: opts.Interval,
		delay:    opts.Delay,
		logger:   opts.Logger,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Synchronizer) LogPath() string         { return s.logPath }
func (s *Synchronizer) Interval() time.Duration { return s.interval }
func (s *Synchronizer) Delay() time.Duration    { return s.delay }

// Watch starts a filesystem watch on the log's directory. On failure the
// synchronizer keeps working on the interval alone.
func (s *Synchronizer) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("log watch unavailable, polling only", "err", err)
		return err
	}
	if err := w.Add(filepath.Dir(s.logPath)); err != nil {
		w.Close()
		s.logger.Warn("log watch unavailable, polling only", "dir", filepath.Dir(s.logPath), "err", err)
		return err
	}
	s.watcher = w
	go s.watch(w)
	return nil
}

func (s *Synchronizer) watch(w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.logPath {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				select {
				case s.wake <- struct{}{}:
				default:
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("log watch error", "err", err)
		case <-s.done:
			return
		}
	}
}

// Close stops the watch. Further Waits return ErrClosed.
func (s *Synchronizer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.watcher != nil {
			err = s.watcher.Close()
			s.watcher = nil
		}
	})
	return err
}

// Wait blocks for d, or until the log changes, whichever comes first.
func (s *Synchronizer) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	case <-timer.C:
	case <-s.wake:
	}
	return nil
}

// Poll waits one interval (or the initial delay when first is set) and
// then checks the log once.
func (s *Synchronizer) Poll(ctx context.Context, artifact string, consumed func(string) bool, first bool) (resultlog.Record, Status, error) {
	d := s.interval
	if first && s.delay > 0 {
		d = s.delay
	}
	if err := s.Wait(ctx, d); err != nil {
		return resultlog.Record{}, StatusEmpty, err
	}
	rec, status := s.Check(artifact, consumed)
	return rec, status, nil
}

// Check reads the log once and looks for a verdict on artifact.
//
// Only newline-terminated lines count; a trailing partial line is a write
// still in progress. The newest complete line is tried first. If it is
// malformed or about another artifact, older lines are scanned newest-first
// so that well-formed records can arrive in any order. Records for which
// consumed returns true are skipped.
func (s *Synchronizer) Check(artifact string, consumed func(string) bool) (resultlog.Record, Status) {
	lines, err := resultlog.Read(s.logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return resultlog.Record{}, StatusMissingLog
		}
		s.logger.Warn("result log unreadable", "path", s.logPath, "err", err)
		return resultlog.Record{}, StatusUnreadable
	}
	if len(lines.Complete) == 0 {
		return resultlog.Record{}, StatusEmpty
	}

	status := StatusUnmatched
	for i := len(lines.Complete) - 1; i >= 0; i-- {
		rec, err := resultlog.Parse(lines.Complete[i])
		if err != nil {
			if i == len(lines.Complete)-1 {
				status = StatusMalformed
				s.logger.Debug("malformed result line", "line", lines.Complete[i], "err", err)
			}
			continue
		}
		if !rec.Matches(artifact) {
			continue
		}
		if consumed != nil && consumed(strings.ToLower(rec.ImageFile)) {
			continue
		}
		return rec, StatusMatched
	}
	return resultlog.Record{}, status
}

// Consumed builds a lookup over already-consumed artifact names.
func Consumed(names []string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = true
	}
	return func(name string) bool { return set[strings.ToLower(name)] }
}
