package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
	now func() time.Time
}

func (r *eventRepo) timestamp() int64 {
	if r.now != nil {
		return r.now().UnixNano()
	}
	return time.Now().UnixNano()
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	queue := data.Queue
	if queue == nil {
		queue = []string{}
	}
	queueJSON, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO session_events
		(sequence, timestamp, session_id, action, queue, questions, correct, incorrect, unresolved, duration_secs)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, r.timestamp(), data.SessionID, data.Action, string(queueJSON),
		data.Questions, data.Correct, data.Incorrect, data.Unresolved, data.DurationSecs,
	)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO attempt_events
		(sequence, timestamp, session_id, position, label, artifact, outcome, predicted_class, confidence, timed_out, time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		seqNum, r.timestamp(), data.SessionID, data.Position, data.Label, data.ArtifactName,
		data.Outcome, data.PredictedClass, data.Confidence, data.TimedOut, data.TimeMs,
	)
	if err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	where := []string{"action IN (?, ?)"}
	args := []any{ActionEnd, ActionQuit}
	if opts.After > 0 {
		where = append(where, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		where = append(where, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UnixNano())
	}
	if !opts.To.IsZero() {
		where = append(where, "timestamp <= ?")
		args = append(args, opts.To.UnixNano())
	}

	query := `SELECT sequence, timestamp, session_id, action, queue, questions, correct, incorrect, unresolved, duration_secs
		FROM session_events WHERE ` + strings.Join(where, " AND ") + ` ORDER BY sequence DESC`
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var (
			s         SessionSummary
			ts        int64
			queueJSON string
		)
		if err := rows.Scan(&s.Sequence, &ts, &s.SessionID, &s.Action, &queueJSON,
			&s.Questions, &s.Correct, &s.Incorrect, &s.Unresolved, &s.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		s.Timestamp = time.Unix(0, ts)
		if err := json.Unmarshal([]byte(queueJSON), &s.Queue); err != nil {
			return nil, fmt.Errorf("decode queue: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *eventRepo) QueryAttempts(ctx context.Context, sessionID string) ([]AttemptRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT sequence, timestamp, session_id, position, label, artifact,
		outcome, predicted_class, confidence, timed_out, time_ms
		FROM attempt_events WHERE session_id = ? ORDER BY position, sequence`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var (
			a  AttemptRecord
			ts int64
		)
		if err := rows.Scan(&a.Sequence, &ts, &a.SessionID, &a.Position, &a.Label, &a.ArtifactName,
			&a.Outcome, &a.PredictedClass, &a.Confidence, &a.TimedOut, &a.TimeMs); err != nil {
			return nil, fmt.Errorf("scan attempt event: %w", err)
		}
		a.Timestamp = time.Unix(0, ts)
		out = append(out, a)
	}
	return out, rows.Err()
}
