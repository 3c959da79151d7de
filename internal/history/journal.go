package history

import (
	"context"
	"time"

	"questify/internal/session"
)

// JournalEntry is one locally recorded submission. The client never learns
// correctness (the backend keeps that for grading), so the journal only holds
// what was sent and when.
type JournalEntry struct {
	SessionID      string
	AssignmentID   string
	QuestionID     string
	SelectedAnswer int
	ResponseTimeMs int64
	Duplicate      bool
	SubmittedAt    time.Time
}

// LogSubmission appends an accepted submit to the journal. Keyed by
// (session, question), so a duplicate-tolerant re-advance never double-logs.
func (s *Store) LogSubmission(ctx context.Context, sub session.Submission, at time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO submission_journal
		 (session_id, assignment_id, question_id, selected_answer, response_time_ms, duplicate, submitted_at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.SessionID,
		sub.AssignmentID,
		sub.QuestionID,
		sub.Selected,
		sub.ResponseTime.Milliseconds(),
		boolToInt(sub.Duplicate),
		at.UnixMilli(),
	)
	return err
}

// Journal lists recorded submissions, newest first, optionally for one
// assignment.
func (s *Store) Journal(ctx context.Context, assignmentID string) ([]JournalEntry, error) {
	query := `SELECT session_id, assignment_id, question_id, selected_answer, response_time_ms, duplicate, submitted_at_ms
	          FROM submission_journal`
	args := make([]any, 0, 1)
	if assignmentID != "" {
		query += " WHERE assignment_id = ?"
		args = append(args, assignmentID)
	}
	query += " ORDER BY submitted_at_ms DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]JournalEntry, 0)
	for rows.Next() {
		var (
			entry         JournalEntry
			duplicate     int
			submittedAtMs int64
		)
		if err := rows.Scan(
			&entry.SessionID,
			&entry.AssignmentID,
			&entry.QuestionID,
			&entry.SelectedAnswer,
			&entry.ResponseTimeMs,
			&duplicate,
			&submittedAtMs,
		); err != nil {
			return nil, err
		}
		entry.Duplicate = duplicate != 0
		entry.SubmittedAt = time.UnixMilli(submittedAtMs).UTC()
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
