package history

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	// Flattened copies of backend records; no FK constraints so re-snapshotting
	// after backend-side deletions stays a plain overwrite.
	statements := []string{
		`CREATE TABLE IF NOT EXISTS responses (
			response_id TEXT PRIMARY KEY,
			student_id TEXT,
			student_name TEXT,
			admission_no TEXT,
			question_id TEXT,
			question_text TEXT,
			class_id TEXT,
			class_name TEXT,
			assignment_id TEXT NOT NULL,
			selected_answer INTEGER NOT NULL,
			is_correct INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL,
			answered_at_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS submission_journal (
			session_id TEXT NOT NULL,
			assignment_id TEXT NOT NULL,
			question_id TEXT NOT NULL,
			selected_answer INTEGER NOT NULL,
			response_time_ms INTEGER NOT NULL,
			duplicate INTEGER NOT NULL DEFAULT 0,
			submitted_at_ms INTEGER NOT NULL,
			PRIMARY KEY (session_id, question_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_responses_class ON responses(class_id);`,
		`CREATE INDEX IF NOT EXISTS idx_responses_assignment ON responses(assignment_id);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_assignment ON submission_journal(assignment_id, submitted_at_ms);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
