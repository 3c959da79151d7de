package history

import (
	"context"
	"time"

	"questify/internal/api"
)

// SaveResponses upserts a snapshot of backend response records. Re-running a
// snapshot refreshes rows in place.
func (s *Store) SaveResponses(ctx context.Context, responses []api.Response) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, response := range responses {
		var (
			studentID, studentName, admissionNo string
			questionID, questionText            string
			classID, className                  string
		)
		if response.Student != nil {
			studentID = response.Student.ID
			studentName = response.Student.Name
			admissionNo = response.Student.AdmissionNo
		}
		if response.Question != nil {
			questionID = response.Question.ID
			questionText = response.Question.Question
		}
		if response.Class != nil {
			classID = response.Class.ID
			className = response.Class.Name
		}

		_, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO responses
			 (response_id, student_id, student_name, admission_no,
			  question_id, question_text, class_id, class_name,
			  assignment_id, selected_answer, is_correct, response_time_ms, answered_at_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			response.ID,
			studentID,
			studentName,
			admissionNo,
			questionID,
			questionText,
			classID,
			className,
			response.AssignmentID,
			response.SelectedAnswer,
			boolToInt(response.IsCorrect),
			response.ResponseTimeMs,
			response.AnsweredAt.UnixMilli(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadResponses reads back a snapshot, optionally filtered, ordered by answer
// time. Empty foreign keys come back as nil refs, matching what the API
// returns for deleted referents.
func (s *Store) LoadResponses(ctx context.Context, filter api.ResponsesFilter) ([]api.Response, error) {
	query := `SELECT response_id, student_id, student_name, admission_no,
	                 question_id, question_text, class_id, class_name,
	                 assignment_id, selected_answer, is_correct, response_time_ms, answered_at_ms
	          FROM responses WHERE 1=1`
	args := make([]any, 0, 3)
	if filter.ClassID != "" {
		query += " AND class_id = ?"
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		query += " AND student_id = ?"
		args = append(args, filter.StudentID)
	}
	if filter.AssignmentID != "" {
		query += " AND assignment_id = ?"
		args = append(args, filter.AssignmentID)
	}
	query += " ORDER BY answered_at_ms ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := make([]api.Response, 0)
	for rows.Next() {
		var (
			response                            api.Response
			studentID, studentName, admissionNo string
			questionID, questionText            string
			classID, className                  string
			isCorrect                           int
			answeredAtMs                        int64
		)
		if err := rows.Scan(
			&response.ID,
			&studentID, &studentName, &admissionNo,
			&questionID, &questionText,
			&classID, &className,
			&response.AssignmentID,
			&response.SelectedAnswer,
			&isCorrect,
			&response.ResponseTimeMs,
			&answeredAtMs,
		); err != nil {
			return nil, err
		}

		if studentID != "" {
			response.Student = &api.StudentRef{ID: studentID, Name: studentName, AdmissionNo: admissionNo}
		}
		if questionID != "" {
			response.Question = &api.QuestionRef{ID: questionID, Question: questionText}
		}
		if classID != "" {
			response.Class = &api.ClassRef{ID: classID, Name: className}
		}
		response.IsCorrect = isCorrect != 0
		response.AnsweredAt = time.UnixMilli(answeredAtMs).UTC()

		responses = append(responses, response)
	}

	return responses, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
