package api

import "time"

// AssignedQuestionView is one row of the student's assigned-question feed:
// a question joined with its assignment and class context, plus the flags
// the backend computes per student.
type AssignedQuestionView struct {
	AssignmentID          string   `json:"assignmentId"`
	AssignmentTitle       string   `json:"assignmentTitle"`
	AssignmentDescription string   `json:"assignmentDescription,omitempty"`
	ClassName             string   `json:"className"`
	ClassID               string   `json:"classId"`
	QuestionID            string   `json:"questionId"`
	Question              string   `json:"question"`
	Options               []string `json:"options"`
	ImageURL              string   `json:"imageUrl,omitempty"`
	Subject               string   `json:"subject,omitempty"`
	IsAnswered            bool     `json:"isAnswered"`
	AssignmentCompleted   bool     `json:"assignmentCompleted"`
}

// StudentRef, QuestionRef and ClassRef are the populated foreign-key objects
// embedded in admin response records. A deleted referent arrives as null, so
// Response holds them as pointers.
type StudentRef struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	AdmissionNo string `json:"admissionNo"`
}

type QuestionRef struct {
	ID       string `json:"_id"`
	Question string `json:"question"`
	Subject  string `json:"subject,omitempty"`
}

type ClassRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Response is a single persisted answer record as returned by the backend.
type Response struct {
	ID             string       `json:"_id"`
	Student        *StudentRef  `json:"studentId"`
	Question       *QuestionRef `json:"questionId"`
	Class          *ClassRef    `json:"classId"`
	AssignmentID   string       `json:"assignmentId"`
	SelectedAnswer int          `json:"selectedAnswer"`
	IsCorrect      bool         `json:"isCorrect"`
	ResponseTimeMs int64        `json:"responseTime"`
	AnsweredAt     time.Time    `json:"answeredAt"`
}

// SubmitAnswerRequest is the body of POST /students/submit-answer. StartTime
// is the per-question start instant in epoch milliseconds; the backend derives
// the response time from it.
type SubmitAnswerRequest struct {
	QuestionID     string `json:"questionId" validate:"required"`
	SelectedAnswer int    `json:"selectedAnswer" validate:"gte=0"`
	ClassID        string `json:"classId" validate:"required"`
	StartTime      int64  `json:"startTime" validate:"gt=0"`
	AssignmentID   string `json:"assignmentId" validate:"required"`
}

// LeaderboardRow is the server-aggregated per-student summary consumed by the
// leaderboard view. It is distinct from the client-side analytics package,
// which works on raw Response lists.
type LeaderboardRow struct {
	StudentID             string  `json:"studentId"`
	StudentName           string  `json:"studentName"`
	StudentEmail          string  `json:"studentEmail"`
	Score                 float64 `json:"score"`
	CorrectAnswers        int     `json:"correctAnswers"`
	TotalAnswers          int     `json:"totalAnswers"`
	AverageResponseTimeMs float64 `json:"averageResponseTime"`
}

// ResponsesFilter narrows the admin response listing and exports. Zero values
// mean "no filter".
type ResponsesFilter struct {
	ClassID      string
	StudentID    string
	AssignmentID string
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	AdmissionNo string `json:"admissionNo,omitempty"`
	Role        string `json:"role,omitempty"`
}

type AuthUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}
