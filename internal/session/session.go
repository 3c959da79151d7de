package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"questify/internal/api"
)

var (
	ErrAlreadyCompleted = errors.New("assignment already completed")
	ErrNoSelection      = errors.New("no answer selected")
	ErrStaleSession     = errors.New("no active quiz session")
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
	ErrInvalidOption    = errors.New("option index out of range")
	ErrUnknownQuestion  = errors.New("question is not part of this session")
)

type State int

const (
	StateIdle State = iota
	StateInProgress
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Submitter is the slice of the API client a running session needs.
type Submitter interface {
	SubmitAnswer(ctx context.Context, req api.SubmitAnswerRequest) error
}

// Submission describes one accepted submit, for journaling and display.
// Duplicate means the backend already had an answer for this question (a race
// with another tab or device); the session advanced as if the submit
// succeeded.
type Submission struct {
	SessionID    string
	AssignmentID string
	QuestionID   string
	Selected     int
	ResponseTime time.Duration
	Duplicate    bool
	Completed    bool
}

// Session drives a single quiz attempt: one assignment, one question at a
// time, per-question timing, strictly sequential submits. It is owned by one
// caller; the only concurrent access is the elapsed-time ticker goroutine.
type Session struct {
	client Submitter

	mu           sync.Mutex
	state        State
	id           string
	assignment   Assignment
	index        int
	answers      map[string]int
	startTimes   map[string]time.Time
	sessionStart time.Time
	completed    map[string]bool
	generation   int
	stopTick     chan struct{}

	now          func() time.Time
	tickInterval time.Duration
	onTick       func(elapsed time.Duration)
	onComplete   func()
}

func New(client Submitter) *Session {
	return &Session{
		client:       client,
		state:        StateIdle,
		completed:    make(map[string]bool),
		now:          time.Now,
		tickInterval: 100 * time.Millisecond,
	}
}

// OnTick registers the elapsed-time callback. The session owns the single
// timer driving it; the timer starts with the session and stops on
// completion or quit. Must be called before Start.
func (s *Session) OnTick(fn func(elapsed time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// OnComplete registers a callback fired once when the last question of a
// session is submitted or skipped. Presentation uses it to refresh the feed.
func (s *Session) OnComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// MarkCompleted records assignments the feed reports as finished so Start can
// refuse them.
func (s *Session) MarkCompleted(ids map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, done := range ids {
		if done {
			s.completed[id] = true
		}
	}
}

// Start begins an attempt at the first pending question. Any previous
// in-memory attempt state is discarded. Fails with ErrAlreadyCompleted,
// without touching state, when the assignment is in the completed set.
func (s *Session) Start(assignment Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed[assignment.ID] {
		return ErrAlreadyCompleted
	}
	if len(assignment.Questions) == 0 {
		return ErrAlreadyCompleted
	}

	s.stopTickerLocked()
	s.generation++
	s.id = uuid.NewString()
	s.state = StateInProgress
	s.assignment = assignment
	s.index = 0
	s.answers = make(map[string]int, len(assignment.Questions))
	s.startTimes = make(map[string]time.Time, len(assignment.Questions))

	now := s.now()
	s.sessionStart = now
	s.startTimes[assignment.Questions[0].ID] = now

	if s.onTick != nil {
		s.stopTick = make(chan struct{})
		go s.runTicker(s.stopTick, now, s.onTick)
	}
	return nil
}

// SelectAnswer records an in-memory selection. Last write wins; nothing is
// sent to the backend until SubmitCurrent.
func (s *Session) SelectAnswer(questionID string, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return ErrStaleSession
	}

	question, ok := s.questionByID(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return ErrInvalidOption
	}

	s.answers[questionID] = optionIndex
	return nil
}

// SubmitCurrent sends the selected answer for the current question and
// advances on success. A backend "already answered" rejection is treated as
// success: some other session got there first and the local attempt just
// moves on. While the request is in flight further submits are refused.
func (s *Session) SubmitCurrent(ctx context.Context) (Submission, error) {
	s.mu.Lock()
	switch s.state {
	case StateInProgress:
	case StateSubmitting:
		s.mu.Unlock()
		return Submission{}, ErrSubmitInFlight
	default:
		s.mu.Unlock()
		return Submission{}, ErrStaleSession
	}

	question := s.assignment.Questions[s.index]
	selected, ok := s.answers[question.ID]
	if !ok {
		s.mu.Unlock()
		return Submission{}, ErrNoSelection
	}
	startedAt, ok := s.startTimes[question.ID]
	if !ok {
		s.mu.Unlock()
		return Submission{}, ErrStaleSession
	}

	elapsed := s.now().Sub(startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	request := api.SubmitAnswerRequest{
		QuestionID:     question.ID,
		SelectedAnswer: selected,
		ClassID:        s.assignment.ClassID,
		StartTime:      startedAt.UnixMilli(),
		AssignmentID:   s.assignment.ID,
	}
	generation := s.generation
	s.state = StateSubmitting
	s.mu.Unlock()

	err := s.client.SubmitAnswer(ctx, request)

	s.mu.Lock()
	if s.generation != generation {
		// The session was quit or restarted while the request was in flight.
		// The backend outcome no longer applies to anything; drop it.
		s.mu.Unlock()
		return Submission{}, nil
	}

	duplicate := api.IsAlreadyAnswered(err)
	if err != nil && !duplicate {
		s.state = StateInProgress
		s.mu.Unlock()
		return Submission{}, err
	}

	submission := Submission{
		SessionID:    s.id,
		AssignmentID: s.assignment.ID,
		QuestionID:   question.ID,
		Selected:     selected,
		ResponseTime: elapsed,
		Duplicate:    duplicate,
	}
	submission.Completed = s.advanceLocked()
	onComplete := s.onComplete
	s.mu.Unlock()

	if submission.Completed && onComplete != nil {
		onComplete()
	}
	return submission, nil
}

// SkipCurrent moves past the current question without contacting the backend.
// The next question's timer starts at the moment of the skip.
func (s *Session) SkipCurrent() (completed bool, err error) {
	s.mu.Lock()
	switch s.state {
	case StateInProgress:
	case StateSubmitting:
		s.mu.Unlock()
		return false, ErrSubmitInFlight
	default:
		s.mu.Unlock()
		return false, ErrStaleSession
	}

	completed = s.advanceLocked()
	onComplete := s.onComplete
	s.mu.Unlock()

	if completed && onComplete != nil {
		onComplete()
	}
	return completed, nil
}

// Quit discards all in-memory attempt state unconditionally. Answers already
// accepted by the backend stay persisted; only unsubmitted progress is lost.
// Asking the user to confirm is the caller's job.
func (s *Session) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.stopTickerLocked()
	s.state = StateIdle
	s.id = ""
	s.assignment = Assignment{}
	s.index = 0
	s.answers = nil
	s.startTimes = nil
	s.sessionStart = time.Time{}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the identifier of the running attempt, empty when idle.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress && s.state != StateSubmitting {
		return Question{}, false
	}
	return s.assignment.Questions[s.index], true
}

// Progress returns the 1-based position of the current question and the total
// pending count for the attempt.
func (s *Session) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle {
		return 0, 0
	}
	return s.index + 1, len(s.assignment.Questions)
}

// Selected returns the in-memory selection for a question, if any.
func (s *Session) Selected(questionID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected, ok := s.answers[questionID]
	return selected, ok
}

func (s *Session) advanceLocked() (completed bool) {
	if s.index+1 < len(s.assignment.Questions) {
		s.index++
		s.startTimes[s.assignment.Questions[s.index].ID] = s.now()
		s.state = StateInProgress
		return false
	}

	s.state = StateCompleted
	s.completed[s.assignment.ID] = true
	s.stopTickerLocked()
	return true
}

func (s *Session) questionByID(questionID string) (Question, bool) {
	for _, question := range s.assignment.Questions {
		if question.ID == questionID {
			return question, true
		}
	}
	return Question{}, false
}
