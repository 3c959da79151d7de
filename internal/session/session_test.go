package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"questify/internal/api"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []api.SubmitAnswerRequest
	err      error
	release  chan struct{} // when set, SubmitAnswer blocks until closed
}

func (f *fakeSubmitter) SubmitAnswer(ctx context.Context, req api.SubmitAnswerRequest) error {
	f.mu.Lock()
	release := f.release
	f.mu.Unlock()
	if release != nil {
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.err
}

func (f *fakeSubmitter) calls() []api.SubmitAnswerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.SubmitAnswerRequest(nil), f.requests...)
}

func threeQuestionAssignment() Assignment {
	return Assignment{
		ID:        "a1",
		Title:     "Fractions quiz",
		ClassName: "Grade 7",
		ClassID:   "c1",
		Questions: []Question{
			{ID: "q1", Prompt: "1/2 + 1/2?", Options: []string{"1", "2"}},
			{ID: "q2", Prompt: "1/3 + 1/3?", Options: []string{"2/3", "1/3", "1"}},
			{ID: "q3", Prompt: "3/4 - 1/4?", Options: []string{"1/2", "1/4"}},
		},
	}
}

func newTestSession(submitter Submitter, clock *fakeClock) *Session {
	sess := New(submitter)
	sess.now = clock.Now
	return sess
}

func TestStartRefusesCompletedAssignment(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(submitter, newFakeClock())
	sess.MarkCompleted(map[string]bool{"a1": true})

	err := sess.Start(threeQuestionAssignment())
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("Start on completed assignment = %v, want ErrAlreadyCompleted", err)
	}
	if sess.State() != StateIdle {
		t.Fatalf("state = %v, want idle (no mutation on refused start)", sess.State())
	}
}

func TestSubmitWithoutStartFailsFast(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(submitter, newFakeClock())

	if _, err := sess.SubmitCurrent(context.Background()); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("SubmitCurrent before Start = %v, want ErrStaleSession", err)
	}
	if _, err := sess.SkipCurrent(); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("SkipCurrent before Start = %v, want ErrStaleSession", err)
	}
	if err := sess.SelectAnswer("q1", 0); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("SelectAnswer before Start = %v, want ErrStaleSession", err)
	}
	if len(submitter.calls()) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(submitter.calls()))
	}
}

func TestSubmitWithoutSelection(t *testing.T) {
	submitter := &fakeSubmitter{}
	sess := newTestSession(submitter, newFakeClock())
	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	_, err := sess.SubmitCurrent(context.Background())
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("SubmitCurrent without selection = %v, want ErrNoSelection", err)
	}
	if current, _ := sess.Progress(); current != 1 {
		t.Fatalf("currentIndex moved on refused submit: position %d", current)
	}
	if len(submitter.calls()) != 0 {
		t.Fatalf("expected zero network calls, got %d", len(submitter.calls()))
	}
}

func TestSelectAnswerValidation(t *testing.T) {
	sess := newTestSession(&fakeSubmitter{}, newFakeClock())
	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := sess.SelectAnswer("q1", 2); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("out-of-range option = %v, want ErrInvalidOption", err)
	}
	if err := sess.SelectAnswer("q1", -1); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("negative option = %v, want ErrInvalidOption", err)
	}
	if err := sess.SelectAnswer("ghost", 0); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("unknown question = %v, want ErrUnknownQuestion", err)
	}

	// Last write wins.
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 1); err != nil {
		t.Fatalf("SelectAnswer overwrite failed: %v", err)
	}
	if selected, ok := sess.Selected("q1"); !ok || selected != 1 {
		t.Fatalf("Selected(q1) = (%d, %t), want (1, true)", selected, ok)
	}
}

func TestFullAttemptAnswerSkipAnswer(t *testing.T) {
	clock := newFakeClock()
	submitter := &fakeSubmitter{}
	sess := newTestSession(submitter, clock)

	completions := 0
	sess.OnComplete(func() { completions++ })

	assignment := threeQuestionAssignment()
	if err := sess.Start(assignment); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	q1Start := clock.Now()

	// Q1 answered after 2s.
	clock.Advance(2 * time.Second)
	if err := sess.SelectAnswer("q1", 1); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	sub, err := sess.SubmitCurrent(context.Background())
	if err != nil {
		t.Fatalf("SubmitCurrent failed: %v", err)
	}
	if sub.ResponseTime != 2*time.Second {
		t.Fatalf("Q1 response time = %v, want 2s", sub.ResponseTime)
	}
	if sub.Completed {
		t.Fatalf("session completed after first question")
	}

	// Q2's timer starts at the moment of the advance, not at fetch time.
	clock.Advance(3 * time.Second)
	if _, err := sess.SkipCurrent(); err != nil {
		t.Fatalf("SkipCurrent failed: %v", err)
	}

	// Q3 answered after 12s, measured from the skip instant.
	q3Start := clock.Now()
	clock.Advance(12 * time.Second)
	if err := sess.SelectAnswer("q3", 1); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	sub, err = sess.SubmitCurrent(context.Background())
	if err != nil {
		t.Fatalf("SubmitCurrent failed: %v", err)
	}
	if !sub.Completed {
		t.Fatalf("expected completion on last submit")
	}
	if sub.ResponseTime != 12*time.Second {
		t.Fatalf("Q3 response time = %v, want 12s", sub.ResponseTime)
	}

	if sess.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", sess.State())
	}
	if completions != 1 {
		t.Fatalf("completion callback fired %d times, want 1", completions)
	}

	calls := submitter.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 submits (skip makes no call), got %d", len(calls))
	}
	first, last := calls[0], calls[1]
	if first.QuestionID != "q1" || first.SelectedAnswer != 1 || first.ClassID != "c1" || first.AssignmentID != "a1" {
		t.Fatalf("first submit = %+v", first)
	}
	if first.StartTime != q1Start.UnixMilli() {
		t.Fatalf("Q1 startTime = %d, want %d", first.StartTime, q1Start.UnixMilli())
	}
	if last.QuestionID != "q3" || last.StartTime != q3Start.UnixMilli() {
		t.Fatalf("Q3 submit = %+v, want startTime %d", last, q3Start.UnixMilli())
	}
}

func TestDuplicateRejectionAdvancesLikeSuccess(t *testing.T) {
	clock := newFakeClock()
	submitter := &fakeSubmitter{err: &api.APIError{
		StatusCode: http.StatusBadRequest,
		Message:    "Question already answered",
	}}
	sess := newTestSession(submitter, clock)

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}

	sub, err := sess.SubmitCurrent(context.Background())
	if err != nil {
		t.Fatalf("duplicate rejection surfaced as error: %v", err)
	}
	if !sub.Duplicate {
		t.Fatalf("expected Duplicate flag on already-answered outcome")
	}
	if current, _ := sess.Progress(); current != 2 {
		t.Fatalf("position after duplicate = %d, want 2 (single advance)", current)
	}
	if sess.State() != StateInProgress {
		t.Fatalf("state = %v, want in_progress", sess.State())
	}
}

func TestBackendErrorKeepsQuestionAndAllowsRetry(t *testing.T) {
	clock := newFakeClock()
	submitter := &fakeSubmitter{err: &api.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}}
	sess := newTestSession(submitter, clock)

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}

	if _, err := sess.SubmitCurrent(context.Background()); err == nil {
		t.Fatalf("expected backend error to surface")
	}
	if current, _ := sess.Progress(); current != 1 {
		t.Fatalf("position after failed submit = %d, want 1", current)
	}
	if sess.State() != StateInProgress {
		t.Fatalf("state = %v, want in_progress for retry", sess.State())
	}

	submitter.mu.Lock()
	submitter.err = nil
	submitter.mu.Unlock()
	if _, err := sess.SubmitCurrent(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if current, _ := sess.Progress(); current != 2 {
		t.Fatalf("position after retry = %d, want 2", current)
	}
}

func TestSubmitReentrancyGuard(t *testing.T) {
	clock := newFakeClock()
	release := make(chan struct{})
	submitter := &fakeSubmitter{release: release}
	sess := newTestSession(submitter, clock)

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := sess.SubmitCurrent(context.Background())
		done <- err
	}()

	waitForState(t, sess, StateSubmitting)

	// The double-click: a second submit while one is in flight is refused
	// without touching the network.
	if _, err := sess.SubmitCurrent(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("concurrent submit = %v, want ErrSubmitInFlight", err)
	}
	if _, err := sess.SkipCurrent(); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("skip during submit = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if len(submitter.calls()) != 1 {
		t.Fatalf("expected exactly one network call, got %d", len(submitter.calls()))
	}
	if current, _ := sess.Progress(); current != 2 {
		t.Fatalf("position = %d, want 2 (single advance)", current)
	}
}

func TestStartTwiceResetsAttemptState(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(&fakeSubmitter{}, clock)
	assignment := threeQuestionAssignment()

	if err := sess.Start(assignment); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if _, err := sess.SkipCurrent(); err != nil {
		t.Fatalf("SkipCurrent failed: %v", err)
	}
	firstID := sess.ID()

	if err := sess.Start(assignment); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if current, _ := sess.Progress(); current != 1 {
		t.Fatalf("position after restart = %d, want 1", current)
	}
	if _, ok := sess.Selected("q1"); ok {
		t.Fatalf("selections leaked across restart")
	}
	if sess.ID() == firstID {
		t.Fatalf("restart kept the old session id")
	}
}

func TestQuitDiscardsProgressAndFreshStartBeginsAtZero(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(&fakeSubmitter{}, clock)
	assignment := threeQuestionAssignment()

	if err := sess.Start(assignment); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}
	if _, err := sess.SkipCurrent(); err != nil {
		t.Fatalf("SkipCurrent failed: %v", err)
	}

	sess.Quit()
	if sess.State() != StateIdle {
		t.Fatalf("state after quit = %v, want idle", sess.State())
	}

	if err := sess.Start(assignment); err != nil {
		t.Fatalf("restart after quit failed: %v", err)
	}
	if current, total := sess.Progress(); current != 1 || total != 3 {
		t.Fatalf("progress after quit+restart = %d/%d, want 1/3", current, total)
	}
	if _, ok := sess.Selected("q1"); ok {
		t.Fatalf("answers pre-filled after quit+restart")
	}
}

func TestLateSubmitAfterQuitIsDiscarded(t *testing.T) {
	clock := newFakeClock()
	release := make(chan struct{})
	submitter := &fakeSubmitter{release: release}
	sess := newTestSession(submitter, clock)

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := sess.SelectAnswer("q1", 0); err != nil {
		t.Fatalf("SelectAnswer failed: %v", err)
	}

	type result struct {
		sub Submission
		err error
	}
	done := make(chan result, 1)
	go func() {
		sub, err := sess.SubmitCurrent(context.Background())
		done <- result{sub, err}
	}()

	waitForState(t, sess, StateSubmitting)
	sess.Quit()
	close(release)

	got := <-done
	if got.err != nil {
		t.Fatalf("late-resolving submit surfaced error: %v", got.err)
	}
	if got.sub.QuestionID != "" {
		t.Fatalf("late-resolving submit produced a submission: %+v", got.sub)
	}
	if sess.State() != StateIdle {
		t.Fatalf("state = %v, want idle after quit", sess.State())
	}
}

func TestCompletedSessionRefusesFurtherOperations(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(&fakeSubmitter{}, clock)
	assignment := threeQuestionAssignment()

	if err := sess.Start(assignment); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := sess.SkipCurrent(); err != nil {
			t.Fatalf("skip %d failed: %v", i, err)
		}
	}
	if sess.State() != StateCompleted {
		t.Fatalf("state = %v, want completed", sess.State())
	}

	if _, err := sess.SubmitCurrent(context.Background()); !errors.Is(err, ErrStaleSession) {
		t.Fatalf("submit on completed session = %v, want ErrStaleSession", err)
	}

	// Completion also marks the assignment, so a restart is refused.
	if err := sess.Start(assignment); !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("restart of completed assignment = %v, want ErrAlreadyCompleted", err)
	}
}

func waitForState(t *testing.T, sess *Session, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sess.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("session never reached state %v", want)
}
