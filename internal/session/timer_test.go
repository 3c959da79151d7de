package session

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{-3 * time.Second, "00:00"},
		{900 * time.Millisecond, "00:00"},
		{time.Second, "00:01"},
		{65 * time.Second, "01:05"},
		{10 * time.Minute, "10:00"},
		{99*time.Minute + 59*time.Second, "99:59"},
	}
	for _, tc := range cases {
		if got := FormatElapsed(tc.d); got != tc.want {
			t.Fatalf("FormatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestElapsedUsesSessionClock(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(&fakeSubmitter{}, clock)

	if sess.Elapsed() != 0 {
		t.Fatalf("Elapsed before start = %v, want 0", sess.Elapsed())
	}

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(65 * time.Second)
	if got := sess.ElapsedDisplay(); got != "01:05" {
		t.Fatalf("ElapsedDisplay = %q, want 01:05", got)
	}
}

func TestTickerFiresAndStopsOnQuit(t *testing.T) {
	clock := newFakeClock()
	sess := newTestSession(&fakeSubmitter{}, clock)
	sess.tickInterval = time.Millisecond

	var ticks atomic.Int64
	sess.OnTick(func(time.Duration) { ticks.Add(1) })

	if err := sess.Start(threeQuestionAssignment()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if ticks.Load() == 0 {
		t.Fatalf("ticker never fired")
	}

	sess.Quit()
	time.Sleep(10 * time.Millisecond) // let any in-flight tick land
	settled := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	if after := ticks.Load(); after != settled {
		t.Fatalf("ticker kept firing after quit: %d -> %d", settled, after)
	}
}
