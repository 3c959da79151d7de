package session

import (
	"fmt"
	"time"
)

// Elapsed returns how long the current attempt has been running. Zero when
// idle.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionStart.IsZero() {
		return 0
	}
	return s.now().Sub(s.sessionStart)
}

// ElapsedDisplay is the stopwatch projection of Elapsed.
func (s *Session) ElapsedDisplay() string {
	return FormatElapsed(s.Elapsed())
}

// FormatElapsed renders a duration as MM:SS, flooring to whole seconds.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

func (s *Session) runTicker(stop chan struct{}, start time.Time, fn func(elapsed time.Duration)) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fn(s.now().Sub(start))
		}
	}
}

func (s *Session) stopTickerLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}
