package trigger

import "time"

// DefaultFrameRate approximates a display refresh.
const DefaultFrameRate = 60

// FrameScheduler runs each callback once, one frame after it was scheduled.
type FrameScheduler struct {
	Interval time.Duration
}

// NewFrameScheduler returns a scheduler ticking at fps frames per second.
func NewFrameScheduler(fps int) *FrameScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &FrameScheduler{Interval: time.Second / time.Duration(fps)}
}

// ScheduleNext runs cb on its own goroutine after one frame.
func (s *FrameScheduler) ScheduleNext(cb func()) {
	time.AfterFunc(s.Interval, cb)
}
