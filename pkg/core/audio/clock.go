package audio

import "time"

// Clock is the output timeline the playback scheduler runs against.
// Now is the elapsed time since the clock was created.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	start time.Time
}

// NewClock returns a monotonic clock starting at zero.
func NewClock() Clock {
	return &monotonicClock{start: time.Now()}
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.start)
}
