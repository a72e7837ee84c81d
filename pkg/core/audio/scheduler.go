package audio

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Sink receives mono float samples when a scheduled chunk starts playing.
type Sink interface {
	// Write begins playback of the samples immediately. Samples are
	// consumed in real time by the output device.
	Write(samples []float32) error
	// Flush discards any samples the sink has buffered but not yet played.
	Flush()
}

// Scheduler plays a stream of decoded audio chunks back to back with no gap
// and no overlap. It keeps a single cursor, the next available start time on
// the output clock, and a set of in-flight sources. The live stream and the
// one-shot speech playback share one scheduler; starting either path stops
// whatever the other was doing.
type Scheduler struct {
	clock Clock
	sink  Sink
	log   zerolog.Logger

	mu        sync.Mutex
	nextStart time.Duration
	active    map[int64]*source
	nextID    int64
	speaking  bool

	onSpeaking func(bool)
}

type source struct {
	startTimer *time.Timer
	doneTimer  *time.Timer
}

// NewScheduler creates a scheduler feeding the given sink on the given clock.
func NewScheduler(clock Clock, sink Sink, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		sink:   sink,
		log:    log.With().Str("component", "scheduler").Logger(),
		active: make(map[int64]*source),
	}
}

// SetSpeakingFunc registers an observer invoked whenever the "assistant
// speaking" flag flips. The observer runs with the scheduler lock held and
// must not call back into the scheduler.
func (s *Scheduler) SetSpeakingFunc(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSpeaking = fn
}

// Schedule queues buf to play immediately after everything already
// scheduled, never earlier than the current clock time. It returns the start
// time assigned on the output clock.
func (s *Scheduler) Schedule(buf *pcm.Buffer) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if s.nextStart < now {
		s.nextStart = now
	}
	start := s.nextStart
	dur := buf.Duration()
	s.nextStart = start + dur

	id := s.nextID
	s.nextID++

	src := &source{}
	samples := buf.Mono()
	src.startTimer = time.AfterFunc(start-now, func() {
		if err := s.sink.Write(samples); err != nil {
			s.log.Warn().Err(err).Msg("sink write failed")
		}
	})
	src.doneTimer = time.AfterFunc(start+dur-now, func() {
		s.finish(id)
	})
	s.active[id] = src
	s.setSpeakingLocked(true)
	return start
}

// PlayNow is the non-streaming entry point used for one-shot speech
// playback. It stops anything in flight first, so the two paths never mix.
func (s *Scheduler) PlayNow(buf *pcm.Buffer) time.Duration {
	s.StopAll()
	return s.Schedule(buf)
}

// StopAll force-stops every in-flight source, clears the set, and resets the
// cursor so the next chunk starts immediately instead of at a stale future
// offset. Safe to call when nothing is playing.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, src := range s.active {
		src.startTimer.Stop()
		src.doneTimer.Stop()
		delete(s.active, id)
	}
	s.sink.Flush()
	s.nextStart = 0
	s.setSpeakingLocked(false)
}

// Speaking reports whether any source is still in flight.
func (s *Scheduler) Speaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking
}

// CursorAt returns the current next-start cursor. Exposed for state
// inspection; the cursor only ever moves forward between resets.
func (s *Scheduler) CursorAt() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

func (s *Scheduler) finish(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[id]; !ok {
		// Already force-stopped.
		return
	}
	delete(s.active, id)
	if len(s.active) == 0 {
		s.setSpeakingLocked(false)
	}
}

func (s *Scheduler) setSpeakingLocked(v bool) {
	if s.speaking == v {
		return
	}
	s.speaking = v
	if s.onSpeaking != nil {
		s.onSpeaking(v)
	}
}

// ActiveSources returns the number of in-flight sources.
func (s *Scheduler) ActiveSources() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
