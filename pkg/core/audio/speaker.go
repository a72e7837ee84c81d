package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Speaker feeds the output device from an internal byte queue. It
// implements Sink for the scheduler: Write enqueues s16le audio and
// Flush drops whatever has not reached the device yet.
type Speaker struct {
	otoCtx *oto.Context

	mu     sync.Mutex
	cond   *sync.Cond
	player *oto.Player
	reader *playerReader
	buf    []byte
	closed bool
}

// playerReader is the io.Reader handed to one oto player. Flush
// detaches it so a reader blocked mid-call cannot drain audio that
// belongs to the replacement player.
type playerReader struct {
	s        *Speaker
	detached bool
}

// NewSpeaker wraps an initialized oto context. The underlying player
// is created lazily on the first write so an idle session keeps the
// device silent.
func NewSpeaker(ctx *oto.Context) *Speaker {
	s := &Speaker{
		otoCtx: ctx,
		buf:    make([]byte, 0, pcm.OutputSampleRate*4),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Write converts one frame of float samples to s16le and queues it for
// playback.
func (s *Speaker) Write(samples []float32) error {
	data := pcm.FrameBytes(samples)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	s.buf = append(s.buf, data...)
	if s.player == nil {
		s.reader = &playerReader{s: s}
		s.player = s.otoCtx.NewPlayer(s.reader)
		s.player.Play()
	}
	s.cond.Signal()
	return nil
}

// Read blocks until audio is queued. A detached reader and a closed
// speaker both return silence so oto can drain gracefully.
func (r *playerReader) Read(p []byte) (int, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed && !r.detached {
		s.cond.Wait()
	}

	if r.detached || s.closed || len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Flush discards queued audio and tears down the current player so
// stale samples cannot bleed into the next utterance.
func (s *Speaker) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]
	player := s.player
	if s.reader != nil {
		s.reader.detached = true
	}
	s.player = nil
	s.reader = nil
	s.cond.Broadcast()
	s.mu.Unlock()

	if player != nil {
		// Pause before Reset so no half-written period plays out.
		player.Pause()
		player.Reset()
		player.Close()
	}
}

// Close flushes and marks the speaker unusable.
func (s *Speaker) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	player := s.player
	if s.reader != nil {
		s.reader.detached = true
	}
	s.player = nil
	s.reader = nil
	s.buf = s.buf[:0]
	s.mu.Unlock()

	if player != nil {
		player.Close()
	}
}
