package live

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/audio"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Capturer is the session's view of the microphone.
type Capturer interface {
	Start() error
	Stop()
}

// Player schedules decoded model audio for gapless playback.
type Player interface {
	Schedule(buf *pcm.Buffer) time.Duration
	StopAll()
	SetSpeakingFunc(fn func(bool))
}

// DialFunc opens a duplex connection for a conversation.
type DialFunc func(ctx context.Context, cfg SessionConfig, log zerolog.Logger) (Conn, error)

// Session orchestrates one live voice conversation at a time: it owns
// the connection handle, the capture chain, the playback scheduler,
// and the accumulated transcripts. Start and Stop may be called
// repeatedly; each conversation gets a fresh epoch so continuations
// from a torn-down conversation can never touch a new one.
type Session struct {
	cfg SessionConfig
	log zerolog.Logger

	dial         DialFunc
	openCapture  func(audio.FrameFunc) (Capturer, error)
	closeCapture func()
	player       Player

	mu      sync.Mutex
	state   SessionState
	epoch   uint64
	conn    Conn
	capture Capturer

	inputTranscript  strings.Builder
	outputTranscript strings.Builder

	events chan Event
}

// NewSession wires a session to the audio engine. The engine stays
// owned by the caller; the session only opens and closes captures and
// schedules playback through it.
func NewSession(cfg SessionConfig, engine *audio.Engine, log zerolog.Logger) *Session {
	s := &Session{
		cfg:    cfg,
		log:    log.With().Str("component", "session").Logger(),
		state:  StateIdle,
		events: make(chan Event, 100),
		dial: func(ctx context.Context, cfg SessionConfig, log zerolog.Logger) (Conn, error) {
			return Dial(ctx, cfg, log)
		},
		player: engine.Scheduler(),
	}
	s.openCapture = func(fn audio.FrameFunc) (Capturer, error) {
		c, err := engine.OpenCapture(fn)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	s.closeCapture = engine.CloseCapture
	s.player.SetSpeakingFunc(func(speaking bool) {
		s.emit(&SpeakingChangedEvent{Speaking: speaking})
	})
	return s
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Events returns the channel for receiving session events. The
// channel lives for the session's lifetime, across conversations.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Transcripts returns the accumulated user and model transcripts for
// the current conversation.
func (s *Session) Transcripts() (input, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputTranscript.String(), s.outputTranscript.String()
}

// Start begins a conversation: microphone first, then dial and
// handshake. A microphone denial never touches the network. It returns
// once audio is flowing in both directions. Starting while a
// conversation is active is an error.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateError {
		s.mu.Unlock()
		return core.NewTransportError("conversation already in progress", "", nil)
	}
	s.epoch++
	epoch := s.epoch
	s.setStateLocked(StateConnecting)
	s.mu.Unlock()

	capture, err := s.openCapture(func(samples []float32) {
		s.sendFrame(epoch, samples)
	})
	if err != nil {
		s.fail(epoch, err)
		return err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Torn down while connecting; the new owner wins.
		s.mu.Unlock()
		capture.Stop()
		if s.closeCapture != nil {
			s.closeCapture()
		}
		return core.NewAbortedError()
	}
	s.capture = capture
	s.mu.Unlock()

	if err := capture.Start(); err != nil {
		s.fail(epoch, err)
		return err
	}

	// Frames produced before the connection resolves are dropped by
	// sendFrame's nil-conn check.
	conn, err := s.dial(ctx, s.cfg, s.log)
	if err != nil {
		s.fail(epoch, err)
		return err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		_ = conn.Close()
		return core.NewAbortedError()
	}
	s.conn = conn
	s.setStateLocked(StateOpen)
	s.mu.Unlock()

	go s.consume(epoch, conn)
	s.log.Info().Str("model", s.cfg.Model).Msg("conversation started")
	return nil
}

// Stop ends the current conversation and releases its resources. It
// is a no-op when nothing is running. User-initiated stops are not
// errors.
func (s *Session) Stop(reason string) {
	s.teardown(0, StateIdle, reason)
}

// sendFrame encodes one capture frame and sends it upstream. Frames
// arriving after teardown, or from a previous conversation, are
// silently dropped.
func (s *Session) sendFrame(epoch uint64, samples []float32) {
	s.mu.Lock()
	conn := s.conn
	stale := s.epoch != epoch || conn == nil
	s.mu.Unlock()
	if stale {
		return
	}
	if err := conn.SendAudio(pcm.FramePayload(samples)); err != nil {
		s.log.Debug().Err(err).Msg("audio frame dropped")
	}
}

// consume drains connection events until the connection ends, then
// resolves how the conversation finished.
func (s *Session) consume(epoch uint64, conn Conn) {
	for event := range conn.Events() {
		if !s.handleEvent(epoch, event) {
			break
		}
	}

	if err := conn.Err(); err != nil {
		s.fail(epoch, err)
		return
	}
	// Remote closed cleanly or we are already in teardown.
	s.teardown(epoch, StateIdle, "connection closed")
}

// handleEvent applies one server event. Returns false once the event
// belongs to a dead conversation.
func (s *Session) handleEvent(epoch uint64, event Event) bool {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return false
	}
	switch e := event.(type) {
	case *InputTranscriptEvent:
		s.inputTranscript.WriteString(e.Text)
	case *OutputTranscriptEvent:
		s.outputTranscript.WriteString(e.Text)
	case *TurnCompleteEvent:
		// The exchange is over; the next turn starts clean.
		s.inputTranscript.Reset()
		s.outputTranscript.Reset()
	}
	s.mu.Unlock()

	switch e := event.(type) {
	case *AudioChunkEvent:
		s.player.Schedule(e.Buffer)
	case *InterruptedEvent:
		// User barged in: everything queued is stale.
		s.player.StopAll()
	}

	s.emit(event)
	return true
}

// fail funnels any conversation error through teardown into the error
// state. Aborted errors are user intent, not failures.
func (s *Session) fail(epoch uint64, err error) {
	if core.IsAborted(err) {
		s.teardown(epoch, StateIdle, "cancelled")
		return
	}
	s.log.Error().Err(err).Msg("conversation failed")
	s.emit(&ErrorEvent{Code: string(core.TypeOf(err)), Message: err.Error()})
	s.teardown(epoch, StateError, err.Error())
}

// teardown releases everything the current conversation holds, in
// order: the connection handle is cleared first so in-flight sends
// become no-ops, then the socket, the microphone, queued playback,
// and finally the transcripts. epoch of 0 means "whatever is
// current". Repeat calls for the same conversation are no-ops.
func (s *Session) teardown(epoch uint64, final SessionState, reason string) {
	s.mu.Lock()
	if epoch != 0 && s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if s.state == StateIdle || s.state == StateClosing {
		if s.state == StateIdle && final == StateError {
			s.setStateLocked(StateError)
		}
		s.mu.Unlock()
		return
	}
	s.setStateLocked(StateClosing)
	s.epoch++
	conn := s.conn
	capture := s.capture
	s.conn = nil
	s.capture = nil
	s.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if capture != nil {
		capture.Stop()
	}
	if s.closeCapture != nil {
		s.closeCapture()
	}
	s.player.StopAll()

	s.mu.Lock()
	s.inputTranscript.Reset()
	s.outputTranscript.Reset()
	s.setStateLocked(final)
	s.mu.Unlock()

	s.emit(&SessionClosedEvent{Reason: reason})
	s.log.Info().Str("reason", reason).Msg("conversation ended")
}

// setStateLocked transitions the state and queues the change event.
// Callers hold s.mu.
func (s *Session) setStateLocked(to SessionState) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	// Emit without blocking while the lock is held.
	select {
	case s.events <- &StateChangedEvent{From: from, To: to}:
	default:
	}
}

func (s *Session) emit(event Event) {
	if event == nil {
		return
	}
	select {
	case s.events <- event:
	default:
		// Slow consumers must not stall the conversation.
	}
}
