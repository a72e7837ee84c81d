package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/audio"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   []pcm.Payload
	events chan Event
	done   chan struct{}

	closeOnce sync.Once
	err       error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

func (c *fakeConn) SendAudio(p pcm.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, p)
	return nil
}

func (c *fakeConn) Events() <-chan Event { return c.events }

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.events)
		close(c.done)
	})
	return nil
}

func (c *fakeConn) Err() error {
	<-c.done
	return c.err
}

func (c *fakeConn) push(e Event) { c.events <- e }

// finish simulates the remote ending the connection.
func (c *fakeConn) finish(err error) {
	c.err = err
	_ = c.Close()
}

func (c *fakeConn) sentCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type fakeCapturer struct {
	mu      sync.Mutex
	started int
	stopped int
}

func (c *fakeCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
	return nil
}

func (c *fakeCapturer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
}

func (c *fakeCapturer) counts() (started, stopped int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started, c.stopped
}

type fakePlayer struct {
	mu        sync.Mutex
	scheduled []*pcm.Buffer
	stops     int
}

func (p *fakePlayer) Schedule(buf *pcm.Buffer) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduled = append(p.scheduled, buf)
	return 0
}

func (p *fakePlayer) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) SetSpeakingFunc(func(bool)) {}

func (p *fakePlayer) state() (scheduled, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.scheduled), p.stops
}

type sessionFixture struct {
	session *Session
	conn    *fakeConn
	capture *fakeCapturer
	player  *fakePlayer

	mu       sync.Mutex
	frameFn  audio.FrameFunc
	captures int
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		conn:    newFakeConn(),
		capture: &fakeCapturer{},
		player:  &fakePlayer{},
	}
	f.session = &Session{
		cfg:    SessionConfig{Model: "test-model", APIKey: "k"},
		log:    zerolog.Nop(),
		state:  StateIdle,
		events: make(chan Event, 100),
		player: f.player,
	}
	f.session.dial = func(context.Context, SessionConfig, zerolog.Logger) (Conn, error) {
		return f.conn, nil
	}
	f.session.openCapture = func(fn audio.FrameFunc) (Capturer, error) {
		f.mu.Lock()
		f.frameFn = fn
		f.captures++
		f.mu.Unlock()
		return f.capture, nil
	}
	f.session.closeCapture = func() {}
	return f
}

func (f *sessionFixture) pushFrame(samples []float32) {
	f.mu.Lock()
	fn := f.frameFn
	f.mu.Unlock()
	if fn != nil {
		fn(samples)
	}
}

func waitForState(t *testing.T, s *Session, want SessionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %v, want %v", s.State(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSessionNominalTurn(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := f.session.State(); got != StateOpen {
		t.Fatalf("state = %v, want OPEN", got)
	}

	buf := &pcm.Buffer{Channels: [][]float32{make([]float32, 480)}, SampleRate: pcm.OutputSampleRate}
	f.conn.push(&InputTranscriptEvent{Text: "hehe "})
	f.conn.push(&InputTranscriptEvent{Text: "bokota"})
	f.conn.push(&AudioChunkEvent{Buffer: buf})
	f.conn.push(&OutputTranscriptEvent{Text: "da bokota"})
	f.conn.push(&TurnCompleteEvent{})
	f.conn.finish(nil)

	waitForState(t, f.session, StateIdle)

	scheduled, _ := f.player.state()
	if scheduled != 1 {
		t.Errorf("scheduled chunks = %d, want 1", scheduled)
	}
	started, stopped := f.capture.counts()
	if started != 1 || stopped != 1 {
		t.Errorf("capture started=%d stopped=%d, want 1/1", started, stopped)
	}
}

func TestSessionAccumulatesTranscripts(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.conn.push(&InputTranscriptEvent{Text: "halika "})
	f.conn.push(&InputTranscriptEvent{Text: "bo"})
	f.conn.push(&OutputTranscriptEvent{Text: "sakoa"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		in, out := f.session.Transcripts()
		if in == "halika bo" && out == "sakoa" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("transcripts = %q / %q", in, out)
		}
		time.Sleep(time.Millisecond)
	}

	// Teardown clears them for the next conversation.
	f.session.Stop("done")
	waitForState(t, f.session, StateIdle)
	if in, out := f.session.Transcripts(); in != "" || out != "" {
		t.Fatalf("transcripts survived teardown: %q / %q", in, out)
	}
}

func TestSessionTurnCompleteClearsTranscripts(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.conn.push(&InputTranscriptEvent{Text: "halika"})
	f.conn.push(&OutputTranscriptEvent{Text: "sakoa"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		in, out := f.session.Transcripts()
		if in == "halika" && out == "sakoa" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("transcripts = %q / %q", in, out)
		}
		time.Sleep(time.Millisecond)
	}

	f.conn.push(&TurnCompleteEvent{})

	deadline = time.Now().Add(2 * time.Second)
	for {
		in, out := f.session.Transcripts()
		if in == "" && out == "" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("transcripts survived turn completion: %q / %q", in, out)
		}
		time.Sleep(time.Millisecond)
	}

	// The conversation itself continues.
	if got := f.session.State(); got != StateOpen {
		t.Fatalf("state = %v after turn completion, want OPEN", got)
	}
}

func TestSessionInterruptionFlushesPlayback(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	buf := &pcm.Buffer{Channels: [][]float32{make([]float32, 480)}, SampleRate: pcm.OutputSampleRate}
	f.conn.push(&AudioChunkEvent{Buffer: buf})
	f.conn.push(&InterruptedEvent{})

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, stops := f.player.state()
		if stops >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("interruption never flushed playback")
		}
		time.Sleep(time.Millisecond)
	}

	// Session stays open; the conversation continues.
	if got := f.session.State(); got != StateOpen {
		t.Fatalf("state = %v after interruption, want OPEN", got)
	}
}

func TestSessionCaptureFramesReachConnection(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.pushFrame(make([]float32, 4096))
	f.pushFrame(make([]float32, 4096))
	if got := f.conn.sentCount(); got != 2 {
		t.Fatalf("sent frames = %d, want 2", got)
	}

	f.conn.mu.Lock()
	mime := f.conn.sent[0].MIMEType
	f.conn.mu.Unlock()
	if mime != pcm.InputMIMEType {
		t.Fatalf("mime = %q, want %q", mime, pcm.InputMIMEType)
	}
}

func TestSessionSendAfterStopIsNoOp(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.pushFrame(make([]float32, 4096))
	f.session.Stop("user")
	waitForState(t, f.session, StateIdle)

	before := f.conn.sentCount()
	f.pushFrame(make([]float32, 4096))
	f.pushFrame(make([]float32, 4096))
	if got := f.conn.sentCount(); got != before {
		t.Fatalf("frames sent after teardown: %d -> %d", before, got)
	}
}

func TestSessionStopIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.session.Stop("first")
	f.session.Stop("second")
	f.session.Stop("third")
	waitForState(t, f.session, StateIdle)

	_, stopped := f.capture.counts()
	if stopped != 1 {
		t.Errorf("capture stopped %d times, want 1", stopped)
	}
	_, stops := f.player.state()
	if stops < 1 {
		t.Error("playback never stopped")
	}
}

func TestSessionStartWhileActiveFails(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.session.Start(context.Background()); err == nil {
		t.Fatal("second start succeeded while active")
	}
	f.session.Stop("done")
}

func TestSessionDialFailureEntersErrorState(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	dialErr := core.NewPermissionError("microphone denied", nil)
	f.session.dial = func(context.Context, SessionConfig, zerolog.Logger) (Conn, error) {
		return nil, dialErr
	}

	if err := f.session.Start(context.Background()); err == nil {
		t.Fatal("start succeeded despite dial failure")
	}
	waitForState(t, f.session, StateError)

	var sawError bool
	for {
		select {
		case event := <-f.session.Events():
			if e, ok := event.(*ErrorEvent); ok {
				sawError = true
				if e.Code != string(core.ErrPermission) {
					t.Fatalf("error code = %q", e.Code)
				}
			}
			continue
		default:
		}
		break
	}
	if !sawError {
		t.Fatal("no error event emitted")
	}
}

func TestSessionMicDenialSkipsDial(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	f.session.openCapture = func(audio.FrameFunc) (Capturer, error) {
		return nil, core.NewPermissionError("microphone denied", nil)
	}
	var dials int
	var dialMu sync.Mutex
	f.session.dial = func(context.Context, SessionConfig, zerolog.Logger) (Conn, error) {
		dialMu.Lock()
		dials++
		dialMu.Unlock()
		return f.conn, nil
	}

	if err := f.session.Start(context.Background()); err == nil {
		t.Fatal("start succeeded despite microphone denial")
	}
	waitForState(t, f.session, StateError)

	dialMu.Lock()
	got := dials
	dialMu.Unlock()
	if got != 0 {
		t.Fatalf("dialed %d times despite microphone denial, want 0", got)
	}
}

func TestSessionTransportFailureFunnelsError(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.conn.finish(core.NewTransportError("connection lost", "", nil))
	waitForState(t, f.session, StateError)

	started, stopped := f.capture.counts()
	if started != 1 || stopped != 1 {
		t.Errorf("capture started=%d stopped=%d after failure", started, stopped)
	}
}

func TestSessionRestartAfterError(t *testing.T) {
	t.Parallel()

	f := newSessionFixture()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.conn.finish(core.NewTransportError("connection lost", "", nil))
	waitForState(t, f.session, StateError)

	// A new conversation gets a fresh connection.
	f.conn = newFakeConn()
	if err := f.session.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := f.session.State(); got != StateOpen {
		t.Fatalf("state = %v after restart", got)
	}
	f.session.Stop("done")
}
