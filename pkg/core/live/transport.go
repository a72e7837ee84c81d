package live

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

const defaultConnectTimeout = 15 * time.Second

// Conn is the session's view of an established duplex connection.
type Conn interface {
	// SendAudio streams one encoded media chunk upstream. Safe for
	// concurrent use.
	SendAudio(p pcm.Payload) error

	// Events yields decoded server events. Closed when the connection
	// ends for any reason.
	Events() <-chan Event

	// Close shuts the connection down and waits for the read loop to
	// drain. Safe to call multiple times.
	Close() error

	// Err returns the terminal connection error, if any. Blocks until
	// the connection has ended.
	Err() error
}

// Transport is a websocket Conn speaking the bidirectional generation
// protocol.
type Transport struct {
	conn *websocket.Conn
	log  zerolog.Logger

	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

// Dial opens the websocket, performs the setup handshake, and starts
// the read loop. The returned transport is live: events flow on
// Events() immediately.
func Dial(ctx context.Context, cfg SessionConfig, log zerolog.Logger) (*Transport, error) {
	if cfg.APIKey == "" {
		return nil, core.NewCredentialError("API key is required")
	}
	if cfg.Model == "" {
		return nil, core.NewTransportError("model must not be empty", "", nil)
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		dialCtx, cancel = context.WithTimeout(ctx, defaultConnectTimeout)
		defer cancel()
	}

	wsURL := EndpointURL(cfg)
	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		if resp != nil {
			if resp.StatusCode == 401 || resp.StatusCode == 403 {
				return nil, core.NewCredentialError(fmt.Sprintf("websocket dial rejected (status %d)", resp.StatusCode))
			}
			return nil, core.NewTransportError(fmt.Sprintf("websocket dial failed (status %d)", resp.StatusCode), "", err)
		}
		return nil, core.NewTransportError("websocket dial failed", "", err)
	}

	if err := conn.WriteJSON(newClientSetup(cfg)); err != nil {
		_ = conn.Close()
		return nil, core.NewTransportError("send setup", "", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		if closeErr, ok := err.(*websocket.CloseError); ok && closeErr.Code == websocket.ClosePolicyViolation {
			return nil, core.NewCredentialError("connection rejected during setup")
		}
		return nil, core.NewTransportError("read setup ack", "", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	frame, err := decodeServerFrame(payload)
	if err != nil {
		_ = conn.Close()
		return nil, core.NewTransportError("decode setup ack", "", err)
	}
	if frame.SetupComplete == nil {
		_ = conn.Close()
		return nil, core.NewTransportError("unexpected first frame before setup completion", "", nil)
	}

	t := &Transport{
		conn:   conn,
		log:    log.With().Str("component", "transport").Logger(),
		events: make(chan Event, 256),
		done:   make(chan struct{}),
	}
	t.emit(&SessionOpenedEvent{Model: cfg.Model, Voice: cfg.Voice})
	go t.readLoop()
	return t, nil
}

// Events yields decoded server events.
func (t *Transport) Events() <-chan Event {
	return t.events
}

// SendAudio streams one media chunk upstream. Sends after Close are
// reported as transport errors.
func (t *Transport) SendAudio(p pcm.Payload) error {
	if t.closed.Load() {
		return core.NewTransportError("connection is closed", "", nil)
	}
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if err := t.conn.WriteJSON(newAudioFrame(p)); err != nil {
		return core.NewTransportError("send audio", "", err)
	}
	return nil
}

// Close sends a close frame, tears down the socket, and waits for the
// read loop to finish.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.closed.Store(true)
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		t.writeMu.Unlock()
		_ = t.conn.Close()
	})
	<-t.done
	return nil
}

// Err returns the terminal connection error (if any).
func (t *Transport) Err() error {
	<-t.done
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

func (t *Transport) setErr(err error) {
	if err == nil {
		return
	}
	t.errMu.Lock()
	defer t.errMu.Unlock()
	if t.err == nil {
		t.err = err
	}
}

func (t *Transport) readLoop() {
	defer close(t.done)
	defer close(t.events)

	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			if t.closed.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return
			}
			// A dropped connection without a close frame counts as
			// abnormal closure (1006), same as a received abnormal code.
			code := websocket.CloseAbnormalClosure
			msg := "connection closed abnormally"
			if closeErr, ok := err.(*websocket.CloseError); ok {
				code = closeErr.Code
				if closeErr.Text != "" {
					msg = fmt.Sprintf("connection closed abnormally: %s", closeErr.Text)
				}
			}
			t.setErr(core.NewTransportError(msg, strconv.Itoa(code), err))
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		frame, err := decodeServerFrame(data)
		if err != nil {
			// Malformed frames are skipped; the stream itself is intact.
			t.log.Warn().Err(err).Msg("skipping undecodable frame")
			continue
		}
		t.handleFrame(frame)
	}
}

func (t *Transport) handleFrame(frame *serverFrame) {
	switch {
	case frame.ServerContent != nil:
		t.handleServerContent(frame.ServerContent)
	case frame.GoAway != nil:
		t.log.Info().Str("time_left", frame.GoAway.TimeLeft).Msg("server going away")
		t.emit(&SessionClosedEvent{Reason: "server going away"})
	}
}

func (t *Transport) handleServerContent(sc *serverContent) {
	// Interruption first so stale audio in the same frame never plays.
	if sc.Interrupted {
		t.emit(&InterruptedEvent{})
	}
	if sc.InputTranscription != nil && sc.InputTranscription.Text != "" {
		t.emit(&InputTranscriptEvent{Text: sc.InputTranscription.Text})
	}
	if sc.OutputTranscription != nil && sc.OutputTranscription.Text != "" {
		t.emit(&OutputTranscriptEvent{Text: sc.OutputTranscription.Text})
	}
	if sc.ModelTurn != nil && !sc.Interrupted {
		for _, part := range sc.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			raw, err := pcm.DecodeBase64(part.InlineData.Data)
			if err != nil {
				t.dropChunk(core.NewDecodeError("chunk is not valid base64", err))
				continue
			}
			buf, err := pcm.DecodeChunk(raw, pcm.OutputSampleRate, 1)
			if err != nil {
				t.dropChunk(core.NewDecodeError("chunk is not whole 16-bit frames", err))
				continue
			}
			t.emit(&AudioChunkEvent{Buffer: buf})
		}
	}
	if sc.TurnComplete {
		t.emit(&TurnCompleteEvent{})
	}
}

// dropChunk logs and surfaces a per-chunk decode failure. Only that
// chunk's audio is lost; the conversation continues.
func (t *Transport) dropChunk(err *core.Error) {
	t.log.Warn().Err(err).Msg("dropping undecodable audio chunk")
	t.emit(&ErrorEvent{Code: string(err.Type), Message: err.Message})
}

func (t *Transport) emit(event Event) {
	if event == nil {
		return
	}
	select {
	case t.events <- event:
	default:
		// Avoid deadlocking the read loop if the consumer stops.
	}
}
