package live

import (
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Event is the interface for all live session events.
type Event interface {
	// EventType returns the event type string for serialization.
	EventType() string
}

// SessionOpenedEvent is emitted once the setup handshake completes.
type SessionOpenedEvent struct {
	Model string `json:"model"`
	Voice string `json:"voice,omitempty"`
}

func (e *SessionOpenedEvent) EventType() string { return "session.opened" }

// SessionClosedEvent is emitted when the session ends.
type SessionClosedEvent struct {
	Reason string `json:"reason,omitempty"`
}

func (e *SessionClosedEvent) EventType() string { return "session.closed" }

// StateChangedEvent is emitted when the session state changes.
type StateChangedEvent struct {
	From SessionState `json:"from"`
	To   SessionState `json:"to"`
}

func (e *StateChangedEvent) EventType() string { return "state.changed" }

// AudioChunkEvent carries one decoded chunk of model speech.
type AudioChunkEvent struct {
	Buffer *pcm.Buffer `json:"-"`
}

func (e *AudioChunkEvent) EventType() string { return "audio.chunk" }

// InputTranscriptEvent carries a fragment of the user speech transcript.
type InputTranscriptEvent struct {
	Text string `json:"text"`
}

func (e *InputTranscriptEvent) EventType() string { return "transcript.input" }

// OutputTranscriptEvent carries a fragment of the model speech transcript.
type OutputTranscriptEvent struct {
	Text string `json:"text"`
}

func (e *OutputTranscriptEvent) EventType() string { return "transcript.output" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (e *TurnCompleteEvent) EventType() string { return "turn.complete" }

// InterruptedEvent signals the model turn was cut off by user speech.
// Buffered playback must be discarded immediately.
type InterruptedEvent struct{}

func (e *InterruptedEvent) EventType() string { return "turn.interrupted" }

// SpeakingChangedEvent reports whether model audio is audible right now.
type SpeakingChangedEvent struct {
	Speaking bool `json:"speaking"`
}

func (e *SpeakingChangedEvent) EventType() string { return "speaking.changed" }

// ErrorEvent is emitted when an error occurs. A decode_error code is
// non-fatal: only one chunk's audio was lost and the session stays open.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorEvent) EventType() string { return "error" }
