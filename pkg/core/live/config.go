package live

// SessionState represents the current state of the live session.
type SessionState int

const (
	// StateIdle is the resting state before a conversation starts and
	// after teardown completes.
	StateIdle SessionState = iota
	// StateConnecting is while the websocket dial and setup handshake
	// are in flight.
	StateConnecting
	// StateOpen is when the session is established and streaming.
	StateOpen
	// StateClosing is while teardown is running.
	StateClosing
	// StateError is the terminal state after an unrecoverable failure.
	StateError
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SessionConfig holds all configuration for a live session.
type SessionConfig struct {
	// APIKey authenticates the websocket connection.
	APIKey string `json:"-"`

	// Host is the API host. Default: generativelanguage.googleapis.com.
	// Overridable so tests can point at a local server.
	Host string `json:"host,omitempty"`

	// Model is the bidirectional generation model.
	Model string `json:"model"`

	// Voice is the prebuilt voice name for spoken responses.
	Voice string `json:"voice,omitempty"`

	// SystemInstruction steers the model for the whole session.
	SystemInstruction string `json:"system_instruction,omitempty"`

	// InputTranscription requests live transcription of user speech.
	InputTranscription bool `json:"input_transcription"`

	// OutputTranscription requests transcription of model speech.
	OutputTranscription bool `json:"output_transcription"`

	// Insecure uses ws:// instead of wss://. Tests only.
	Insecure bool `json:"-"`
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Host:                "generativelanguage.googleapis.com",
		Model:               "gemini-2.5-flash-native-audio-preview-09-2025",
		Voice:               "Leda",
		InputTranscription:  true,
		OutputTranscription: true,
	}
}
