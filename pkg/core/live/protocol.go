package live

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Wire frames for the bidirectional generation websocket protocol.
// Every frame is a JSON object with exactly one top-level key naming
// the message kind.

const bidiPath = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

// EndpointURL builds the websocket URL for the given config.
func EndpointURL(cfg SessionConfig) string {
	scheme := "wss"
	if cfg.Insecure {
		scheme = "ws"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     cfg.Host,
		Path:     bidiPath,
		RawQuery: "key=" + url.QueryEscape(cfg.APIKey),
	}
	return u.String()
}

// textPart is a single text part in a content payload.
type textPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []textPart `json:"parts"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type setupPayload struct {
	Model                    string           `json:"model"`
	GenerationConfig         generationConfig `json:"generationConfig"`
	SystemInstruction        *content         `json:"systemInstruction,omitempty"`
	InputAudioTranscription  *struct{}        `json:"inputAudioTranscription,omitempty"`
	OutputAudioTranscription *struct{}        `json:"outputAudioTranscription,omitempty"`
}

// clientSetup is the first frame on a new connection.
type clientSetup struct {
	Setup setupPayload `json:"setup"`
}

// newClientSetup builds the session handshake frame from the config.
func newClientSetup(cfg SessionConfig) clientSetup {
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	setup := setupPayload{
		Model: model,
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}
	if cfg.Voice != "" {
		setup.GenerationConfig.SpeechConfig = &speechConfig{
			VoiceConfig: voiceConfig{
				PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}
	if cfg.SystemInstruction != "" {
		setup.SystemInstruction = &content{Parts: []textPart{{Text: cfg.SystemInstruction}}}
	}
	if cfg.InputTranscription {
		setup.InputAudioTranscription = &struct{}{}
	}
	if cfg.OutputTranscription {
		setup.OutputAudioTranscription = &struct{}{}
	}
	return clientSetup{Setup: setup}
}

// clientRealtimeInput streams one or more media chunks upstream.
type clientRealtimeInput struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []pcm.Payload `json:"mediaChunks"`
}

func newAudioFrame(p pcm.Payload) clientRealtimeInput {
	return clientRealtimeInput{RealtimeInput: realtimeInput{MediaChunks: []pcm.Payload{p}}}
}

// serverFrame is the union of everything the server can send. Exactly
// one field is set per frame; unknown keys are ignored.
type serverFrame struct {
	SetupComplete *struct{}       `json:"setupComplete,omitempty"`
	ServerContent *serverContent  `json:"serverContent,omitempty"`
	GoAway        *goAway         `json:"goAway,omitempty"`
	UsageMetadata json.RawMessage `json:"usageMetadata,omitempty"`
}

type serverContent struct {
	ModelTurn           *modelTurn     `json:"modelTurn,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
	InputTranscription  *transcription `json:"inputTranscription,omitempty"`
	OutputTranscription *transcription `json:"outputTranscription,omitempty"`
}

type modelTurn struct {
	Parts []serverPart `json:"parts"`
}

type serverPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type transcription struct {
	Text string `json:"text"`
}

type goAway struct {
	TimeLeft string `json:"timeLeft,omitempty"`
}

// decodeServerFrame parses one text frame off the wire.
func decodeServerFrame(data []byte) (*serverFrame, error) {
	var frame serverFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("decode server frame: %w", err)
	}
	return &frame, nil
}
