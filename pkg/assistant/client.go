package assistant

import (
	"context"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/GRodHealth/lokono/pkg/core"
)

// Config selects the models and voice for the single-shot calls.
type Config struct {
	APIKey     string
	TextModel  string
	TTSModel   string
	ImageModel string
	Voice      string
}

// DefaultConfig returns the standard model selection.
func DefaultConfig() Config {
	return Config{
		TextModel:  "gemini-2.5-flash",
		TTSModel:   "gemini-2.5-flash-preview-tts",
		ImageModel: "gemini-2.5-flash-image-preview",
		Voice:      "Leda",
	}
}

// Client wraps the generative API for the non-streaming assistant
// features: grounded answers, speech synthesis, phonetic
// transcription, and illustrations.
type Client struct {
	cfg Config
	api *genai.Client
	log zerolog.Logger
}

// NewClient builds a client against the hosted API.
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, core.NewCredentialError("API key is required")
	}
	api, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, core.NewAPIError("create API client", err)
	}
	return &Client{
		cfg: cfg,
		api: api,
		log: log.With().Str("component", "assistant").Logger(),
	}, nil
}
