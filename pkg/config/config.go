// Package config loads CLI configuration from the environment, with
// optional .env support.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config carries everything the CLI needs to run.
type Config struct {
	// GeminiAPIKey authenticates both the live websocket and the
	// single-shot generation calls.
	GeminiAPIKey string

	// LiveModel is the bidirectional audio model.
	LiveModel string

	// TextModel answers grounded queries and phonetics requests.
	TextModel string

	// TTSModel synthesizes standalone speech.
	TTSModel string

	// ImageModel generates flashcard illustrations.
	ImageModel string

	// Voice is the prebuilt voice for spoken responses.
	Voice string

	// Language is the default study language.
	Language string

	// DeckPath is the flashcard deck file.
	DeckPath string

	// LogLevel: trace, debug, info, warn, error.
	LogLevel string
}

// Load reads the environment, after loading .env when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file found, using environment variables only")
	}

	cfg := &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LiveModel:    getEnvOrDefault("LOKONO_LIVE_MODEL", "gemini-2.5-flash-native-audio-preview-09-2025"),
		TextModel:    getEnvOrDefault("LOKONO_TEXT_MODEL", "gemini-2.5-flash"),
		TTSModel:     getEnvOrDefault("LOKONO_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		ImageModel:   getEnvOrDefault("LOKONO_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		Voice:        getEnvOrDefault("LOKONO_VOICE", "Leda"),
		Language:     getEnvOrDefault("LOKONO_LANGUAGE", "Lokono"),
		DeckPath:     getEnvOrDefault("LOKONO_DECK_PATH", defaultDeckPath()),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.LiveModel == "" {
		return fmt.Errorf("LOKONO_LIVE_MODEL must not be empty")
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error (got %q)", c.LogLevel)
	}
	return nil
}

func defaultDeckPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "deck.json"
	}
	return filepath.Join(home, ".lokono", "deck.json")
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
