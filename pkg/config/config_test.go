package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOKONO_LANGUAGE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("api key = %q", cfg.GeminiAPIKey)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}
	if cfg.Language != "Lokono" {
		t.Errorf("language = %q, want Lokono", cfg.Language)
	}
	if cfg.LiveModel == "" || cfg.TextModel == "" || cfg.TTSModel == "" {
		t.Error("model defaults missing")
	}
	if cfg.DeckPath == "" {
		t.Error("deck path default missing")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("load succeeded without an API key")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "loud")

	if _, err := Load(); err == nil {
		t.Fatal("load accepted an invalid log level")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOKONO_VOICE", "Puck")
	t.Setenv("LOKONO_DECK_PATH", "/tmp/cards.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Voice != "Puck" {
		t.Errorf("voice = %q", cfg.Voice)
	}
	if cfg.DeckPath != "/tmp/cards.json" {
		t.Errorf("deck path = %q", cfg.DeckPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}
