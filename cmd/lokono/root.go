package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
	"github.com/GRodHealth/lokono/pkg/config"
)

var (
	cfg    *config.Config
	logger zerolog.Logger

	flagLanguage string
	flagVoice    string
)

var rootCmd = &cobra.Command{
	Use:   "lokono",
	Short: "Voice assistant for learning Guyanese indigenous languages",
	Long: `lokono is a conversation partner for Guyanese indigenous languages
(Lokono, Makushi, Wapishana, Akawaio, Warrau, Carib). It holds live
spoken conversations, answers questions with web-grounded citations,
speaks words aloud, transcribes them to IPA, and keeps a vocabulary
flashcard deck.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if flagLanguage != "" {
			cfg.Language = flagLanguage
		}
		if flagVoice != "" {
			cfg.Voice = flagVoice
		}

		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lokono:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "study language (default from LOKONO_LANGUAGE)")
	rootCmd.PersistentFlags().StringVar(&flagVoice, "voice", "", "voice name for spoken responses (default from LOKONO_VOICE)")
}

// studyLanguage resolves the configured language name.
func studyLanguage() (assistant.Language, error) {
	return assistant.ParseLanguage(cfg.Language)
}

func assistantConfig() assistant.Config {
	return assistant.Config{
		APIKey:     cfg.GeminiAPIKey,
		TextModel:  cfg.TextModel,
		TTSModel:   cfg.TTSModel,
		ImageModel: cfg.ImageModel,
		Voice:      cfg.Voice,
	}
}
