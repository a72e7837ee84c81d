package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/audio"
	"github.com/GRodHealth/lokono/pkg/core/live"
)

var converseCmd = &cobra.Command{
	Use:   "converse",
	Short: "Hold a live spoken conversation",
	Long: `Opens the microphone and a duplex connection to the model, then
streams audio both ways until interrupted with Ctrl-C. Transcripts of
both sides are printed as they arrive.`,
	RunE: runConverse,
}

func init() {
	rootCmd.AddCommand(converseCmd)
}

func runConverse(cmd *cobra.Command, args []string) error {
	lang, err := studyLanguage()
	if err != nil {
		return err
	}

	engine, err := audio.NewEngine(logger)
	if err != nil {
		return err
	}
	defer engine.Teardown()

	sessionCfg := live.DefaultSessionConfig()
	sessionCfg.APIKey = cfg.GeminiAPIKey
	sessionCfg.Model = cfg.LiveModel
	sessionCfg.Voice = cfg.Voice
	sessionCfg.SystemInstruction = assistant.SystemInstruction(lang)

	session := live.NewSession(sessionCfg, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Speaking with your %s teacher. Press Ctrl-C to finish.\n\n", lang)

	for {
		select {
		case <-ctx.Done():
			session.Stop("user quit")
			fmt.Println("\nConversation ended.")
			return nil
		case event := <-session.Events():
			switch e := event.(type) {
			case *live.InputTranscriptEvent:
				fmt.Printf("you: %s\n", e.Text)
			case *live.OutputTranscriptEvent:
				fmt.Printf("%s: %s\n", lang, e.Text)
			case *live.TurnCompleteEvent:
				fmt.Println()
			case *live.ErrorEvent:
				if e.Code == string(core.ErrDecode) {
					logger.Warn().Str("error", e.Message).Msg("audio chunk dropped")
					continue
				}
				session.Stop("error")
				return fmt.Errorf("%s", e.Message)
			case *live.SessionClosedEvent:
				if session.State() == live.StateIdle {
					fmt.Println("\nConversation ended.")
					return nil
				}
			}
		}
	}
}
