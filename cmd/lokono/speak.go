package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
	"github.com/GRodHealth/lokono/pkg/core/audio"
)

var speakCmd = &cobra.Command{
	Use:   "speak [text]",
	Short: "Synthesize text and play it aloud",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	client, err := assistant.NewClient(cmd.Context(), assistantConfig(), logger)
	if err != nil {
		return err
	}

	buf, err := client.Synthesize(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	engine, err := audio.NewEngine(logger)
	if err != nil {
		return err
	}
	defer engine.Teardown()

	scheduler := engine.Scheduler()
	scheduler.PlayNow(buf)
	for scheduler.Speaking() {
		time.Sleep(50 * time.Millisecond)
	}
	// Let the device buffer drain before teardown cuts it off.
	time.Sleep(250 * time.Millisecond)
	return nil
}
