package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
)

var illustrateOut string

var illustrateCmd = &cobra.Command{
	Use:   "illustrate [subject]",
	Short: "Generate an illustration for a word or scene",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIllustrate,
}

func init() {
	illustrateCmd.Flags().StringVarP(&illustrateOut, "out", "o", "illustration.png", "output image file")
	rootCmd.AddCommand(illustrateCmd)
}

func runIllustrate(cmd *cobra.Command, args []string) error {
	client, err := assistant.NewClient(cmd.Context(), assistantConfig(), logger)
	if err != nil {
		return err
	}

	img, err := client.Illustrate(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := os.WriteFile(illustrateOut, img.Data, 0644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Printf("Wrote %s (%s, %d bytes)\n", illustrateOut, img.MIMEType, len(img.Data))
	return nil
}
