package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the language, with web-grounded sources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	lang, err := studyLanguage()
	if err != nil {
		return err
	}
	client, err := assistant.NewClient(cmd.Context(), assistantConfig(), logger)
	if err != nil {
		return err
	}

	answer, err := client.Ask(cmd.Context(), lang, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(answer.Text)
	if len(answer.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, c := range answer.Citations {
			if c.Title != "" {
				fmt.Printf("  - %s (%s)\n", c.Title, c.URI)
			} else {
				fmt.Printf("  - %s\n", c.URI)
			}
		}
	}
	return nil
}
