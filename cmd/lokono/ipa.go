package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
)

var ipaCmd = &cobra.Command{
	Use:   "ipa [word]",
	Short: "Show the IPA transcription of a word or phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIPA,
}

func init() {
	rootCmd.AddCommand(ipaCmd)
}

func runIPA(cmd *cobra.Command, args []string) error {
	lang, err := studyLanguage()
	if err != nil {
		return err
	}
	client, err := assistant.NewClient(cmd.Context(), assistantConfig(), logger)
	if err != nil {
		return err
	}

	word := strings.Join(args, " ")
	ipa, err := client.Phonetics(cmd.Context(), lang, word)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", word, ipa)
	return nil
}
