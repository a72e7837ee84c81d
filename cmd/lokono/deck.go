package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GRodHealth/lokono/pkg/assistant"
	"github.com/GRodHealth/lokono/pkg/deck"
)

var (
	deckNotes   string
	deckWithIPA bool
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage the vocabulary flashcard deck",
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flashcards for the study language",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := deck.Open(cfg.DeckPath)
		if err != nil {
			return err
		}
		cards := store.ForLanguage(cfg.Language)
		if len(cards) == 0 {
			fmt.Printf("No %s cards yet. Add one with: lokono deck add <word> <translation>\n", cfg.Language)
			return nil
		}
		for _, card := range cards {
			line := fmt.Sprintf("%-20s %s", card.Word, card.Translation)
			if card.IPA != "" {
				line += "  " + card.IPA
			}
			fmt.Printf("%s\n    id: %s\n", line, card.ID)
			if card.Notes != "" {
				fmt.Printf("    %s\n", card.Notes)
			}
		}
		return nil
	},
}

var deckAddCmd = &cobra.Command{
	Use:   "add [word] [translation]",
	Short: "Add a flashcard",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, err := studyLanguage()
		if err != nil {
			return err
		}
		store, err := deck.Open(cfg.DeckPath)
		if err != nil {
			return err
		}

		card := deck.Card{
			Language:    string(lang),
			Word:        args[0],
			Translation: args[1],
			Notes:       deckNotes,
		}
		if deckWithIPA {
			client, err := assistant.NewClient(cmd.Context(), assistantConfig(), logger)
			if err != nil {
				return err
			}
			ipa, err := client.Phonetics(cmd.Context(), lang, card.Word)
			if err != nil {
				logger.Warn().Err(err).Msg("could not fetch IPA, saving card without it")
			} else {
				card.IPA = ipa
			}
		}

		saved, err := store.Add(card)
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s) [%s]\n", saved.Word, saved.Translation, saved.ID)
		return nil
	},
}

var deckRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a flashcard by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := deck.Open(cfg.DeckPath)
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Println("Removed.")
		return nil
	},
}

func init() {
	deckAddCmd.Flags().StringVar(&deckNotes, "notes", "", "extra notes for the card")
	deckAddCmd.Flags().BoolVar(&deckWithIPA, "ipa", false, "fetch the IPA transcription while adding")
	deckCmd.AddCommand(deckListCmd, deckAddCmd, deckRemoveCmd)
	rootCmd.AddCommand(deckCmd)
}
