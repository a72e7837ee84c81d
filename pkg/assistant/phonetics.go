package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/GRodHealth/lokono/pkg/core"
)

// Phonetics returns the IPA transcription of a word or short phrase.
func (c *Client) Phonetics(ctx context.Context, lang Language, word string) (string, error) {
	if strings.TrimSpace(word) == "" {
		return "", core.NewAPIError("word must not be empty", nil)
	}

	prompt := fmt.Sprintf(
		"Give the IPA (International Phonetic Alphabet) transcription of the %s word or phrase %q. "+
			"Reply with the transcription only, enclosed in forward slashes, with no other text.",
		lang, word)

	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(prompt), nil)
	if err != nil {
		return "", core.NewAPIError("transcribe word", err)
	}
	ipa := strings.TrimSpace(resp.Text())
	if ipa == "" {
		return "", core.NewAPIError("model returned no transcription", nil)
	}
	return ipa, nil
}
