package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/GRodHealth/lokono/pkg/core"
)

// Illustration is a generated image.
type Illustration struct {
	Data     []byte
	MIMEType string
}

// Illustrate generates an image for a word or scene, useful as a
// visual memory aid alongside flashcards.
func (c *Client) Illustrate(ctx context.Context, subject string) (*Illustration, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, core.NewAPIError("subject must not be empty", nil)
	}

	prompt := fmt.Sprintf(
		"A warm, simple illustration of %s, in the style of a children's language learning book set in Guyana.",
		subject)
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.ImageModel, genai.Text(prompt), nil)
	if err != nil {
		return nil, core.NewAPIError("generate illustration", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			return &Illustration{
				Data:     part.InlineData.Data,
				MIMEType: part.InlineData.MIMEType,
			}, nil
		}
	}
	return nil, core.NewAPIError("model returned no image", nil)
}
