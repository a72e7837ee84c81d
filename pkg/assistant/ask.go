package assistant

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/GRodHealth/lokono/pkg/core"
)

// Citation is one web source backing a grounded answer.
type Citation struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Answer is the result of a grounded text query.
type Answer struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// Ask answers a question about the language with Google Search
// grounding enabled, returning the answer and its web sources.
func (c *Client) Ask(ctx context.Context, lang Language, question string) (*Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, core.NewAPIError("question must not be empty", nil)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction(lang), genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.TextModel, genai.Text(question), config)
	if err != nil {
		return nil, core.NewAPIError("generate answer", err)
	}

	answer := &Answer{Text: strings.TrimSpace(resp.Text())}
	if answer.Text == "" {
		return nil, core.NewAPIError("model returned no answer", nil)
	}
	for _, cand := range resp.Candidates {
		answer.Citations = append(answer.Citations, extractCitations(cand.GroundingMetadata)...)
	}
	c.log.Debug().Int("citations", len(answer.Citations)).Msg("answered question")
	return answer, nil
}

// extractCitations pulls deduplicated web sources out of grounding
// metadata.
func extractCitations(md *genai.GroundingMetadata) []Citation {
	if md == nil {
		return nil
	}
	seen := make(map[string]bool, len(md.GroundingChunks))
	var out []Citation
	for _, chunk := range md.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		if seen[chunk.Web.URI] {
			continue
		}
		seen[chunk.Web.URI] = true
		out = append(out, Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
	}
	return out
}
