package assistant

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Synthesize renders text as speech and returns the decoded audio,
// ready for the playback scheduler's one-shot entry point.
func (c *Client) Synthesize(ctx context.Context, text string) (*pcm.Buffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.NewAPIError("text must not be empty", nil)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: c.cfg.Voice},
			},
		},
	}
	resp, err := c.api.Models.GenerateContent(ctx, c.cfg.TTSModel, genai.Text(text), config)
	if err != nil {
		return nil, core.NewAPIError("synthesize speech", err)
	}

	raw := inlineAudio(resp)
	if len(raw) == 0 {
		return nil, core.NewAPIError("model returned no audio", nil)
	}
	buf, err := pcm.DecodeChunk(raw, pcm.OutputSampleRate, 1)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Dur("duration", buf.Duration()).Msg("synthesized speech")
	return buf, nil
}

// inlineAudio concatenates every inline audio part in the response.
func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	var out []byte
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil {
				continue
			}
			if !strings.HasPrefix(part.InlineData.MIMEType, "audio/") {
				continue
			}
			out = append(out, part.InlineData.Data...)
		}
	}
	return out
}
