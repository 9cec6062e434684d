package ai

import (
	"context"
	"fmt"
	"strings"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"google.golang.org/genai"
)

const transcriptionPrompt = "Transcreva o áudio a seguir em português brasileiro. " +
	"Retorne APENAS o texto transcrito, sem comentários, sem pontuação extra e sem markdown. " +
	"Se o áudio for ininteligível ou vazio, retorne exatamente a palavra INAUDIVEL."

// Transcribe turns a voice note into text. An unintelligible recording is
// a domain error: the user has to re-record, retrying the same bytes is
// pointless.
func (c *Client) Transcribe(ctx context.Context, audio appingestion.Media) (string, error) {
	mime := audio.MIME
	if mime == "" {
		mime = "audio/ogg"
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: transcriptionPrompt},
			{InlineData: &genai.Blob{MIMEType: mime, Data: audio.Data}},
		},
	}}

	resp, err := c.genai.Models.GenerateContent(ctx, c.transcriptionModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" || strings.EqualFold(text, "INAUDIVEL") {
		return "", shared.NewDomainError("TRANSCRIPTION_UNINTELLIGIBLE", "Audio could not be transcribed")
	}
	return text, nil
}
