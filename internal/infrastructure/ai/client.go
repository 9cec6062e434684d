package ai

import (
	"context"
	"fmt"

	"github.com/caixo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Client wraps the Gemini SDK with the models configured for extraction
// and transcription.
type Client struct {
	genai              *genai.Client
	model              string
	transcriptionModel string
	logger             *zap.Logger
}

// NewClient creates a Client from the AI configuration
func NewClient(ctx context.Context, cfg config.AIConfig, log *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{
		genai:              client,
		model:              cfg.Model,
		transcriptionModel: cfg.TranscriptionModel,
		logger:             log,
	}, nil
}
