package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caixo/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 1 * 1024 * 1024

const promptFooter = "Caixô - Sistema de Gestão Financeira"

// EvolutionClient sends WhatsApp messages through an Evolution API
// gateway instance. All send methods return booleans: delivery failures
// are logged and absorbed, never propagated.
type EvolutionClient struct {
	baseURL    string
	instance   string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewEvolutionClient creates an EvolutionClient from the gateway configuration
func NewEvolutionClient(cfg config.WhatsAppConfig, log *zap.Logger) *EvolutionClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EvolutionClient{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		instance: cfg.Instance,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type sendResponse struct {
	Status string          `json:"status"`
	Key    json.RawMessage `json:"key"`
}

func (r *sendResponse) accepted() bool {
	return r.Status == "success" || len(r.Key) > 0
}

type button struct {
	ButtonID   string     `json:"buttonId"`
	ButtonText buttonText `json:"buttonText"`
	Type       int        `json:"type"`
}

type buttonText struct {
	DisplayText string `json:"displayText"`
}

// SendText sends a plain text message
func (c *EvolutionClient) SendText(ctx context.Context, number, text string) bool {
	payload := map[string]any{
		"number": stripJID(number),
		"text":   text,
	}
	return c.send(ctx, "/message/sendText/", payload)
}

// SendPrompt sends the confirmation card with confirm and cancel buttons.
// The session id travels in the button ids and comes back in the button
// callback webhook.
func (c *EvolutionClient) SendPrompt(ctx context.Context, number, summary string, sessionID uuid.UUID) bool {
	text := "📊 *Resumo do Gasto Extraído:*\n\n" + summary +
		"\n\nPor favor, confirme se os dados estão corretos:"

	payload := map[string]any{
		"number": stripJID(number),
		"text":   text,
		"buttons": []button{
			{
				ButtonID:   "confirm_" + sessionID.String(),
				ButtonText: buttonText{DisplayText: "✅ Confirmar"},
				Type:       1,
			},
			{
				ButtonID:   "cancel_" + sessionID.String(),
				ButtonText: buttonText{DisplayText: "❌ Cancelar"},
				Type:       1,
			},
		},
		"footer": promptFooter,
	}
	return c.send(ctx, "/message/sendButtons/", payload)
}

func (c *EvolutionClient) send(ctx context.Context, endpoint string, payload map[string]any) bool {
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to marshal gateway payload", zap.Error(err))
		return false
	}

	url := c.baseURL + endpoint + c.instance
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to create gateway request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gateway request failed",
			zap.String("endpoint", endpoint), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Error("failed to read gateway response", zap.Error(err))
		return false
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("gateway rejected message",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return false
	}

	var result sendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		c.logger.Error("failed to parse gateway response", zap.Error(err))
		return false
	}
	if !result.accepted() {
		c.logger.Error("gateway did not accept message",
			zap.String("endpoint", endpoint), zap.String("body", string(respBody)))
		return false
	}
	return true
}

// stripJID reduces a WhatsApp JID to the bare number the gateway expects
func stripJID(number string) string {
	if idx := strings.Index(number, "@"); idx != -1 {
		return number[:idx]
	}
	return number
}
