package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var timeNow = time.Now

// Extract classifies a financial message with the configured model. The
// model's answer is strict JSON; an answer that cannot be turned into a
// RawExtraction is a domain error because re-sending the same message
// would get the same answer.
func (c *Client) Extract(ctx context.Context, text string, image *appingestion.Media, extraction appingestion.ExtractionContext) (*appingestion.RawExtraction, error) {
	parts := []*genai.Part{
		{Text: userPrompt(text, timeNow().Format("2006-01-02"), image != nil)},
	}
	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: image.MIME, Data: image.Data},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: buildSystemPrompt(extraction)}}},
		Temperature:       genai.Ptr[float32](0.3),
		ResponseMIMEType:  "application/json",
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate extraction: %w", err)
	}

	answer := resp.Text()
	if answer == "" {
		return nil, shared.NewDomainError("CLASSIFICATION_EMPTY", "Model returned an empty answer")
	}
	logger.L(ctx).Debug("model answer received", zap.Int("length", len(answer)))

	return parseAnswer(answer)
}

// modelAnswer mirrors the JSON contract the prompt demands. Numeric
// fields are flexible because models alternate between numbers and
// quoted strings.
type modelAnswer struct {
	Valor              flexString `json:"valor"`
	Descricao          string     `json:"descricao"`
	DataCaixa          flexString `json:"data_caixa"`
	DataCompetencia    flexString `json:"data_competencia"`
	CategoriaSugerida  string     `json:"categoria_sugerida"`
	Subcategoria       string     `json:"subcategoria_sugerida"`
	Fornecedor         string     `json:"fornecedor"`
	Confianca          float64    `json:"confianca"`
	AvisoCategoria     string     `json:"aviso_categoria"`
	PagamentoRealizado bool       `json:"pagamento_realizado"`
	ValorPago          flexString `json:"valor_pago"`
}

func parseAnswer(answer string) (*appingestion.RawExtraction, error) {
	var parsed modelAnswer
	if err := json.Unmarshal([]byte(cleanModelJSON(answer)), &parsed); err != nil {
		return nil, shared.NewDomainError("CLASSIFICATION_INVALID",
			"Model answer is not the expected JSON: "+err.Error())
	}

	return &appingestion.RawExtraction{
		Amount:          string(parsed.Valor),
		Description:     parsed.Descricao,
		CashDate:        string(parsed.DataCaixa),
		CompetenceDate:  string(parsed.DataCompetencia),
		Category:        parsed.CategoriaSugerida,
		Subcategory:     parsed.Subcategoria,
		Supplier:        parsed.Fornecedor,
		Confidence:      parsed.Confianca,
		CategoryWarning: parsed.AvisoCategoria,
		PaymentDone:     parsed.PagamentoRealizado,
		PaidAmount:      string(parsed.ValorPago),
	}, nil
}

// flexString accepts a JSON string, number or null
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(data)
	return nil
}

// cleanModelJSON strips markdown fences and surrounding prose when the
// model ignores the no-fences instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
