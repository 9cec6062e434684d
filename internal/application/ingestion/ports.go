package ingestion

import (
	"context"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/google/uuid"
)

// InboundMessage is one WhatsApp message handed to the pipeline by the
// webhook surface. Exactly one media URL may be set besides the text.
type InboundMessage struct {
	UserID    uuid.UUID `json:"user_id"`
	MessageID string    `json:"message_id"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"image_url,omitempty"`
	AudioURL  string    `json:"audio_url,omitempty"`
}

// Media is a fetched attachment
type Media struct {
	Data []byte
	MIME string
	URL  string
}

// RawExtraction is the classifier's answer before normalization. Amounts
// and dates arrive as strings because the model produces them; the
// pipeline turns them into domain values.
type RawExtraction struct {
	Amount          string  `json:"valor"`
	Description     string  `json:"descricao"`
	CashDate        string  `json:"data_caixa"`
	CompetenceDate  string  `json:"data_competencia"`
	Category        string  `json:"categoria_sugerida"`
	Subcategory     string  `json:"subcategoria_sugerida"`
	Supplier        string  `json:"fornecedor"`
	Confidence      float64 `json:"confianca"`
	CategoryWarning string  `json:"aviso_categoria"`
	PaymentDone     bool    `json:"pagamento_realizado"`
	PaidAmount      string  `json:"valor_pago"`
}

// ExtractionContext is what the classifier may choose from: the tenant's
// category catalog and the learned-rule hints that override it.
type ExtractionContext struct {
	Categories []catalog.CategoryPair
	Hints      []ingestion.RuleHint
}

// Extractor classifies a financial message into a RawExtraction. A
// *shared.DomainError return means the input cannot be classified and the
// task must not be retried; any other error is transient.
type Extractor interface {
	Extract(ctx context.Context, text string, image *Media, extraction ExtractionContext) (*RawExtraction, error)
}

// Transcriber turns a voice note into text. Error semantics follow
// Extractor: domain errors are terminal, everything else retries.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Media) (string, error)
}

// Notifier sends user-facing WhatsApp messages. Results are booleans:
// notification failures are logged by callers but never fail the pipeline.
type Notifier interface {
	SendText(ctx context.Context, number, text string) bool
	// SendPrompt sends the confirmation card with confirm/cancel buttons
	// carrying the session id.
	SendPrompt(ctx context.Context, number, summary string, sessionID uuid.UUID) bool
}

// Archiver stores a session's attachment and returns its storage path
type Archiver interface {
	Archive(ctx context.Context, tenantID, sessionID uuid.UUID, data []byte, mime string) (string, error)
}

// MediaFetcher downloads an attachment from the gateway's media URL
type MediaFetcher interface {
	Fetch(ctx context.Context, url string) (*Media, error)
}
