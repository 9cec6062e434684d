package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	appledger "github.com/caixo/backend/internal/application/ledger"
	"github.com/caixo/backend/internal/domain/identity"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/caixo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dedupTTL is how long a delivered webhook id blocks redelivery
const dedupTTL = 24 * time.Hour

// User-facing outcome texts sent after a button press
const (
	msgConfirmed     = "✅ *Transação confirmada e registrada com sucesso!*"
	msgCanceled      = "❌ *Transação cancelada. Os dados não foram salvos.*"
	msgConfirmFailed = "❌ *Não consegui registrar a transação.*\n\nPor favor, tente enviar o gasto novamente."
)

// Enqueuer hands inbound messages to the ingestion pipeline
type Enqueuer interface {
	Enqueue(msg appingestion.InboundMessage) bool
}

// SessionDecider resolves a confirmation button press into a ledger write
// or a discard.
type SessionDecider interface {
	Confirm(ctx context.Context, sessionID uuid.UUID) (*appledger.ConfirmResult, error)
	Cancel(ctx context.Context, sessionID uuid.UUID) error
}

// WebhookHandler receives Evolution API callbacks. Every answer is 200:
// a non-2xx makes the gateway retry and eventually disable the webhook,
// so problems are logged and absorbed.
type WebhookHandler struct {
	users    identity.UserDirectory
	enqueuer Enqueuer
	decider  SessionDecider
	notifier appingestion.Notifier
	dedup    shared.IdempotencyStore
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(
	users identity.UserDirectory,
	enqueuer Enqueuer,
	decider SessionDecider,
	notifier appingestion.Notifier,
	dedup shared.IdempotencyStore,
) *WebhookHandler {
	return &WebhookHandler{
		users:    users,
		enqueuer: enqueuer,
		decider:  decider,
		notifier: notifier,
		dedup:    dedup,
	}
}

// RegisterRoutes registers the webhook endpoints
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	webhooks.POST("/messages", h.HandleMessage)
	webhooks.POST("/buttons", h.HandleButton)
}

// HandleMessage receives a new-message event and enqueues it for the
// ingestion pipeline.
func (h *WebhookHandler) HandleMessage(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.L(ctx)

	var envelope webhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil || envelope.Data == nil {
		log.Warn("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_PAYLOAD", "missing data field"))
		return
	}

	if envelope.Event != "messages.upsert" && envelope.Event != "messages.create" {
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	data := envelope.Data
	text := data.Message.text()
	imageURL := data.Message.imageURL()
	audioURL := data.Message.audioURL()
	if strings.TrimSpace(text) == "" && imageURL == "" && audioURL == "" {
		log.Debug("message without usable content ignored")
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	sender := data.sender()
	if sender == "" {
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	user, err := h.users.FindActiveByWhatsApp(ctx, sender)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			log.Error("failed to resolve webhook sender", zap.Error(err))
		} else {
			log.Warn("message from unregistered number ignored",
				zap.String("sender", identity.NormalizeWhatsAppNumber(sender)))
		}
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	if !h.markFresh(ctx, "msg:"+data.messageID()) {
		c.JSON(http.StatusOK, dto.NewStatusResponse("duplicate"))
		return
	}

	msg := appingestion.InboundMessage{
		UserID:    user.ID,
		MessageID: data.messageID(),
		Text:      text,
		ImageURL:  imageURL,
		AudioURL:  audioURL,
	}
	if !h.enqueuer.Enqueue(msg) {
		log.Error("ingestion queue rejected message", zap.String("message_id", msg.MessageID))
		c.JSON(http.StatusOK, dto.NewStatusResponse("rejected"))
		return
	}

	c.JSON(http.StatusOK, dto.NewStatusResponse("received"))
}

// HandleButton receives a confirm/cancel button press and applies it to
// the parsing session named in the button id.
func (h *WebhookHandler) HandleButton(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.L(ctx)

	var envelope webhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil || envelope.Data == nil {
		log.Warn("malformed button payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("INVALID_PAYLOAD", "missing data field"))
		return
	}

	data := envelope.Data
	action, sessionID, ok := parseButtonID(data.SelectedButtonID)
	if !ok {
		log.Warn("unparseable button id", zap.String("button_id", data.SelectedButtonID))
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	user, err := h.users.FindActiveByWhatsApp(ctx, data.sender())
	if err != nil {
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}
	if !user.HasTenant() {
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	if eventID := data.messageID(); eventID != "" {
		if !h.markFresh(ctx, "btn:"+eventID) {
			c.JSON(http.StatusOK, dto.NewStatusResponse("duplicate"))
			return
		}
	}

	ctx = logger.WithTenantID(ctx, *user.TenantID)
	log = logger.L(ctx).With(zap.String("session_id", sessionID.String()))

	switch action {
	case "confirm":
		result, err := h.decider.Confirm(ctx, sessionID)
		switch {
		case err == nil:
			if result.AlreadyConfirmed {
				log.Info("duplicate confirm absorbed")
			}
			h.notifier.SendText(ctx, user.WhatsAppNumber, msgConfirmed)
		case errors.Is(err, shared.ErrNotFound):
			log.Warn("confirm for unknown session ignored")
		default:
			log.Error("failed to confirm session", zap.Error(err))
			h.notifier.SendText(ctx, user.WhatsAppNumber, msgConfirmFailed)
		}
	case "cancel":
		err := h.decider.Cancel(ctx, sessionID)
		switch {
		case err == nil:
			h.notifier.SendText(ctx, user.WhatsAppNumber, msgCanceled)
		case errors.Is(err, shared.ErrNotFound):
			log.Warn("cancel for unknown session ignored")
		default:
			log.Error("failed to cancel session", zap.Error(err))
		}
	default:
		log.Warn("unknown button action", zap.String("action", action))
		c.JSON(http.StatusOK, dto.NewStatusResponse("ignored"))
		return
	}

	c.JSON(http.StatusOK, dto.NewStatusResponse("processed"))
}

// markFresh returns true when this delivery id has not been seen yet.
// A dedup store fault fails open: processing twice beats dropping.
func (h *WebhookHandler) markFresh(ctx context.Context, id string) bool {
	if h.dedup == nil || id == "" || id == "msg:" {
		return true
	}
	fresh, err := h.dedup.MarkProcessed(ctx, id, dedupTTL)
	if err != nil {
		logger.L(ctx).Warn("dedup store unavailable, processing anyway", zap.Error(err))
		return true
	}
	return fresh
}

// parseButtonID splits "confirm_{uuid}" / "cancel_{uuid}"
func parseButtonID(buttonID string) (action string, sessionID uuid.UUID, ok bool) {
	parts := strings.SplitN(buttonID, "_", 2)
	if len(parts) != 2 {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(parts[1])
	if err != nil {
		return "", uuid.Nil, false
	}
	return parts[0], id, true
}
