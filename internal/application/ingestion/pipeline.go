package ingestion

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/identity"
	domainingestion "github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// timeNow is swapped by tests that pin the clock
var timeNow = time.Now

// Pipeline ingests one inbound message end to end: sender resolution,
// transcription, classification, normalization, session persistence and
// the confirmation prompt.
//
// Process returns nil both on success and on terminal failures (unknown
// sender, unclassifiable content): those must not be retried. A non-nil
// return always means a transient fault worth another attempt.
type Pipeline struct {
	users       identity.UserDirectory
	tenants     identity.TenantRepository
	catalog     catalog.Repository
	rules       domainingestion.LearnedRuleRepository
	sessions    domainingestion.SessionRepository
	extractor   Extractor
	transcriber Transcriber
	notifier    Notifier
	archiver    Archiver
	fetcher     MediaFetcher
}

// NewPipeline creates a Pipeline
func NewPipeline(
	users identity.UserDirectory,
	tenants identity.TenantRepository,
	catalogRepo catalog.Repository,
	rules domainingestion.LearnedRuleRepository,
	sessions domainingestion.SessionRepository,
	extractor Extractor,
	transcriber Transcriber,
	notifier Notifier,
	archiver Archiver,
	fetcher MediaFetcher,
) *Pipeline {
	return &Pipeline{
		users:       users,
		tenants:     tenants,
		catalog:     catalogRepo,
		rules:       rules,
		sessions:    sessions,
		extractor:   extractor,
		transcriber: transcriber,
		notifier:    notifier,
		archiver:    archiver,
		fetcher:     fetcher,
	}
}

// Process runs the ingestion steps for one message
func (p *Pipeline) Process(ctx context.Context, msg InboundMessage) error {
	log := logger.L(ctx).With(
		zap.String("user_id", msg.UserID.String()),
		zap.String("message_id", msg.MessageID),
	)

	user, err := p.users.FindByID(ctx, msg.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("message from unknown user dropped")
			return nil
		}
		return err
	}
	if !user.IsActive || !user.HasTenant() {
		log.Warn("message from inactive or tenantless user dropped")
		return nil
	}

	owner, err := p.tenants.FindByID(ctx, *user.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("message for unknown tenant dropped")
			return nil
		}
		return err
	}
	if !owner.IsActive() {
		log.Warn("message for suspended tenant dropped")
		return nil
	}

	ctx = logger.WithTenantID(ctx, *user.TenantID)
	log = logger.L(ctx).With(zap.String("message_id", msg.MessageID))

	text, err := p.resolveText(ctx, msg, user)
	if err != nil {
		return err
	}
	if text == "" {
		// Transcription failed terminally, user already notified
		return nil
	}

	var image *Media
	if msg.ImageURL != "" {
		image, err = p.fetcher.Fetch(ctx, msg.ImageURL)
		if err != nil {
			log.Warn("failed to fetch image, classifying from text only", zap.Error(err))
			image = nil
		}
	}

	pairs, err := p.catalog.ListPairs(ctx, *user.TenantID)
	if err != nil {
		return err
	}
	hints, err := p.rules.ListActiveHints(ctx)
	if err != nil {
		return err
	}

	raw, err := p.extractor.Extract(ctx, text, image, ExtractionContext{Categories: pairs, Hints: hints})
	if err != nil {
		if isTerminal(err) {
			log.Warn("message could not be classified", zap.Error(err))
			p.notifier.SendText(ctx, user.WhatsAppNumber, MsgClassificationFailed)
			return nil
		}
		return err
	}

	payload, err := normalize(ctx, raw, text, timeNow())
	if err != nil {
		log.Warn("extraction unusable after normalization", zap.Error(err))
		p.notifier.SendText(ctx, user.WhatsAppNumber, MsgClassificationFailed)
		return nil
	}

	session, err := domainingestion.NewParsingSession(*user.TenantID, text, payload)
	if err != nil {
		return err
	}
	session.ImageURL = msg.ImageURL
	session.AudioURL = msg.AudioURL

	if err := p.sessions.Save(ctx, session); err != nil {
		return err
	}
	log.Info("parsing session created", zap.String("session_id", session.ID.String()))

	if image != nil {
		p.archiveAttachment(ctx, session, image)
	}

	if !p.notifier.SendPrompt(ctx, user.WhatsAppNumber, FormatSummary(payload), session.ID) {
		log.Warn("failed to send confirmation prompt", zap.String("session_id", session.ID.String()))
	}

	return nil
}

// resolveText returns the text to classify, transcribing a voice note
// when present. An empty return with nil error means the transcription
// failed terminally and the user was told.
func (p *Pipeline) resolveText(ctx context.Context, msg InboundMessage, user *identity.User) (string, error) {
	if msg.AudioURL == "" {
		return msg.Text, nil
	}

	audio, err := p.fetcher.Fetch(ctx, msg.AudioURL)
	if err != nil {
		return "", err
	}

	transcribed, err := p.transcriber.Transcribe(ctx, *audio)
	if err != nil {
		if isTerminal(err) {
			logger.L(ctx).Warn("voice note could not be transcribed", zap.Error(err))
			p.notifier.SendText(ctx, user.WhatsAppNumber, MsgTranscriptionFailed)
			return "", nil
		}
		return "", err
	}

	if strings.TrimSpace(msg.Text) == "" {
		return transcribed, nil
	}
	return msg.Text + "\n" + transcribed, nil
}

// archiveAttachment stores the session's attachment best-effort; a failed
// archive keeps the gateway URL on the session and nothing else.
func (p *Pipeline) archiveAttachment(ctx context.Context, session *domainingestion.ParsingSession, image *Media) {
	path, err := p.archiver.Archive(ctx, session.TenantID, session.ID, image.Data, image.MIME)
	if err != nil {
		logger.L(ctx).Warn("failed to archive attachment",
			zap.String("session_id", session.ID.String()), zap.Error(err))
		return
	}
	if err := p.sessions.SetImagePath(ctx, session.ID, path); err != nil {
		logger.L(ctx).Warn("failed to record attachment path",
			zap.String("session_id", session.ID.String()), zap.Error(err))
	}
}

// isTerminal reports whether an error is a domain error: a fact about the
// input that retrying cannot change.
func isTerminal(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}
