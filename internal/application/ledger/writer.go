package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrCategoryResolution is returned when the extracted category or
// subcategory matches nothing in the tenant's catalog or the global
// glossary. The session stays PENDING so the user can retry after fixing
// the catalog.
var ErrCategoryResolution = shared.NewDomainError("CATEGORY_RESOLUTION_FAILED", "Extracted category does not exist in the catalog")

// errTransitionLost aborts the confirmation transaction when another
// caller already moved the session to a terminal state.
var errTransitionLost = errors.New("session transition lost to concurrent caller")

// ConfirmResult reports what a confirmation produced
type ConfirmResult struct {
	Session     *ingestion.ParsingSession
	Transaction *ledger.Transaction
	Installment *ledger.Installment
	// AlreadyConfirmed is true when the session had been confirmed before
	// this call, by a duplicate callback or a concurrent one.
	AlreadyConfirmed bool
}

// Writer turns a confirmed parsing session into ledger rows: exactly one
// Transaction and one Installment appear together with the session flip,
// or nothing appears at all.
type Writer struct {
	sessions ingestion.SessionRepository
	rules    ingestion.LearnedRuleRepository
	catalog  catalog.Repository
	scope    TransactionScope
}

// NewWriter creates a ledger Writer
func NewWriter(
	sessions ingestion.SessionRepository,
	rules ingestion.LearnedRuleRepository,
	catalogRepo catalog.Repository,
	scope TransactionScope,
) *Writer {
	return &Writer{
		sessions: sessions,
		rules:    rules,
		catalog:  catalogRepo,
		scope:    scope,
	}
}

// Confirm materializes the session's extracted payload into the ledger.
// Confirming an already confirmed session is a no-op returning the earlier
// outcome; confirming a canceled session fails with ErrInvalidState.
func (w *Writer) Confirm(ctx context.Context, sessionID uuid.UUID) (*ConfirmResult, error) {
	log := logger.L(ctx).With(zap.String("session_id", sessionID.String()))

	session, err := w.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tenantID, ok := logger.GetTenantID(ctx)
	if !ok || tenantID != session.TenantID {
		return nil, shared.ErrTenantRequired
	}

	if session.Status == ingestion.SessionStatusConfirmed {
		return &ConfirmResult{Session: session, AlreadyConfirmed: true}, nil
	}
	if session.Status == ingestion.SessionStatusCanceled {
		return nil, shared.ErrInvalidState
	}
	if session.IsExpired(time.Now()) {
		log.Warn("confirming expired session", zap.Time("expired_at", session.ExpiresAt))
	}

	category, err := w.catalog.FindCategoryByName(ctx, session.TenantID, session.Payload.Category)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCategoryResolution
		}
		return nil, err
	}
	subcategory, err := w.catalog.FindSubcategoryByName(ctx, session.TenantID, category.ID, session.Payload.Subcategory)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCategoryResolution
		}
		return nil, err
	}

	var result ConfirmResult
	err = w.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		transaction, err := ledger.NewExpenseTransaction(
			session.TenantID,
			session.Payload.Description,
			session.Payload.Amount,
			category.ID,
			subcategory.ID,
			session.Payload.CompetenceDate,
			session.Payload.Supplier,
		)
		if err != nil {
			return err
		}

		installment, err := ledger.NewInstallment(session.TenantID, transaction.ID, session.Payload.CashDate, session.Payload.Amount)
		if err != nil {
			return err
		}
		if session.Payload.PaymentDone {
			if err := installment.MarkPaid(session.Payload.CashDate, session.Payload.PaidAmount); err != nil {
				return err
			}
		}

		if err := repos.Transactions().Save(ctx, transaction); err != nil {
			return err
		}
		if err := repos.Installments().Save(ctx, installment); err != nil {
			return err
		}

		if err := session.Confirm(transaction.ID); err != nil {
			return err
		}
		won, err := repos.Sessions().TransitionFromPending(ctx, session)
		if err != nil {
			return err
		}
		if !won {
			return errTransitionLost
		}

		result = ConfirmResult{
			Session:     session,
			Transaction: transaction,
			Installment: installment,
		}
		return nil
	})
	if errors.Is(err, errTransitionLost) {
		return w.resolveLostConfirm(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}

	w.learnRule(ctx, session, category.ID, subcategory.ID)

	log.Info("session confirmed",
		zap.String("transaction_id", result.Transaction.ID.String()),
		zap.String("amount", result.Transaction.Amount.String()),
	)
	return &result, nil
}

// resolveLostConfirm re-reads a session after losing the PENDING-gated
// update to decide how the caller's confirm ends: a concurrent confirm
// makes this call an idempotent success, a concurrent cancel an error.
func (w *Writer) resolveLostConfirm(ctx context.Context, sessionID uuid.UUID) (*ConfirmResult, error) {
	session, err := w.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == ingestion.SessionStatusConfirmed {
		return &ConfirmResult{Session: session, AlreadyConfirmed: true}, nil
	}
	return nil, shared.ErrInvalidState
}

// Cancel discards a pending session. Canceling an already canceled
// session is a no-op; canceling a confirmed one fails.
func (w *Writer) Cancel(ctx context.Context, sessionID uuid.UUID) error {
	session, err := w.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.Status == ingestion.SessionStatusCanceled {
		return nil
	}
	if err := session.Cancel(); err != nil {
		return err
	}

	won, err := w.sessions.TransitionFromPending(ctx, session)
	if err != nil {
		return err
	}
	if !won {
		current, err := w.sessions.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if current.Status == ingestion.SessionStatusCanceled {
			return nil
		}
		return shared.ErrInvalidState
	}

	logger.L(ctx).Info("session canceled", zap.String("session_id", sessionID.String()))
	return nil
}

// learnRule upserts the supplier-to-category association confirmed by this
// session. It runs after the ledger commit and never fails the confirm;
// a lost rule only costs a future hint.
func (w *Writer) learnRule(ctx context.Context, session *ingestion.ParsingSession, categoryID, subcategoryID uuid.UUID) {
	keyword := ingestion.FoldKeyword(session.Payload.Supplier)
	if keyword == "" {
		return
	}
	log := logger.L(ctx).With(zap.String("keyword", keyword))

	rule, err := w.rules.FindByKeyword(ctx, keyword)
	switch {
	case err == nil:
		rule.Reinforce(categoryID, subcategoryID)
	case errors.Is(err, shared.ErrNotFound):
		rule, err = ingestion.NewLearnedRule(session.TenantID, keyword, categoryID, subcategoryID)
		if err != nil {
			log.Warn("failed to build learned rule", zap.Error(err))
			return
		}
	default:
		log.Warn("failed to look up learned rule", zap.Error(err))
		return
	}

	if err := w.rules.Save(ctx, rule); err != nil {
		log.Warn("failed to save learned rule", zap.Error(err))
	}
}
