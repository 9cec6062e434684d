package ingestion

import (
	"time"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus represents the confirmation state of a parsing session
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusConfirmed SessionStatus = "CONFIRMED"
	SessionStatusCanceled  SessionStatus = "CANCELED"
)

// IsValid checks if the status is a valid SessionStatus
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionStatusPending, SessionStatusConfirmed, SessionStatusCanceled:
		return true
	}
	return false
}

// IsTerminal returns true once the session can no longer change
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusConfirmed || s == SessionStatusCanceled
}

// ExtractedPayload is the structured result of classifying one inbound
// message. Amounts are positive decimals; dates carry no time component.
type ExtractedPayload struct {
	Amount          decimal.Decimal  `json:"amount"`
	Description     string           `json:"description"`
	CashDate        time.Time        `json:"cash_date"`
	CompetenceDate  time.Time        `json:"competence_date"`
	Category        string           `json:"category"`
	Subcategory     string           `json:"subcategory"`
	Supplier        string           `json:"supplier,omitempty"`
	Confidence      float64          `json:"confidence"`
	CategoryWarning string           `json:"category_warning,omitempty"`
	PaymentDone     bool             `json:"payment_done"`
	PaidAmount      *decimal.Decimal `json:"paid_amount,omitempty"`
}

// ParsingSession holds one AI-proposed financial record awaiting the
// sender's confirmation. Sessions start PENDING and move exactly once to
// CONFIRMED or CANCELED; terminal sessions are immutable.
//
// ConfirmedTransactionID is set if and only if the session is CONFIRMED.
type ParsingSession struct {
	shared.TenantEntity
	RawText                string
	Payload                ExtractedPayload
	ImageURL               string
	ImagePath              string
	AudioURL               string
	Status                 SessionStatus
	ExpiresAt              time.Time
	ConfirmedTransactionID *uuid.UUID
}

// SessionTTL is how long a pending session stays confirmable before it is
// considered stale. Expiry is advisory: nothing rejects a late confirm.
const SessionTTL = 24 * time.Hour

// NewParsingSession creates a pending session for an extracted payload
func NewParsingSession(tenantID uuid.UUID, rawText string, payload ExtractedPayload) (*ParsingSession, error) {
	if rawText == "" {
		return nil, shared.NewDomainError("INVALID_TEXT", "Session requires the original message text")
	}
	if payload.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Extracted amount must be positive")
	}
	return &ParsingSession{
		TenantEntity: shared.NewTenantEntity(tenantID),
		RawText:      rawText,
		Payload:      payload,
		Status:       SessionStatusPending,
		ExpiresAt:    time.Now().Add(SessionTTL),
	}, nil
}

// Confirm moves the session to CONFIRMED, linking the transaction created
// from it. Only PENDING sessions can transition; calling Confirm on an
// already-confirmed session is a no-op so duplicate callbacks stay safe.
func (s *ParsingSession) Confirm(transactionID uuid.UUID) error {
	if s.Status == SessionStatusConfirmed {
		return nil
	}
	if s.Status != SessionStatusPending {
		return shared.ErrInvalidState
	}
	if transactionID == uuid.Nil {
		return shared.NewDomainError("INVALID_TRANSACTION", "Confirmation requires the created transaction")
	}
	s.Status = SessionStatusConfirmed
	s.ConfirmedTransactionID = &transactionID
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel moves the session to CANCELED. Idempotent like Confirm.
func (s *ParsingSession) Cancel() error {
	if s.Status == SessionStatusCanceled {
		return nil
	}
	if s.Status != SessionStatusPending {
		return shared.ErrInvalidState
	}
	s.Status = SessionStatusCanceled
	s.UpdatedAt = time.Now()
	return nil
}

// IsExpired reports whether the advisory expiry window has passed
func (s *ParsingSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
