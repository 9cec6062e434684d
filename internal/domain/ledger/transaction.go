package ledger

import (
	"strings"
	"time"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType says whether money is owed out or earned
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "DESPESA"
	TransactionTypeRevenue TransactionType = "RECEITA"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeRevenue:
		return true
	}
	return false
}

// Transaction is the accrual fact: the economic event dated by when it
// happened (competence), independent of when money moved. Cash movement
// lives on the Installments attached to it.
//
// Expenses require a category and subcategory and must not carry a sales
// channel; revenues require a sales channel and must not carry categories.
type Transaction struct {
	shared.TenantEntity
	Description       string
	Amount            decimal.Decimal
	Type              TransactionType
	CategoryID        *uuid.UUID
	SubcategoryID     *uuid.UUID
	SalesChannelID    *uuid.UUID
	CompetenceDate    time.Time
	CompetenceDateEnd *time.Time
	Supplier          string
}

// NewExpenseTransaction creates an expense accrual fact
func NewExpenseTransaction(
	tenantID uuid.UUID,
	description string,
	amount decimal.Decimal,
	categoryID, subcategoryID uuid.UUID,
	competenceDate time.Time,
	supplier string,
) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if categoryID == uuid.Nil || subcategoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expenses require a category and subcategory")
	}
	if competenceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Competence date is required")
	}
	return &Transaction{
		TenantEntity:   shared.NewTenantEntity(tenantID),
		Description:    strings.TrimSpace(description),
		Amount:         amount,
		Type:           TransactionTypeExpense,
		CategoryID:     &categoryID,
		SubcategoryID:  &subcategoryID,
		CompetenceDate: competenceDate,
		Supplier:       strings.TrimSpace(supplier),
	}, nil
}

// NewRevenueTransaction creates a revenue accrual fact. competenceDateEnd
// bounds the earning period and may be nil for single-day revenue.
func NewRevenueTransaction(
	tenantID uuid.UUID,
	description string,
	amount decimal.Decimal,
	salesChannelID uuid.UUID,
	competenceDate time.Time,
	competenceDateEnd *time.Time,
) (*Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Transaction amount must be positive")
	}
	if salesChannelID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Revenues require a sales channel")
	}
	if competenceDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Competence date is required")
	}
	if competenceDateEnd != nil && competenceDateEnd.Before(competenceDate) {
		return nil, shared.NewDomainError("INVALID_DATE", "Competence period end must not precede its start")
	}
	return &Transaction{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		Description:       strings.TrimSpace(description),
		Amount:            amount,
		Type:              TransactionTypeRevenue,
		SalesChannelID:    &salesChannelID,
		CompetenceDate:    competenceDate,
		CompetenceDateEnd: competenceDateEnd,
	}, nil
}

// IsExpense returns true for expense transactions
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}
