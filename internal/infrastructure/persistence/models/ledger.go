package models

import (
	"time"

	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionModel is the persistence model for the Transaction entity
type TransactionModel struct {
	TenantOwnedModel
	Description       string          `gorm:"type:varchar(500);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type              string          `gorm:"type:varchar(20);not null;index"`
	CategoryID        *uuid.UUID      `gorm:"type:uuid;index"`
	SubcategoryID     *uuid.UUID      `gorm:"type:uuid;index"`
	SalesChannelID    *uuid.UUID      `gorm:"type:uuid;index"`
	CompetenceDate    time.Time       `gorm:"not null;index"`
	CompetenceDateEnd *time.Time
	Supplier          string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		TenantEntity:      m.ToDomainTenantEntity(),
		Description:       m.Description,
		Amount:            m.Amount,
		Type:              ledger.TransactionType(m.Type),
		CategoryID:        m.CategoryID,
		SubcategoryID:     m.SubcategoryID,
		SalesChannelID:    m.SalesChannelID,
		CompetenceDate:    m.CompetenceDate,
		CompetenceDateEnd: m.CompetenceDateEnd,
		Supplier:          m.Supplier,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(t *ledger.Transaction) {
	m.FromDomainTenantEntity(t.TenantEntity)
	m.Description = t.Description
	m.Amount = t.Amount
	m.Type = string(t.Type)
	m.CategoryID = t.CategoryID
	m.SubcategoryID = t.SubcategoryID
	m.SalesChannelID = t.SalesChannelID
	m.CompetenceDate = t.CompetenceDate
	m.CompetenceDateEnd = t.CompetenceDateEnd
	m.Supplier = t.Supplier
}

// InstallmentModel is the persistence model for the Installment entity
type InstallmentModel struct {
	TenantOwnedModel
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	DueDate       time.Time `gorm:"not null;index"`
	PaymentDate   *time.Time
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	PenaltyAmount decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment
func (m *InstallmentModel) ToDomain() *ledger.Installment {
	return &ledger.Installment{
		TenantEntity:  m.ToDomainTenantEntity(),
		TransactionID: m.TransactionID,
		DueDate:       m.DueDate,
		PaymentDate:   m.PaymentDate,
		Amount:        m.Amount,
		PenaltyAmount: m.PenaltyAmount,
		Status:        ledger.InstallmentStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Installment
func (m *InstallmentModel) FromDomain(i *ledger.Installment) {
	m.FromDomainTenantEntity(i.TenantEntity)
	m.TransactionID = i.TransactionID
	m.DueDate = i.DueDate
	m.PaymentDate = i.PaymentDate
	m.Amount = i.Amount
	m.PenaltyAmount = i.PenaltyAmount
	m.Status = string(i.Status)
}
