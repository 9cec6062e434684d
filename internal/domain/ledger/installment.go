package ledger

import (
	"time"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus tracks cash settlement of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDENTE"
	InstallmentStatusPaid    InstallmentStatus = "PAGO"
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPaid:
		return true
	}
	return false
}

// Installment is the cash fact: one expected or realized money movement of
// a Transaction. Status is derived from PaymentDate: an installment is PAID
// exactly when its payment date is set.
type Installment struct {
	shared.TenantEntity
	TransactionID uuid.UUID
	DueDate       time.Time
	PaymentDate   *time.Time
	Amount        decimal.Decimal
	PenaltyAmount decimal.Decimal
	Status        InstallmentStatus
}

// NewInstallment creates a pending installment for a transaction
func NewInstallment(
	tenantID, transactionID uuid.UUID,
	dueDate time.Time,
	amount decimal.Decimal,
) (*Installment, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TRANSACTION", "Installment requires a transaction")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Due date is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount must be positive")
	}
	return &Installment{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		TransactionID: transactionID,
		DueDate:       dueDate,
		Amount:        amount,
		PenaltyAmount: decimal.Zero,
		Status:        InstallmentStatusPending,
	}, nil
}

// MarkPaid settles the installment on the given date. When paidAmount is
// provided, any excess over the installment amount becomes penalty (late
// fees, interest); a shortfall overwrites the amount (negotiated discount)
// and resets the penalty. When paidAmount is nil the recorded amounts stand.
func (i *Installment) MarkPaid(paymentDate time.Time, paidAmount *decimal.Decimal) error {
	if paymentDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Payment date is required")
	}
	if paidAmount != nil && paidAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}

	if paidAmount != nil {
		if paidAmount.GreaterThanOrEqual(i.Amount) {
			i.PenaltyAmount = paidAmount.Sub(i.Amount)
		} else {
			i.Amount = *paidAmount
			i.PenaltyAmount = decimal.Zero
		}
	}

	i.PaymentDate = &paymentDate
	i.Status = InstallmentStatusPaid
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPending reopens the installment, clearing the payment date
func (i *Installment) MarkPending() {
	i.PaymentDate = nil
	i.Status = InstallmentStatusPending
	i.UpdatedAt = time.Now()
}

// IsOverdue reports whether the installment is unpaid past its due date
func (i *Installment) IsOverdue(today time.Time) bool {
	if i.Status == InstallmentStatusPaid {
		return false
	}
	y1, m1, d1 := today.Date()
	y2, m2, d2 := i.DueDate.Date()
	return time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC).After(time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC))
}

// TotalAmount returns the settled total including penalties
func (i *Installment) TotalAmount() decimal.Decimal {
	return i.Amount.Add(i.PenaltyAmount)
}
