package ledger

import (
	"context"
	"time"

	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentService settles and reopens installments
type PaymentService struct {
	installments ledger.InstallmentRepository
}

// NewPaymentService creates a PaymentService
func NewPaymentService(installments ledger.InstallmentRepository) *PaymentService {
	return &PaymentService{installments: installments}
}

// MarkPaid settles an installment on the given date. When paidAmount is
// provided the domain settlement rule applies: excess becomes penalty,
// shortfall overwrites the amount and clears the penalty.
func (s *PaymentService) MarkPaid(ctx context.Context, installmentID uuid.UUID, paymentDate time.Time, paidAmount *decimal.Decimal) (*ledger.Installment, error) {
	installment, err := s.installments.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	if err := installment.MarkPaid(paymentDate, paidAmount); err != nil {
		return nil, err
	}
	if err := s.installments.Save(ctx, installment); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("installment settled",
		zap.String("installment_id", installmentID.String()),
		zap.String("amount", installment.Amount.String()),
		zap.String("penalty", installment.PenaltyAmount.String()),
	)
	return installment, nil
}

// MarkPending reopens a settled installment, clearing its payment date
func (s *PaymentService) MarkPending(ctx context.Context, installmentID uuid.UUID) (*ledger.Installment, error) {
	installment, err := s.installments.FindByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}

	installment.MarkPending()
	if err := s.installments.Save(ctx, installment); err != nil {
		return nil, err
	}
	return installment, nil
}
