package ledger

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository persists accrual facts. Implementations run on the
// tenant-scoped store: every read and write is filtered by the tenant bound
// to the context.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Save(ctx context.Context, transaction *Transaction) error
}

// InstallmentRepository persists cash facts, tenant-scoped like
// TransactionRepository.
type InstallmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)
	FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]Installment, error)
	Save(ctx context.Context, installment *Installment) error
}
