package persistence

import (
	"context"

	appledger "github.com/caixo/backend/internal/application/ledger"
	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/caixo/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormLedgerScope implements the ledger TransactionScope using GORM
// transactions on the tenant-scoped store: every repository operation
// inside Execute joins one transaction and stays tenant-filtered.
type GormLedgerScope struct {
	db *tenant.ScopedDB
}

// NewGormLedgerScope creates a new GormLedgerScope
func NewGormLedgerScope(db *tenant.ScopedDB) *GormLedgerScope {
	return &GormLedgerScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn rolls
// the whole unit back.
func (s *GormLedgerScope) Execute(ctx context.Context, fn func(repos appledger.TransactionalRepositories) error) error {
	return s.db.Transaction(ctx, func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

// Sessions returns the parsing session repository scoped to the transaction
func (r *gormLedgerRepositories) Sessions() ingestion.SessionRepository {
	return NewGormSessionRepository(txSource{tx: r.tx})
}

// Transactions returns the accrual repository scoped to the transaction
func (r *gormLedgerRepositories) Transactions() ledger.TransactionRepository {
	return NewGormTransactionRepository(txSource{tx: r.tx})
}

// Installments returns the cash repository scoped to the transaction
func (r *gormLedgerRepositories) Installments() ledger.InstallmentRepository {
	return NewGormInstallmentRepository(txSource{tx: r.tx})
}

var _ appledger.TransactionScope = (*GormLedgerScope)(nil)
