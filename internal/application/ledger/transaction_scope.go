package ledger

import (
	"context"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories a
// session confirmation writes through. When a function executes within a
// scope, all repository operations join the same database transaction and
// commit or roll back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories enlisted
// in the current transaction. All of them share the same underlying
// database transaction and stay tenant-scoped.
type TransactionalRepositories interface {
	// Sessions returns the parsing session repository scoped to the transaction
	Sessions() ingestion.SessionRepository
	// Transactions returns the accrual repository scoped to the transaction
	Transactions() ledger.TransactionRepository
	// Installments returns the cash repository scoped to the transaction
	Installments() ledger.InstallmentRepository
}

// NoOpTransactionScope runs the function without a real transaction. It
// exists for tests that exercise the writer's logic against in-memory or
// already-transactional repositories.
type NoOpTransactionScope struct {
	SessionRepo     ingestion.SessionRepository
	TransactionRepo ledger.TransactionRepository
	InstallmentRepo ledger.InstallmentRepository
}

// Execute runs fn directly against the held repositories
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Sessions returns the parsing session repository
func (s *NoOpTransactionScope) Sessions() ingestion.SessionRepository {
	return s.SessionRepo
}

// Transactions returns the accrual repository
func (s *NoOpTransactionScope) Transactions() ledger.TransactionRepository {
	return s.TransactionRepo
}

// Installments returns the cash repository
func (s *NoOpTransactionScope) Installments() ledger.InstallmentRepository {
	return s.InstallmentRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
