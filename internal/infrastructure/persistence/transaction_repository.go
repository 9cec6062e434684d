package persistence

import (
	"context"
	"errors"

	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using
// GORM on the tenant-scoped store.
type GormTransactionRepository struct {
	db dbSource
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db dbSource) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID within the bound tenant
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *ledger.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(t)
	return r.db.WithContext(ctx).Save(&model).Error
}
