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

// GormInstallmentRepository implements ledger.InstallmentRepository using
// GORM on the tenant-scoped store.
type GormInstallmentRepository struct {
	db dbSource
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db dbSource) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByID finds an installment by its ID within the bound tenant
func (r *GormInstallmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Installment, error) {
	var model models.InstallmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransaction returns the installments of a transaction ordered by
// due date
func (r *GormInstallmentRepository) FindByTransaction(ctx context.Context, transactionID uuid.UUID) ([]ledger.Installment, error) {
	var rows []models.InstallmentModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("due_date").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	installments := make([]ledger.Installment, 0, len(rows))
	for i := range rows {
		installments = append(installments, *rows[i].ToDomain())
	}
	return installments, nil
}

// Save creates or updates an installment
func (r *GormInstallmentRepository) Save(ctx context.Context, i *ledger.Installment) error {
	var model models.InstallmentModel
	model.FromDomain(i)
	return r.db.WithContext(ctx).Save(&model).Error
}
