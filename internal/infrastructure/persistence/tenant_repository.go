package persistence

import (
	"context"
	"errors"

	"github.com/caixo/backend/internal/domain/identity"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"github.com/caixo/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantRepository implements identity.TenantRepository using GORM.
// Tenants are the isolation roots themselves, so it runs on the unscoped
// store.
type GormTenantRepository struct {
	db *tenant.AdminDB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *tenant.AdminDB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, t *identity.Tenant) error {
	var model models.TenantModel
	model.FromDomain(t)
	return r.db.WithContext(ctx).Save(&model).Error
}
