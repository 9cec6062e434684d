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

// GormUserDirectory implements identity.UserDirectory using GORM. Sender
// resolution happens before any tenant is bound, so it runs on the
// unscoped store.
type GormUserDirectory struct {
	db *tenant.AdminDB
}

// NewGormUserDirectory creates a new GormUserDirectory
func NewGormUserDirectory(db *tenant.AdminDB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

// FindByID finds a user by its ID
func (d *GormUserDirectory) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := d.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByWhatsApp returns the active user owning the given WhatsApp
// number. Inbound addresses are normalized before the lookup.
func (d *GormUserDirectory) FindActiveByWhatsApp(ctx context.Context, number string) (*identity.User, error) {
	number = identity.NormalizeWhatsAppNumber(number)
	var model models.UserModel
	if err := d.db.WithContext(ctx).
		Where("whatsapp_number = ? AND is_active = ?", number, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a user
func (d *GormUserDirectory) Save(ctx context.Context, u *identity.User) error {
	var model models.UserModel
	model.FromDomain(u)
	return d.db.WithContext(ctx).Save(&model).Error
}
