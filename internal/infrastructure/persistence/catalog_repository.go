package persistence

import (
	"context"
	"errors"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"github.com/caixo/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogRepository implements catalog.Repository using GORM. The
// catalog mixes tenant-owned rows with global glossary rows (tenant null),
// so it runs on the unscoped store with explicit tenant-or-global
// predicates; the automatic scoping would hide the global rows.
type GormCatalogRepository struct {
	db *tenant.AdminDB
}

// NewGormCatalogRepository creates a new GormCatalogRepository
func NewGormCatalogRepository(db *tenant.AdminDB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindCategoryByName resolves a category by exact name, the tenant's own
// rows first, then the global glossary.
func (r *GormCatalogRepository) FindCategoryByName(ctx context.Context, tenantID uuid.UUID, name string) (*catalog.Category, error) {
	var model models.CategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&model).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("tenant_id IS NULL AND name = ?", name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindSubcategoryByName resolves a subcategory by exact name under the
// given category, tenant rows first, then global.
func (r *GormCatalogRepository) FindSubcategoryByName(ctx context.Context, tenantID, categoryID uuid.UUID, name string) (*catalog.Subcategory, error) {
	var model models.SubcategoryModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND category_id = ? AND name = ?", tenantID, categoryID, name).
		First(&model).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("tenant_id IS NULL AND category_id = ? AND name = ?", categoryID, name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListPairs returns the union of global and tenant-owned
// (category, subcategory) pairs for the classification context.
func (r *GormCatalogRepository) ListPairs(ctx context.Context, tenantID uuid.UUID) ([]catalog.CategoryPair, error) {
	var pairs []catalog.CategoryPair
	err := r.db.WithContext(ctx).
		Table("subcategories").
		Select("categories.name AS category, subcategories.name AS subcategory").
		Joins("JOIN categories ON categories.id = subcategories.category_id").
		Where("subcategories.tenant_id = ? OR subcategories.tenant_id IS NULL", tenantID).
		Order("categories.name, subcategories.name").
		Scan(&pairs).Error
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// SaveCategory creates or updates a category
func (r *GormCatalogRepository) SaveCategory(ctx context.Context, c *catalog.Category) error {
	var model models.CategoryModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveSubcategory creates or updates a subcategory
func (r *GormCatalogRepository) SaveSubcategory(ctx context.Context, s *catalog.Subcategory) error {
	var model models.SubcategoryModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveSalesChannel creates or updates a sales channel
func (r *GormCatalogRepository) SaveSalesChannel(ctx context.Context, c *catalog.SalesChannel) error {
	var model models.SalesChannelModel
	model.FromDomain(c)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindSalesChannelByName resolves a sales channel by exact name, tenant
// rows first, then global.
func (r *GormCatalogRepository) FindSalesChannelByName(ctx context.Context, tenantID uuid.UUID, name string) (*catalog.SalesChannel, error) {
	var model models.SalesChannelModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&model).Error
	if err == nil {
		return model.ToDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("tenant_id IS NULL AND name = ?", name).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
