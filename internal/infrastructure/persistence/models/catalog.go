package models

import (
	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/google/uuid"
)

// CategoryModel is the persistence model for Category. A NULL tenant
// means a row of the global glossary shared by all tenants; the catalog
// is therefore reached through the unscoped store with explicit
// tenant-or-global predicates.
type CategoryModel struct {
	BaseModel
	TenantID *uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_categories_tenant_name"`
	Name     string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_categories_tenant_name"`
	Type     string     `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Name:       m.Name,
		Type:       catalog.CategoryType(m.Type),
	}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	m.Name = c.Name
	m.Type = string(c.Type)
}

// SubcategoryModel is the persistence model for Subcategory
type SubcategoryModel struct {
	BaseModel
	TenantID   *uuid.UUID `gorm:"type:uuid;index"`
	CategoryID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_subcategories_category_name"`
	Name       string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_subcategories_category_name"`
}

// TableName returns the table name for GORM
func (SubcategoryModel) TableName() string {
	return "subcategories"
}

// ToDomain converts the persistence model to a domain Subcategory
func (m *SubcategoryModel) ToDomain() *catalog.Subcategory {
	return &catalog.Subcategory{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
	}
}

// FromDomain populates the persistence model from a domain Subcategory
func (m *SubcategoryModel) FromDomain(s *catalog.Subcategory) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.CategoryID = s.CategoryID
	m.Name = s.Name
}

// SalesChannelModel is the persistence model for SalesChannel
type SalesChannelModel struct {
	BaseModel
	TenantID    *uuid.UUID `gorm:"type:uuid;index"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Active      bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SalesChannelModel) TableName() string {
	return "sales_channels"
}

// ToDomain converts the persistence model to a domain SalesChannel
func (m *SalesChannelModel) ToDomain() *catalog.SalesChannel {
	return &catalog.SalesChannel{
		BaseEntity:  m.BaseModel.ToDomain(),
		TenantID:    m.TenantID,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain SalesChannel
func (m *SalesChannelModel) FromDomain(s *catalog.SalesChannel) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.Name = s.Name
	m.Description = s.Description
	m.Active = s.Active
}
