// Package models holds the persistence models mapped by GORM. They are
// kept apart from the domain entities so schema concerns (column types,
// indexes, table names) never leak into the domain layer; repositories
// convert between the two with ToDomain/FromDomain.
package models

import (
	"time"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// TenantOwnedModel provides common persistence fields for tenant-owned
// rows. The tenant column is filled by the scoped store's create callback
// when the row is inserted through it.
type TenantOwnedModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// ToDomainTenantEntity converts to the domain TenantEntity
func (m *TenantOwnedModel) ToDomainTenantEntity() shared.TenantEntity {
	return shared.TenantEntity{
		BaseEntity: m.ToDomain(),
		TenantID:   m.TenantID,
	}
}

// FromDomainTenantEntity populates from the domain TenantEntity
func (m *TenantOwnedModel) FromDomainTenantEntity(e shared.TenantEntity) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
}
