package models

import (
	"github.com/caixo/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// TenantModel is the persistence model for the Tenant entity
type TenantModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(200);not null"`
	Plan   string `gorm:"type:varchar(20);not null;default:'FREE'"`
	Status string `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *identity.Tenant {
	return &identity.Tenant{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Plan:       identity.TenantPlan(m.Plan),
		Status:     identity.TenantStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Name = t.Name
	m.Plan = string(t.Plan)
	m.Status = string(t.Status)
}

// UserModel is the persistence model for the User entity. Users are
// looked up before any tenant is bound, so the table is reached through
// the unscoped store and the tenant column is nullable.
type UserModel struct {
	BaseModel
	TenantID       *uuid.UUID `gorm:"type:uuid;index"`
	Email          string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	WhatsAppNumber string     `gorm:"type:varchar(50);not null;uniqueIndex;column:whatsapp_number"`
	IsActive       bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:     m.BaseModel.ToDomain(),
		TenantID:       m.TenantID,
		Email:          m.Email,
		WhatsAppNumber: m.WhatsAppNumber,
		IsActive:       m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainBaseEntity(u.BaseEntity)
	m.TenantID = u.TenantID
	m.Email = u.Email
	m.WhatsAppNumber = u.WhatsAppNumber
	m.IsActive = u.IsActive
}
