package identity

import (
	"strings"

	"github.com/caixo/backend/internal/domain/shared"
)

// TenantPlan represents the subscription plan of a tenant
type TenantPlan string

const (
	TenantPlanFree TenantPlan = "FREE"
	TenantPlanPro  TenantPlan = "PRO"
)

// IsValid checks if the plan is a valid TenantPlan
func (p TenantPlan) IsValid() bool {
	switch p {
	case TenantPlanFree, TenantPlanPro:
		return true
	}
	return false
}

// TenantStatus represents the lifecycle status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusSuspended TenantStatus = "SUSPENDED"
)

// Tenant is an isolated customer. Every tenant-owned row in the system
// carries its id; rows of one tenant must never be visible to another.
type Tenant struct {
	shared.BaseEntity
	Name   string
	Plan   TenantPlan
	Status TenantStatus
}

// NewTenant creates a new active tenant
func NewTenant(name string, plan TenantPlan) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Tenant plan is not valid")
	}
	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Plan:       plan,
		Status:     TenantStatusActive,
	}, nil
}

// IsActive returns true if the tenant can use the system
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
