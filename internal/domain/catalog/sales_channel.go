package catalog

import (
	"strings"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesChannel categorizes revenue by how it was earned (counter, delivery
// platform, own delivery). Like Category, a nil TenantID marks a global row.
type SalesChannel struct {
	shared.BaseEntity
	TenantID    *uuid.UUID
	Name        string
	Description string
	Active      bool
}

// NewSalesChannel creates an active sales channel owned by a tenant
func NewSalesChannel(tenantID uuid.UUID, name, description string) (*SalesChannel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Sales channel name cannot be empty")
	}
	return &SalesChannel{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    &tenantID,
		Name:        name,
		Description: description,
		Active:      true,
	}, nil
}

// IsGlobal returns true for rows visible to every tenant
func (s *SalesChannel) IsGlobal() bool {
	return s.TenantID == nil
}
