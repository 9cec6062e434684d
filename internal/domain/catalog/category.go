package catalog

import (
	"strings"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryType classifies an expense category for reporting purposes
type CategoryType string

const (
	CategoryTypeFixed      CategoryType = "FIXA"
	CategoryTypeVariable   CategoryType = "VARIAVEL"
	CategoryTypeInvestment CategoryType = "INVESTIMENTO"
	CategoryTypeStock      CategoryType = "ESTOQUE"
)

// IsValid checks if the type is a valid CategoryType
func (t CategoryType) IsValid() bool {
	switch t {
	case CategoryTypeFixed, CategoryTypeVariable, CategoryTypeInvestment, CategoryTypeStock:
		return true
	}
	return false
}

// Category is the top level of the expense taxonomy. TenantID is nil for
// rows of the global glossary shared by every tenant; tenant-owned rows
// shadow nothing, they extend the catalog. Names are unique per tenant and
// unique among global rows.
type Category struct {
	shared.BaseEntity
	TenantID *uuid.UUID
	Name     string
	Type     CategoryType
}

// NewCategory creates a category owned by a tenant
func NewCategory(tenantID uuid.UUID, name string, catType CategoryType) (*Category, error) {
	c, err := newCategory(name, catType)
	if err != nil {
		return nil, err
	}
	c.TenantID = &tenantID
	return c, nil
}

// NewGlobalCategory creates a category in the global glossary
func NewGlobalCategory(name string, catType CategoryType) (*Category, error) {
	return newCategory(name, catType)
}

func newCategory(name string, catType CategoryType) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if !catType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Category type is not valid")
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Type:       catType,
	}, nil
}

// IsGlobal returns true for glossary rows visible to every tenant
func (c *Category) IsGlobal() bool {
	return c.TenantID == nil
}

// Subcategory is the leaf level of the expense taxonomy, always attached
// to a Category. A subcategory of a global category must itself be global.
type Subcategory struct {
	shared.BaseEntity
	TenantID   *uuid.UUID
	CategoryID uuid.UUID
	Name       string
}

// NewSubcategory creates a subcategory under the given parent
func NewSubcategory(parent *Category, name string) (*Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Subcategory name cannot be empty")
	}
	return &Subcategory{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   parent.TenantID,
		CategoryID: parent.ID,
		Name:       name,
	}, nil
}

// IsGlobal returns true for glossary rows visible to every tenant
func (s *Subcategory) IsGlobal() bool {
	return s.TenantID == nil
}

// CategoryPair is one (category, subcategory) entry of the classification
// catalog handed to the extractor.
type CategoryPair struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}
