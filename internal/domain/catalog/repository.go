package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to the category taxonomy. Catalog rows may be
// global (tenant null), so implementations run on the unscoped store and
// take the tenant explicitly.
type Repository interface {
	// FindCategoryByName resolves a category by exact name: the tenant's
	// own rows first, then the global glossary. Returns shared.ErrNotFound
	// when neither matches.
	FindCategoryByName(ctx context.Context, tenantID uuid.UUID, name string) (*Category, error)
	// FindSubcategoryByName resolves a subcategory by exact name under the
	// given category, tenant rows first, then global.
	FindSubcategoryByName(ctx context.Context, tenantID, categoryID uuid.UUID, name string) (*Subcategory, error)
	// ListPairs returns the union of global and tenant-owned
	// (category, subcategory) pairs for the classification context.
	ListPairs(ctx context.Context, tenantID uuid.UUID) ([]CategoryPair, error)
	SaveCategory(ctx context.Context, category *Category) error
	SaveSubcategory(ctx context.Context, subcategory *Subcategory) error
	SaveSalesChannel(ctx context.Context, channel *SalesChannel) error
	FindSalesChannelByName(ctx context.Context, tenantID uuid.UUID, name string) (*SalesChannel, error)
}
