package persistence

import (
	"context"
	"testing"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	repo     *GormCatalogRepository
	ctx      context.Context
	tenantID uuid.UUID
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	scoped := setupScopedTestDB(t)
	return &catalogFixture{
		repo:     NewGormCatalogRepository(scoped.Admin()),
		ctx:      context.Background(),
		tenantID: uuid.New(),
	}
}

func (f *catalogFixture) seedGlobal(t *testing.T, categoryName, subcategoryName string) (*catalog.Category, *catalog.Subcategory) {
	t.Helper()
	category, err := catalog.NewGlobalCategory(categoryName, catalog.CategoryTypeFixed)
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveCategory(f.ctx, category))

	subcategory, err := catalog.NewSubcategory(category, subcategoryName)
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveSubcategory(f.ctx, subcategory))
	return category, subcategory
}

func (f *catalogFixture) seedTenant(t *testing.T, categoryName, subcategoryName string) (*catalog.Category, *catalog.Subcategory) {
	t.Helper()
	category, err := catalog.NewCategory(f.tenantID, categoryName, catalog.CategoryTypeVariable)
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveCategory(f.ctx, category))

	subcategory, err := catalog.NewSubcategory(category, subcategoryName)
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveSubcategory(f.ctx, subcategory))
	return category, subcategory
}

func TestGormCatalogRepository_FindCategoryByName(t *testing.T) {
	t.Run("falls back to the global glossary", func(t *testing.T) {
		f := newCatalogFixture(t)
		global, _ := f.seedGlobal(t, "Custos Fixos", "Energia")

		found, err := f.repo.FindCategoryByName(f.ctx, f.tenantID, "Custos Fixos")
		require.NoError(t, err)
		assert.Equal(t, global.ID, found.ID)
		assert.Nil(t, found.TenantID)
	})

	t.Run("tenant row shadows the global one", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.seedGlobal(t, "Custos Fixos", "Energia")
		own, _ := f.seedTenant(t, "Custos Fixos", "Energia Solar")

		found, err := f.repo.FindCategoryByName(f.ctx, f.tenantID, "Custos Fixos")
		require.NoError(t, err)
		assert.Equal(t, own.ID, found.ID)
	})

	t.Run("another tenant's rows do not resolve", func(t *testing.T) {
		f := newCatalogFixture(t)
		f.seedTenant(t, "Categoria Própria", "Especial")

		_, err := f.repo.FindCategoryByName(f.ctx, uuid.New(), "Categoria Própria")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown name returns not found", func(t *testing.T) {
		f := newCatalogFixture(t)

		_, err := f.repo.FindCategoryByName(f.ctx, f.tenantID, "Inexistente")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCatalogRepository_FindSubcategoryByName(t *testing.T) {
	t.Run("resolves under the right category", func(t *testing.T) {
		f := newCatalogFixture(t)
		category, subcategory := f.seedGlobal(t, "Custos Fixos", "Energia")
		f.seedGlobal(t, "Insumos", "Farinha")

		found, err := f.repo.FindSubcategoryByName(f.ctx, f.tenantID, category.ID, "Energia")
		require.NoError(t, err)
		assert.Equal(t, subcategory.ID, found.ID)
	})

	t.Run("name under another category does not resolve", func(t *testing.T) {
		f := newCatalogFixture(t)
		category, _ := f.seedGlobal(t, "Custos Fixos", "Energia")
		f.seedGlobal(t, "Insumos", "Farinha")

		_, err := f.repo.FindSubcategoryByName(f.ctx, f.tenantID, category.ID, "Farinha")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCatalogRepository_ListPairs(t *testing.T) {
	f := newCatalogFixture(t)
	f.seedGlobal(t, "Custos Fixos", "Energia")
	f.seedTenant(t, "Categoria Própria", "Especial")

	otherTenant := uuid.New()
	other, err := catalog.NewCategory(otherTenant, "Alheia", catalog.CategoryTypeVariable)
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveCategory(f.ctx, other))
	otherSub, err := catalog.NewSubcategory(other, "Escondida")
	require.NoError(t, err)
	require.NoError(t, f.repo.SaveSubcategory(f.ctx, otherSub))

	pairs, err := f.repo.ListPairs(f.ctx, f.tenantID)
	require.NoError(t, err)

	require.Len(t, pairs, 2)
	assert.Equal(t, "Categoria Própria", pairs[0].Category)
	assert.Equal(t, "Especial", pairs[0].Subcategory)
	assert.Equal(t, "Custos Fixos", pairs[1].Category)
	assert.Equal(t, "Energia", pairs[1].Subcategory)
}
