package persistence

import (
	"testing"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormLearnedRuleRepository(t *testing.T) {
	t.Run("lookup folds the keyword", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormLearnedRuleRepository(scoped)
		tenantID := uuid.New()
		ctx := tenantCtx(tenantID)

		rule, err := ingestion.NewLearnedRule(tenantID, "Enel", uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rule))

		found, err := repo.FindByKeyword(ctx, "  ENEL ")
		require.NoError(t, err)
		assert.Equal(t, rule.ID, found.ID)
		assert.Equal(t, "enel", found.Keyword)
	})

	t.Run("save updates an existing rule", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormLearnedRuleRepository(scoped)
		tenantID := uuid.New()
		ctx := tenantCtx(tenantID)

		rule, err := ingestion.NewLearnedRule(tenantID, "enel", uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rule))

		newCategory := uuid.New()
		newSubcategory := uuid.New()
		rule.Reinforce(newCategory, newSubcategory)
		require.NoError(t, repo.Save(ctx, rule))

		found, err := repo.FindByKeyword(ctx, "enel")
		require.NoError(t, err)
		assert.Equal(t, 2, found.HitCount)
		assert.Equal(t, newCategory, found.CategoryID)
		assert.Equal(t, newSubcategory, found.SubcategoryID)
	})

	t.Run("rules belong to their tenant", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormLearnedRuleRepository(scoped)
		tenantA := uuid.New()

		rule, err := ingestion.NewLearnedRule(tenantA, "enel", uuid.New(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Save(tenantCtx(tenantA), rule))

		_, err = repo.FindByKeyword(tenantCtx(uuid.New()), "enel")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormLearnedRuleRepository_ListActiveHints(t *testing.T) {
	scoped := setupScopedTestDB(t)
	ruleRepo := NewGormLearnedRuleRepository(scoped)
	catalogRepo := NewGormCatalogRepository(scoped.Admin())
	tenantID := uuid.New()
	ctx := tenantCtx(tenantID)

	seed := func(categoryName, subcategoryName string) (uuid.UUID, uuid.UUID) {
		category, err := catalog.NewGlobalCategory(categoryName, catalog.CategoryTypeFixed)
		require.NoError(t, err)
		require.NoError(t, catalogRepo.SaveCategory(ctx, category))
		subcategory, err := catalog.NewSubcategory(category, subcategoryName)
		require.NoError(t, err)
		require.NoError(t, catalogRepo.SaveSubcategory(ctx, subcategory))
		return category.ID, subcategory.ID
	}

	energiaCat, energiaSub := seed("Custos Fixos", "Energia")
	insumosCat, insumosSub := seed("Insumos", "Farinha")

	weak, err := ingestion.NewLearnedRule(tenantID, "enel", energiaCat, energiaSub)
	require.NoError(t, err)
	require.NoError(t, ruleRepo.Save(ctx, weak))

	strong, err := ingestion.NewLearnedRule(tenantID, "moinho anaconda", insumosCat, insumosSub)
	require.NoError(t, err)
	strong.Reinforce(insumosCat, insumosSub)
	strong.Reinforce(insumosCat, insumosSub)
	require.NoError(t, ruleRepo.Save(ctx, strong))

	disabled, err := ingestion.NewLearnedRule(tenantID, "antigo", energiaCat, energiaSub)
	require.NoError(t, err)
	disabled.Active = false
	require.NoError(t, ruleRepo.Save(ctx, disabled))

	hints, err := ruleRepo.ListActiveHints(ctx)
	require.NoError(t, err)

	require.Len(t, hints, 2)
	assert.Equal(t, "moinho anaconda", hints[0].Keyword)
	assert.Equal(t, "Insumos", hints[0].Category)
	assert.Equal(t, "Farinha", hints[0].Subcategory)
	assert.Equal(t, "enel", hints[1].Keyword)
}
