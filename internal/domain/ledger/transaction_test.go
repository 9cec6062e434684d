package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExpenseTransaction(t *testing.T) {
	tenantID := uuid.New()
	categoryID := uuid.New()
	subcategoryID := uuid.New()
	competence := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates expense with valid inputs", func(t *testing.T) {
		tx, err := NewExpenseTransaction(tenantID, "Conta de luz", decimal.NewFromFloat(150.50), categoryID, subcategoryID, competence, "Enel")
		require.NoError(t, err)
		require.NotNil(t, tx)

		assert.Equal(t, tenantID, tx.TenantID)
		assert.Equal(t, TransactionTypeExpense, tx.Type)
		assert.True(t, tx.IsExpense())
		assert.Equal(t, "Conta de luz", tx.Description)
		assert.True(t, decimal.NewFromFloat(150.50).Equal(tx.Amount))
		require.NotNil(t, tx.CategoryID)
		assert.Equal(t, categoryID, *tx.CategoryID)
		require.NotNil(t, tx.SubcategoryID)
		assert.Equal(t, subcategoryID, *tx.SubcategoryID)
		assert.Nil(t, tx.SalesChannelID)
		assert.Equal(t, competence, tx.CompetenceDate)
		assert.Equal(t, "Enel", tx.Supplier)
		assert.NotEmpty(t, tx.ID)
	})

	t.Run("trims description and supplier", func(t *testing.T) {
		tx, err := NewExpenseTransaction(tenantID, "  Aluguel  ", decimal.NewFromInt(2000), categoryID, subcategoryID, competence, "  Imobiliaria  ")
		require.NoError(t, err)
		assert.Equal(t, "Aluguel", tx.Description)
		assert.Equal(t, "Imobiliaria", tx.Supplier)
	})

	t.Run("fails with zero amount", func(t *testing.T) {
		_, err := NewExpenseTransaction(tenantID, "Conta", decimal.Zero, categoryID, subcategoryID, competence, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("fails with negative amount", func(t *testing.T) {
		_, err := NewExpenseTransaction(tenantID, "Conta", decimal.NewFromInt(-10), categoryID, subcategoryID, competence, "")
		require.Error(t, err)
	})

	t.Run("fails without category", func(t *testing.T) {
		_, err := NewExpenseTransaction(tenantID, "Conta", decimal.NewFromInt(10), uuid.Nil, subcategoryID, competence, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "category")
	})

	t.Run("fails without subcategory", func(t *testing.T) {
		_, err := NewExpenseTransaction(tenantID, "Conta", decimal.NewFromInt(10), categoryID, uuid.Nil, competence, "")
		require.Error(t, err)
	})

	t.Run("fails with zero competence date", func(t *testing.T) {
		_, err := NewExpenseTransaction(tenantID, "Conta", decimal.NewFromInt(10), categoryID, subcategoryID, time.Time{}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Competence date")
	})
}

func TestNewRevenueTransaction(t *testing.T) {
	tenantID := uuid.New()
	channelID := uuid.New()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates revenue with valid inputs", func(t *testing.T) {
		tx, err := NewRevenueTransaction(tenantID, "Vendas iFood", decimal.NewFromInt(5000), channelID, start, nil)
		require.NoError(t, err)

		assert.Equal(t, TransactionTypeRevenue, tx.Type)
		assert.False(t, tx.IsExpense())
		require.NotNil(t, tx.SalesChannelID)
		assert.Equal(t, channelID, *tx.SalesChannelID)
		assert.Nil(t, tx.CategoryID)
		assert.Nil(t, tx.SubcategoryID)
		assert.Nil(t, tx.CompetenceDateEnd)
	})

	t.Run("accepts competence period", func(t *testing.T) {
		end := start.AddDate(0, 0, 6)
		tx, err := NewRevenueTransaction(tenantID, "Vendas semana", decimal.NewFromInt(5000), channelID, start, &end)
		require.NoError(t, err)
		require.NotNil(t, tx.CompetenceDateEnd)
		assert.Equal(t, end, *tx.CompetenceDateEnd)
	})

	t.Run("fails when period end precedes start", func(t *testing.T) {
		end := start.AddDate(0, 0, -1)
		_, err := NewRevenueTransaction(tenantID, "Vendas", decimal.NewFromInt(5000), channelID, start, &end)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not precede")
	})

	t.Run("fails without sales channel", func(t *testing.T) {
		_, err := NewRevenueTransaction(tenantID, "Vendas", decimal.NewFromInt(5000), uuid.Nil, start, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sales channel")
	})

	t.Run("fails with non-positive amount", func(t *testing.T) {
		_, err := NewRevenueTransaction(tenantID, "Vendas", decimal.Zero, channelID, start, nil)
		require.Error(t, err)
	})
}

func TestTransactionTypeIsValid(t *testing.T) {
	assert.True(t, TransactionTypeExpense.IsValid())
	assert.True(t, TransactionTypeRevenue.IsValid())
	assert.False(t, TransactionType("TRANSFER").IsValid())
	assert.False(t, TransactionType("").IsValid())
}
