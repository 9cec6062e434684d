package persistence

import (
	"context"
	"sync"
	"testing"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"github.com/caixo/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupScopedTestDB creates an in-memory database with the full schema and
// the tenant callbacks installed.
func setupScopedTestDB(t *testing.T) *tenant.ScopedDB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// every sqlite connection gets its own :memory: database, so the
	// pool must stay at one connection for concurrent tests
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.TenantModel{},
		&models.UserModel{},
		&models.CategoryModel{},
		&models.SubcategoryModel{},
		&models.SalesChannelModel{},
		&models.TransactionModel{},
		&models.InstallmentModel{},
		&models.ParsingSessionModel{},
		&models.LearnedRuleModel{},
	)
	require.NoError(t, err)

	return tenant.NewScopedDB(db)
}

func tenantCtx(tenantID uuid.UUID) context.Context {
	return logger.WithTenantID(context.Background(), tenantID)
}

func testPayload() ingestion.ExtractedPayload {
	return ingestion.ExtractedPayload{
		Amount:      decimal.NewFromFloat(150.50),
		Description: "Conta de luz",
		Category:    "Custos Fixos",
		Subcategory: "Energia",
		Confidence:  0.95,
	}
}

func newTestSession(t *testing.T, tenantID uuid.UUID) *ingestion.ParsingSession {
	t.Helper()
	session, err := ingestion.NewParsingSession(tenantID, "conta de luz 150,50", testPayload())
	require.NoError(t, err)
	return session
}

func TestScopedDB(t *testing.T) {
	t.Run("read without bound tenant fails", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormSessionRepository(scoped)

		_, err := repo.FindByID(context.Background(), uuid.New())

		assert.ErrorIs(t, err, tenant.ErrTenantRequired)
		assert.ErrorIs(t, err, shared.ErrTenantRequired)
	})

	t.Run("create stamps the bound tenant", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		tenantID := uuid.New()
		ctx := tenantCtx(tenantID)

		model := models.ParsingSessionModel{}
		model.FromDomain(newTestSession(t, uuid.Nil))
		model.ID = uuid.New()
		require.NoError(t, scoped.WithContext(ctx).Create(&model).Error)

		var stored models.ParsingSessionModel
		require.NoError(t, scoped.Admin().WithContext(context.Background()).First(&stored, "id = ?", model.ID).Error)
		assert.Equal(t, tenantID, stored.TenantID)
	})

	t.Run("create carrying a foreign tenant is rejected", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		ctx := tenantCtx(uuid.New())

		model := models.ParsingSessionModel{}
		model.FromDomain(newTestSession(t, uuid.New()))
		model.ID = uuid.New()

		err := scoped.WithContext(ctx).Create(&model).Error
		assert.ErrorIs(t, err, tenant.ErrTenantRequired)
	})

	t.Run("rows of another tenant are invisible", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormSessionRepository(scoped)
		tenantA := uuid.New()
		tenantB := uuid.New()

		session := newTestSession(t, tenantA)
		require.NoError(t, repo.Save(tenantCtx(tenantA), session))

		found, err := repo.FindByID(tenantCtx(tenantA), session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)

		_, err = repo.FindByID(tenantCtx(tenantB), session.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update through another tenant touches nothing", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormSessionRepository(scoped)
		tenantA := uuid.New()
		tenantB := uuid.New()

		session := newTestSession(t, tenantA)
		require.NoError(t, repo.Save(tenantCtx(tenantA), session))

		require.NoError(t, repo.SetImagePath(tenantCtx(tenantB), session.ID, "tenants/evil/invoices/x.jpg"))

		found, err := repo.FindByID(tenantCtx(tenantA), session.ID)
		require.NoError(t, err)
		assert.Empty(t, found.ImagePath)
	})

	t.Run("concurrent writes stay within their tenant", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormSessionRepository(scoped)
		tenantA := uuid.New()
		tenantB := uuid.New()

		const perTenant = 8
		sessionsA := make([]*ingestion.ParsingSession, perTenant)
		sessionsB := make([]*ingestion.ParsingSession, perTenant)
		for i := range sessionsA {
			sessionsA[i] = newTestSession(t, tenantA)
			sessionsB[i] = newTestSession(t, tenantB)
		}

		errsA := make([]error, perTenant)
		errsB := make([]error, perTenant)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i, s := range sessionsA {
				errsA[i] = repo.Save(tenantCtx(tenantA), s)
			}
		}()
		go func() {
			defer wg.Done()
			for i, s := range sessionsB {
				errsB[i] = repo.Save(tenantCtx(tenantB), s)
			}
		}()
		wg.Wait()
		for i := 0; i < perTenant; i++ {
			require.NoError(t, errsA[i])
			require.NoError(t, errsB[i])
		}

		var visible []models.ParsingSessionModel
		require.NoError(t, scoped.WithContext(tenantCtx(tenantA)).Find(&visible).Error)
		assert.Len(t, visible, perTenant)
		for _, m := range visible {
			assert.Equal(t, tenantA, m.TenantID)
		}

		_, err := repo.FindByID(tenantCtx(tenantA), sessionsB[0].ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("admin store sees every tenant", func(t *testing.T) {
		scoped := setupScopedTestDB(t)
		repo := NewGormSessionRepository(scoped)
		tenantA := uuid.New()
		tenantB := uuid.New()

		require.NoError(t, repo.Save(tenantCtx(tenantA), newTestSession(t, tenantA)))
		require.NoError(t, repo.Save(tenantCtx(tenantB), newTestSession(t, tenantB)))

		var count int64
		require.NoError(t, scoped.Admin().WithContext(context.Background()).
			Model(&models.ParsingSessionModel{}).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("transaction without bound tenant fails", func(t *testing.T) {
		scoped := setupScopedTestDB(t)

		err := scoped.Transaction(context.Background(), func(tx *gorm.DB) error {
			return nil
		})

		assert.ErrorIs(t, err, tenant.ErrTenantRequired)
	})
}
