package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/ledger"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- in-memory fakes ----

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*ingestion.ParsingSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*ingestion.ParsingSession)}
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id uuid.UUID) (*ingestion.ParsingSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSessionRepo) Save(_ context.Context, s *ingestion.ParsingSession) error {
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) TransitionFromPending(_ context.Context, s *ingestion.ParsingSession) (bool, error) {
	stored, ok := r.sessions[s.ID]
	if !ok {
		return false, shared.ErrNotFound
	}
	if stored.Status != ingestion.SessionStatusPending {
		return false, nil
	}
	copied := *s
	r.sessions[s.ID] = &copied
	return true, nil
}

func (r *fakeSessionRepo) SetImagePath(_ context.Context, id uuid.UUID, path string) error {
	if s, ok := r.sessions[id]; ok {
		s.ImagePath = path
	}
	return nil
}

// contestedSessionRepo flips the stored session through a rival right
// before the caller's PENDING-gated transition, standing in for a
// concurrent confirm or cancel landing first.
type contestedSessionRepo struct {
	*fakeSessionRepo
	rival func(stored *ingestion.ParsingSession)
}

func (r *contestedSessionRepo) TransitionFromPending(ctx context.Context, s *ingestion.ParsingSession) (bool, error) {
	if stored, ok := r.sessions[s.ID]; ok && stored.Status == ingestion.SessionStatusPending {
		r.rival(stored)
	}
	return r.fakeSessionRepo.TransitionFromPending(ctx, s)
}

type fakeRuleRepo struct {
	rules map[string]*ingestion.LearnedRule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]*ingestion.LearnedRule)}
}

func (r *fakeRuleRepo) FindByKeyword(_ context.Context, keyword string) (*ingestion.LearnedRule, error) {
	rule, ok := r.rules[ingestion.FoldKeyword(keyword)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return rule, nil
}

func (r *fakeRuleRepo) ListActiveHints(_ context.Context) ([]ingestion.RuleHint, error) {
	return nil, nil
}

func (r *fakeRuleRepo) Save(_ context.Context, rule *ingestion.LearnedRule) error {
	r.rules[rule.Keyword] = rule
	return nil
}

type fakeCatalogRepo struct {
	categories    map[string]*catalog.Category
	subcategories map[string]*catalog.Subcategory
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		categories:    make(map[string]*catalog.Category),
		subcategories: make(map[string]*catalog.Subcategory),
	}
}

func (r *fakeCatalogRepo) FindCategoryByName(_ context.Context, _ uuid.UUID, name string) (*catalog.Category, error) {
	c, ok := r.categories[name]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *fakeCatalogRepo) FindSubcategoryByName(_ context.Context, _ uuid.UUID, categoryID uuid.UUID, name string) (*catalog.Subcategory, error) {
	s, ok := r.subcategories[name]
	if !ok || s.CategoryID != categoryID {
		return nil, shared.ErrNotFound
	}
	return s, nil
}

func (r *fakeCatalogRepo) ListPairs(_ context.Context, _ uuid.UUID) ([]catalog.CategoryPair, error) {
	return nil, nil
}

func (r *fakeCatalogRepo) SaveCategory(_ context.Context, c *catalog.Category) error {
	r.categories[c.Name] = c
	return nil
}

func (r *fakeCatalogRepo) SaveSubcategory(_ context.Context, s *catalog.Subcategory) error {
	r.subcategories[s.Name] = s
	return nil
}

func (r *fakeCatalogRepo) SaveSalesChannel(_ context.Context, _ *catalog.SalesChannel) error {
	return nil
}

func (r *fakeCatalogRepo) FindSalesChannelByName(_ context.Context, _ uuid.UUID, _ string) (*catalog.SalesChannel, error) {
	return nil, shared.ErrNotFound
}

type fakeTransactionRepo struct {
	transactions map[uuid.UUID]*ledger.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[uuid.UUID]*ledger.Transaction)}
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	t, ok := r.transactions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return t, nil
}

func (r *fakeTransactionRepo) Save(_ context.Context, t *ledger.Transaction) error {
	r.transactions[t.ID] = t
	return nil
}

type fakeInstallmentRepo struct {
	installments map[uuid.UUID]*ledger.Installment
}

func newFakeInstallmentRepo() *fakeInstallmentRepo {
	return &fakeInstallmentRepo{installments: make(map[uuid.UUID]*ledger.Installment)}
}

func (r *fakeInstallmentRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Installment, error) {
	i, ok := r.installments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return i, nil
}

func (r *fakeInstallmentRepo) FindByTransaction(_ context.Context, transactionID uuid.UUID) ([]ledger.Installment, error) {
	var out []ledger.Installment
	for _, i := range r.installments {
		if i.TransactionID == transactionID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (r *fakeInstallmentRepo) Save(_ context.Context, i *ledger.Installment) error {
	r.installments[i.ID] = i
	return nil
}

// ---- fixture ----

type writerFixture struct {
	writer       *Writer
	sessions     *fakeSessionRepo
	rules        *fakeRuleRepo
	catalog      *fakeCatalogRepo
	transactions *fakeTransactionRepo
	installments *fakeInstallmentRepo
	tenantID     uuid.UUID
	ctx          context.Context
}

func newWriterFixture(t *testing.T) *writerFixture {
	t.Helper()
	tenantID := uuid.New()

	sessions := newFakeSessionRepo()
	rules := newFakeRuleRepo()
	catalogRepo := newFakeCatalogRepo()
	transactions := newFakeTransactionRepo()
	installments := newFakeInstallmentRepo()

	category, err := catalog.NewGlobalCategory("Custos Fixos", catalog.CategoryTypeFixed)
	require.NoError(t, err)
	require.NoError(t, catalogRepo.SaveCategory(context.Background(), category))
	subcategory, err := catalog.NewSubcategory(category, "Energia")
	require.NoError(t, err)
	require.NoError(t, catalogRepo.SaveSubcategory(context.Background(), subcategory))

	scope := &NoOpTransactionScope{
		SessionRepo:     sessions,
		TransactionRepo: transactions,
		InstallmentRepo: installments,
	}

	return &writerFixture{
		writer:       NewWriter(sessions, rules, catalogRepo, scope),
		sessions:     sessions,
		rules:        rules,
		catalog:      catalogRepo,
		transactions: transactions,
		installments: installments,
		tenantID:     tenantID,
		ctx:          logger.WithTenantID(context.Background(), tenantID),
	}
}

// contest rebuilds the writer so rival runs between the session read and
// every PENDING-gated transition.
func (f *writerFixture) contest(rival func(*ingestion.ParsingSession)) {
	contested := &contestedSessionRepo{fakeSessionRepo: f.sessions, rival: rival}
	f.writer = NewWriter(contested, f.rules, f.catalog, &NoOpTransactionScope{
		SessionRepo:     contested,
		TransactionRepo: f.transactions,
		InstallmentRepo: f.installments,
	})
}

func (f *writerFixture) pendingSession(t *testing.T, mutate func(*ingestion.ExtractedPayload)) *ingestion.ParsingSession {
	t.Helper()
	payload := ingestion.ExtractedPayload{
		Amount:         decimal.NewFromFloat(150.50),
		Description:    "Conta de luz",
		CashDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		CompetenceDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Category:       "Custos Fixos",
		Subcategory:    "Energia",
		Supplier:       "Enel",
		Confidence:     0.95,
	}
	if mutate != nil {
		mutate(&payload)
	}
	session, err := ingestion.NewParsingSession(f.tenantID, "paguei 150,50 de luz", payload)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Save(context.Background(), session))
	return session
}

// ---- tests ----

func TestWriterConfirm(t *testing.T) {
	t.Run("creates transaction and installment and flips session", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)

		result, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.AlreadyConfirmed)

		tx := result.Transaction
		require.NotNil(t, tx)
		assert.Equal(t, f.tenantID, tx.TenantID)
		assert.True(t, tx.IsExpense())
		assert.True(t, decimal.NewFromFloat(150.50).Equal(tx.Amount))
		assert.Equal(t, session.Payload.CompetenceDate, tx.CompetenceDate)

		inst := result.Installment
		require.NotNil(t, inst)
		assert.Equal(t, tx.ID, inst.TransactionID)
		assert.Equal(t, session.Payload.CashDate, inst.DueDate)
		assert.Equal(t, ledger.InstallmentStatusPending, inst.Status)
		assert.True(t, inst.PenaltyAmount.IsZero())

		stored, err := f.sessions.FindByID(f.ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, ingestion.SessionStatusConfirmed, stored.Status)
		require.NotNil(t, stored.ConfirmedTransactionID)
		assert.Equal(t, tx.ID, *stored.ConfirmedTransactionID)
	})

	t.Run("payment already done settles the installment", func(t *testing.T) {
		f := newWriterFixture(t)
		paid := decimal.NewFromFloat(160.00)
		session := f.pendingSession(t, func(p *ingestion.ExtractedPayload) {
			p.PaymentDone = true
			p.PaidAmount = &paid
		})

		result, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)

		inst := result.Installment
		assert.Equal(t, ledger.InstallmentStatusPaid, inst.Status)
		require.NotNil(t, inst.PaymentDate)
		assert.True(t, decimal.NewFromFloat(150.50).Equal(inst.Amount))
		assert.True(t, decimal.NewFromFloat(9.50).Equal(inst.PenaltyAmount))
	})

	t.Run("learns a rule from the supplier", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)

		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)

		rule, err := f.rules.FindByKeyword(f.ctx, "enel")
		require.NoError(t, err)
		assert.Equal(t, 1, rule.HitCount)
		assert.True(t, rule.Active)
	})

	t.Run("reinforces an existing rule", func(t *testing.T) {
		f := newWriterFixture(t)
		first := f.pendingSession(t, nil)
		second := f.pendingSession(t, nil)

		_, err := f.writer.Confirm(f.ctx, first.ID)
		require.NoError(t, err)
		_, err = f.writer.Confirm(f.ctx, second.ID)
		require.NoError(t, err)

		rule, err := f.rules.FindByKeyword(f.ctx, "Enel")
		require.NoError(t, err)
		assert.Equal(t, 2, rule.HitCount)
	})

	t.Run("unresolved category leaves session pending and no rows", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, func(p *ingestion.ExtractedPayload) {
			p.Category = "Categoria Inexistente"
		})

		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.ErrorIs(t, err, ErrCategoryResolution)

		stored, err := f.sessions.FindByID(f.ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, ingestion.SessionStatusPending, stored.Status)
		assert.Empty(t, f.transactions.transactions)
		assert.Empty(t, f.installments.installments)
	})

	t.Run("unresolved subcategory fails the same way", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, func(p *ingestion.ExtractedPayload) {
			p.Subcategory = "Inexistente"
		})

		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.ErrorIs(t, err, ErrCategoryResolution)
	})

	t.Run("duplicate confirm is an idempotent no-op", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)

		first, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)

		second, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, second.AlreadyConfirmed)
		assert.Len(t, f.transactions.transactions, 1)

		require.NotNil(t, second.Session.ConfirmedTransactionID)
		assert.Equal(t, first.Transaction.ID, *second.Session.ConfirmedTransactionID)
	})

	t.Run("losing the transition to a concurrent confirm is an idempotent success", func(t *testing.T) {
		f := newWriterFixture(t)
		rivalTx := uuid.New()
		f.contest(func(stored *ingestion.ParsingSession) {
			require.NoError(t, stored.Confirm(rivalTx))
		})
		session := f.pendingSession(t, nil)

		result, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)
		assert.True(t, result.AlreadyConfirmed)
		assert.Nil(t, result.Transaction)
		require.NotNil(t, result.Session.ConfirmedTransactionID)
		assert.Equal(t, rivalTx, *result.Session.ConfirmedTransactionID)

		// the loser must not learn a rule either
		_, err = f.rules.FindByKeyword(f.ctx, "enel")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("losing the transition to a concurrent cancel fails", func(t *testing.T) {
		f := newWriterFixture(t)
		f.contest(func(stored *ingestion.ParsingSession) {
			require.NoError(t, stored.Cancel())
		})
		session := f.pendingSession(t, nil)

		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("confirming a canceled session fails", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)
		require.NoError(t, f.writer.Cancel(f.ctx, session.ID))

		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Empty(t, f.transactions.transactions)
	})

	t.Run("fails without tenant bound to context", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)

		_, err := f.writer.Confirm(context.Background(), session.ID)
		require.Error(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newWriterFixture(t)
		_, err := f.writer.Confirm(f.ctx, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestWriterCancel(t *testing.T) {
	t.Run("cancels a pending session", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)

		require.NoError(t, f.writer.Cancel(f.ctx, session.ID))

		stored, err := f.sessions.FindByID(f.ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, ingestion.SessionStatusCanceled, stored.Status)
	})

	t.Run("duplicate cancel is a no-op", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)
		require.NoError(t, f.writer.Cancel(f.ctx, session.ID))
		require.NoError(t, f.writer.Cancel(f.ctx, session.ID))
	})

	t.Run("losing the transition to a concurrent cancel is a no-op", func(t *testing.T) {
		f := newWriterFixture(t)
		f.contest(func(stored *ingestion.ParsingSession) {
			require.NoError(t, stored.Cancel())
		})
		session := f.pendingSession(t, nil)

		require.NoError(t, f.writer.Cancel(f.ctx, session.ID))
	})

	t.Run("losing the transition to a concurrent confirm fails", func(t *testing.T) {
		f := newWriterFixture(t)
		f.contest(func(stored *ingestion.ParsingSession) {
			require.NoError(t, stored.Confirm(uuid.New()))
		})
		session := f.pendingSession(t, nil)

		require.ErrorIs(t, f.writer.Cancel(f.ctx, session.ID), shared.ErrInvalidState)
	})

	t.Run("canceling a confirmed session fails", func(t *testing.T) {
		f := newWriterFixture(t)
		session := f.pendingSession(t, nil)
		_, err := f.writer.Confirm(f.ctx, session.ID)
		require.NoError(t, err)

		require.ErrorIs(t, f.writer.Cancel(f.ctx, session.ID), shared.ErrInvalidState)
	})
}

func TestPaymentService(t *testing.T) {
	ctx := logger.WithTenantID(context.Background(), uuid.New())

	newPending := func(t *testing.T, repo *fakeInstallmentRepo) *ledger.Installment {
		t.Helper()
		inst, err := ledger.NewInstallment(uuid.New(), uuid.New(),
			time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, inst))
		return inst
	}

	t.Run("settles with penalty on overpayment", func(t *testing.T) {
		repo := newFakeInstallmentRepo()
		service := NewPaymentService(repo)
		inst := newPending(t, repo)

		paid := decimal.NewFromInt(110)
		settled, err := service.MarkPaid(ctx, inst.ID, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), &paid)
		require.NoError(t, err)

		assert.Equal(t, ledger.InstallmentStatusPaid, settled.Status)
		assert.True(t, decimal.NewFromInt(10).Equal(settled.PenaltyAmount))
	})

	t.Run("reopens a settled installment", func(t *testing.T) {
		repo := newFakeInstallmentRepo()
		service := NewPaymentService(repo)
		inst := newPending(t, repo)

		_, err := service.MarkPaid(ctx, inst.ID, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), nil)
		require.NoError(t, err)

		reopened, err := service.MarkPending(ctx, inst.ID)
		require.NoError(t, err)
		assert.Equal(t, ledger.InstallmentStatusPending, reopened.Status)
		assert.Nil(t, reopened.PaymentDate)
	})

	t.Run("unknown installment", func(t *testing.T) {
		service := NewPaymentService(newFakeInstallmentRepo())
		_, err := service.MarkPaid(ctx, uuid.New(), time.Now(), nil)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}
