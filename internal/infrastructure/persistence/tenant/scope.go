// Package tenant provides multi-tenant database scoping for GORM.
//
// Tenant isolation is structural: ScopedDB derives every query's tenant
// filter from the context bound through logger.WithTenantID, and a read
// without a bound tenant fails instead of silently widening to all rows.
// Code that legitimately needs cross-tenant or global access takes an
// AdminDB, a separate type, so the two capabilities can never be mixed up
// through the same variable.
//
// Usage:
//
//	scoped := tenant.NewScopedDB(gormDB)
//	scoped.WithContext(ctx).Find(&sessions) // WHERE tenant_id = ? auto-added
package tenant

import (
	"context"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// ErrTenantRequired is returned when an operation runs on the scoped store
// without a tenant bound to its context. It is the shared taxonomy
// sentinel, so errors.Is matches across layers.
var ErrTenantRequired error = shared.ErrTenantRequired

// adminBypassKey marks a statement as issued through AdminDB, telling the
// scoping callbacks to stand down.
const adminBypassKey = "tenant:admin_bypass"

// ScopedDB wraps a GORM DB whose every statement is filtered to the tenant
// bound to the statement's context. Construction registers the scoping
// callbacks on the underlying connection.
type ScopedDB struct {
	db *gorm.DB
}

// NewScopedDB creates a ScopedDB and installs the tenant callbacks
func NewScopedDB(db *gorm.DB) *ScopedDB {
	registerCallbacks(db)
	return &ScopedDB{db: db}
}

// WithContext returns a GORM DB whose statements are scoped to the tenant
// bound to ctx. If no tenant is bound the returned DB errors on every
// operation rather than running unfiltered.
func (s *ScopedDB) WithContext(ctx context.Context) *gorm.DB {
	db := s.db.WithContext(ctx)
	if _, ok := logger.GetTenantID(ctx); !ok {
		_ = db.AddError(ErrTenantRequired)
	}
	return db
}

// Transaction executes fn within a database transaction scoped to the
// tenant bound to ctx.
func (s *ScopedDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if _, ok := logger.GetTenantID(ctx); !ok {
		return ErrTenantRequired
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// Admin returns the unscoped capability for the same connection
func (s *ScopedDB) Admin() *AdminDB {
	return &AdminDB{db: s.db}
}

// AdminDB is the deliberately unscoped capability: statements issued
// through it see rows of every tenant plus global rows. It exists for the
// few places that need that reach, such as resolving an inbound sender to
// a tenant and reading the global category glossary. Keep its surface
// small; everything else goes through ScopedDB.
type AdminDB struct {
	db *gorm.DB
}

// NewAdminDB wraps a GORM DB for unscoped access. The scoping callbacks
// skip statements issued through the returned handle.
func NewAdminDB(db *gorm.DB) *AdminDB {
	return &AdminDB{db: db}
}

// WithContext returns a GORM DB that bypasses tenant scoping
func (a *AdminDB) WithContext(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx).Set(adminBypassKey, true)
}

// Transaction executes fn within an unscoped database transaction
func (a *AdminDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return a.db.WithContext(ctx).Set(adminBypassKey, true).Transaction(fn)
}
