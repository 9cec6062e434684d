package tenant

import (
	"reflect"

	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

const tenantColumn = "tenant_id"

// registerCallbacks installs the scoping hooks on a GORM connection:
// reads, updates and deletes gain an automatic tenant filter, and creates
// gain an automatic tenant assignment. Statements flagged by AdminDB and
// models without a tenant column are left alone.
func registerCallbacks(db *gorm.DB) {
	_ = db.Callback().Query().Before("gorm:query").Register("tenant:before_query", addTenantFilter)
	_ = db.Callback().Row().Before("gorm:row").Register("tenant:before_row", addTenantFilter)
	_ = db.Callback().Update().Before("gorm:update").Register("tenant:before_update", addTenantFilter)
	_ = db.Callback().Delete().Before("gorm:delete").Register("tenant:before_delete", addTenantFilter)
	_ = db.Callback().Create().Before("gorm:create").Register("tenant:before_create", assignTenantOnCreate)
}

func bypassed(db *gorm.DB) bool {
	_, ok := db.Get(adminBypassKey)
	return ok
}

func tenantField(db *gorm.DB) *schema.Field {
	if db.Statement.Schema == nil {
		return nil
	}
	return db.Statement.Schema.LookUpField(tenantColumn)
}

// addTenantFilter narrows the statement to the tenant bound to its context
func addTenantFilter(db *gorm.DB) {
	if db.Statement.Context == nil || bypassed(db) || db.Statement.Unscoped {
		return
	}
	if tenantField(db) == nil {
		return
	}

	tenantID, ok := logger.GetTenantID(db.Statement.Context)
	if !ok {
		_ = db.AddError(ErrTenantRequired)
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: tenantColumn},
				Value:  tenantID,
			},
		},
	})
}

// assignTenantOnCreate stamps the bound tenant onto rows being inserted.
// A row already carrying a different tenant than the bound one is a bug
// upstream, so the write is rejected rather than silently rewritten.
func assignTenantOnCreate(db *gorm.DB) {
	if db.Statement.Context == nil || bypassed(db) {
		return
	}
	field := tenantField(db)
	if field == nil {
		return
	}

	tenantID, ok := logger.GetTenantID(db.Statement.Context)
	if !ok {
		_ = db.AddError(ErrTenantRequired)
		return
	}

	stamp := func(rv reflect.Value) {
		current, isZero := field.ValueOf(db.Statement.Context, rv)
		if !isZero {
			if existing, ok := current.(uuid.UUID); ok && existing != tenantID {
				_ = db.AddError(ErrTenantRequired)
			}
			return
		}
		if err := field.Set(db.Statement.Context, rv, tenantID); err != nil {
			_ = db.AddError(err)
		}
	}

	switch db.Statement.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < db.Statement.ReflectValue.Len(); i++ {
			stamp(db.Statement.ReflectValue.Index(i))
		}
	case reflect.Struct:
		stamp(db.Statement.ReflectValue)
	}
}
