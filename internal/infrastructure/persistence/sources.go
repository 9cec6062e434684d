package persistence

import (
	"context"

	"gorm.io/gorm"
)

// dbSource abstracts where a repository gets its statements from: the
// tenant-scoped store in normal operation, or an open transaction when
// running inside a transaction scope. The scoping callbacks live on the
// connection, so statements issued through a transaction stay filtered.
type dbSource interface {
	WithContext(ctx context.Context) *gorm.DB
}

// txSource adapts an open GORM transaction to dbSource
type txSource struct {
	tx *gorm.DB
}

func (s txSource) WithContext(ctx context.Context) *gorm.DB {
	return s.tx.WithContext(ctx)
}
