package identity

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository provides access to tenants. Tenants are the isolation
// roots themselves, so this repository is inherently cross-tenant.
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// UserDirectory resolves inbound message senders to users. Lookups happen
// before any tenant context exists, so implementations are unscoped.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindActiveByWhatsApp returns the active user owning the given
	// WhatsApp number, or shared.ErrNotFound.
	FindActiveByWhatsApp(ctx context.Context, number string) (*User, error)
	Save(ctx context.Context, user *User) error
}
