package identity

import (
	"strings"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// User is a person allowed to send messages to the system. A user belongs
// to exactly one tenant; a user without a tenant cannot record anything.
type User struct {
	shared.BaseEntity
	TenantID       *uuid.UUID
	Email          string
	WhatsAppNumber string
	IsActive       bool
}

// NewUser creates a new active user bound to a tenant
func NewUser(tenantID uuid.UUID, email, whatsappNumber string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "User email cannot be empty")
	}
	whatsappNumber = NormalizeWhatsAppNumber(whatsappNumber)
	if whatsappNumber == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "User WhatsApp number cannot be empty")
	}
	return &User{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       &tenantID,
		Email:          email,
		WhatsAppNumber: whatsappNumber,
		IsActive:       true,
	}, nil
}

// HasTenant returns true if the user is bound to a tenant
func (u *User) HasTenant() bool {
	return u.TenantID != nil && *u.TenantID != uuid.Nil
}

// NormalizeWhatsAppNumber strips the JID domain suffix from a WhatsApp
// address ("5541999999999@s.whatsapp.net" -> "5541999999999").
func NormalizeWhatsAppNumber(address string) string {
	address = strings.TrimSpace(address)
	if i := strings.IndexByte(address, '@'); i >= 0 {
		address = address[:i]
	}
	return address
}
