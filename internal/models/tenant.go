package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an organization and the unit of data isolation. Every tenant is
// owned by exactly one user (AdminUserID); additional users join through
// invitations and get a Membership row instead.
type Tenant struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`

	// Company information
	LegalName          *string `json:"legal_name" db:"legal_name"`
	TaxNumber          *string `json:"tax_number" db:"tax_number"`
	RegistrationNumber *string `json:"registration_number" db:"registration_number"`

	// Contact information
	Address *string `json:"address" db:"address"`
	City    *string `json:"city" db:"city"`
	Country *string `json:"country" db:"country"`
	Phone   *string `json:"phone" db:"phone"`
	Email   string  `json:"email" db:"email"`
	Website *string `json:"website" db:"website"`

	// Branding
	LogoKey        *string `json:"logo_key" db:"logo_key"`
	PrimaryColor   string  `json:"primary_color" db:"primary_color"`
	SecondaryColor string  `json:"secondary_color" db:"secondary_color"`

	// Configuration
	Timezone   string `json:"timezone" db:"timezone"`
	Currency   string `json:"currency" db:"currency"`
	DateFormat string `json:"date_format" db:"date_format"`

	IsActive    bool      `json:"is_active" db:"is_active"`
	AdminUserID uuid.UUID `json:"admin_user_id" db:"admin_user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Membership struct {
	ID       uuid.UUID `json:"id" db:"id"`
	UserID   uuid.UUID `json:"user_id" db:"user_id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Role     string    `json:"role" db:"role"`
	IsActive bool      `json:"is_active" db:"is_active"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Membership roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
	RoleViewer   = "viewer"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

// Invitation is a pending, single-use offer to join a tenant. Uniqueness per
// (tenant_id, email) is enforced by the database; expiry is checked lazily at
// acceptance time, never swept.
type Invitation struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Email      string     `json:"email" db:"email"`
	Role       string     `json:"role" db:"role"`
	InvitedBy  uuid.UUID  `json:"invited_by" db:"invited_by"`
	Token      uuid.UUID  `json:"token" db:"token"`
	ExpiresAt  time.Time  `json:"expires_at" db:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at" db:"accepted_at"`
	IsAccepted bool       `json:"is_accepted" db:"is_accepted"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
