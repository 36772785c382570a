package tenancy

import (
	"erpcore/internal/models"
)

// Kind discriminates an identity's affiliation with a tenant. A user holds at
// most one of ownership or membership system-wide, so the three cases are
// exhaustive and mutually exclusive.
type Kind int

const (
	Unaffiliated Kind = iota
	Owner
	Member
)

// Affiliation is the result of resolving a user against the tenant store,
// computed once per request and passed as a value to everything downstream.
type Affiliation struct {
	Kind   Kind
	Tenant *models.Tenant
	Role   string
}

// None is the affiliation of an identity with no tenant.
func None() Affiliation {
	return Affiliation{Kind: Unaffiliated}
}

// Owned builds an owner affiliation. Owners always act as admins.
func Owned(tenant *models.Tenant) Affiliation {
	return Affiliation{Kind: Owner, Tenant: tenant, Role: models.RoleAdmin}
}

// MemberOf builds a member affiliation with the membership's role.
func MemberOf(tenant *models.Tenant, role string) Affiliation {
	return Affiliation{Kind: Member, Tenant: tenant, Role: role}
}

// HasTenant reports whether a tenant was resolved.
func (a Affiliation) HasTenant() bool {
	return a.Kind != Unaffiliated && a.Tenant != nil
}

// IsAdmin reports whether the affiliation grants admin rights on its tenant:
// either ownership or a membership with the admin role.
func (a Affiliation) IsAdmin() bool {
	return a.HasTenant() && (a.Kind == Owner || a.Role == models.RoleAdmin)
}
