package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"erpcore/internal/models"
	"erpcore/internal/repositories"
	"erpcore/internal/storage"
	"erpcore/internal/tenancy"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
)

// ErrAlreadyAffiliated rejects a second affiliation for a user who already
// owns or belongs to an organization.
var ErrAlreadyAffiliated = errors.New("user already owns or belongs to an organization")

type CreateTenantRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	LegalName *string `json:"legal_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
	Timezone  string  `json:"timezone"`
	Currency  string  `json:"currency"`
}

type UpdateTenantRequest struct {
	Name               *string `json:"name"`
	LegalName          *string `json:"legal_name"`
	TaxNumber          *string `json:"tax_number"`
	RegistrationNumber *string `json:"registration_number"`
	Address            *string `json:"address"`
	City               *string `json:"city"`
	Country            *string `json:"country"`
	Phone              *string `json:"phone"`
	Email              *string `json:"email"`
	Website            *string `json:"website"`
	PrimaryColor       *string `json:"primary_color"`
	SecondaryColor     *string `json:"secondary_color"`
	Timezone           *string `json:"timezone"`
	Currency           *string `json:"currency"`
	DateFormat         *string `json:"date_format"`
}

type TenantService interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateTenantRequest) (*models.Tenant, error)
	// Resolve determines the caller's affiliation: owner of a tenant, member
	// of one, or unaffiliated. Ownership wins over membership when a user
	// somehow has both. Inactive tenants and inactive memberships resolve to
	// unaffiliated rather than to a half-working context.
	Resolve(ctx context.Context, userID uuid.UUID) (tenancy.Affiliation, error)
	Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error)
	Update(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (*models.Tenant, error)
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]*models.Membership, error)
	UploadLogo(ctx context.Context, tenantID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error)
	LogoURL(ctx context.Context, tenantID uuid.UUID) (string, error)
}

type tenantService struct {
	tenants     repositories.TenantRepository
	memberships repositories.MembershipRepository
	logos       *storage.LogoStorage
}

func NewTenantService(tenants repositories.TenantRepository, memberships repositories.MembershipRepository, logos *storage.LogoStorage) TenantService {
	return &tenantService{tenants: tenants, memberships: memberships, logos: logos}
}

func (s *tenantService) Create(ctx context.Context, userID uuid.UUID, req CreateTenantRequest) (*models.Tenant, error) {
	affiliation, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if affiliation.HasTenant() {
		return nil, ErrAlreadyAffiliated
	}

	tenantSlug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	tenant := &models.Tenant{
		ID:             uuid.New(),
		Name:           req.Name,
		Slug:           tenantSlug,
		LegalName:      req.LegalName,
		Address:        req.Address,
		City:           req.City,
		Country:        req.Country,
		Phone:          req.Phone,
		Email:          req.Email,
		PrimaryColor:   "#2563eb",
		SecondaryColor: "#1e40af",
		Timezone:       timezone,
		Currency:       currency,
		DateFormat:     "YYYY-MM-DD",
		IsActive:       true,
		AdminUserID:    userID,
	}

	// The owner also gets an admin membership row so member listings and
	// role checks see one shape regardless of how the user joined.
	membership := &models.Membership{
		ID:       uuid.New(),
		UserID:   userID,
		TenantID: tenant.ID,
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.tenants.CreateWithOwnerMembership(ctx, tenant, membership); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "org"
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.tenants.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *tenantService) Resolve(ctx context.Context, userID uuid.UUID) (tenancy.Affiliation, error) {
	tenant, err := s.tenants.GetByAdminUserID(ctx, userID)
	if err == nil {
		if !tenant.IsActive {
			log.Printf("user %s owns inactive tenant %s, resolving unaffiliated", userID, tenant.ID)
			return tenancy.None(), nil
		}
		return tenancy.Owned(tenant), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return tenancy.None(), err
	}

	membership, err := s.memberships.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenancy.None(), nil
		}
		return tenancy.None(), err
	}
	if !membership.IsActive {
		return tenancy.None(), nil
	}

	tenant, err = s.tenants.GetByID(ctx, membership.TenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("membership %s points at missing tenant %s", membership.ID, membership.TenantID)
			return tenancy.None(), nil
		}
		return tenancy.None(), err
	}
	if !tenant.IsActive {
		return tenancy.None(), nil
	}
	return tenancy.MemberOf(tenant, membership.Role), nil
}

func (s *tenantService) Get(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	return s.tenants.GetByID(ctx, tenantID)
}

func (s *tenantService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.LegalName != nil {
		tenant.LegalName = req.LegalName
	}
	if req.TaxNumber != nil {
		tenant.TaxNumber = req.TaxNumber
	}
	if req.RegistrationNumber != nil {
		tenant.RegistrationNumber = req.RegistrationNumber
	}
	if req.Address != nil {
		tenant.Address = req.Address
	}
	if req.City != nil {
		tenant.City = req.City
	}
	if req.Country != nil {
		tenant.Country = req.Country
	}
	if req.Phone != nil {
		tenant.Phone = req.Phone
	}
	if req.Email != nil {
		tenant.Email = *req.Email
	}
	if req.Website != nil {
		tenant.Website = req.Website
	}
	if req.PrimaryColor != nil {
		tenant.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		tenant.SecondaryColor = *req.SecondaryColor
	}
	if req.Timezone != nil {
		tenant.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		tenant.Currency = *req.Currency
	}
	if req.DateFormat != nil {
		tenant.DateFormat = *req.DateFormat
	}

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]*models.Membership, error) {
	return s.memberships.ListByTenant(ctx, tenantID)
}

func (s *tenantService) UploadLogo(ctx context.Context, tenantID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.logos == nil {
		return "", errors.New("logo storage not configured")
	}
	key, err := s.logos.Upload(ctx, tenantID, filename, reader, size, contentType)
	if err != nil {
		return "", err
	}
	if err := s.tenants.UpdateLogoKey(ctx, tenantID, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *tenantService) LogoURL(ctx context.Context, tenantID uuid.UUID) (string, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant.LogoKey == nil || *tenant.LogoKey == "" {
		return "", pgx.ErrNoRows
	}
	if s.logos == nil {
		return "", errors.New("logo storage not configured")
	}
	return s.logos.PresignedURL(ctx, *tenant.LogoKey, 15*time.Minute)
}
