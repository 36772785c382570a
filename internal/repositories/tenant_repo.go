package repositories

import (
	"context"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantRepository interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	// CreateWithOwnerMembership inserts the tenant and the owner's admin
	// membership row together, so a crash between the two cannot leave an
	// ownerless tenant.
	CreateWithOwnerMembership(ctx context.Context, tenant *models.Tenant, membership *models.Membership) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByAdminUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey string) error
}

type tenantRepo struct {
	db DB
}

func NewTenantRepo(db DB) TenantRepository {
	return &tenantRepo{db: db}
}

const tenantColumns = `id, name, slug, legal_name, tax_number, registration_number,
		address, city, country, phone, email, website,
		logo_key, primary_color, secondary_color,
		timezone, currency, date_format,
		is_active, admin_user_id, created_at, updated_at`

func scanTenant(row pgx.Row) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := row.Scan(
		&t.ID, &t.Name, &t.Slug, &t.LegalName, &t.TaxNumber, &t.RegistrationNumber,
		&t.Address, &t.City, &t.Country, &t.Phone, &t.Email, &t.Website,
		&t.LogoKey, &t.PrimaryColor, &t.SecondaryColor,
		&t.Timezone, &t.Currency, &t.DateFormat,
		&t.IsActive, &t.AdminUserID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	query := `
		INSERT INTO tenants (id, name, slug, legal_name, tax_number, registration_number,
			address, city, country, phone, email, website,
			logo_key, primary_color, secondary_color,
			timezone, currency, date_format,
			is_active, admin_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		tenant.ID, tenant.Name, tenant.Slug, tenant.LegalName, tenant.TaxNumber, tenant.RegistrationNumber,
		tenant.Address, tenant.City, tenant.Country, tenant.Phone, tenant.Email, tenant.Website,
		tenant.LogoKey, tenant.PrimaryColor, tenant.SecondaryColor,
		tenant.Timezone, tenant.Currency, tenant.DateFormat,
		tenant.IsActive, tenant.AdminUserID,
	)
	return err
}

func (r *tenantRepo) CreateWithOwnerMembership(ctx context.Context, tenant *models.Tenant, membership *models.Membership) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertTenant := `
		INSERT INTO tenants (id, name, slug, legal_name, tax_number, registration_number,
			address, city, country, phone, email, website,
			logo_key, primary_color, secondary_color,
			timezone, currency, date_format,
			is_active, admin_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	if _, err := tx.Exec(ctx, insertTenant,
		tenant.ID, tenant.Name, tenant.Slug, tenant.LegalName, tenant.TaxNumber, tenant.RegistrationNumber,
		tenant.Address, tenant.City, tenant.Country, tenant.Phone, tenant.Email, tenant.Website,
		tenant.LogoKey, tenant.PrimaryColor, tenant.SecondaryColor,
		tenant.Timezone, tenant.Currency, tenant.DateFormat,
		tenant.IsActive, tenant.AdminUserID,
	); err != nil {
		return err
	}

	insertMembership := `
		INSERT INTO memberships (id, user_id, tenant_id, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	if _, err := tx.Exec(ctx, insertMembership,
		membership.ID, membership.UserID, membership.TenantID, membership.Role, membership.IsActive,
	); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *tenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(r.db.QueryRow(ctx, query, id))
}

func (r *tenantRepo) GetByAdminUserID(ctx context.Context, userID uuid.UUID) (*models.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE admin_user_id = $1`
	return scanTenant(r.db.QueryRow(ctx, query, userID))
}

func (r *tenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM tenants WHERE slug = $1)`
	if err := r.db.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *tenantRepo) Update(ctx context.Context, tenant *models.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $1, legal_name = $2, tax_number = $3, registration_number = $4,
			address = $5, city = $6, country = $7, phone = $8, email = $9, website = $10,
			primary_color = $11, secondary_color = $12,
			timezone = $13, currency = $14, date_format = $15,
			is_active = $16, updated_at = NOW()
		WHERE id = $17
	`
	_, err := r.db.Exec(ctx, query,
		tenant.Name, tenant.LegalName, tenant.TaxNumber, tenant.RegistrationNumber,
		tenant.Address, tenant.City, tenant.Country, tenant.Phone, tenant.Email, tenant.Website,
		tenant.PrimaryColor, tenant.SecondaryColor,
		tenant.Timezone, tenant.Currency, tenant.DateFormat,
		tenant.IsActive, tenant.ID,
	)
	return err
}

func (r *tenantRepo) UpdateLogoKey(ctx context.Context, id uuid.UUID, logoKey string) error {
	query := `UPDATE tenants SET logo_key = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, logoKey, id)
	return err
}
