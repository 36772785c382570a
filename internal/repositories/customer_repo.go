package repositories

import (
	"context"
	"fmt"

	"erpcore/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.CustomerSearchFilter) ([]*models.Customer, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	RecordOrder(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal) error
}

type customerRepo struct {
	db DB
}

func NewCustomerRepo(db DB) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, name, customer_code, customer_type, status,
		contact_person, email, phone, mobile, website,
		billing_address, billing_city, billing_state, billing_country, billing_postal_code,
		shipping_address, shipping_city, shipping_state, shipping_country, shipping_postal_code, use_billing_as_shipping,
		tax_number, registration_number, payment_terms, credit_limit,
		total_orders, total_spent, outstanding_balance, last_order_date,
		notes, tags, is_active, created_by, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(
		&c.ID, &c.TenantID, &c.Name, &c.CustomerCode, &c.CustomerType, &c.Status,
		&c.ContactPerson, &c.Email, &c.Phone, &c.Mobile, &c.Website,
		&c.BillingAddress, &c.BillingCity, &c.BillingState, &c.BillingCountry, &c.BillingPostalCode,
		&c.ShippingAddress, &c.ShippingCity, &c.ShippingState, &c.ShippingCountry, &c.ShippingPostalCode, &c.UseBillingAsShipping,
		&c.TaxNumber, &c.RegistrationNumber, &c.PaymentTerms, &c.CreditLimit,
		&c.TotalOrders, &c.TotalSpent, &c.OutstandingBalance, &c.LastOrderDate,
		&c.Notes, &c.Tags, &c.IsActive, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, name, customer_code, customer_type, status,
			contact_person, email, phone, mobile, website,
			billing_address, billing_city, billing_state, billing_country, billing_postal_code,
			shipping_address, shipping_city, shipping_state, shipping_country, shipping_postal_code, use_billing_as_shipping,
			tax_number, registration_number, payment_terms, credit_limit,
			total_orders, total_spent, outstanding_balance, last_order_date,
			notes, tags, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
			0, 0, 0, NULL, $27, $28, $29, $30, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.TenantID, c.Name, c.CustomerCode, c.CustomerType, c.Status,
		c.ContactPerson, c.Email, c.Phone, c.Mobile, c.Website,
		c.BillingAddress, c.BillingCity, c.BillingState, c.BillingCountry, c.BillingPostalCode,
		c.ShippingAddress, c.ShippingCity, c.ShippingState, c.ShippingCountry, c.ShippingPostalCode, c.UseBillingAsShipping,
		c.TaxNumber, c.RegistrationNumber, c.PaymentTerms, c.CreditLimit,
		c.Notes, c.Tags, c.IsActive, c.CreatedBy,
	)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.CustomerSearchFilter) ([]*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Query != nil && *filter.Query != "" {
		args = append(args, "%"+*filter.Query+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR customer_code ILIKE $%d OR email ILIKE $%d)", n, n, n)
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND customer_type = $%d", len(args))
	}

	query += " ORDER BY name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *customerRepo) Count(ctx context.Context, tenantID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM customers WHERE tenant_id = $1`
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $1, customer_type = $2, status = $3,
			contact_person = $4, email = $5, phone = $6, mobile = $7, website = $8,
			billing_address = $9, billing_city = $10, billing_state = $11, billing_country = $12, billing_postal_code = $13,
			shipping_address = $14, shipping_city = $15, shipping_state = $16, shipping_country = $17, shipping_postal_code = $18,
			use_billing_as_shipping = $19,
			tax_number = $20, registration_number = $21, payment_terms = $22, credit_limit = $23,
			notes = $24, tags = $25, is_active = $26, updated_at = NOW()
		WHERE tenant_id = $27 AND id = $28
	`
	_, err := r.db.Exec(ctx, query,
		c.Name, c.CustomerType, c.Status,
		c.ContactPerson, c.Email, c.Phone, c.Mobile, c.Website,
		c.BillingAddress, c.BillingCity, c.BillingState, c.BillingCountry, c.BillingPostalCode,
		c.ShippingAddress, c.ShippingCity, c.ShippingState, c.ShippingCountry, c.ShippingPostalCode,
		c.UseBillingAsShipping,
		c.TaxNumber, c.RegistrationNumber, c.PaymentTerms, c.CreditLimit,
		c.Notes, c.Tags, c.IsActive, c.TenantID, c.ID,
	)
	return err
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordOrder bumps the customer's order counters after a confirmed order.
func (r *customerRepo) RecordOrder(ctx context.Context, tenantID, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE customers
		SET total_orders = total_orders + 1,
			total_spent = total_spent + $1,
			last_order_date = NOW(),
			updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, amount, tenantID, id)
	return err
}
