package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	Name         string `json:"name" db:"name"`
	CustomerCode string `json:"customer_code" db:"customer_code"`
	CustomerType string `json:"customer_type" db:"customer_type"`
	Status       string `json:"status" db:"status"`

	// Contact information
	ContactPerson *string `json:"contact_person" db:"contact_person"`
	Email         *string `json:"email" db:"email"`
	Phone         *string `json:"phone" db:"phone"`
	Mobile        *string `json:"mobile" db:"mobile"`
	Website       *string `json:"website" db:"website"`

	// Billing address
	BillingAddress    *string `json:"billing_address" db:"billing_address"`
	BillingCity       *string `json:"billing_city" db:"billing_city"`
	BillingState      *string `json:"billing_state" db:"billing_state"`
	BillingCountry    *string `json:"billing_country" db:"billing_country"`
	BillingPostalCode *string `json:"billing_postal_code" db:"billing_postal_code"`

	// Shipping address
	ShippingAddress      *string `json:"shipping_address" db:"shipping_address"`
	ShippingCity         *string `json:"shipping_city" db:"shipping_city"`
	ShippingState        *string `json:"shipping_state" db:"shipping_state"`
	ShippingCountry      *string `json:"shipping_country" db:"shipping_country"`
	ShippingPostalCode   *string `json:"shipping_postal_code" db:"shipping_postal_code"`
	UseBillingAsShipping bool    `json:"use_billing_as_shipping" db:"use_billing_as_shipping"`

	// Business information
	TaxNumber          *string          `json:"tax_number" db:"tax_number"`
	RegistrationNumber *string          `json:"registration_number" db:"registration_number"`
	PaymentTerms       string           `json:"payment_terms" db:"payment_terms"`
	CreditLimit        *decimal.Decimal `json:"credit_limit" db:"credit_limit"`

	// Financial summary
	TotalOrders        int              `json:"total_orders" db:"total_orders"`
	TotalSpent         decimal.Decimal  `json:"total_spent" db:"total_spent"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance" db:"outstanding_balance"`
	LastOrderDate      *time.Time       `json:"last_order_date" db:"last_order_date"`

	Notes *string `json:"notes" db:"notes"`
	Tags  *string `json:"tags" db:"tags"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedBy uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CustomerSearchFilter struct {
	Query  *string
	Status *string
	Type   *string
	Limit  int
	Offset int
}
