package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceDraft         = "draft"
	InvoiceSent          = "sent"
	InvoicePaid          = "paid"
	InvoicePartiallyPaid = "partially_paid"
	InvoiceOverdue       = "overdue"
	InvoiceCancelled     = "cancelled"
)

type Invoice struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	InvoiceNumber string  `json:"invoice_number" db:"invoice_number"`
	Reference     *string `json:"reference" db:"reference"`

	SalesOrderID *uuid.UUID `json:"sales_order_id" db:"sales_order_id"`
	CustomerID   uuid.UUID  `json:"customer_id" db:"customer_id"`

	InvoiceDate  time.Time `json:"invoice_date" db:"invoice_date"`
	DueDate      time.Time `json:"due_date" db:"due_date"`
	PaymentTerms string    `json:"payment_terms" db:"payment_terms"`
	Status       string    `json:"status" db:"status"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount" db:"paid_amount"`

	Notes           *string `json:"notes" db:"notes"`
	TermsConditions *string `json:"terms_conditions" db:"terms_conditions"`

	CreatedBy *uuid.UUID `json:"created_by" db:"created_by"`
	SentAt    *time.Time `json:"sent_at" db:"sent_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []*InvoiceItem `json:"items,omitempty" db:"-"`
}

// BalanceDue is total_amount - paid_amount.
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.TotalAmount.Sub(inv.PaidAmount)
}

// IsOverdue reports whether the invoice is past due with a positive balance.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.DueDate.Before(now) && inv.BalanceDue().IsPositive()
}

// DerivePaymentStatus returns the status an invoice should carry after its
// completed payments sum to paid: paid when covered, partially_paid when some
// money arrived, overdue when past due with a balance, otherwise unchanged.
func DerivePaymentStatus(current string, total, paid decimal.Decimal, dueDate time.Time, now time.Time) string {
	switch {
	case paid.GreaterThanOrEqual(total):
		return InvoicePaid
	case paid.IsPositive():
		return InvoicePartiallyPaid
	case dueDate.Before(now) && total.Sub(paid).IsPositive():
		return InvoiceOverdue
	default:
		return current
	}
}

type InvoiceItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	InvoiceID uuid.UUID `json:"invoice_id" db:"invoice_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`

	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total" db:"line_total"`

	Notes *string `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (i *InvoiceItem) ComputeLineTotal() {
	i.LineTotal = LineItemTotal(i.UnitPrice, i.Quantity, i.DiscountPercent)
}

type InvoiceSearchFilter struct {
	Status       *string
	CustomerID   *uuid.UUID
	SalesOrderID *uuid.UUID
	Overdue      *bool
	Limit        int
	Offset       int
}
