package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sales order statuses.
const (
	OrderDraft              = "draft"
	OrderConfirmed          = "confirmed"
	OrderPartiallyDelivered = "partially_delivered"
	OrderDelivered          = "delivered"
	OrderCancelled          = "cancelled"
)

type SalesOrder struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	OrderNumber string  `json:"order_number" db:"order_number"`
	Reference   *string `json:"reference" db:"reference"`

	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`

	OrderDate            time.Time  `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate *time.Time `json:"expected_delivery_date" db:"expected_delivery_date"`
	Status               string     `json:"status" db:"status"`
	Priority             string     `json:"priority" db:"priority"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxAmount      decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`

	Notes         *string `json:"notes" db:"notes"`
	InternalNotes *string `json:"internal_notes" db:"internal_notes"`

	CreatedBy  *uuid.UUID `json:"created_by" db:"created_by"`
	AssignedTo *uuid.UUID `json:"assigned_to" db:"assigned_to"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []*SalesOrderItem `json:"items,omitempty" db:"-"`
}

type SalesOrderItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	SalesOrderID uuid.UUID `json:"sales_order_id" db:"sales_order_id"`
	ProductID    uuid.UUID `json:"product_id" db:"product_id"`

	Quantity        decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent" db:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total" db:"line_total"`

	Notes *string `json:"notes" db:"notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ComputeLineTotal sets LineTotal to
// unit_price*quantity - unit_price*quantity*discount_percent/100, rounded to
// two decimal places. Persisted at item-save time, never derived on read.
func (i *SalesOrderItem) ComputeLineTotal() {
	gross := i.UnitPrice.Mul(i.Quantity)
	discount := gross.Mul(i.DiscountPercent).Div(decimal.NewFromInt(100))
	i.LineTotal = gross.Sub(discount).Round(2)
}

// LineItemTotal computes the line total for any (price, qty, discount%) triple.
func LineItemTotal(unitPrice, quantity, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(quantity)
	discount := gross.Mul(discountPercent).Div(decimal.NewFromInt(100))
	return gross.Sub(discount).Round(2)
}

type SalesOrderStats struct {
	TotalOrders     int             `json:"total_orders"`
	DraftOrders     int             `json:"draft_orders"`
	ConfirmedOrders int             `json:"confirmed_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

type SalesOrderSearchFilter struct {
	Status     *string
	Priority   *string
	CustomerID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
