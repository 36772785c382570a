package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses. Only completed payments count toward an invoice's
// paid_amount.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentCancelled = "cancelled"
)

type Payment struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	PaymentNumber string  `json:"payment_number" db:"payment_number"`
	Reference     *string `json:"reference" db:"reference"`

	InvoiceID  uuid.UUID `json:"invoice_id" db:"invoice_id"`
	CustomerID uuid.UUID `json:"customer_id" db:"customer_id"`

	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	Status        string          `json:"status" db:"status"`

	Notes         *string `json:"notes" db:"notes"`
	TransactionID *string `json:"transaction_id" db:"transaction_id"`

	CreatedBy   *uuid.UUID `json:"created_by" db:"created_by"`
	ProcessedAt *time.Time `json:"processed_at" db:"processed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type PaymentSearchFilter struct {
	Status     *string
	Method     *string
	CustomerID *uuid.UUID
	InvoiceID  *uuid.UUID
	Limit      int
	Offset     int
}

func ValidPaymentMethod(method string) bool {
	switch method {
	case "cash", "bank_transfer", "credit_card", "check", "other":
		return true
	}
	return false
}
