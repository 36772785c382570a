package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	assert.NoError(t, err)
	return d
}

func TestDerivePaymentStatus(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		current string
		total   string
		paid    string
		dueDate time.Time
		want    string
	}{
		{"fully paid", InvoiceSent, "1000.00", "1000.00", future, InvoicePaid},
		{"overpaid still paid", InvoiceSent, "1000.00", "1200.00", future, InvoicePaid},
		{"partial payment", InvoiceSent, "1000.00", "400.00", future, InvoicePartiallyPaid},
		{"partial beats overdue", InvoiceSent, "1000.00", "400.00", past, InvoicePartiallyPaid},
		{"unpaid past due", InvoiceSent, "1000.00", "0.00", past, InvoiceOverdue},
		{"unpaid before due", InvoiceSent, "1000.00", "0.00", future, InvoiceSent},
		{"draft stays draft", InvoiceDraft, "1000.00", "0.00", future, InvoiceDraft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivePaymentStatus(tt.current, dec(t, tt.total), dec(t, tt.paid), tt.dueDate, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivePaymentStatusAccumulates(t *testing.T) {
	now := time.Now()
	due := now.Add(30 * 24 * time.Hour)
	total := dec(t, "1000.00")

	// A 400 payment leaves the invoice partially paid; 600 more settles it.
	status := DerivePaymentStatus(InvoiceSent, total, dec(t, "400.00"), due, now)
	assert.Equal(t, InvoicePartiallyPaid, status)

	status = DerivePaymentStatus(status, total, dec(t, "1000.00"), due, now)
	assert.Equal(t, InvoicePaid, status)
}

func TestInvoiceBalanceDue(t *testing.T) {
	inv := &Invoice{TotalAmount: dec(t, "250.50"), PaidAmount: dec(t, "100.25")}
	assert.True(t, inv.BalanceDue().Equal(dec(t, "150.25")))
}

func TestInvoiceIsOverdue(t *testing.T) {
	now := time.Now()

	overdue := &Invoice{DueDate: now.Add(-time.Hour), TotalAmount: dec(t, "100.00"), PaidAmount: decimal.Zero}
	assert.True(t, overdue.IsOverdue(now))

	settled := &Invoice{DueDate: now.Add(-time.Hour), TotalAmount: dec(t, "100.00"), PaidAmount: dec(t, "100.00")}
	assert.False(t, settled.IsOverdue(now))

	notYetDue := &Invoice{DueDate: now.Add(time.Hour), TotalAmount: dec(t, "100.00"), PaidAmount: decimal.Zero}
	assert.False(t, notYetDue.IsOverdue(now))
}
