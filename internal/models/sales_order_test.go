package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineItemTotal(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity string
		discount string
		want     string
	}{
		{"no discount", "19.99", "3", "0", "59.97"},
		{"ten percent off", "19.99", "3", "10", "53.97"},
		{"fractional quantity", "4.50", "2.5", "0", "11.25"},
		{"rounding half up", "0.01", "150", "33", "1.01"},
		{"full discount", "100.00", "1", "100", "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineItemTotal(dec(t, tt.price), dec(t, tt.quantity), dec(t, tt.discount))
			assert.True(t, got.Equal(dec(t, tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestSalesOrderItemComputeLineTotal(t *testing.T) {
	item := &SalesOrderItem{
		Quantity:        dec(t, "3"),
		UnitPrice:       dec(t, "19.99"),
		DiscountPercent: dec(t, "10"),
	}
	item.ComputeLineTotal()
	assert.True(t, item.LineTotal.Equal(dec(t, "53.97")), "got %s", item.LineTotal)
}

func TestInvoiceItemComputeLineTotal(t *testing.T) {
	item := &InvoiceItem{
		Quantity:  dec(t, "2"),
		UnitPrice: dec(t, "5.00"),
	}
	item.ComputeLineTotal()
	assert.True(t, item.LineTotal.Equal(decimal.NewFromInt(10)))
}
