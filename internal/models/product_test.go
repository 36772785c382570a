package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStockStatus(t *testing.T) {
	tests := []struct {
		name    string
		track   bool
		current int
		minimum int
		initial string
		want    string
	}{
		{"above minimum", true, 20, 5, "", StockInStock},
		{"at minimum", true, 5, 5, "", StockLowStock},
		{"below minimum", true, 3, 5, "", StockLowStock},
		{"zero stock", true, 0, 5, "", StockOutOfStock},
		{"negative stock", true, -2, 5, "", StockOutOfStock},
		{"untracked unchanged", false, 0, 5, StockInStock, StockInStock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{
				TrackInventory: tt.track,
				CurrentStock:   tt.current,
				MinimumStock:   tt.minimum,
				StockStatus:    tt.initial,
			}
			p.DeriveStockStatus()
			assert.Equal(t, tt.want, p.StockStatus)
		})
	}
}
