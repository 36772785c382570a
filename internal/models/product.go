package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Color       string    `json:"color" db:"color"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedBy   uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Stock statuses derived from current vs minimum stock.
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

type Product struct {
	ID       uuid.UUID `json:"id" db:"id"`
	TenantID uuid.UUID `json:"tenant_id" db:"tenant_id"`

	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	SKU         string     `json:"sku" db:"sku"`
	Barcode     *string    `json:"barcode" db:"barcode"`
	ProductType string     `json:"product_type" db:"product_type"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`

	CostPrice        decimal.Decimal  `json:"cost_price" db:"cost_price"`
	SellingPrice     decimal.Decimal  `json:"selling_price" db:"selling_price"`
	MarginPercentage *decimal.Decimal `json:"margin_percentage" db:"margin_percentage"`

	TrackInventory bool   `json:"track_inventory" db:"track_inventory"`
	CurrentStock   int    `json:"current_stock" db:"current_stock"`
	MinimumStock   int    `json:"minimum_stock" db:"minimum_stock"`
	MaximumStock   *int   `json:"maximum_stock" db:"maximum_stock"`
	StockStatus    string `json:"stock_status" db:"stock_status"`

	IsActive   bool      `json:"is_active" db:"is_active"`
	IsFeatured bool      `json:"is_featured" db:"is_featured"`
	CreatedBy  uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DeriveStockStatus recomputes the stock status flag for tracked products.
func (p *Product) DeriveStockStatus() {
	if !p.TrackInventory {
		return
	}
	switch {
	case p.CurrentStock <= 0:
		p.StockStatus = StockOutOfStock
	case p.CurrentStock <= p.MinimumStock:
		p.StockStatus = StockLowStock
	default:
		p.StockStatus = StockInStock
	}
}

// Movement types. Quantity is positive for stock in, negative for stock out.
const (
	MovementPurchase   = "purchase"
	MovementSale       = "sale"
	MovementAdjustment = "adjustment"
	MovementReturn     = "return"
	MovementDamaged    = "damaged"
	MovementTransfer   = "transfer"
)

type StockMovement struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ProductID     uuid.UUID `json:"product_id" db:"product_id"`
	MovementType  string    `json:"movement_type" db:"movement_type"`
	Quantity      int       `json:"quantity" db:"quantity"`
	PreviousStock int       `json:"previous_stock" db:"previous_stock"`
	NewStock      int       `json:"new_stock" db:"new_stock"`
	Reference     *string   `json:"reference" db:"reference"`
	Notes         *string   `json:"notes" db:"notes"`
	CreatedBy     uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type ProductSearchFilter struct {
	Query       *string
	CategoryID  *uuid.UUID
	ProductType *string
	StockStatus *string
	IsActive    *bool
	Limit       int
	Offset      int
}
