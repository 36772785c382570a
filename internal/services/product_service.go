package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"erpcore/internal/caching"
	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrSKUTaken          = errors.New("sku already in use")
	ErrStockNotTracked   = errors.New("product does not track inventory")
	ErrZeroAdjustment    = errors.New("adjustment quantity cannot be zero")
	ErrInsufficientStock = errors.New("adjustment would drive stock negative")
	ErrInvalidMovement   = errors.New("invalid movement type")
)

type CreateProductRequest struct {
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	SKU         string     `json:"sku"`
	Barcode     *string    `json:"barcode"`
	ProductType string     `json:"product_type"`
	CategoryID  *uuid.UUID `json:"category_id"`

	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`

	TrackInventory bool `json:"track_inventory"`
	InitialStock   int  `json:"initial_stock"`
	MinimumStock   int  `json:"minimum_stock"`
	MaximumStock   *int `json:"maximum_stock"`

	IsFeatured bool `json:"is_featured"`
}

type AdjustStockRequest struct {
	MovementType string  `json:"movement_type"`
	Quantity     int     `json:"quantity"`
	Reference    *string `json:"reference"`
	Notes        *string `json:"notes"`
}

type ProductService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateProductRequest) (*models.Product, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, error)
	ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// AdjustStock applies a manual stock adjustment. Purchases and returns
	// add stock, sales and damage remove it; adjustments and transfers carry
	// the sign of the quantity as given.
	AdjustStock(ctx context.Context, tenantID, productID, userID uuid.UUID, req AdjustStockRequest) (*models.Product, error)
	Movements(ctx context.Context, tenantID, productID uuid.UUID, limit int) ([]*models.StockMovement, error)
}

type productService struct {
	products  repositories.ProductRepository
	movements repositories.StockMovementRepository
	cache     *caching.CacheService
}

func NewProductService(products repositories.ProductRepository, movements repositories.StockMovementRepository, cache *caching.CacheService) ProductService {
	return &productService{products: products, movements: movements, cache: cache}
}

func (s *productService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateProductRequest) (*models.Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" {
		sku = generateSKU(req.Name)
	}
	if _, err := s.products.GetBySKU(ctx, tenantID, sku); err == nil {
		return nil, ErrSKUTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	productType := req.ProductType
	if productType == "" {
		productType = "physical"
	}

	product := &models.Product{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		SKU:         sku,
		Barcode:     req.Barcode,
		ProductType: productType,
		CategoryID:  req.CategoryID,

		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,

		TrackInventory: req.TrackInventory,
		CurrentStock:   req.InitialStock,
		MinimumStock:   req.MinimumStock,
		MaximumStock:   req.MaximumStock,

		IsActive:   true,
		IsFeatured: req.IsFeatured,
		CreatedBy:  userID,
	}

	if !req.CostPrice.IsZero() {
		margin := req.SellingPrice.Sub(req.CostPrice).Div(req.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
		product.MarginPercentage = &margin
	}

	product.StockStatus = models.StockInStock
	product.DeriveStockStatus()

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return product, nil
}

func generateSKU(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 32
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return -1
	}, name)
	if len(cleaned) > 6 {
		cleaned = cleaned[:6]
	}
	if cleaned == "" {
		cleaned = "PROD"
	}
	return fmt.Sprintf("%s-%s", cleaned, strings.ToUpper(uuid.NewString()[:8]))
}

func (s *productService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		cached := &models.Product{}
		if s.cache.Get(ctx, tenantID, cached, "product", id.String()) {
			return cached, nil
		}
	}

	product, err := s.products.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, tenantID, product, "product", id.String())
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, error) {
	return s.products.List(ctx, tenantID, filter)
}

func (s *productService) ListLowStock(ctx context.Context, tenantID uuid.UUID) ([]*models.Product, error) {
	return s.products.ListLowStock(ctx, tenantID)
}

func (s *productService) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if !product.CostPrice.IsZero() {
		margin := product.SellingPrice.Sub(product.CostPrice).Div(product.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
		product.MarginPercentage = &margin
	}
	product.DeriveStockStatus()
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product.TenantID)
	return s.products.GetByID(ctx, product.TenantID, product.ID)
}

func (s *productService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.products.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *productService) AdjustStock(ctx context.Context, tenantID, productID, userID uuid.UUID, req AdjustStockRequest) (*models.Product, error) {
	if req.Quantity == 0 {
		return nil, ErrZeroAdjustment
	}

	quantity := req.Quantity
	switch req.MovementType {
	case models.MovementPurchase, models.MovementReturn:
		if quantity < 0 {
			quantity = -quantity
		}
	case models.MovementSale, models.MovementDamaged:
		if quantity > 0 {
			quantity = -quantity
		}
	case models.MovementAdjustment, models.MovementTransfer:
	default:
		return nil, ErrInvalidMovement
	}

	product, err := s.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}
	if !product.TrackInventory {
		return nil, ErrStockNotTracked
	}
	if product.CurrentStock+quantity < 0 {
		return nil, ErrInsufficientStock
	}

	movement := &models.StockMovement{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ProductID:    productID,
		MovementType: req.MovementType,
		Quantity:     quantity,
		Reference:    req.Reference,
		Notes:        req.Notes,
		CreatedBy:    userID,
	}

	updated, err := s.products.AdjustStock(ctx, tenantID, productID, movement)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return updated, nil
}

func (s *productService) Movements(ctx context.Context, tenantID, productID uuid.UUID, limit int) ([]*models.StockMovement, error) {
	return s.movements.ListByProduct(ctx, tenantID, productID, limit)
}

func (s *productService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, tenantID, "product")
	}
}
