package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotDraft     = errors.New("order can only be modified while draft")
	ErrOrderNotConfirmed = errors.New("order must be confirmed first")
	ErrOrderFinalized    = errors.New("order is delivered or cancelled")
	ErrOrderInvoiced     = errors.New("order already has an invoice")
	ErrNoOrderItems      = errors.New("order needs at least one item")
)

type OrderItemInput struct {
	ProductID       uuid.UUID       `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Notes           *string         `json:"notes"`
}

type CreateSalesOrderRequest struct {
	CustomerID           uuid.UUID        `json:"customer_id"`
	Reference            *string          `json:"reference"`
	OrderDate            *time.Time       `json:"order_date"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date"`
	Priority             string           `json:"priority"`
	TaxAmount            decimal.Decimal  `json:"tax_amount"`
	DiscountAmount       decimal.Decimal  `json:"discount_amount"`
	Notes                *string          `json:"notes"`
	InternalNotes        *string          `json:"internal_notes"`
	Items                []OrderItemInput `json:"items"`
}

type SalesOrderService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateSalesOrderRequest) (*models.SalesOrder, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.SalesOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.SalesOrderSearchFilter) ([]*models.SalesOrder, error)
	Update(ctx context.Context, order *models.SalesOrder) (*models.SalesOrder, error)
	// ReplaceItems swaps the order's item set wholesale and recomputes its
	// totals. Draft orders only.
	ReplaceItems(ctx context.Context, tenantID, orderID uuid.UUID, inputs []OrderItemInput) (*models.SalesOrder, error)
	// Confirm moves a draft order to confirmed, deducts stock for tracked
	// products, and records the sale on the customer.
	Confirm(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.SalesOrder, error)
	// Cancel voids the order. Stock deducted at confirmation is restored.
	Cancel(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.SalesOrder, error)
	// CreateInvoice builds a draft invoice from a confirmed order, copying
	// its lines and totals. Due date follows the customer's payment terms.
	CreateInvoice(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.Invoice, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Stats(ctx context.Context, tenantID uuid.UUID) (*models.SalesOrderStats, error)
}

type salesOrderService struct {
	orders    repositories.SalesOrderRepository
	invoices  repositories.InvoiceRepository
	products  repositories.ProductRepository
	customers repositories.CustomerRepository
	sequences repositories.SequenceRepository
}

func NewSalesOrderService(
	orders repositories.SalesOrderRepository,
	invoices repositories.InvoiceRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	sequences repositories.SequenceRepository,
) SalesOrderService {
	return &salesOrderService{
		orders:    orders,
		invoices:  invoices,
		products:  products,
		customers: customers,
		sequences: sequences,
	}
}

func (s *salesOrderService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateSalesOrderRequest) (*models.SalesOrder, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoOrderItems
	}
	if _, err := s.customers.GetByID(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypeSalesOrder)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}
	priority := req.Priority
	if priority == "" {
		priority = "normal"
	}

	order := &models.SalesOrder{
		ID:                   uuid.New(),
		TenantID:             tenantID,
		OrderNumber:          fmt.Sprintf("SO-%06d", seq),
		Reference:            req.Reference,
		CustomerID:           req.CustomerID,
		OrderDate:            orderDate,
		ExpectedDeliveryDate: req.ExpectedDeliveryDate,
		Status:               models.OrderDraft,
		Priority:             priority,
		TaxAmount:            req.TaxAmount,
		DiscountAmount:       req.DiscountAmount,
		Notes:                req.Notes,
		InternalNotes:        req.InternalNotes,
		CreatedBy:            &userID,
	}

	items, subtotal, err := s.buildItems(ctx, tenantID, order.ID, req.Items)
	if err != nil {
		return nil, err
	}
	order.Items = items
	order.Subtotal = subtotal
	order.TotalAmount = subtotal.Add(order.TaxAmount).Sub(order.DiscountAmount)

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// buildItems validates each product against the tenant, fills missing unit
// prices from the catalog, and computes line totals.
func (s *salesOrderService) buildItems(ctx context.Context, tenantID, orderID uuid.UUID, inputs []OrderItemInput) ([]*models.SalesOrderItem, decimal.Decimal, error) {
	items := make([]*models.SalesOrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, input := range inputs {
		product, err := s.products.GetByID(ctx, tenantID, input.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		unitPrice := input.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.SellingPrice
		}

		item := &models.SalesOrderItem{
			ID:              uuid.New(),
			TenantID:        tenantID,
			SalesOrderID:    orderID,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: input.DiscountPercent,
			Notes:           input.Notes,
		}
		item.ComputeLineTotal()
		subtotal = subtotal.Add(item.LineTotal)
		items = append(items, item)
	}
	return items, subtotal, nil
}

func (s *salesOrderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.SalesOrder, error) {
	return s.orders.GetByID(ctx, tenantID, id)
}

func (s *salesOrderService) List(ctx context.Context, tenantID uuid.UUID, filter models.SalesOrderSearchFilter) ([]*models.SalesOrder, error) {
	return s.orders.List(ctx, tenantID, filter)
}

func (s *salesOrderService) Update(ctx context.Context, order *models.SalesOrder) (*models.SalesOrder, error) {
	existing, err := s.orders.GetByID(ctx, order.TenantID, order.ID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.OrderDraft {
		return nil, ErrOrderNotDraft
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, order.TenantID, order.ID)
}

func (s *salesOrderService) ReplaceItems(ctx context.Context, tenantID, orderID uuid.UUID, inputs []OrderItemInput) (*models.SalesOrder, error) {
	if len(inputs) == 0 {
		return nil, ErrNoOrderItems
	}
	existing, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.OrderDraft {
		return nil, ErrOrderNotDraft
	}

	items, _, err := s.buildItems(ctx, tenantID, orderID, inputs)
	if err != nil {
		return nil, err
	}
	return s.orders.ReplaceItems(ctx, tenantID, orderID, items)
}

func (s *salesOrderService) Confirm(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.SalesOrder, error) {
	order, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderDraft {
		return nil, ErrOrderNotDraft
	}
	if len(order.Items) == 0 {
		return nil, ErrNoOrderItems
	}

	if err := s.moveStockForOrder(ctx, order, userID, -1); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, tenantID, orderID, models.OrderConfirmed); err != nil {
		return nil, err
	}
	if err := s.customers.RecordOrder(ctx, tenantID, order.CustomerID, order.TotalAmount); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, tenantID, orderID)
}

func (s *salesOrderService) Cancel(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.SalesOrder, error) {
	order, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.OrderDraft:
	case models.OrderConfirmed:
		// Give back what confirmation took.
		if err := s.moveStockForOrder(ctx, order, userID, 1); err != nil {
			return nil, err
		}
	default:
		return nil, ErrOrderFinalized
	}

	if err := s.orders.UpdateStatus(ctx, tenantID, orderID, models.OrderCancelled); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, tenantID, orderID)
}

func (s *salesOrderService) moveStockForOrder(ctx context.Context, order *models.SalesOrder, userID uuid.UUID, direction int) error {
	movementType := models.MovementSale
	if direction > 0 {
		movementType = models.MovementReturn
	}
	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, order.TenantID, item.ProductID)
		if err != nil {
			return err
		}
		if !product.TrackInventory {
			continue
		}
		quantity := int(item.Quantity.IntPart()) * direction
		movement := &models.StockMovement{
			ID:           uuid.New(),
			TenantID:     order.TenantID,
			ProductID:    item.ProductID,
			MovementType: movementType,
			Quantity:     quantity,
			Reference:    &order.OrderNumber,
			CreatedBy:    userID,
		}
		if _, err := s.products.AdjustStock(ctx, order.TenantID, item.ProductID, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *salesOrderService) CreateInvoice(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.Invoice, error) {
	order, err := s.orders.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderConfirmed && order.Status != models.OrderDelivered && order.Status != models.OrderPartiallyDelivered {
		return nil, ErrOrderNotConfirmed
	}

	existing, err := s.invoices.List(ctx, tenantID, models.InvoiceSearchFilter{SalesOrderID: &order.ID})
	if err != nil {
		return nil, err
	}
	for _, inv := range existing {
		if inv.Status != models.InvoiceCancelled {
			return nil, ErrOrderInvoiced
		}
	}

	customer, err := s.customers.GetByID(ctx, tenantID, order.CustomerID)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypeInvoice)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	invoice := &models.Invoice{
		ID:             uuid.New(),
		TenantID:       tenantID,
		InvoiceNumber:  fmt.Sprintf("INV-%06d", seq),
		SalesOrderID:   &order.ID,
		CustomerID:     order.CustomerID,
		InvoiceDate:    now,
		DueDate:        now.AddDate(0, 0, paymentTermsDays(customer.PaymentTerms)),
		PaymentTerms:   customer.PaymentTerms,
		Status:         models.InvoiceDraft,
		Subtotal:       order.Subtotal,
		TaxAmount:      order.TaxAmount,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		PaidAmount:     decimal.Zero,
		Notes:          order.Notes,
		CreatedBy:      &userID,
	}

	for _, item := range order.Items {
		invoice.Items = append(invoice.Items, &models.InvoiceItem{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InvoiceID:       invoice.ID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			LineTotal:       item.LineTotal,
			Notes:           item.Notes,
		})
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *salesOrderService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	order, err := s.orders.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderDraft && order.Status != models.OrderCancelled {
		return ErrOrderNotDraft
	}
	return s.orders.Delete(ctx, tenantID, id)
}

func (s *salesOrderService) Stats(ctx context.Context, tenantID uuid.UUID) (*models.SalesOrderStats, error) {
	return s.orders.Stats(ctx, tenantID)
}

func paymentTermsDays(terms string) int {
	switch terms {
	case "due_on_receipt":
		return 0
	case "net_15":
		return 15
	case "net_45":
		return 45
	case "net_60":
		return 60
	default:
		return 30
	}
}
