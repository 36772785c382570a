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
	ErrInvoiceNotDraft  = errors.New("invoice can only be modified while draft")
	ErrInvoiceFinalized = errors.New("invoice is paid or cancelled")
	ErrInvoiceSettled   = errors.New("invoice has no balance due")
	ErrNoInvoiceItems   = errors.New("invoice needs at least one item")
)

type CreateInvoiceRequest struct {
	CustomerID     uuid.UUID        `json:"customer_id"`
	Reference      *string          `json:"reference"`
	InvoiceDate    *time.Time       `json:"invoice_date"`
	DueDate        *time.Time       `json:"due_date"`
	PaymentTerms   string           `json:"payment_terms"`
	TaxAmount      decimal.Decimal  `json:"tax_amount"`
	DiscountAmount decimal.Decimal  `json:"discount_amount"`
	Notes          *string          `json:"notes"`
	Items          []OrderItemInput `json:"items"`
}

type InvoiceService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateInvoiceRequest) (*models.Invoice, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceSearchFilter) ([]*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	ReplaceItems(ctx context.Context, tenantID, invoiceID uuid.UUID, inputs []OrderItemInput) (*models.Invoice, error)
	// Send marks the invoice sent and stamps sent_at on the first send.
	Send(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	// MarkPaid settles the invoice by recording a completed payment for the
	// outstanding balance, so paid_amount still equals the sum of completed
	// payments afterwards.
	MarkPaid(ctx context.Context, tenantID, userID, id uuid.UUID, method string) (*models.Invoice, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	Payments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*models.Payment, error)
}

type invoiceService struct {
	invoices  repositories.InvoiceRepository
	payments  repositories.PaymentRepository
	products  repositories.ProductRepository
	customers repositories.CustomerRepository
	sequences repositories.SequenceRepository
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	payments repositories.PaymentRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	sequences repositories.SequenceRepository,
) InvoiceService {
	return &invoiceService{
		invoices:  invoices,
		payments:  payments,
		products:  products,
		customers: customers,
		sequences: sequences,
	}
}

func (s *invoiceService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateInvoiceRequest) (*models.Invoice, error) {
	if len(req.Items) == 0 {
		return nil, ErrNoInvoiceItems
	}
	customer, err := s.customers.GetByID(ctx, tenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypeInvoice)
	if err != nil {
		return nil, err
	}

	invoiceDate := time.Now()
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}
	terms := req.PaymentTerms
	if terms == "" {
		terms = customer.PaymentTerms
	}
	dueDate := invoiceDate.AddDate(0, 0, paymentTermsDays(terms))
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	invoice := &models.Invoice{
		ID:             uuid.New(),
		TenantID:       tenantID,
		InvoiceNumber:  fmt.Sprintf("INV-%06d", seq),
		Reference:      req.Reference,
		CustomerID:     req.CustomerID,
		InvoiceDate:    invoiceDate,
		DueDate:        dueDate,
		PaymentTerms:   terms,
		Status:         models.InvoiceDraft,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		PaidAmount:     decimal.Zero,
		Notes:          req.Notes,
		CreatedBy:      &userID,
	}

	subtotal := decimal.Zero
	for _, input := range req.Items {
		product, err := s.products.GetByID(ctx, tenantID, input.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice := input.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.SellingPrice
		}
		item := &models.InvoiceItem{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InvoiceID:       invoice.ID,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: input.DiscountPercent,
			Notes:           input.Notes,
		}
		item.ComputeLineTotal()
		subtotal = subtotal.Add(item.LineTotal)
		invoice.Items = append(invoice.Items, item)
	}
	invoice.Subtotal = subtotal
	invoice.TotalAmount = subtotal.Add(invoice.TaxAmount).Sub(invoice.DiscountAmount)

	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *invoiceService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceSearchFilter) ([]*models.Invoice, error) {
	return s.invoices.List(ctx, tenantID, filter)
}

func (s *invoiceService) Update(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	existing, err := s.invoices.GetByID(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.InvoiceDraft {
		return nil, ErrInvoiceNotDraft
	}
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, invoice.TenantID, invoice.ID)
}

func (s *invoiceService) ReplaceItems(ctx context.Context, tenantID, invoiceID uuid.UUID, inputs []OrderItemInput) (*models.Invoice, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInvoiceItems
	}
	existing, err := s.invoices.GetByID(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if existing.Status != models.InvoiceDraft {
		return nil, ErrInvoiceNotDraft
	}

	items := make([]*models.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		product, err := s.products.GetByID(ctx, tenantID, input.ProductID)
		if err != nil {
			return nil, err
		}
		unitPrice := input.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.SellingPrice
		}
		items = append(items, &models.InvoiceItem{
			ID:              uuid.New(),
			TenantID:        tenantID,
			InvoiceID:       invoiceID,
			ProductID:       product.ID,
			Quantity:        input.Quantity,
			UnitPrice:       unitPrice,
			DiscountPercent: input.DiscountPercent,
			Notes:           input.Notes,
		})
	}
	return s.invoices.ReplaceItems(ctx, tenantID, invoiceID, items)
}

func (s *invoiceService) Send(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != models.InvoiceDraft && invoice.Status != models.InvoiceSent {
		return nil, ErrInvoiceFinalized
	}
	if err := s.invoices.MarkSent(ctx, tenantID, id); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) MarkPaid(ctx context.Context, tenantID, userID, id uuid.UUID, method string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoicePaid || invoice.Status == models.InvoiceCancelled {
		return nil, ErrInvoiceFinalized
	}
	balance := invoice.BalanceDue()
	if !balance.IsPositive() {
		return nil, ErrInvoiceSettled
	}
	if !models.ValidPaymentMethod(method) {
		method = "other"
	}

	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypePayment)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	payment := &models.Payment{
		ID:            uuid.New(),
		TenantID:      tenantID,
		PaymentNumber: fmt.Sprintf("PAY-%06d", seq),
		InvoiceID:     invoice.ID,
		CustomerID:    invoice.CustomerID,
		PaymentDate:   now,
		Amount:        balance,
		PaymentMethod: method,
		Status:        models.PaymentCompleted,
		CreatedBy:     &userID,
		ProcessedAt:   &now,
	}
	if err := s.payments.CreateAndApply(ctx, payment); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoicePaid || invoice.Status == models.InvoiceCancelled {
		return nil, ErrInvoiceFinalized
	}
	if invoice.PaidAmount.IsPositive() {
		return nil, ErrInvoiceFinalized
	}
	if err := s.invoices.UpdateStatus(ctx, tenantID, id, models.InvoiceCancelled); err != nil {
		return nil, err
	}
	return s.invoices.GetByID(ctx, tenantID, id)
}

func (s *invoiceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	invoice, err := s.invoices.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if invoice.Status != models.InvoiceDraft {
		return ErrInvoiceNotDraft
	}
	return s.invoices.Delete(ctx, tenantID, id)
}

func (s *invoiceService) Payments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]*models.Payment, error) {
	if _, err := s.invoices.GetByID(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.payments.ListByInvoice(ctx, tenantID, invoiceID)
}
