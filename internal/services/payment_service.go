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
	ErrInvalidAmount        = errors.New("payment amount must be positive")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrPaymentNotPending    = errors.New("payment is not pending")
	ErrInvoiceNotPayable    = errors.New("invoice cannot accept payments")
)

type CreatePaymentRequest struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	Reference     *string         `json:"reference"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	Notes         *string         `json:"notes"`
	TransactionID *string         `json:"transaction_id"`
	// Completed records the payment as already settled instead of pending.
	Completed bool `json:"completed"`
}

type UpdatePaymentRequest struct {
	InvoiceID     *uuid.UUID       `json:"invoice_id"`
	Reference     *string          `json:"reference"`
	PaymentDate   *time.Time       `json:"payment_date"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentMethod *string          `json:"payment_method"`
	Notes         *string          `json:"notes"`
	TransactionID *string          `json:"transaction_id"`
}

type PaymentService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreatePaymentRequest) (*models.Payment, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.PaymentSearchFilter) ([]*models.Payment, error)
	// Update edits a pending payment. Re-pointing it at a different invoice
	// recomputes both invoices' payment state.
	Update(ctx context.Context, tenantID, id uuid.UUID, req UpdatePaymentRequest) (*models.Payment, error)
	// Process completes a pending payment and cascades to its invoice.
	Process(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	Fail(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type paymentService struct {
	payments  repositories.PaymentRepository
	invoices  repositories.InvoiceRepository
	sequences repositories.SequenceRepository
}

func NewPaymentService(payments repositories.PaymentRepository, invoices repositories.InvoiceRepository, sequences repositories.SequenceRepository) PaymentService {
	return &paymentService{payments: payments, invoices: invoices, sequences: sequences}
}

func (s *paymentService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreatePaymentRequest) (*models.Payment, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	invoice, err := s.invoices.GetByID(ctx, tenantID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == models.InvoiceCancelled || invoice.Status == models.InvoiceDraft {
		return nil, ErrInvoiceNotPayable
	}

	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypePayment)
	if err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		TenantID:      tenantID,
		PaymentNumber: fmt.Sprintf("PAY-%06d", seq),
		Reference:     req.Reference,
		InvoiceID:     invoice.ID,
		CustomerID:    invoice.CustomerID,
		PaymentDate:   paymentDate,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        models.PaymentPending,
		Notes:         req.Notes,
		TransactionID: req.TransactionID,
		CreatedBy:     &userID,
	}
	if req.Completed {
		now := time.Now()
		payment.Status = models.PaymentCompleted
		payment.ProcessedAt = &now
	}

	if err := s.payments.CreateAndApply(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *paymentService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	return s.payments.GetByID(ctx, tenantID, id)
}

func (s *paymentService) List(ctx context.Context, tenantID uuid.UUID, filter models.PaymentSearchFilter) ([]*models.Payment, error) {
	return s.payments.List(ctx, tenantID, filter)
}

func (s *paymentService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdatePaymentRequest) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrPaymentNotPending
	}

	previousInvoiceID := payment.InvoiceID
	if req.InvoiceID != nil && *req.InvoiceID != payment.InvoiceID {
		invoice, err := s.invoices.GetByID(ctx, tenantID, *req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if invoice.Status == models.InvoiceCancelled || invoice.Status == models.InvoiceDraft {
			return nil, ErrInvoiceNotPayable
		}
		payment.InvoiceID = invoice.ID
		payment.CustomerID = invoice.CustomerID
	}
	if req.Reference != nil {
		payment.Reference = req.Reference
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		payment.Amount = *req.Amount
	}
	if req.PaymentMethod != nil {
		if !models.ValidPaymentMethod(*req.PaymentMethod) {
			return nil, ErrInvalidPaymentMethod
		}
		payment.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}
	if req.TransactionID != nil {
		payment.TransactionID = req.TransactionID
	}

	if err := s.payments.UpdateAndApply(ctx, payment, previousInvoiceID); err != nil {
		return nil, err
	}
	return s.payments.GetByID(ctx, tenantID, id)
}

func (s *paymentService) Process(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	return s.transition(ctx, tenantID, id, models.PaymentCompleted)
}

func (s *paymentService) Fail(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	return s.transition(ctx, tenantID, id, models.PaymentFailed)
}

func (s *paymentService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error) {
	return s.transition(ctx, tenantID, id, models.PaymentCancelled)
}

func (s *paymentService) transition(ctx context.Context, tenantID, id uuid.UUID, status string) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if payment.Status != models.PaymentPending {
		return nil, ErrPaymentNotPending
	}
	return s.payments.SetStatusAndApply(ctx, tenantID, id, status)
}

func (s *paymentService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.payments.DeleteAndApply(ctx, tenantID, id)
}
