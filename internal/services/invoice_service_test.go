package services

import (
	"context"
	"testing"

	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	suite.Suite
	invoices  *MockInvoiceRepository
	payments  *MockPaymentRepository
	products  *MockProductRepository
	customers *MockCustomerRepository
	sequences *MockSequenceRepository
	svc       InvoiceService
	ctx       context.Context

	tenantID uuid.UUID
	userID   uuid.UUID
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.invoices = new(MockInvoiceRepository)
	s.payments = new(MockPaymentRepository)
	s.products = new(MockProductRepository)
	s.customers = new(MockCustomerRepository)
	s.sequences = new(MockSequenceRepository)
	s.svc = NewInvoiceService(s.invoices, s.payments, s.products, s.customers, s.sequences)
	s.ctx = context.Background()

	s.tenantID = uuid.New()
	s.userID = uuid.New()
}

func (s *InvoiceServiceTestSuite) dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	s.Require().NoError(err)
	return d
}

func (s *InvoiceServiceTestSuite) invoice(status string, total, paid string) *models.Invoice {
	return &models.Invoice{
		ID:          uuid.New(),
		TenantID:    s.tenantID,
		CustomerID:  uuid.New(),
		Status:      status,
		TotalAmount: s.dec(total),
		PaidAmount:  s.dec(paid),
	}
}

func (s *InvoiceServiceTestSuite) TestCreateComputesTotals() {
	customerID := uuid.New()
	productID := uuid.New()
	s.customers.On("GetByID", s.ctx, s.tenantID, customerID).Return(&models.Customer{
		ID: customerID, TenantID: s.tenantID, PaymentTerms: "net_30",
	}, nil)
	s.sequences.On("Next", s.ctx, s.tenantID, repositories.DocTypeInvoice).Return(int64(12), nil)
	s.products.On("GetByID", s.ctx, s.tenantID, productID).Return(&models.Product{
		ID: productID, TenantID: s.tenantID, SellingPrice: s.dec("40.00"),
	}, nil)
	s.invoices.On("Create", s.ctx, mock.Anything).Return(nil)

	invoice, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreateInvoiceRequest{
		CustomerID: customerID,
		TaxAmount:  s.dec("4.00"),
		Items: []OrderItemInput{
			{ProductID: productID, Quantity: s.dec("2")},
		},
	})
	s.Require().NoError(err)

	s.Equal("INV-000012", invoice.InvoiceNumber)
	s.Equal(models.InvoiceDraft, invoice.Status)
	s.Equal("net_30", invoice.PaymentTerms)
	s.True(invoice.Subtotal.Equal(s.dec("80.00")), "got %s", invoice.Subtotal)
	s.True(invoice.TotalAmount.Equal(s.dec("84.00")), "got %s", invoice.TotalAmount)
	s.WithinDuration(invoice.InvoiceDate.AddDate(0, 0, 30), invoice.DueDate, 0)
}

func (s *InvoiceServiceTestSuite) TestMarkPaidRecordsBalancePayment() {
	invoice := s.invoice(models.InvoicePartiallyPaid, "1000.00", "400.00")
	settled := s.invoice(models.InvoicePaid, "1000.00", "1000.00")
	settled.ID = invoice.ID
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil).Once()
	s.sequences.On("Next", s.ctx, s.tenantID, repositories.DocTypePayment).Return(int64(9), nil)
	s.payments.On("CreateAndApply", s.ctx, mock.Anything).Return(nil)
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(settled, nil)

	result, err := s.svc.MarkPaid(s.ctx, s.tenantID, s.userID, invoice.ID, "bank_transfer")
	s.Require().NoError(err)
	s.Equal(models.InvoicePaid, result.Status)

	payment := s.payments.Calls[len(s.payments.Calls)-1].Arguments.Get(1).(*models.Payment)
	s.Equal("PAY-000009", payment.PaymentNumber)
	s.Equal(models.PaymentCompleted, payment.Status)
	s.NotNil(payment.ProcessedAt)
	// The payment covers exactly the outstanding balance.
	s.True(payment.Amount.Equal(s.dec("600.00")), "got %s", payment.Amount)
}

func (s *InvoiceServiceTestSuite) TestMarkPaidDefaultsUnknownMethod() {
	invoice := s.invoice(models.InvoiceSent, "100.00", "0.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)
	s.sequences.On("Next", s.ctx, s.tenantID, repositories.DocTypePayment).Return(int64(1), nil)
	s.payments.On("CreateAndApply", s.ctx, mock.Anything).Return(nil)

	_, err := s.svc.MarkPaid(s.ctx, s.tenantID, s.userID, invoice.ID, "carrier-pigeon")
	s.Require().NoError(err)

	payment := s.payments.Calls[len(s.payments.Calls)-1].Arguments.Get(1).(*models.Payment)
	s.Equal("other", payment.PaymentMethod)
}

func (s *InvoiceServiceTestSuite) TestMarkPaidRejectsSettledInvoice() {
	invoice := s.invoice(models.InvoiceSent, "100.00", "100.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.MarkPaid(s.ctx, s.tenantID, s.userID, invoice.ID, "cash")
	s.ErrorIs(err, ErrInvoiceSettled)
	s.payments.AssertNotCalled(s.T(), "CreateAndApply", mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestMarkPaidRejectsCancelledInvoice() {
	invoice := s.invoice(models.InvoiceCancelled, "100.00", "0.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.MarkPaid(s.ctx, s.tenantID, s.userID, invoice.ID, "cash")
	s.ErrorIs(err, ErrInvoiceFinalized)
}

func (s *InvoiceServiceTestSuite) TestCancelRejectsInvoiceWithPayments() {
	invoice := s.invoice(models.InvoicePartiallyPaid, "100.00", "40.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.Cancel(s.ctx, s.tenantID, invoice.ID)
	s.ErrorIs(err, ErrInvoiceFinalized)
	s.invoices.AssertNotCalled(s.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *InvoiceServiceTestSuite) TestUpdateDraftOnly() {
	invoice := s.invoice(models.InvoiceSent, "100.00", "0.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.Update(s.ctx, invoice)
	s.ErrorIs(err, ErrInvoiceNotDraft)
}

func (s *InvoiceServiceTestSuite) TestDeleteDraftOnly() {
	invoice := s.invoice(models.InvoiceSent, "100.00", "0.00")
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	err := s.svc.Delete(s.ctx, s.tenantID, invoice.ID)
	s.ErrorIs(err, ErrInvoiceNotDraft)
	s.invoices.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}
