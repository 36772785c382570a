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

type PaymentServiceTestSuite struct {
	suite.Suite
	payments  *MockPaymentRepository
	invoices  *MockInvoiceRepository
	sequences *MockSequenceRepository
	svc       PaymentService
	ctx       context.Context

	tenantID uuid.UUID
	userID   uuid.UUID
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.payments = new(MockPaymentRepository)
	s.invoices = new(MockInvoiceRepository)
	s.sequences = new(MockSequenceRepository)
	s.svc = NewPaymentService(s.payments, s.invoices, s.sequences)
	s.ctx = context.Background()

	s.tenantID = uuid.New()
	s.userID = uuid.New()
}

func (s *PaymentServiceTestSuite) dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	s.Require().NoError(err)
	return d
}

func (s *PaymentServiceTestSuite) sentInvoice() *models.Invoice {
	return &models.Invoice{
		ID:          uuid.New(),
		TenantID:    s.tenantID,
		CustomerID:  uuid.New(),
		Status:      models.InvoiceSent,
		TotalAmount: s.dec("500.00"),
	}
}

func (s *PaymentServiceTestSuite) TestCreatePendingPayment() {
	invoice := s.sentInvoice()
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)
	s.sequences.On("Next", s.ctx, s.tenantID, repositories.DocTypePayment).Return(int64(3), nil)
	s.payments.On("CreateAndApply", s.ctx, mock.Anything).Return(nil)

	payment, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     invoice.ID,
		Amount:        s.dec("200.00"),
		PaymentMethod: "bank_transfer",
	})
	s.Require().NoError(err)

	s.Equal("PAY-000003", payment.PaymentNumber)
	s.Equal(models.PaymentPending, payment.Status)
	s.Nil(payment.ProcessedAt)
	s.Equal(invoice.CustomerID, payment.CustomerID)
}

func (s *PaymentServiceTestSuite) TestCreateCompletedPayment() {
	invoice := s.sentInvoice()
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)
	s.sequences.On("Next", s.ctx, s.tenantID, repositories.DocTypePayment).Return(int64(4), nil)
	s.payments.On("CreateAndApply", s.ctx, mock.Anything).Return(nil)

	payment, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     invoice.ID,
		Amount:        s.dec("500.00"),
		PaymentMethod: "cash",
		Completed:     true,
	})
	s.Require().NoError(err)

	s.Equal(models.PaymentCompleted, payment.Status)
	s.NotNil(payment.ProcessedAt)
}

func (s *PaymentServiceTestSuite) TestCreateRejectsNonPositiveAmount() {
	_, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     uuid.New(),
		Amount:        decimal.Zero,
		PaymentMethod: "cash",
	})
	s.ErrorIs(err, ErrInvalidAmount)
}

func (s *PaymentServiceTestSuite) TestCreateRejectsUnknownMethod() {
	_, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     uuid.New(),
		Amount:        s.dec("10.00"),
		PaymentMethod: "barter",
	})
	s.ErrorIs(err, ErrInvalidPaymentMethod)
}

func (s *PaymentServiceTestSuite) TestCreateRejectsDraftInvoice() {
	invoice := s.sentInvoice()
	invoice.Status = models.InvoiceDraft
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     invoice.ID,
		Amount:        s.dec("10.00"),
		PaymentMethod: "cash",
	})
	s.ErrorIs(err, ErrInvoiceNotPayable)
}

func (s *PaymentServiceTestSuite) TestCreateRejectsCancelledInvoice() {
	invoice := s.sentInvoice()
	invoice.Status = models.InvoiceCancelled
	s.invoices.On("GetByID", s.ctx, s.tenantID, invoice.ID).Return(invoice, nil)

	_, err := s.svc.Create(s.ctx, s.tenantID, s.userID, CreatePaymentRequest{
		InvoiceID:     invoice.ID,
		Amount:        s.dec("10.00"),
		PaymentMethod: "cash",
	})
	s.ErrorIs(err, ErrInvoiceNotPayable)
}

func (s *PaymentServiceTestSuite) pendingPayment() *models.Payment {
	return &models.Payment{
		ID:            uuid.New(),
		TenantID:      s.tenantID,
		PaymentNumber: "PAY-000001",
		InvoiceID:     uuid.New(),
		CustomerID:    uuid.New(),
		Amount:        s.dec("100.00"),
		PaymentMethod: "cash",
		Status:        models.PaymentPending,
	}
}

func (s *PaymentServiceTestSuite) TestUpdateRepointsInvoice() {
	payment := s.pendingPayment()
	previousInvoiceID := payment.InvoiceID
	target := s.sentInvoice()

	s.payments.On("GetByID", s.ctx, s.tenantID, payment.ID).Return(payment, nil)
	s.invoices.On("GetByID", s.ctx, s.tenantID, target.ID).Return(target, nil)
	s.payments.On("UpdateAndApply", s.ctx, mock.Anything, previousInvoiceID).Return(nil)

	_, err := s.svc.Update(s.ctx, s.tenantID, payment.ID, UpdatePaymentRequest{InvoiceID: &target.ID})
	s.Require().NoError(err)

	updated := s.payments.Calls[len(s.payments.Calls)-2].Arguments.Get(1).(*models.Payment)
	s.Equal(target.ID, updated.InvoiceID)
	s.Equal(target.CustomerID, updated.CustomerID)
}

func (s *PaymentServiceTestSuite) TestUpdateRejectsCompletedPayment() {
	payment := s.pendingPayment()
	payment.Status = models.PaymentCompleted
	s.payments.On("GetByID", s.ctx, s.tenantID, payment.ID).Return(payment, nil)

	amount := s.dec("50.00")
	_, err := s.svc.Update(s.ctx, s.tenantID, payment.ID, UpdatePaymentRequest{Amount: &amount})
	s.ErrorIs(err, ErrPaymentNotPending)
}

func (s *PaymentServiceTestSuite) TestProcessCompletesPendingPayment() {
	payment := s.pendingPayment()
	s.payments.On("GetByID", s.ctx, s.tenantID, payment.ID).Return(payment, nil)
	s.payments.On("SetStatusAndApply", s.ctx, s.tenantID, payment.ID, models.PaymentCompleted).Return(&models.Payment{
		ID: payment.ID, Status: models.PaymentCompleted,
	}, nil)

	processed, err := s.svc.Process(s.ctx, s.tenantID, payment.ID)
	s.Require().NoError(err)
	s.Equal(models.PaymentCompleted, processed.Status)
}

func (s *PaymentServiceTestSuite) TestProcessRejectsNonPending() {
	payment := s.pendingPayment()
	payment.Status = models.PaymentFailed
	s.payments.On("GetByID", s.ctx, s.tenantID, payment.ID).Return(payment, nil)

	_, err := s.svc.Process(s.ctx, s.tenantID, payment.ID)
	s.ErrorIs(err, ErrPaymentNotPending)
	s.payments.AssertNotCalled(s.T(), "SetStatusAndApply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestFailAndCancelOnlyFromPending() {
	payment := s.pendingPayment()
	payment.Status = models.PaymentCancelled
	s.payments.On("GetByID", s.ctx, s.tenantID, payment.ID).Return(payment, nil)

	_, err := s.svc.Fail(s.ctx, s.tenantID, payment.ID)
	s.ErrorIs(err, ErrPaymentNotPending)
	_, err = s.svc.Cancel(s.ctx, s.tenantID, payment.ID)
	s.ErrorIs(err, ErrPaymentNotPending)
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
