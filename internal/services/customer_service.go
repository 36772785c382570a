package services

import (
	"context"
	"fmt"

	"erpcore/internal/caching"
	"erpcore/internal/models"
	"erpcore/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCustomerRequest struct {
	Name          string  `json:"name"`
	CustomerType  string  `json:"customer_type"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Mobile        *string `json:"mobile"`
	Website       *string `json:"website"`

	BillingAddress    *string `json:"billing_address"`
	BillingCity       *string `json:"billing_city"`
	BillingState      *string `json:"billing_state"`
	BillingCountry    *string `json:"billing_country"`
	BillingPostalCode *string `json:"billing_postal_code"`

	ShippingAddress      *string `json:"shipping_address"`
	ShippingCity         *string `json:"shipping_city"`
	ShippingState        *string `json:"shipping_state"`
	ShippingCountry      *string `json:"shipping_country"`
	ShippingPostalCode   *string `json:"shipping_postal_code"`
	UseBillingAsShipping bool    `json:"use_billing_as_shipping"`

	TaxNumber          *string          `json:"tax_number"`
	RegistrationNumber *string          `json:"registration_number"`
	PaymentTerms       string           `json:"payment_terms"`
	CreditLimit        *decimal.Decimal `json:"credit_limit"`

	Notes *string `json:"notes"`
	Tags  *string `json:"tags"`
}

type CustomerService interface {
	Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCustomerRequest) (*models.Customer, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.CustomerSearchFilter) ([]*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type customerService struct {
	customers repositories.CustomerRepository
	sequences repositories.SequenceRepository
	cache     *caching.CacheService
}

func NewCustomerService(customers repositories.CustomerRepository, sequences repositories.SequenceRepository, cache *caching.CacheService) CustomerService {
	return &customerService{customers: customers, sequences: sequences, cache: cache}
}

func (s *customerService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateCustomerRequest) (*models.Customer, error) {
	seq, err := s.sequences.Next(ctx, tenantID, repositories.DocTypeCustomer)
	if err != nil {
		return nil, err
	}

	customerType := req.CustomerType
	if customerType == "" {
		customerType = "business"
	}
	paymentTerms := req.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = "net_30"
	}

	customer := &models.Customer{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         req.Name,
		CustomerCode: fmt.Sprintf("CUST-%06d", seq),
		CustomerType: customerType,
		Status:       "active",

		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Mobile:        req.Mobile,
		Website:       req.Website,

		BillingAddress:    req.BillingAddress,
		BillingCity:       req.BillingCity,
		BillingState:      req.BillingState,
		BillingCountry:    req.BillingCountry,
		BillingPostalCode: req.BillingPostalCode,

		ShippingAddress:      req.ShippingAddress,
		ShippingCity:         req.ShippingCity,
		ShippingState:        req.ShippingState,
		ShippingCountry:      req.ShippingCountry,
		ShippingPostalCode:   req.ShippingPostalCode,
		UseBillingAsShipping: req.UseBillingAsShipping,

		TaxNumber:          req.TaxNumber,
		RegistrationNumber: req.RegistrationNumber,
		PaymentTerms:       paymentTerms,
		CreditLimit:        req.CreditLimit,

		TotalSpent:         decimal.Zero,
		OutstandingBalance: decimal.Zero,

		Notes:     req.Notes,
		Tags:      req.Tags,
		IsActive:  true,
		CreatedBy: userID,
	}

	if customer.UseBillingAsShipping {
		customer.ShippingAddress = customer.BillingAddress
		customer.ShippingCity = customer.BillingCity
		customer.ShippingState = customer.BillingState
		customer.ShippingCountry = customer.BillingCountry
		customer.ShippingPostalCode = customer.BillingPostalCode
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return customer, nil
}

func (s *customerService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	if s.cache != nil {
		cached := &models.Customer{}
		if s.cache.Get(ctx, tenantID, cached, "customer", id.String()) {
			return cached, nil
		}
	}

	customer, err := s.customers.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, tenantID, customer, "customer", id.String())
	}
	return customer, nil
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, filter models.CustomerSearchFilter) ([]*models.Customer, error) {
	return s.customers.List(ctx, tenantID, filter)
}

func (s *customerService) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if customer.UseBillingAsShipping {
		customer.ShippingAddress = customer.BillingAddress
		customer.ShippingCity = customer.BillingCity
		customer.ShippingState = customer.BillingState
		customer.ShippingCountry = customer.BillingCountry
		customer.ShippingPostalCode = customer.BillingPostalCode
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	s.invalidate(ctx, customer.TenantID)
	return s.customers.GetByID(ctx, customer.TenantID, customer.ID)
}

func (s *customerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *customerService) invalidate(ctx context.Context, tenantID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidatePrefix(ctx, tenantID, "customer")
	}
}
