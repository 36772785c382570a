package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	payments services.PaymentService
}

func NewPaymentHandler(payments services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create records a payment against an invoice.
// @Summary Record a payment
// @Tags payments
// @Accept json
// @Produce json
// @Param request body services.CreatePaymentRequest true "payment payload"
// @Success 201 {object} models.Payment
// @Router /v1/payments [post]
func (h *PaymentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	payment, err := h.payments.Create(ctx, tenantID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrInvalidPaymentMethod),
			errors.Is(err, services.ErrInvoiceNotPayable):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to record payment")
	}
	return c.JSON(http.StatusCreated, payment)
}

func (h *PaymentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "payment id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	payment, err := h.payments.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "payment")
		}
		return common.SendServerError(c, "failed to fetch payment")
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	filter := models.PaymentSearchFilter{}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if method := c.QueryParam("method"); method != "" {
		filter.Method = &method
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		id, err := common.ValidateUUID(customerID, "customer_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.CustomerID = &id
	}
	if invoiceID := c.QueryParam("invoice_id"); invoiceID != "" {
		id, err := common.ValidateUUID(invoiceID, "invoice_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.InvoiceID = &id
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	payments, err := h.payments.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}

// Update edits a pending payment.
func (h *PaymentHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "payment id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req services.UpdatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	payment, err := h.payments.Update(ctx, tenantID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "payment")
		case errors.Is(err, services.ErrPaymentNotPending),
			errors.Is(err, services.ErrInvalidAmount),
			errors.Is(err, services.ErrInvalidPaymentMethod),
			errors.Is(err, services.ErrInvoiceNotPayable):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to update payment")
	}
	return c.JSON(http.StatusOK, payment)
}

// Process completes a pending payment and cascades to its invoice.
func (h *PaymentHandler) Process(c echo.Context) error {
	return h.transition(c, h.payments.Process)
}

// Fail marks a pending payment failed.
func (h *PaymentHandler) Fail(c echo.Context) error {
	return h.transition(c, h.payments.Fail)
}

// Cancel voids a pending payment.
func (h *PaymentHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.payments.Cancel)
}

func (h *PaymentHandler) transition(c echo.Context, fn func(ctx context.Context, tenantID, id uuid.UUID) (*models.Payment, error)) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "payment id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	payment, err := fn(ctx, tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "payment")
		case errors.Is(err, services.ErrPaymentNotPending):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to update payment")
	}
	return c.JSON(http.StatusOK, payment)
}

func (h *PaymentHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "payment id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.payments.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "payment")
		}
		return common.SendServerError(c, "failed to delete payment")
	}
	return c.NoContent(http.StatusNoContent)
}
