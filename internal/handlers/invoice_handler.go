package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type InvoiceHandler struct {
	invoices services.InvoiceService
}

func NewInvoiceHandler(invoices services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// invoiceResponse augments the stored invoice with its derived payment state.
type invoiceResponse struct {
	*models.Invoice
	BalanceDue decimal.Decimal `json:"balance_due"`
	IsOverdue  bool            `json:"is_overdue"`
}

func invoiceView(invoice *models.Invoice) invoiceResponse {
	return invoiceResponse{
		Invoice:    invoice,
		BalanceDue: invoice.BalanceDue(),
		IsOverdue:  invoice.IsOverdue(time.Now()),
	}
}

func invoiceViews(invoices []*models.Invoice) []invoiceResponse {
	views := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		views = append(views, invoiceView(invoice))
	}
	return views
}

// Create opens a draft invoice with an allocated invoice number.
// @Summary Create an invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body services.CreateInvoiceRequest true "invoice payload"
// @Success 201 {object} models.Invoice
// @Router /v1/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	invoice, err := h.invoices.Create(ctx, tenantID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "customer or product")
		case errors.Is(err, services.ErrNoInvoiceItems):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to create invoice")
	}
	return c.JSON(http.StatusCreated, invoiceView(invoice))
}

func (h *InvoiceHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoices.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "failed to fetch invoice")
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

func (h *InvoiceHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	filter := models.InvoiceSearchFilter{}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		id, err := common.ValidateUUID(customerID, "customer_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.CustomerID = &id
	}
	if orderID := c.QueryParam("sales_order_id"); orderID != "" {
		id, err := common.ValidateUUID(orderID, "sales_order_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.SalesOrderID = &id
	}
	if overdue := c.QueryParam("overdue"); overdue == "true" {
		b := true
		filter.Overdue = &b
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	invoices, err := h.invoices.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "failed to list invoices")
	}
	return c.JSON(http.StatusOK, invoiceViews(invoices))
}

func (h *InvoiceHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoices.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "failed to fetch invoice")
	}

	if err := c.Bind(invoice); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	invoice.ID = id
	invoice.TenantID = tenantID

	updated, err := h.invoices.Update(ctx, invoice)
	if err != nil {
		if errors.Is(err, services.ErrInvoiceNotDraft) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to update invoice")
	}
	return c.JSON(http.StatusOK, invoiceView(updated))
}

// ReplaceItems swaps the invoice's item set and recomputes totals.
func (h *InvoiceHandler) ReplaceItems(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req replaceItemsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	invoice, err := h.invoices.ReplaceItems(ctx, tenantID, id, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvoiceNotDraft), errors.Is(err, services.ErrNoInvoiceItems):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to replace invoice items")
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

// Send marks the invoice sent.
func (h *InvoiceHandler) Send(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoices.Send(ctx, tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvoiceFinalized):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to send invoice")
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

type markPaidRequest struct {
	PaymentMethod string `json:"payment_method"`
}

// MarkPaid settles the invoice's outstanding balance with a completed payment.
// @Summary Mark an invoice paid
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "invoice id"
// @Param request body markPaidRequest false "payment method"
// @Success 200 {object} models.Invoice
// @Router /v1/invoices/{id}/mark-paid [post]
func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req markPaidRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	invoice, err := h.invoices.MarkPaid(ctx, tenantID, userID, id, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvoiceFinalized), errors.Is(err, services.ErrInvoiceSettled):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to mark invoice paid")
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

// Cancel voids an unpaid invoice.
func (h *InvoiceHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoices.Cancel(ctx, tenantID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvoiceFinalized):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to cancel invoice")
	}
	return c.JSON(http.StatusOK, invoiceView(invoice))
}

func (h *InvoiceHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoices.Delete(ctx, tenantID, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "invoice")
		case errors.Is(err, services.ErrInvoiceNotDraft):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to delete invoice")
	}
	return c.NoContent(http.StatusNoContent)
}

// Payments lists the payments recorded against an invoice.
func (h *InvoiceHandler) Payments(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "invoice id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	payments, err := h.invoices.Payments(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "invoice")
		}
		return common.SendServerError(c, "failed to list payments")
	}
	return c.JSON(http.StatusOK, payments)
}
