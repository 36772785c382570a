package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type SalesOrderHandler struct {
	orders services.SalesOrderService
}

func NewSalesOrderHandler(orders services.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orders: orders}
}

// Create opens a draft sales order with an allocated order number.
// @Summary Create a sales order
// @Tags sales-orders
// @Accept json
// @Produce json
// @Param request body services.CreateSalesOrderRequest true "order payload"
// @Success 201 {object} models.SalesOrder
// @Router /v1/sales-orders [post]
func (h *SalesOrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreateSalesOrderRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	order, err := h.orders.Create(ctx, tenantID, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "customer or product")
		case errors.Is(err, services.ErrNoOrderItems):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to create sales order")
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *SalesOrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orders.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "sales order")
		}
		return common.SendServerError(c, "failed to fetch sales order")
	}
	return c.JSON(http.StatusOK, order)
}

func (h *SalesOrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	filter := models.SalesOrderSearchFilter{}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if priority := c.QueryParam("priority"); priority != "" {
		filter.Priority = &priority
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		id, err := common.ValidateUUID(customerID, "customer_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.CustomerID = &id
	}
	if from := c.QueryParam("date_from"); from != "" {
		if err := common.ValidateDateFormat(from, "date_from"); err != nil {
			return common.SendClientError(c, err.Error())
		}
		t, _ := time.Parse("2006-01-02", from)
		filter.DateFrom = &t
	}
	if to := c.QueryParam("date_to"); to != "" {
		if err := common.ValidateDateFormat(to, "date_to"); err != nil {
			return common.SendClientError(c, err.Error())
		}
		t, _ := time.Parse("2006-01-02", to)
		filter.DateTo = &t
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	orders, err := h.orders.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "failed to list sales orders")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *SalesOrderHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := h.orders.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "sales order")
		}
		return common.SendServerError(c, "failed to fetch sales order")
	}

	if err := c.Bind(order); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	order.ID = id
	order.TenantID = tenantID

	updated, err := h.orders.Update(ctx, order)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotDraft) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to update sales order")
	}
	return c.JSON(http.StatusOK, updated)
}

type replaceItemsRequest struct {
	Items []services.OrderItemInput `json:"items"`
}

// ReplaceItems swaps the order's item set and recomputes totals.
func (h *SalesOrderHandler) ReplaceItems(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req replaceItemsRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	order, err := h.orders.ReplaceItems(ctx, tenantID, id, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "sales order")
		case errors.Is(err, services.ErrOrderNotDraft), errors.Is(err, services.ErrNoOrderItems):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to replace order items")
	}
	return c.JSON(http.StatusOK, order)
}

// Confirm moves a draft order to confirmed and deducts stock.
func (h *SalesOrderHandler) Confirm(c echo.Context) error {
	return h.action(c, h.orders.Confirm)
}

// Cancel voids an order, restoring stock taken at confirmation.
func (h *SalesOrderHandler) Cancel(c echo.Context) error {
	return h.action(c, h.orders.Cancel)
}

func (h *SalesOrderHandler) action(c echo.Context, fn func(ctx context.Context, tenantID, userID, orderID uuid.UUID) (*models.SalesOrder, error)) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	order, err := fn(ctx, tenantID, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "sales order")
		case errors.Is(err, services.ErrOrderNotDraft),
			errors.Is(err, services.ErrOrderFinalized),
			errors.Is(err, services.ErrNoOrderItems),
			errors.Is(err, services.ErrInsufficientStock):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to update sales order")
	}
	return c.JSON(http.StatusOK, order)
}

// CreateInvoice builds a draft invoice from a confirmed order.
// @Summary Create an invoice from a sales order
// @Tags sales-orders
// @Produce json
// @Param id path string true "order id"
// @Success 201 {object} models.Invoice
// @Router /v1/sales-orders/{id}/create-invoice [post]
func (h *SalesOrderHandler) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.orders.CreateInvoice(ctx, tenantID, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "sales order")
		case errors.Is(err, services.ErrOrderNotConfirmed), errors.Is(err, services.ErrOrderInvoiced):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to create invoice")
	}
	return c.JSON(http.StatusCreated, invoiceView(invoice))
}

func (h *SalesOrderHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "order id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.orders.Delete(ctx, tenantID, id); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "sales order")
		case errors.Is(err, services.ErrOrderNotDraft):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to delete sales order")
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats summarizes the organization's orders by status and revenue.
func (h *SalesOrderHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	stats, err := h.orders.Stats(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "failed to compute order stats")
	}
	return c.JSON(http.StatusOK, stats)
}
