package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"erpcore/internal/common"
	"erpcore/internal/models"
	"erpcore/internal/services"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	customers services.CustomerService
}

func NewCustomerHandler(customers services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create adds a customer to the caller's organization.
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param request body services.CreateCustomerRequest true "customer payload"
// @Success 201 {object} models.Customer
// @Router /v1/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customers.Create(ctx, tenantID, userID, req)
	if err != nil {
		return common.SendServerError(c, "failed to create customer")
	}
	return c.JSON(http.StatusCreated, customer)
}

// Get returns one customer.
func (h *CustomerHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "customer id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customers.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "failed to fetch customer")
	}
	return c.JSON(http.StatusOK, customer)
}

// List returns the organization's customers with optional filters.
func (h *CustomerHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	filter := models.CustomerSearchFilter{}
	if q := c.QueryParam("q"); q != "" {
		filter.Query = &q
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if typ := c.QueryParam("type"); typ != "" {
		filter.Type = &typ
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	customers, err := h.customers.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "failed to list customers")
	}
	return c.JSON(http.StatusOK, customers)
}

// Update replaces a customer's editable fields.
func (h *CustomerHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "customer id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	customer, err := h.customers.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "failed to fetch customer")
	}

	if err := c.Bind(customer); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	// Bind cannot be allowed to move the row to another tenant or identity.
	customer.ID = id
	customer.TenantID = tenantID

	updated, err := h.customers.Update(ctx, customer)
	if err != nil {
		return common.SendServerError(c, "failed to update customer")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a customer.
func (h *CustomerHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "customer id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.customers.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "customer")
		}
		return common.SendServerError(c, "failed to delete customer")
	}
	return c.NoContent(http.StatusNoContent)
}
