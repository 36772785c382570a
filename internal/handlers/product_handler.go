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

type ProductHandler struct {
	products   services.ProductService
	categories services.CategoryService
}

func NewProductHandler(products services.ProductService, categories services.CategoryService) *ProductHandler {
	return &ProductHandler{products: products, categories: categories}
}

// Create adds a product to the catalog.
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param request body services.CreateProductRequest true "product payload"
// @Success 201 {object} models.Product
// @Router /v1/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.products.Create(ctx, tenantID, userID, req)
	if err != nil {
		if errors.Is(err, services.ErrSKUTaken) {
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to create product")
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.products.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "failed to fetch product")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	filter := models.ProductSearchFilter{}
	if q := c.QueryParam("q"); q != "" {
		filter.Query = &q
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		id, err := common.ValidateUUID(categoryID, "category_id")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		filter.CategoryID = &id
	}
	if typ := c.QueryParam("type"); typ != "" {
		filter.ProductType = &typ
	}
	if status := c.QueryParam("stock_status"); status != "" {
		filter.StockStatus = &status
	}
	if active := c.QueryParam("is_active"); active != "" {
		b := active == "true"
		filter.IsActive = &b
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	filter.Limit, filter.Offset = common.ValidatePaginationParams(limit, offset)

	products, err := h.products.List(ctx, tenantID, filter)
	if err != nil {
		return common.SendServerError(c, "failed to list products")
	}
	return c.JSON(http.StatusOK, products)
}

// LowStock lists active tracked products at or below their minimum stock.
func (h *ProductHandler) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	products, err := h.products.ListLowStock(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "failed to list low stock products")
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	product, err := h.products.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "failed to fetch product")
	}

	if err := c.Bind(product); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	product.ID = id
	product.TenantID = tenantID

	updated, err := h.products.Update(ctx, product)
	if err != nil {
		return common.SendServerError(c, "failed to update product")
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.products.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "product")
		}
		return common.SendServerError(c, "failed to delete product")
	}
	return c.NoContent(http.StatusNoContent)
}

// AdjustStock applies a manual stock adjustment to a tracked product.
// @Summary Adjust product stock
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "product id"
// @Param request body services.AdjustStockRequest true "adjustment payload"
// @Success 200 {object} models.Product
// @Router /v1/products/{id}/adjust-stock [post]
func (h *ProductHandler) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req services.AdjustStockRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}

	product, err := h.products.AdjustStock(ctx, tenantID, id, userID, req)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return common.SendNotFoundError(c, "product")
		case errors.Is(err, services.ErrStockNotTracked),
			errors.Is(err, services.ErrZeroAdjustment),
			errors.Is(err, services.ErrInsufficientStock),
			errors.Is(err, services.ErrInvalidMovement):
			return common.SendClientError(c, err.Error())
		}
		return common.SendServerError(c, "failed to adjust stock")
	}
	return c.JSON(http.StatusOK, product)
}

// Movements lists a product's stock movement history.
func (h *ProductHandler) Movements(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "product id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	movements, err := h.products.Movements(ctx, tenantID, id, limit)
	if err != nil {
		return common.SendServerError(c, "failed to list stock movements")
	}
	return c.JSON(http.StatusOK, movements)
}

// CreateCategory adds a product category.
func (h *ProductHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)
	userID, _ := common.GetUserIDFromContext(ctx)

	var req services.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendClientError(c, err.Error())
	}

	category, err := h.categories.Create(ctx, tenantID, userID, req)
	if err != nil {
		return common.SendServerError(c, "failed to create category")
	}
	return c.JSON(http.StatusCreated, category)
}

// ListCategories returns the organization's categories.
func (h *ProductHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	categories, err := h.categories.List(ctx, tenantID)
	if err != nil {
		return common.SendServerError(c, "failed to list categories")
	}
	return c.JSON(http.StatusOK, categories)
}

// UpdateCategory edits a category.
func (h *ProductHandler) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	category, err := h.categories.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "category")
		}
		return common.SendServerError(c, "failed to fetch category")
	}

	if err := c.Bind(category); err != nil {
		return common.SendClientError(c, "invalid request payload")
	}
	category.ID = id
	category.TenantID = tenantID

	if err := h.categories.Update(ctx, category); err != nil {
		return common.SendServerError(c, "failed to update category")
	}
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category.
func (h *ProductHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID, _ := common.GetTenantIDFromContext(ctx)

	id, err := common.ValidateUUID(c.Param("id"), "category id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.categories.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.SendNotFoundError(c, "category")
		}
		return common.SendServerError(c, "failed to delete category")
	}
	return c.NoContent(http.StatusNoContent)
}
