package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArielVlevin/maintainer-backend/internal/application/services"
	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

// ProductHandler handles product-related requests
type ProductHandler struct {
	productService *services.ProductService
	logger         *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *services.ProductService, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ports.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		h.logger.Errorw("Create product failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, product)
}

// GetProduct handles getting a product by ID
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, product)
}

// GetProductBySlug handles getting a product by its URL slug
func (h *ProductHandler) GetProductBySlug(c echo.Context) error {
	product, err := h.productService.GetProductBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, product)
}

// ListProducts handles listing products with filters and pagination
func (h *ProductHandler) ListProducts(c echo.Context) error {
	limit, offset, err := parsePagination(c)
	if err != nil {
		return err
	}

	userID := getUserIDFromContext(c)
	filter := ports.ProductFilter{
		UserID: &userID,
		Limit:  limit,
		Offset: offset,
	}

	if category := c.QueryParam("category"); category != "" {
		filter.Category = &category
	}
	if search := c.QueryParam("search"); search != "" {
		filter.Search = &search
	}

	products, total, err := h.productService.ListProducts(c.Request().Context(), filter)
	if err != nil {
		h.logger.Errorw("List products failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, ports.PaginatedResponse[*entities.Product]{
		Data:   products,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// UpdateProduct handles updating a product
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req ports.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		h.logger.Errorw("Update product failed", "error", err, "product_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles deleting a product and all its tasks
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.productService.DeleteProduct(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		h.logger.Errorw("Delete product failed", "error", err, "product_id", id)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Product deleted successfully"})
}

// ListCategories handles listing the distinct product categories
func (h *ProductHandler) ListCategories(c echo.Context) error {
	categories, err := h.productService.ListCategories(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List categories failed", "error", err)
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, categories)
}
