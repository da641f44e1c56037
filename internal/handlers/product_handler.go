package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/payhuk02/payhula-sub017/internal/middleware"
	"github.com/payhuk02/payhula-sub017/internal/models"
	"github.com/payhuk02/payhula-sub017/internal/repository"
	"github.com/payhuk02/payhula-sub017/internal/services"
)

// ProductHandler exposes the catalog over HTTP
type ProductHandler struct {
	products services.ProductService
	importer services.ImportService
	logger   *logrus.Entry
}

// NewProductHandler creates a product handler
func NewProductHandler(products services.ProductService, importer services.ImportService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		importer: importer,
		logger:   logger.WithField("component", "product_handler"),
	}
}

// CreateProductRequest is the catalog creation input
type CreateProductRequest struct {
	Name             string             `json:"name" binding:"required"`
	Description      string             `json:"description"`
	ProductType      models.ProductType `json:"productType" binding:"required"`
	Price            float64            `json:"price" binding:"min=0"`
	Currency         string             `json:"currency"`
	StockQuantity    int                `json:"stockQuantity"`
	TotalEditions    int                `json:"totalEditions"`
	RequiresShipping bool               `json:"requiresShipping"`
	InsuranceFee     float64            `json:"insuranceFee"`
	PaymentOptions   models.JSONB       `json:"paymentOptions"`
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	product := &models.Product{
		StoreID:          middleware.StoreID(c),
		Name:             req.Name,
		Description:      req.Description,
		ProductType:      req.ProductType,
		Price:            req.Price,
		Currency:         req.Currency,
		StockQuantity:    req.StockQuantity,
		TotalEditions:    req.TotalEditions,
		RequiresShipping: req.RequiresShipping,
		InsuranceFee:     req.InsuranceFee,
		PaymentOptions:   req.PaymentOptions,
		IsActive:         true,
	}

	if err := h.products.CreateProduct(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, product)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "product ID must be a UUID"})
		return
	}

	product, err := h.products.GetProduct(id, middleware.StoreID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)

	filters := repository.ProductFilters{
		StoreID:    middleware.StoreID(c),
		ActiveOnly: c.Query("active") == "true",
		Page:       page,
		Limit:      limit,
	}
	if v := c.Query("productType"); v != "" {
		productType := models.ProductType(v)
		filters.ProductType = &productType
	}

	products, total, err := h.products.ListProducts(filters)
	if err != nil {
		respondError(c, err)
		return
	}

	respondList(c, products, page, limit, total)
}

// UpdatePrice handles PATCH /products/:id/price
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "product ID must be a UUID"})
		return
	}

	var req struct {
		Price float64 `json:"price" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	product, err := h.products.UpdatePrice(c.Request.Context(), id, middleware.StoreID(c), req.Price)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

// UpdateStock handles PATCH /products/:id/stock
func (h *ProductHandler) UpdateStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "product ID must be a UUID"})
		return
	}

	var req struct {
		StockQuantity int `json:"stockQuantity" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	product, err := h.products.UpdateStock(c.Request.Context(), id, middleware.StoreID(c), req.StockQuantity)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "product ID must be a UUID"})
		return
	}

	if err := h.products.DeleteProduct(id, middleware.StoreID(c)); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportProducts handles POST /import/products (multipart CSV upload)
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	result, err := h.importer.ImportProducts(c.Request.Context(), middleware.StoreID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if result.Failed > 0 && result.Imported > 0 {
		status = http.StatusMultiStatus
	}
	respondData(c, status, result)
}
