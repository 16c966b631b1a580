package handlers

import (
	"github.com/gin-gonic/gin"

	"telstock/internal/domain/catalogs/product"
	"telstock/internal/infrastructure/http/v1/dto"
)

// ProductHandler serves the phone product catalog.
type ProductHandler struct {
	*BaseHandler
	products *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, products *product.Service) *ProductHandler {
	return &ProductHandler{BaseHandler: base, products: products}
}

// Create adds a product.
// POST /api/v1/catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Update modifies a product.
// PUT /api/v1/catalog/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	productID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	p.ID = productID
	if err := h.products.Update(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Delete removes a product.
// DELETE /api/v1/catalog/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.products.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one product.
// GET /api/v1/catalog/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	productID, err := dto.ParseID(c.Param("id"), "id")
	if err != nil {
		h.Error(c, err)
		return
	}

	p, err := h.products.Get(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List returns products.
// GET /api/v1/catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	onlyActive := c.Query("onlyActive") == "true"

	products, err := h.products.List(c.Request.Context(), onlyActive)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, products)
}
