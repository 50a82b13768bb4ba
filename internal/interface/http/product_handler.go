package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/pkg/response"
)

// ProductHandler serves the catalog reads the storefront cart flow needs.
type ProductHandler struct {
	Svc *application.ProductService
}

func NewProductHandler(svc *application.ProductService) *ProductHandler {
	return &ProductHandler{Svc: svc}
}

// GetProduct GET /product/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"product": p})
}

// ListProducts GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.Svc.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"products": products})
}
