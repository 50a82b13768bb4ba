package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/shopit-dev/shopit-backend/internal/application"
	"github.com/shopit-dev/shopit-backend/pkg/response"
	"github.com/shopit-dev/shopit-backend/pkg/validation"
)

// CartHandler exposes the embedded-cart endpoints. The route shapes and
// response payloads mirror what the storefront already consumes, including
// the legacy removal path.
type CartHandler struct {
	Svc    *application.CartService
	Logger *logrus.Logger
}

func NewCartHandler(svc *application.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

type addToCartRequest struct {
	Product  string `json:"product" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Stock    int    `json:"stock"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// AddToCart PUT /addtocart/:id
// :id is the target user's id.
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	u, err := h.Svc.AddLine(c.Request.Context(), c.Param("id"), application.AddLineInput{
		Product:  req.Product,
		Name:     req.Name,
		Price:    req.Price,
		Image:    req.Image,
		Stock:    req.Stock,
		Quantity: req.Quantity,
	})
	if err != nil {
		// The storefront expects this exact message on a user miss.
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "product not found")
			return
		}
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"user": u})
}

type deleteFromCartByIDRequest struct {
	UserID string `json:"userId" binding:"required"`
	CartID string `json:"cartId" binding:"required"`
}

// DeleteFromCartByID PUT /deleteFromCartById/:id
// The target user comes from the body; the echoed userId keeps the URL
// param, matching the storefront contract.
func (h *CartHandler) DeleteFromCartByID(c *gin.Context) {
	var req deleteFromCartByIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, validation.FirstMessage(err))
		return
	}
	snapshot, err := h.Svc.RemoveLineByID(c.Request.Context(), req.UserID, req.CartID)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"userId":   c.Param("id"),
		"cartData": snapshot,
	})
}

// DeleteFromCart GET /deleteFromCart?userId=&id=
// Legacy path: the snapshot it returns is never persisted to the cart field.
func (h *CartHandler) DeleteFromCart(c *gin.Context) {
	userID := c.Query("userId")
	id := c.Query("id")
	if userID == "" || id == "" {
		response.Error(c, http.StatusBadRequest, "userId and id query parameters are required")
		return
	}
	snapshot, err := h.Svc.RemoveLineByQuery(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{
		"userId":   userID,
		"cartData": snapshot,
	})
}
