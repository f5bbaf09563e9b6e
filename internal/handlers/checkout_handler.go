package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// CheckoutHandler prices carts and places orders
type CheckoutHandler struct {
	checkout services.CheckoutService
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout services.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, logger: logger}
}

// Quote handles POST /checkout/quote
// @Summary Price the cart
// @Description Subtotal, savings, discount, shipping, tax and total for the current cart
// @Tags checkout
// @Accept json
// @Produce json
// @Param quote body models.QuoteRequest false "Destination country and promotion code"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /checkout/quote [post]
// @Security BearerAuth
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.QuoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	totals, err := h.checkout.Quote(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to price cart")
		return
	}
	respondData(c, http.StatusOK, totals)
}

// PlaceOrder handles POST /checkout
// @Summary Place an order
// @Description Validates the checkout form and turns the cart into an order. Field errors name the offending JSON field.
// @Tags checkout
// @Accept json
// @Produce json
// @Param order body models.CheckoutRequest true "Checkout form"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /checkout [post]
// @Security BearerAuth
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Email == "" {
		req.Email = middleware.UserEmail(c)
	}

	locale := middleware.LocaleFrom(c)
	order, err := h.checkout.PlaceOrder(c.Request.Context(), userID, locale, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to place order")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      userID,
	}).Info("Order placed")
	respondData(c, http.StatusCreated, newOrderView(order, locale))
}
