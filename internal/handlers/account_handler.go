package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// AccountHandler serves the signed-in customer's profile, addresses and orders
type AccountHandler struct {
	accounts services.AccountService
	orders   services.OrderService
	logger   *logrus.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts services.AccountService, orders services.OrderService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, orders: orders, logger: logger}
}

// orderView carries the status badge alongside the order
type orderView struct {
	*models.Order
	Badge       models.StatusBadge `json:"badge"`
	StatusLabel string             `json:"statusLabel"`
}

func newOrderView(order *models.Order, locale models.Locale) orderView {
	badge := models.BadgeFor(order.Status)
	return orderView{Order: order, Badge: badge, StatusLabel: badge.Label(locale)}
}

func newOrderViews(orders []models.Order, locale models.Locale) []orderView {
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = newOrderView(&orders[i], locale)
	}
	return views
}

// GetProfile handles GET /account/profile
// @Summary Get my profile
// @Description Returns the caller's profile, creating it on first access
// @Tags account
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /account/profile [get]
// @Security BearerAuth
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	profile, err := h.accounts.EnsureProfile(c.Request.Context(), userID, middleware.UserEmail(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load profile")
		return
	}
	respondData(c, http.StatusOK, profile)
}

// UpdateProfile handles PUT /account/profile
// @Summary Update my profile
// @Tags account
// @Accept json
// @Produce json
// @Param profile body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /account/profile [put]
// @Security BearerAuth
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	profile, err := h.accounts.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update profile")
		return
	}
	respondData(c, http.StatusOK, profile)
}

// ListAddresses handles GET /account/addresses
// @Summary List my addresses
// @Tags account
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /account/addresses [get]
// @Security BearerAuth
func (h *AccountHandler) ListAddresses(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addresses, err := h.accounts.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load addresses")
		return
	}
	respondData(c, http.StatusOK, addresses)
}

// CreateAddress handles POST /account/addresses
// @Summary Add an address
// @Tags account
// @Accept json
// @Produce json
// @Param address body models.AddressRequest true "Address"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /account/addresses [post]
// @Security BearerAuth
func (h *AccountHandler) CreateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address, err := h.accounts.CreateAddress(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create address")
		return
	}
	respondData(c, http.StatusCreated, address)
}

// UpdateAddress handles PUT /account/addresses/:id
// @Summary Update an address
// @Tags account
// @Accept json
// @Produce json
// @Param id path string true "Address ID"
// @Param address body models.AddressRequest true "Address"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /account/addresses/{id} [put]
// @Security BearerAuth
func (h *AccountHandler) UpdateAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	address, err := h.accounts.UpdateAddress(c.Request.Context(), userID, addressID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update address")
		return
	}
	respondData(c, http.StatusOK, address)
}

// DeleteAddress handles DELETE /account/addresses/:id
// @Summary Delete an address
// @Tags account
// @Produce json
// @Param id path string true "Address ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /account/addresses/{id} [delete]
// @Security BearerAuth
func (h *AccountHandler) DeleteAddress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	addressID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.accounts.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		respondError(c, h.logger, err, "Failed to delete address")
		return
	}
	respondMessage(c, "Address deleted")
}

// ListOrders handles GET /account/orders
// @Summary My order history
// @Tags account
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ListResponse
// @Router /account/orders [get]
// @Security BearerAuth
func (h *AccountHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, limit := pageParams(c, 20)

	orders, pagination, err := h.orders.ListForCustomer(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load orders")
		return
	}
	respondList(c, newOrderViews(orders, middleware.LocaleFrom(c)), pagination)
}

// GetOrder handles GET /account/orders/:id
// @Summary One of my orders
// @Tags account
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /account/orders/{id} [get]
// @Security BearerAuth
func (h *AccountHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetForCustomer(c.Request.Context(), userID, orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load order")
		return
	}
	respondData(c, http.StatusOK, newOrderView(order, middleware.LocaleFrom(c)))
}

// GetOrderInvoice handles GET /account/orders/:id/invoice
// @Summary Download my invoice
// @Tags account
// @Produce application/pdf
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /account/orders/{id}/invoice [get]
// @Security BearerAuth
func (h *AccountHandler) GetOrderInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.orders.GetForCustomer(c.Request.Context(), userID, orderID); err != nil {
		respondError(c, h.logger, err, "Failed to load order")
		return
	}
	pdf, filename, err := h.orders.Invoice(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to render invoice")
		return
	}
	sendAttachment(c, "application/pdf", filename, pdf)
}
