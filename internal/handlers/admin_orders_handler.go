package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// AdminOrdersHandler serves the back-office order screens
type AdminOrdersHandler struct {
	orders services.OrderService
	logger *logrus.Logger
}

// NewAdminOrdersHandler creates a new admin orders handler
func NewAdminOrdersHandler(orders services.OrderService, logger *logrus.Logger) *AdminOrdersHandler {
	return &AdminOrdersHandler{orders: orders, logger: logger}
}

func orderFilter(c *gin.Context) (models.OrderFilter, bool) {
	page, limit := pageParams(c, 20)
	from, ok := optionalDateQuery(c, "from")
	if !ok {
		return models.OrderFilter{}, false
	}
	to, ok := optionalDateQuery(c, "to")
	if !ok {
		return models.OrderFilter{}, false
	}
	if to != nil {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return models.OrderFilter{
		Status: models.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
		From:   from,
		To:     to,
		Page:   page,
		Limit:  limit,
	}, true
}

// ListOrders handles GET /admin/orders
// @Summary List orders
// @Tags admin-orders
// @Produce json
// @Param status query string false "Order status"
// @Param search query string false "Order number, email or customer name"
// @Param from query string false "Placed on or after (YYYY-MM-DD)"
// @Param to query string false "Placed on or before (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/orders [get]
// @Security BearerAuth
func (h *AdminOrdersHandler) ListOrders(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	orders, pagination, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list orders")
		return
	}
	respondList(c, newOrderViews(orders, middleware.LocaleFrom(c)), pagination)
}

// GetOrder handles GET /admin/orders/:id
// @Summary Get order
// @Tags admin-orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id} [get]
// @Security BearerAuth
func (h *AdminOrdersHandler) GetOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load order")
		return
	}
	respondData(c, http.StatusOK, newOrderView(order, middleware.LocaleFrom(c)))
}

// UpdateStatus handles PUT /admin/orders/:id/status
// @Summary Move an order through its lifecycle
// @Description PLACED, CONFIRMED, PROCESSING, SHIPPED, DELIVERED; CANCELLED from any non-terminal status
// @Tags admin-orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param status body models.UpdateOrderStatusRequest true "Target status"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [put]
// @Security BearerAuth
func (h *AdminOrdersHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update order status")
		return
	}
	respondData(c, http.StatusOK, newOrderView(order, middleware.LocaleFrom(c)))
}

// Stats handles GET /admin/orders/stats
// @Summary Dashboard figures
// @Tags admin-orders
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/orders/stats [get]
// @Security BearerAuth
func (h *AdminOrdersHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load order statistics")
		return
	}
	respondData(c, http.StatusOK, stats)
}

// Invoice handles GET /admin/orders/:id/invoice
// @Summary Download invoice PDF
// @Tags admin-orders
// @Produce application/pdf
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id}/invoice [get]
// @Security BearerAuth
func (h *AdminOrdersHandler) Invoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	pdf, filename, err := h.orders.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to render invoice")
		return
	}
	sendAttachment(c, "application/pdf", filename, pdf)
}

// Export handles GET /admin/orders/export
// @Summary Export orders as XLSX
// @Tags admin-orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param status query string false "Order status"
// @Param from query string false "Placed on or after (YYYY-MM-DD)"
// @Param to query string false "Placed on or before (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /admin/orders/export [get]
// @Security BearerAuth
func (h *AdminOrdersHandler) Export(c *gin.Context) {
	filter, ok := orderFilter(c)
	if !ok {
		return
	}
	body, err := h.orders.Export(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to export orders")
		return
	}
	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	sendAttachment(c, services.XLSXContentType, filename, body)
}
