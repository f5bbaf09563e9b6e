package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// CartHandler handles the signed-in customer's cart and wishlist
type CartHandler struct {
	carts  services.CartService
	logger *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts services.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{carts: carts, logger: logger}
}

// GetCart handles GET /cart
// @Summary Get cart
// @Tags cart
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /cart [get]
// @Security BearerAuth
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	cart, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// AddItem handles POST /cart/items
// @Summary Add product to cart
// @Description Adds quantity (default 1) to the product's line, creating it when absent
// @Tags cart
// @Accept json
// @Produce json
// @Param item body models.AddToCartRequest true "Product and quantity"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
// @Security BearerAuth
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.carts.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add item to cart")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// UpdateItem handles PUT /cart/items/:productId
// @Summary Set line quantity
// @Description A quantity of zero or less removes the line
// @Tags cart
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param item body models.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{productId} [put]
// @Security BearerAuth
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update cart item")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// RemoveItem handles DELETE /cart/items/:productId
// @Summary Remove line
// @Tags cart
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Router /cart/items/{productId} [delete]
// @Security BearerAuth
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove cart item")
		return
	}
	respondData(c, http.StatusOK, cart)
}

// ClearCart handles DELETE /cart
// @Summary Empty the cart
// @Tags cart
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /cart [delete]
// @Security BearerAuth
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.carts.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "Failed to clear cart")
		return
	}
	respondMessage(c, "Cart cleared")
}

// GetWishlist handles GET /wishlist
// @Summary Get wishlist
// @Tags wishlist
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /wishlist [get]
// @Security BearerAuth
func (h *CartHandler) GetWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.carts.GetWishlist(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load wishlist")
		return
	}
	respondData(c, http.StatusOK, items)
}

// ToggleWishlist handles POST /wishlist/:productId
// @Summary Toggle wishlist membership
// @Tags wishlist
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlist/{productId} [post]
// @Security BearerAuth
func (h *CartHandler) ToggleWishlist(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	result, err := h.carts.ToggleWishlist(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update wishlist")
		return
	}
	respondData(c, http.StatusOK, result)
}

// MoveWishlistToCart handles POST /wishlist/move-to-cart
// @Summary Move wishlist items to the cart
// @Description Moves the listed products, or the whole wishlist when none are given. Each item reports its own outcome.
// @Tags wishlist
// @Accept json
// @Produce json
// @Param items body models.MoveWishlistRequest false "Products to move"
// @Success 200 {object} models.SuccessResponse
// @Router /wishlist/move-to-cart [post]
// @Security BearerAuth
func (h *CartHandler) MoveWishlistToCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.MoveWishlistRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	results, err := h.carts.MoveWishlistToCart(c.Request.Context(), userID, req.ProductIDs)
	if err != nil {
		respondError(c, h.logger, err, "Failed to move wishlist items")
		return
	}
	respondData(c, http.StatusOK, results)
}
