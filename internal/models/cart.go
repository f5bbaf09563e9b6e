package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one product line in a customer's cart
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int       `json:"quantity" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is price times quantity; zero when the product was not loaded
func (c *CartItem) LineTotal() decimal.Decimal {
	if c.Product == nil {
		return decimal.Zero
	}
	return c.Product.Price.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// WishlistItem marks a product as a customer favorite
type WishlistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	ProductID uuid.UUID `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WishlistItem) TableName() string {
	return "wishlist_items"
}

// Cart is the read model returned to the storefront
type Cart struct {
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCart sums the loaded lines
func NewCart(items []CartItem) *Cart {
	cart := &Cart{Items: items, Subtotal: decimal.Zero}
	for i := range items {
		cart.ItemCount += items[i].Quantity
		cart.Subtotal = cart.Subtotal.Add(items[i].LineTotal())
	}
	return cart
}

// MoveResult reports the outcome of moving one wishlist item to the cart
type MoveResult struct {
	ProductID uuid.UUID `json:"productId"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity"`
}

type MoveWishlistRequest struct {
	ProductIDs []uuid.UUID `json:"productIds"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistToggleResponse struct {
	ProductID uuid.UUID `json:"productId"`
	InList    bool      `json:"inWishlist"`
}
