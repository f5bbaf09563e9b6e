package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "PLACED"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists statuses in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cod"
	PaymentMethodBankTransfer   PaymentMethod = "bank_transfer"
)

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// ShippingAddress is the address snapshot stored on an order
type ShippingAddress struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,min=7,max=20"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"max=200"`
	City       string `json:"city" validate:"required,max=100"`
	Region     string `json:"region,omitempty" validate:"max=100"`
	PostalCode string `json:"postalCode,omitempty" validate:"max=20"`
	Country    string `json:"country" gorm:"type:varchar(2)" validate:"required,len=2"`
}

// Order is a placed customer order
type Order struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber     string          `json:"orderNumber" gorm:"not null;uniqueIndex"`
	UserID          uuid.UUID       `json:"userId" gorm:"type:uuid;not null;index"`
	Email           string          `json:"email" gorm:"not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'PLACED';index"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(20);not null"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);not null"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(12,2);not null"`
	DiscountAmount  decimal.Decimal `json:"discountAmount" gorm:"type:numeric(12,2);not null;default:0"`
	ShippingCost    decimal.Decimal `json:"shippingCost" gorm:"type:numeric(12,2);not null;default:0"`
	TaxAmount       decimal.Decimal `json:"taxAmount" gorm:"type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	PromotionCode   *string         `json:"promotionCode,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	Notes           *string         `json:"notes,omitempty" gorm:"type:text"`
	Locale          Locale          `json:"locale" gorm:"type:varchar(5);default:'en'"`
	Items           []OrderItem     `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a product snapshot taken at checkout
type OrderItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `json:"orderId" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	NameEn    string          `json:"nameEn" gorm:"not null"`
	NameAr    string          `json:"nameAr"`
	ImageURL  *string         `json:"imageUrl,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"type:numeric(12,2);not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	LineTotal decimal.Decimal `json:"lineTotal" gorm:"type:numeric(12,2);not null"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Totals is the checkout price breakdown
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	Savings       decimal.Decimal `json:"savings"`
	Discount      decimal.Decimal `json:"discount"`
	Shipping      decimal.Decimal `json:"shipping"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PromotionCode string          `json:"promotionCode,omitempty"`
	FreeShipping  bool            `json:"freeShipping"`
}

type CheckoutRequest struct {
	Email         string          `json:"email" validate:"required,email"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required,oneof=cod bank_transfer"`
	Address       ShippingAddress `json:"address" validate:"-"`
	AddressID     *uuid.UUID      `json:"addressId"`
	PromotionCode string          `json:"promotionCode" validate:"omitempty,max=40"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type QuoteRequest struct {
	Country       string `json:"country"`
	PromotionCode string `json:"promotionCode"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID *uuid.UUID
	Status OrderStatus
	Search string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

// OrderStats feeds the admin dashboard
type OrderStats struct {
	TotalOrders   int64                 `json:"totalOrders"`
	ByStatus      map[OrderStatus]int64 `json:"byStatus"`
	Revenue       decimal.Decimal       `json:"revenue"`
	LowStockCount int64                 `json:"lowStockCount"`
	TotalProducts int64                 `json:"totalProducts"`
	TotalUsers    int64                 `json:"totalUsers"`
}
