package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProductStatus represents the publication status of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusArchived ProductStatus = "ARCHIVED"
)

// InventoryStatus represents the stock state shown on product cards
type InventoryStatus string

const (
	InventoryStatusInStock    InventoryStatus = "IN_STOCK"
	InventoryStatusLowStock   InventoryStatus = "LOW_STOCK"
	InventoryStatusOutOfStock InventoryStatus = "OUT_OF_STOCK"
)

// LowStockThreshold is the quantity at or below which a product is low on stock
const LowStockThreshold = 5

// StringList is stored as a JSONB array
type StringList = datatypes.JSONSlice[string]

// Product is a catalog item with English and Arabic copy
type Product struct {
	ID            uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CategoryID    *uuid.UUID       `json:"categoryId,omitempty" gorm:"type:uuid;index"`
	Category      *Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	NameEn        string           `json:"nameEn" gorm:"not null"`
	NameAr        string           `json:"nameAr"`
	DescriptionEn *string          `json:"descriptionEn,omitempty" gorm:"type:text"`
	DescriptionAr *string          `json:"descriptionAr,omitempty" gorm:"type:text"`
	Slug          string           `json:"slug" gorm:"not null;uniqueIndex"`
	SKU           *string          `json:"sku,omitempty" gorm:"index"`
	Price         decimal.Decimal  `json:"price" gorm:"type:numeric(12,2);not null;index"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty" gorm:"type:numeric(12,2)"`
	ImageURL      *string          `json:"imageUrl,omitempty"`
	Images        StringList       `json:"images" gorm:"type:jsonb;default:'[]'"`
	StockQuantity int              `json:"stockQuantity" gorm:"not null;default:0"`
	IsNew         bool             `json:"isNew" gorm:"not null;default:false;index"`
	IsOnSale      bool             `json:"isOnSale" gorm:"not null;default:false;index"`
	IsFeatured    bool             `json:"isFeatured" gorm:"not null;default:false;index"`
	Status        ProductStatus    `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CreatedAt     time.Time        `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt   `json:"-" gorm:"index"`
}

func (Product) TableName() string {
	return "products"
}

// LocalizedName returns the product name for the locale
func (p *Product) LocalizedName(locale Locale) string {
	return locale.Pick(p.NameEn, p.NameAr)
}

// InStock reports whether at least qty units can be sold
func (p *Product) InStock(qty int) bool {
	return p.Status == ProductStatusActive && p.StockQuantity >= qty
}

// InventoryStatus derives the stock badge for the product
func (p *Product) InventoryStatus() InventoryStatus {
	switch {
	case p.StockQuantity <= 0:
		return InventoryStatusOutOfStock
	case p.StockQuantity <= LowStockThreshold:
		return InventoryStatusLowStock
	default:
		return InventoryStatusInStock
	}
}

// DiscountPercent is the whole-number saving against the original price, 0 when not discounted
func (p *Product) DiscountPercent() int {
	if p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) || p.OriginalPrice.IsZero() {
		return 0
	}
	saving := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100))
	return int(saving.Round(0).IntPart())
}

// Category groups products; storefront filters address it by slug
type Category struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NameEn        string    `json:"nameEn" gorm:"not null"`
	NameAr        string    `json:"nameAr"`
	Slug          string    `json:"slug" gorm:"not null;uniqueIndex"`
	DescriptionEn *string   `json:"descriptionEn,omitempty" gorm:"type:text"`
	DescriptionAr *string   `json:"descriptionAr,omitempty" gorm:"type:text"`
	ImageURL      *string   `json:"imageUrl,omitempty"`
	Position      int       `json:"position" gorm:"not null;default:0"`
	IsActive      bool      `json:"isActive" gorm:"not null;default:true"`
	ProductCount  int64     `json:"productCount,omitempty" gorm:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// Request DTOs

type ProductRequest struct {
	CategoryID    *uuid.UUID       `json:"categoryId"`
	NameEn        string           `json:"nameEn" binding:"required"`
	NameAr        string           `json:"nameAr"`
	DescriptionEn *string          `json:"descriptionEn"`
	DescriptionAr *string          `json:"descriptionAr"`
	Slug          string           `json:"slug"`
	SKU           *string          `json:"sku"`
	Price         decimal.Decimal  `json:"price" binding:"required"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	ImageURL      *string          `json:"imageUrl"`
	Images        []string         `json:"images"`
	StockQuantity int              `json:"stockQuantity" binding:"min=0"`
	IsNew         bool             `json:"isNew"`
	IsOnSale      bool             `json:"isOnSale"`
	IsFeatured    bool             `json:"isFeatured"`
	Status        ProductStatus    `json:"status"`
}

type BulkStatusRequest struct {
	IDs    []uuid.UUID   `json:"ids" binding:"required,min=1"`
	Status ProductStatus `json:"status" binding:"required"`
}

type CategoryRequest struct {
	NameEn        string  `json:"nameEn" binding:"required"`
	NameAr        string  `json:"nameAr"`
	Slug          string  `json:"slug"`
	DescriptionEn *string `json:"descriptionEn"`
	DescriptionAr *string `json:"descriptionAr"`
	ImageURL      *string `json:"imageUrl"`
	Position      int     `json:"position"`
	IsActive      *bool   `json:"isActive"`
}

// AdminProductFilter narrows the back-office product table
type AdminProductFilter struct {
	Search     string
	Status     ProductStatus
	CategoryID *uuid.UUID
	LowStock   bool
	Page       int
	Limit      int
}

// FilterMetadata describes the bounds the storefront filter panel can offer
type FilterMetadata struct {
	MinPrice   decimal.Decimal `json:"minPrice"`
	MaxPrice   decimal.Decimal `json:"maxPrice"`
	Categories []Category      `json:"categories"`
}
