package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Banner is a hero/promo slot on the storefront home page
type Banner struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TitleEn    string     `json:"titleEn" gorm:"not null"`
	TitleAr    string     `json:"titleAr"`
	SubtitleEn *string    `json:"subtitleEn,omitempty"`
	SubtitleAr *string    `json:"subtitleAr,omitempty"`
	ImageURL   string     `json:"imageUrl" gorm:"not null"`
	LinkURL    *string    `json:"linkUrl,omitempty"`
	Position   int        `json:"position" gorm:"not null;default:0;index"`
	IsActive   bool       `json:"isActive" gorm:"not null;default:true"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Banner) TableName() string {
	return "banners"
}

// LiveAt reports whether the banner should be shown at t
func (b *Banner) LiveAt(t time.Time) bool {
	if !b.IsActive {
		return false
	}
	if b.StartsAt != nil && t.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && !t.Before(*b.EndsAt) {
		return false
	}
	return true
}

// DiscountType determines how a promotion value is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Promotion is a checkout discount code
type Promotion struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string          `json:"code" gorm:"not null;uniqueIndex"`
	DescriptionEn  string          `json:"descriptionEn"`
	DescriptionAr  string          `json:"descriptionAr"`
	DiscountType   DiscountType    `json:"discountType" gorm:"type:varchar(20);not null"`
	Value          decimal.Decimal `json:"value" gorm:"type:numeric(12,2);not null"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount" gorm:"type:numeric(12,2);not null;default:0"`
	UsageLimit     *int            `json:"usageLimit,omitempty"`
	UsedCount      int             `json:"usedCount" gorm:"not null;default:0"`
	IsActive       bool            `json:"isActive" gorm:"not null;default:true"`
	StartsAt       *time.Time      `json:"startsAt,omitempty"`
	EndsAt         *time.Time      `json:"endsAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Promotion) TableName() string {
	return "promotions"
}

type BannerRequest struct {
	TitleEn    string     `json:"titleEn" binding:"required"`
	TitleAr    string     `json:"titleAr"`
	SubtitleEn *string    `json:"subtitleEn"`
	SubtitleAr *string    `json:"subtitleAr"`
	ImageURL   string     `json:"imageUrl" binding:"required"`
	LinkURL    *string    `json:"linkUrl"`
	Position   int        `json:"position"`
	IsActive   *bool      `json:"isActive"`
	StartsAt   *time.Time `json:"startsAt"`
	EndsAt     *time.Time `json:"endsAt"`
}

type PromotionRequest struct {
	Code           string          `json:"code" binding:"required,max=40"`
	DescriptionEn  string          `json:"descriptionEn"`
	DescriptionAr  string          `json:"descriptionAr"`
	DiscountType   DiscountType    `json:"discountType" binding:"required,oneof=percentage fixed"`
	Value          decimal.Decimal `json:"value" binding:"required"`
	MinOrderAmount decimal.Decimal `json:"minOrderAmount"`
	UsageLimit     *int            `json:"usageLimit"`
	IsActive       *bool           `json:"isActive"`
	StartsAt       *time.Time      `json:"startsAt"`
	EndsAt         *time.Time      `json:"endsAt"`
}
