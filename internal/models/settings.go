package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettingsID is the primary key of the single settings row
const StoreSettingsID = 1

// ShippingZones maps an ISO country code to its shipping fee
type ShippingZones map[string]decimal.Decimal

func (z ShippingZones) Value() (driver.Value, error) {
	if z == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(z)
}

func (z *ShippingZones) Scan(value interface{}) error {
	if value == nil {
		*z = ShippingZones{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, z)
}

// StoreSettings holds store-wide configuration edited from the back-office
type StoreSettings struct {
	ID                    int             `json:"-" gorm:"primaryKey"`
	StoreNameEn           string          `json:"storeNameEn"`
	StoreNameAr           string          `json:"storeNameAr"`
	Currency              string          `json:"currency" gorm:"type:varchar(3);not null"`
	DefaultLocale         Locale          `json:"defaultLocale" gorm:"type:varchar(5);not null"`
	ContactEmail          string          `json:"contactEmail"`
	ContactPhone          string          `json:"contactPhone"`
	ShippingFee           decimal.Decimal `json:"shippingFee" gorm:"type:numeric(12,2);not null;default:0"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold" gorm:"type:numeric(12,2);not null;default:0"`
	ShippingZones         ShippingZones   `json:"shippingZones" gorm:"type:jsonb;default:'{}'"`
	TaxRate               decimal.Decimal `json:"taxRate" gorm:"type:numeric(5,2);not null;default:0"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

func (StoreSettings) TableName() string {
	return "store_settings"
}

// ShippingFeeFor returns the zone fee for a country, falling back to the flat fee
func (s *StoreSettings) ShippingFeeFor(country string) decimal.Decimal {
	if fee, ok := s.ShippingZones[strings.ToUpper(country)]; ok {
		return fee
	}
	return s.ShippingFee
}

type UpdateSettingsRequest struct {
	StoreNameEn           *string          `json:"storeNameEn"`
	StoreNameAr           *string          `json:"storeNameAr"`
	Currency              *string          `json:"currency" validate:"omitempty,len=3"`
	DefaultLocale         *Locale          `json:"defaultLocale" validate:"omitempty,oneof=en ar"`
	ContactEmail          *string          `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone          *string          `json:"contactPhone"`
	ShippingFee           *decimal.Decimal `json:"shippingFee"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold"`
	ShippingZones         ShippingZones    `json:"shippingZones"`
	TaxRate               *decimal.Decimal `json:"taxRate"`
}
