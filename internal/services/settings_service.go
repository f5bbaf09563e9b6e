package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"storefront-service/internal/config"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// SettingsService reads and edits the store-wide settings row
type SettingsService interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Update(ctx context.Context, req models.UpdateSettingsRequest) (*models.StoreSettings, error)
}

type settingsService struct {
	content  repository.ContentRepositoryInterface
	defaults models.StoreSettings
}

func NewSettingsService(content repository.ContentRepositoryInterface, cfg *config.Config) SettingsService {
	return &settingsService{
		content:  content,
		defaults: DefaultSettings(cfg),
	}
}

// DefaultSettings is used until an admin saves the settings for the first time
func DefaultSettings(cfg *config.Config) models.StoreSettings {
	return models.StoreSettings{
		ID:                    models.StoreSettingsID,
		StoreNameEn:           "Store",
		StoreNameAr:           "المتجر",
		Currency:              cfg.DefaultCurrency,
		DefaultLocale:         models.ParseLocale(cfg.DefaultLocale, models.LocaleEnglish),
		ShippingFee:           decimal.Zero,
		FreeShippingThreshold: decimal.Zero,
		ShippingZones:         models.ShippingZones{},
		TaxRate:               decimal.Zero,
	}
}

func (s *settingsService) Get(ctx context.Context) (*models.StoreSettings, error) {
	settings, err := s.content.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			defaults := s.defaults
			return &defaults, nil
		}
		return nil, err
	}
	return settings, nil
}

// Update applies the non-nil fields of req
func (s *settingsService) Update(ctx context.Context, req models.UpdateSettingsRequest) (*models.StoreSettings, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.StoreNameEn != nil {
		settings.StoreNameEn = *req.StoreNameEn
	}
	if req.StoreNameAr != nil {
		settings.StoreNameAr = *req.StoreNameAr
	}
	if req.Currency != nil {
		settings.Currency = strings.ToUpper(*req.Currency)
	}
	if req.DefaultLocale != nil {
		settings.DefaultLocale = *req.DefaultLocale
	}
	if req.ContactEmail != nil {
		settings.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		settings.ContactPhone = *req.ContactPhone
	}
	if req.ShippingFee != nil {
		if req.ShippingFee.IsNegative() {
			return nil, &ValidationError{Field: "shippingFee", Message: "must not be negative"}
		}
		settings.ShippingFee = *req.ShippingFee
	}
	if req.FreeShippingThreshold != nil {
		if req.FreeShippingThreshold.IsNegative() {
			return nil, &ValidationError{Field: "freeShippingThreshold", Message: "must not be negative"}
		}
		settings.FreeShippingThreshold = *req.FreeShippingThreshold
	}
	if req.ShippingZones != nil {
		zones := make(models.ShippingZones, len(req.ShippingZones))
		for country, fee := range req.ShippingZones {
			if len(country) != 2 || fee.IsNegative() {
				return nil, &ValidationError{Field: "shippingZones", Message: "expects two-letter country codes with non-negative fees"}
			}
			zones[strings.ToUpper(country)] = fee
		}
		settings.ShippingZones = zones
	}
	if req.TaxRate != nil {
		if req.TaxRate.IsNegative() || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, &ValidationError{Field: "taxRate", Message: "must be between 0 and 100"}
		}
		settings.TaxRate = *req.TaxRate
	}

	if err := s.content.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
