package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"storefront-service/internal/models"
)

// ContentRepositoryInterface defines banner, promotion and settings persistence
type ContentRepositoryInterface interface {
	ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error)
	GetBanner(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	SaveBanner(ctx context.Context, banner *models.Banner) error
	DeleteBanner(ctx context.Context, id uuid.UUID) error

	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	GetPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error)
	GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error)
	SavePromotion(ctx context.Context, promotion *models.Promotion) error
	DeletePromotion(ctx context.Context, id uuid.UUID) error

	GetSettings(ctx context.Context) (*models.StoreSettings, error)
	SaveSettings(ctx context.Context, settings *models.StoreSettings) error
}

var _ ContentRepositoryInterface = (*ContentRepository)(nil)

const (
	bannersActiveKey = "content:banners:active"
	settingsKey      = "content:settings"
)

type ContentRepository struct {
	db    *gorm.DB
	cache jsonCache
}

func NewContentRepository(db *gorm.DB, redis *redis.Client) *ContentRepository {
	return &ContentRepository{db: db, cache: jsonCache{redis: redis}}
}

// --- Banners ---

// ListBanners orders by position. activeOnly filters on the flag; the
// scheduling window is checked by the caller against the current time.
func (r *ContentRepository) ListBanners(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	banners := []models.Banner{}
	if activeOnly && r.cache.get(ctx, bannersActiveKey, &banners) {
		return banners, nil
	}

	query := r.db.WithContext(ctx).Order("position ASC, created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&banners).Error; err != nil {
		return nil, err
	}

	if activeOnly {
		r.cache.set(ctx, bannersActiveKey, banners, ContentCacheTTL)
	}
	return banners, nil
}

func (r *ContentRepository) GetBanner(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var banner models.Banner
	if err := r.db.WithContext(ctx).First(&banner, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &banner, nil
}

func (r *ContentRepository) SaveBanner(ctx context.Context, banner *models.Banner) error {
	if banner.ID == uuid.Nil {
		banner.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Save(banner).Error; err != nil {
		return err
	}
	r.cache.delete(ctx, bannersActiveKey)
	return nil
}

func (r *ContentRepository) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.cache.delete(ctx, bannersActiveKey)
	return nil
}

// --- Promotions ---

func (r *ContentRepository) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	promotions := []models.Promotion{}
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&promotions).Error
	return promotions, err
}

func (r *ContentRepository) GetPromotion(ctx context.Context, id uuid.UUID) (*models.Promotion, error) {
	var promotion models.Promotion
	if err := r.db.WithContext(ctx).First(&promotion, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &promotion, nil
}

// GetPromotionByCode matches codes case-insensitively
func (r *ContentRepository) GetPromotionByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promotion models.Promotion
	err := r.db.WithContext(ctx).Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).First(&promotion).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &promotion, nil
}

func (r *ContentRepository) SavePromotion(ctx context.Context, promotion *models.Promotion) error {
	if promotion.ID == uuid.Nil {
		promotion.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(promotion).Error
}

func (r *ContentRepository) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Promotion{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Settings ---

func (r *ContentRepository) GetSettings(ctx context.Context) (*models.StoreSettings, error) {
	var settings models.StoreSettings
	if r.cache.get(ctx, settingsKey, &settings) {
		return &settings, nil
	}
	if err := r.db.WithContext(ctx).First(&settings, "id = ?", models.StoreSettingsID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.cache.set(ctx, settingsKey, settings, SettingsCacheTTL)
	return &settings, nil
}

func (r *ContentRepository) SaveSettings(ctx context.Context, settings *models.StoreSettings) error {
	settings.ID = models.StoreSettingsID
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return err
	}
	r.cache.delete(ctx, settingsKey)
	return nil
}
