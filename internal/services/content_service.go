package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ContentService manages home page banners and promotion codes
type ContentService interface {
	ActiveBanners(ctx context.Context) ([]models.Banner, error)
	ListBanners(ctx context.Context) ([]models.Banner, error)
	CreateBanner(ctx context.Context, req models.BannerRequest) (*models.Banner, error)
	UpdateBanner(ctx context.Context, id uuid.UUID, req models.BannerRequest) (*models.Banner, error)
	DeleteBanner(ctx context.Context, id uuid.UUID) error

	ListPromotions(ctx context.Context) ([]models.Promotion, error)
	CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error)
	UpdatePromotion(ctx context.Context, id uuid.UUID, req models.PromotionRequest) (*models.Promotion, error)
	DeletePromotion(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	content repository.ContentRepositoryInterface
	now     func() time.Time
}

func NewContentService(content repository.ContentRepositoryInterface) ContentService {
	return &contentService{content: content, now: time.Now}
}

// ActiveBanners returns banners that are switched on and inside their window
func (s *contentService) ActiveBanners(ctx context.Context) ([]models.Banner, error) {
	banners, err := s.content.ListBanners(ctx, true)
	if err != nil {
		return nil, err
	}
	now := s.now()
	live := make([]models.Banner, 0, len(banners))
	for i := range banners {
		if banners[i].LiveAt(now) {
			live = append(live, banners[i])
		}
	}
	return live, nil
}

func (s *contentService) ListBanners(ctx context.Context) ([]models.Banner, error) {
	return s.content.ListBanners(ctx, false)
}

func (s *contentService) CreateBanner(ctx context.Context, req models.BannerRequest) (*models.Banner, error) {
	banner := &models.Banner{IsActive: true}
	if err := applyBannerRequest(banner, req); err != nil {
		return nil, err
	}
	if err := s.content.SaveBanner(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *contentService) UpdateBanner(ctx context.Context, id uuid.UUID, req models.BannerRequest) (*models.Banner, error) {
	banner, err := s.content.GetBanner(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBannerNotFound
		}
		return nil, err
	}
	if err := applyBannerRequest(banner, req); err != nil {
		return nil, err
	}
	if err := s.content.SaveBanner(ctx, banner); err != nil {
		return nil, err
	}
	return banner, nil
}

func (s *contentService) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	if err := s.content.DeleteBanner(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrBannerNotFound
		}
		return err
	}
	return nil
}

func applyBannerRequest(banner *models.Banner, req models.BannerRequest) error {
	if err := checkWindow(req.StartsAt, req.EndsAt); err != nil {
		return err
	}
	banner.TitleEn = strings.TrimSpace(req.TitleEn)
	banner.TitleAr = strings.TrimSpace(req.TitleAr)
	banner.SubtitleEn = req.SubtitleEn
	banner.SubtitleAr = req.SubtitleAr
	banner.ImageURL = req.ImageURL
	banner.LinkURL = req.LinkURL
	banner.Position = req.Position
	banner.StartsAt = req.StartsAt
	banner.EndsAt = req.EndsAt
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
	return nil
}

// ===== Promotions =====

func (s *contentService) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return s.content.ListPromotions(ctx)
}

func (s *contentService) CreatePromotion(ctx context.Context, req models.PromotionRequest) (*models.Promotion, error) {
	if err := s.checkCodeFree(ctx, req.Code, nil); err != nil {
		return nil, err
	}
	promotion := &models.Promotion{IsActive: true}
	if err := applyPromotionRequest(promotion, req); err != nil {
		return nil, err
	}
	if err := s.content.SavePromotion(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

func (s *contentService) UpdatePromotion(ctx context.Context, id uuid.UUID, req models.PromotionRequest) (*models.Promotion, error) {
	promotion, err := s.content.GetPromotion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPromotionNotFound
		}
		return nil, err
	}
	if err := s.checkCodeFree(ctx, req.Code, &promotion.ID); err != nil {
		return nil, err
	}
	if err := applyPromotionRequest(promotion, req); err != nil {
		return nil, err
	}
	if err := s.content.SavePromotion(ctx, promotion); err != nil {
		return nil, err
	}
	return promotion, nil
}

func (s *contentService) DeletePromotion(ctx context.Context, id uuid.UUID) error {
	if err := s.content.DeletePromotion(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPromotionNotFound
		}
		return err
	}
	return nil
}

func (s *contentService) checkCodeFree(ctx context.Context, code string, selfID *uuid.UUID) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	existing, err := s.content.GetPromotionByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if selfID != nil && existing.ID == *selfID {
		return nil
	}
	return &ValidationError{Field: "code", Message: "is already in use"}
}

func applyPromotionRequest(promotion *models.Promotion, req models.PromotionRequest) error {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return &ValidationError{Field: "code", Message: "is required"}
	}
	if !req.Value.IsPositive() {
		return &ValidationError{Field: "value", Message: "must be greater than 0"}
	}
	if req.DiscountType == models.DiscountTypePercentage && req.Value.GreaterThan(hundred) {
		return &ValidationError{Field: "value", Message: "must be at most 100 for a percentage"}
	}
	if req.MinOrderAmount.IsNegative() {
		return &ValidationError{Field: "minOrderAmount", Message: "must not be negative"}
	}
	if req.UsageLimit != nil && *req.UsageLimit < 1 {
		return &ValidationError{Field: "usageLimit", Message: "must be at least 1"}
	}
	if err := checkWindow(req.StartsAt, req.EndsAt); err != nil {
		return err
	}

	promotion.Code = code
	promotion.DescriptionEn = req.DescriptionEn
	promotion.DescriptionAr = req.DescriptionAr
	promotion.DiscountType = req.DiscountType
	promotion.Value = req.Value.Round(2)
	promotion.MinOrderAmount = decimal.Max(req.MinOrderAmount, decimal.Zero).Round(2)
	promotion.UsageLimit = req.UsageLimit
	promotion.StartsAt = req.StartsAt
	promotion.EndsAt = req.EndsAt
	if req.IsActive != nil {
		promotion.IsActive = *req.IsActive
	}
	return nil
}

func checkWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && !endsAt.After(*startsAt) {
		return &ValidationError{Field: "endsAt", Message: "must be after startsAt"}
	}
	return nil
}
