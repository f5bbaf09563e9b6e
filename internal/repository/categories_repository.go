package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"storefront-service/internal/models"
)

// CategoriesRepositoryInterface defines category persistence
type CategoriesRepositoryInterface interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	ListAll(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

var _ CategoriesRepositoryInterface = (*CategoriesRepository)(nil)

const categoriesActiveKey = "categories:active"

type CategoriesRepository struct {
	db    *gorm.DB
	cache jsonCache
}

func NewCategoriesRepository(db *gorm.DB, redis *redis.Client) *CategoriesRepository {
	return &CategoriesRepository{db: db, cache: jsonCache{redis: redis}}
}

// ListActive returns active categories with their active product counts
func (r *CategoriesRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if r.cache.get(ctx, categoriesActiveKey, &categories) {
		return categories, nil
	}

	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, name_en ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	if err := r.attachCounts(ctx, categories); err != nil {
		return nil, err
	}

	r.cache.set(ctx, categoriesActiveKey, categories, ContentCacheTTL)
	return categories, nil
}

func (r *CategoriesRepository) ListAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("position ASC, name_en ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	if err := r.attachCounts(ctx, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) attachCounts(ctx context.Context, categories []models.Category) error {
	var rows []struct {
		CategoryID uuid.UUID
		Count      int64
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("category_id, COUNT(*) AS count").
		Where("status = ? AND category_id IS NOT NULL", models.ProductStatusActive).
		Group("category_id").
		Scan(&rows).Error
	if err != nil {
		return err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	for i := range categories {
		categories[i].ProductCount = counts[categories[i].ID]
	}
	return nil
}

func (r *CategoriesRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoriesRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return err
	}
	r.cache.delete(ctx, categoriesActiveKey)
	return nil
}

func (r *CategoriesRepository) Update(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		return err
	}
	r.cache.delete(ctx, categoriesActiveKey)
	return nil
}

func (r *CategoriesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.cache.delete(ctx, categoriesActiveKey)
	return nil
}

func (r *CategoriesRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// CountProducts counts products of any status that still reference the category
func (r *CategoriesRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error
	return count, err
}
