package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
)

// ProductsRepositoryInterface defines product persistence used by the services
type ProductsRepositoryInterface interface {
	ListProducts(ctx context.Context, q catalog.Query, page catalog.PageRequest) ([]models.Product, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	PriceBounds(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
	AdminList(ctx context.Context, filter models.AdminProductFilter) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.ProductStatus) (int64, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	Count(ctx context.Context) (int64, error)
	InvalidateCaches(ctx context.Context)
}

var _ ProductsRepositoryInterface = (*ProductsRepository)(nil)

type ProductsRepository struct {
	db    *gorm.DB
	cache jsonCache
}

func NewProductsRepository(db *gorm.DB, redis *redis.Client) *ProductsRepository {
	return &ProductsRepository{db: db, cache: jsonCache{redis: redis}}
}

type cachedProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
}

// ListProducts runs a storefront catalog query. Only active products are visible.
func (r *ProductsRepository) ListProducts(ctx context.Context, q catalog.Query, page catalog.PageRequest) ([]models.Product, int64, error) {
	cacheKey := generateListCacheKey("products:list", q.Key(), page.Key())
	var cached cachedProductPage
	if r.cache.get(ctx, cacheKey, &cached) {
		return cached.Products, cached.Total, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive)

	if q.Search != "" {
		pattern := q.SearchPattern()
		query = query.Where("(name_en ILIKE ? OR name_ar ILIKE ?)", pattern, pattern)
	}
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}
	if q.RequireNew {
		query = query.Where("is_new = ?", true)
	}
	if q.RequireOnSale {
		query = query.Where("is_on_sale = ?", true)
	}
	if q.RequireFeatured {
		query = query.Where("is_featured = ?", true)
	}
	query = query.Where("price BETWEEN ? AND ?", q.MinPrice, q.MaxPrice)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	products := []models.Product{}
	err := query.Order(q.OrderClause()).
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	r.cache.set(ctx, cacheKey, cachedProductPage{Products: products, Total: total}, ProductListCacheTTL)
	return products, total, nil
}

// GetBySlug retrieves an active product with its category
func (r *ProductsRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	cacheKey := fmt.Sprintf("product:slug:%s", slug)
	var product models.Product
	if r.cache.get(ctx, cacheKey, &product) {
		return &product, nil
	}

	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND status = ?", slug, models.ProductStatusActive).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.cache.set(ctx, cacheKey, product, ProductCacheTTL)
	return &product, nil
}

func (r *ProductsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetByIDs retrieves multiple products in a single query
func (r *ProductsRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// PriceBounds returns the cheapest and dearest active prices
func (r *ProductsRepository) PriceBounds(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	var bounds struct {
		MinPrice decimal.NullDecimal
		MaxPrice decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Select("MIN(price) AS min_price, MAX(price) AS max_price").
		Where("status = ?", models.ProductStatusActive).
		Scan(&bounds).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return bounds.MinPrice.Decimal, bounds.MaxPrice.Decimal, nil
}

// AdminList lists products in any status for the back-office
func (r *ProductsRepository) AdminList(ctx context.Context, filter models.AdminProductFilter) ([]models.Product, int64, error) {
	page, limit := normalizePage(filter.Page, filter.Limit)
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.Where("(LOWER(name_en) LIKE ? OR name_ar ILIKE ? OR LOWER(sku) LIKE ?)", pattern, pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.LowStock {
		query = query.Where("stock_quantity <= ?", models.LowStockThreshold)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if filter.Limit < 0 {
		// export: no paging
		err := query.Preload("Category").Order("created_at DESC").Find(&products).Error
		return products, total, err
	}
	err := query.Preload("Category").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	return products, total, err
}

func (r *ProductsRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return err
	}
	r.InvalidateCaches(ctx)
	return nil
}

func (r *ProductsRepository) Update(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Omit("Category").Save(product).Error; err != nil {
		return err
	}
	r.InvalidateCaches(ctx)
	return nil
}

// Delete soft-deletes a product
func (r *ProductsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	r.InvalidateCaches(ctx)
	return nil
}

func (r *ProductsRepository) BulkUpdateStatus(ctx context.Context, ids []uuid.UUID, status models.ProductStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id IN ?", ids).
		Update("status", status)
	if result.Error != nil {
		return 0, result.Error
	}
	r.InvalidateCaches(ctx)
	return result.RowsAffected, nil
}

func (r *ProductsRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *ProductsRepository) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("status = ? AND stock_quantity <= ?", models.ProductStatusActive, threshold).
		Count(&count).Error
	return count, err
}

func (r *ProductsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

// InvalidateCaches drops every cached listing and product page. Order writes
// call it too, since they move stock.
func (r *ProductsRepository) InvalidateCaches(ctx context.Context) {
	r.cache.deletePattern(ctx, "products:list:*")
	r.cache.deletePattern(ctx, "product:slug:*")
}
