package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/events"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/storage"
)

// ImageUploader stores an uploaded image and returns where it can be fetched
type ImageUploader interface {
	Upload(ctx context.Context, folder, filename, contentType string, size int64, body io.Reader) (*storage.Image, error)
}

// DirectoryInvalidator is told when categories change
type DirectoryInvalidator interface {
	InvalidateDirectory()
}

// ImageUpload is one file received from the back-office
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImportResult summarises a product sheet import
type ImportResult struct {
	TotalRows    int              `json:"totalRows"`
	CreatedCount int              `json:"createdCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []ImportRowError `json:"errors"`
	ValidateOnly bool             `json:"validateOnly"`
}

// AdminCatalogService manages products and categories for the back-office
type AdminCatalogService interface {
	ListProducts(ctx context.Context, filter models.AdminProductFilter) ([]models.Product, *models.PaginationInfo, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, actorID uuid.UUID, req models.ProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, actorID, id uuid.UUID, req models.ProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, actorID, id uuid.UUID) error
	BulkUpdateStatus(ctx context.Context, actorID uuid.UUID, req models.BulkStatusRequest) (int64, error)
	UploadProductImage(ctx context.Context, actorID, id uuid.UUID, upload ImageUpload) (*models.Product, error)
	UploadImage(ctx context.Context, folder string, upload ImageUpload) (*storage.Image, error)
	ExportProducts(ctx context.Context, filter models.AdminProductFilter) ([]byte, error)
	ImportProducts(ctx context.Context, actorID uuid.UUID, r io.Reader, validateOnly bool) (*ImportResult, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type adminCatalogService struct {
	products   repository.ProductsRepositoryInterface
	categories repository.CategoriesRepositoryInterface
	images     ImageUploader
	directory  DirectoryInvalidator
	events     *events.Publisher
	logger     *logrus.Logger
}

// NewAdminCatalogService creates the service. images may be nil when object
// storage is not configured.
func NewAdminCatalogService(
	products repository.ProductsRepositoryInterface,
	categories repository.CategoriesRepositoryInterface,
	images ImageUploader,
	directory DirectoryInvalidator,
	publisher *events.Publisher,
	logger *logrus.Logger,
) AdminCatalogService {
	return &adminCatalogService{
		products:   products,
		categories: categories,
		images:     images,
		directory:  directory,
		events:     publisher,
		logger:     logger,
	}
}

// ===== Products =====

func (s *adminCatalogService) ListProducts(ctx context.Context, filter models.AdminProductFilter) ([]models.Product, *models.PaginationInfo, error) {
	page, limit := pageOrDefault(filter.Page, filter.Limit)
	filter.Page, filter.Limit = page, limit
	products, total, err := s.products.AdminList(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return products, models.NewPaginationInfo(page, limit, total), nil
}

func (s *adminCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *adminCatalogService) CreateProduct(ctx context.Context, actorID uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	product := &models.Product{}
	if err := s.applyProductRequest(ctx, product, req); err != nil {
		return nil, err
	}
	slug, err := s.productSlug(ctx, req.Slug, req.NameEn, nil)
	if err != nil {
		return nil, err
	}
	product.Slug = slug

	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.productChanged(ctx, product, "created", actorID)
	return product, nil
}

func (s *adminCatalogService) UpdateProduct(ctx context.Context, actorID, id uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyProductRequest(ctx, product, req); err != nil {
		return nil, err
	}
	if req.Slug != "" && req.Slug != product.Slug {
		slug, err := s.productSlug(ctx, req.Slug, req.NameEn, &product.ID)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}
	product.Category = nil

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	s.productChanged(ctx, product, "updated", actorID)
	return product, nil
}

func (s *adminCatalogService) DeleteProduct(ctx context.Context, actorID, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.productChanged(ctx, product, "deleted", actorID)
	return nil
}

func (s *adminCatalogService) BulkUpdateStatus(ctx context.Context, actorID uuid.UUID, req models.BulkStatusRequest) (int64, error) {
	if !validProductStatus(req.Status) {
		return 0, ErrInvalidStatus
	}
	updated, err := s.products.BulkUpdateStatus(ctx, req.IDs, req.Status)
	if err != nil {
		return 0, err
	}
	s.logger.WithFields(logrus.Fields{
		"actor_id": actorID,
		"status":   req.Status,
		"updated":  updated,
	}).Info("Bulk product status update")
	return updated, nil
}

// UploadProductImage stores the file and makes it the primary image, moving
// any previous primary image into the gallery.
func (s *adminCatalogService) UploadProductImage(ctx context.Context, actorID, id uuid.UUID, upload ImageUpload) (*models.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	image, err := s.UploadImage(ctx, "products", upload)
	if err != nil {
		return nil, err
	}

	if product.ImageURL != nil && *product.ImageURL != "" {
		product.Images = append(product.Images, *product.ImageURL)
	}
	product.ImageURL = &image.URL
	product.Category = nil

	if err := s.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product image: %w", err)
	}
	s.productChanged(ctx, product, "image", actorID)
	return product, nil
}

func (s *adminCatalogService) UploadImage(ctx context.Context, folder string, upload ImageUpload) (*storage.Image, error) {
	if s.images == nil {
		return nil, ErrStorageDisabled
	}
	return s.images.Upload(ctx, folder, upload.Filename, upload.ContentType, upload.Size, upload.Body)
}

func (s *adminCatalogService) ExportProducts(ctx context.Context, filter models.AdminProductFilter) ([]byte, error) {
	filter.Limit = -1
	products, _, err := s.products.AdminList(ctx, filter)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	slugs := make(map[string]string, len(categories))
	for _, c := range categories {
		slugs[c.ID.String()] = c.Slug
	}
	return ProductsWorkbook(products, slugs)
}

// ImportProducts creates a product per valid sheet row. With validateOnly
// nothing is written.
func (s *adminCatalogService) ImportProducts(ctx context.Context, actorID uuid.UUID, r io.Reader, validateOnly bool) (*ImportResult, error) {
	rows, rowErrors, err := ParseProductSheet(r)
	if err != nil {
		return nil, &ValidationError{Field: "file", Message: err.Error()}
	}

	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		bySlug[c.Slug] = c.ID
	}

	result := &ImportResult{TotalRows: len(rows) + len(rowErrors), ValidateOnly: validateOnly}
	result.Errors = append(result.Errors, rowErrors...)

	for _, row := range rows {
		req := row.Request
		if row.Category != "" {
			id, ok := bySlug[row.Category]
			if !ok {
				result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Column: "category", Message: "unknown category " + row.Category})
				continue
			}
			req.CategoryID = &id
		}
		if req.Status != "" && !validProductStatus(req.Status) {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Column: "status", Message: "must be DRAFT, ACTIVE or ARCHIVED"})
			continue
		}
		if validateOnly {
			result.CreatedCount++
			continue
		}
		if _, err := s.CreateProduct(ctx, actorID, req); err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: row.Row, Message: err.Error()})
			continue
		}
		result.CreatedCount++
	}

	result.ErrorCount = len(result.Errors)
	if result.Errors == nil {
		result.Errors = []ImportRowError{}
	}
	return result, nil
}

func (s *adminCatalogService) applyProductRequest(ctx context.Context, product *models.Product, req models.ProductRequest) error {
	if strings.TrimSpace(req.NameEn) == "" {
		return &ValidationError{Field: "nameEn", Message: "is required"}
	}
	if req.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "must not be negative"}
	}
	if req.OriginalPrice != nil && req.OriginalPrice.IsNegative() {
		return &ValidationError{Field: "originalPrice", Message: "must not be negative"}
	}
	if req.StockQuantity < 0 {
		return &ValidationError{Field: "stockQuantity", Message: "must not be negative"}
	}
	status := req.Status
	if status == "" {
		status = models.ProductStatusActive
	}
	if !validProductStatus(status) {
		return &ValidationError{Field: "status", Message: "must be one of: DRAFT ACTIVE ARCHIVED"}
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &ValidationError{Field: "categoryId", Message: "category does not exist"}
			}
			return err
		}
	}

	product.CategoryID = req.CategoryID
	product.NameEn = strings.TrimSpace(req.NameEn)
	product.NameAr = strings.TrimSpace(req.NameAr)
	product.DescriptionEn = req.DescriptionEn
	product.DescriptionAr = req.DescriptionAr
	product.SKU = req.SKU
	product.Price = req.Price.Round(2)
	product.OriginalPrice = req.OriginalPrice
	product.ImageURL = req.ImageURL
	product.Images = models.StringList{}
	if req.Images != nil {
		product.Images = models.StringList(req.Images)
	}
	product.StockQuantity = req.StockQuantity
	product.IsNew = req.IsNew
	product.IsOnSale = req.IsOnSale
	product.IsFeatured = req.IsFeatured
	product.Status = status
	return nil
}

// productSlug validates an explicit slug, or derives a free one from name
func (s *adminCatalogService) productSlug(ctx context.Context, requested, name string, excludeID *uuid.UUID) (string, error) {
	return uniqueSlug(ctx, requested, name, "product", excludeID, s.products.SlugExists)
}

func (s *adminCatalogService) productChanged(ctx context.Context, product *models.Product, change string, actorID uuid.UUID) {
	if err := s.events.PublishProductChanged(ctx, product, change, actorID.String()); err != nil {
		s.logger.WithError(err).WithField("product_id", product.ID).Warn("Failed to publish product event")
	}
}

func validProductStatus(status models.ProductStatus) bool {
	switch status {
	case models.ProductStatusDraft, models.ProductStatusActive, models.ProductStatusArchived:
		return true
	}
	return false
}

// ===== Categories =====

func (s *adminCatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListAll(ctx)
}

func (s *adminCatalogService) CreateCategory(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	slug, err := uniqueSlug(ctx, req.Slug, req.NameEn, "category", nil, s.categories.SlugExists)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Slug: slug, IsActive: true}
	applyCategoryRequest(category, req)

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	s.directory.InvalidateDirectory()
	return category, nil
}

func (s *adminCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req models.CategoryRequest) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if req.Slug != "" && req.Slug != category.Slug {
		slug, err := uniqueSlug(ctx, req.Slug, req.NameEn, "category", &category.ID, s.categories.SlugExists)
		if err != nil {
			return nil, err
		}
		category.Slug = slug
	}
	applyCategoryRequest(category, req)

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	s.directory.InvalidateDirectory()
	return category, nil
}

// DeleteCategory refuses while any product still references the category
func (s *adminCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	count, err := s.categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w (%d)", ErrCategoryInUse, count)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	s.directory.InvalidateDirectory()
	return nil
}

func applyCategoryRequest(category *models.Category, req models.CategoryRequest) {
	category.NameEn = strings.TrimSpace(req.NameEn)
	category.NameAr = strings.TrimSpace(req.NameAr)
	category.DescriptionEn = req.DescriptionEn
	category.DescriptionAr = req.DescriptionAr
	category.ImageURL = req.ImageURL
	category.Position = req.Position
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
}

// ===== Slugs =====

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its ASCII letters and digits with hyphens
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

type slugExistsFunc func(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

// uniqueSlug returns requested when it is free, or the first free
// name-derived slug (name, name-2, name-3, ...) when nothing was requested.
func uniqueSlug(ctx context.Context, requested, name, fallback string, excludeID *uuid.UUID, exists slugExistsFunc) (string, error) {
	if requested != "" {
		slug := Slugify(requested)
		if slug == "" {
			return "", &ValidationError{Field: "slug", Message: "must contain letters or digits"}
		}
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", ErrSlugTaken
		}
		return slug, nil
	}

	base := Slugify(name)
	if base == "" {
		base = fallback + "-" + uuid.NewString()[:8]
	}
	for i := 1; i <= 50; i++ {
		slug := base
		if i > 1 {
			slug = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
	}
	return base + "-" + uuid.NewString()[:8], nil
}
