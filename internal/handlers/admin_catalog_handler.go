package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
	"storefront-service/internal/storage"
)

const maxImportSize = 10 << 20

var uploadFolders = map[string]bool{
	"products":   true,
	"categories": true,
	"banners":    true,
}

// AdminCatalogHandler manages products and categories for the back-office
type AdminCatalogHandler struct {
	catalog services.AdminCatalogService
	logger  *logrus.Logger
}

// NewAdminCatalogHandler creates a new admin catalog handler
func NewAdminCatalogHandler(catalog services.AdminCatalogService, logger *logrus.Logger) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalog: catalog, logger: logger}
}

func (h *AdminCatalogHandler) productFilter(c *gin.Context) (models.AdminProductFilter, bool) {
	page, limit := pageParams(c, 20)
	categoryID, ok := optionalUUIDQuery(c, "categoryId")
	if !ok {
		return models.AdminProductFilter{}, false
	}
	lowStock, _ := strconv.ParseBool(c.Query("lowStock"))
	return models.AdminProductFilter{
		Search:     c.Query("search"),
		Status:     models.ProductStatus(c.Query("status")),
		CategoryID: categoryID,
		LowStock:   lowStock,
		Page:       page,
		Limit:      limit,
	}, true
}

// ===== Products =====

// ListProducts handles GET /admin/products
// @Summary List products
// @Tags admin-products
// @Produce json
// @Param search query string false "Name, slug or SKU"
// @Param status query string false "DRAFT, ACTIVE or ARCHIVED"
// @Param categoryId query string false "Category ID"
// @Param lowStock query bool false "Only low or out of stock"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.ListResponse
// @Router /admin/products [get]
// @Security BearerAuth
func (h *AdminCatalogHandler) ListProducts(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}
	products, pagination, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list products")
		return
	}
	respondList(c, products, pagination)
}

// GetProduct handles GET /admin/products/:id
// @Summary Get product
// @Tags admin-products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [get]
// @Security BearerAuth
func (h *AdminCatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to load product")
		return
	}
	respondData(c, http.StatusOK, product)
}

// CreateProduct handles POST /admin/products
// @Summary Create product
// @Description The slug is generated from the English name when omitted
// @Tags admin-products
// @Accept json
// @Produce json
// @Param product body models.ProductRequest true "Product"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/products [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create product")
		return
	}
	respondData(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /admin/products/:id
// @Summary Update product
// @Tags admin-products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param product body models.ProductRequest true "Product"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [put]
// @Security BearerAuth
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update product")
		return
	}
	respondData(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /admin/products/:id
// @Summary Delete product
// @Tags admin-products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [delete]
// @Security BearerAuth
func (h *AdminCatalogHandler) DeleteProduct(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), actorID, id); err != nil {
		respondError(c, h.logger, err, "Failed to delete product")
		return
	}
	respondMessage(c, "Product deleted")
}

// BulkUpdateStatus handles POST /admin/products/bulk/status
// @Summary Change status of many products
// @Tags admin-products
// @Accept json
// @Produce json
// @Param request body models.BulkStatusRequest true "IDs and status"
// @Success 200 {object} models.SuccessResponse
// @Router /admin/products/bulk/status [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) BulkUpdateStatus(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	updated, err := h.catalog.BulkUpdateStatus(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update product status")
		return
	}
	respondData(c, http.StatusOK, gin.H{"updated": updated})
}

// UploadProductImage handles POST /admin/products/:id/image
// @Summary Upload primary product image
// @Description The previous primary image moves into the gallery
// @Tags admin-products
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param image formData file true "jpg, jpeg, png, webp or gif up to 5MB"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /admin/products/{id}/image [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) UploadProductImage(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	upload, closeFile, ok := h.readImage(c)
	if !ok {
		return
	}
	defer closeFile()

	product, err := h.catalog.UploadProductImage(c.Request.Context(), actorID, id, upload)
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload image")
		return
	}
	respondData(c, http.StatusOK, product)
}

// UploadImage handles POST /admin/uploads
// @Summary Upload an image
// @Description Stores an image for banners or categories and returns its public URL
// @Tags admin-products
// @Accept multipart/form-data
// @Produce json
// @Param folder query string false "products, categories or banners" default(products)
// @Param image formData file true "jpg, jpeg, png, webp or gif up to 5MB"
// @Success 201 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/uploads [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) UploadImage(c *gin.Context) {
	folder := c.DefaultQuery("folder", "products")
	if !uploadFolders[folder] {
		respondBadRequest(c, "INVALID_FOLDER", "folder must be one of products, categories, banners")
		return
	}
	upload, closeFile, ok := h.readImage(c)
	if !ok {
		return
	}
	defer closeFile()

	image, err := h.catalog.UploadImage(c.Request.Context(), folder, upload)
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload image")
		return
	}
	respondData(c, http.StatusCreated, image)
}

// readImage opens the "image" form file after checking type and size
func (h *AdminCatalogHandler) readImage(c *gin.Context) (services.ImageUpload, func(), bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxImageSize+(1<<20))

	header, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", "image file is required")
		return services.ImageUpload{}, nil, false
	}
	contentType := header.Header.Get("Content-Type")
	if _, _, err := storage.ValidateImage(header.Filename, contentType, header.Size); err != nil {
		respondError(c, h.logger, err, "Invalid image")
		return services.ImageUpload{}, nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, err, "Failed to read image")
		return services.ImageUpload{}, nil, false
	}
	return services.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, func() { _ = file.Close() }, true
}

// ExportProducts handles GET /admin/products/export
// @Summary Export products as XLSX
// @Tags admin-products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param search query string false "Name, slug or SKU"
// @Param status query string false "DRAFT, ACTIVE or ARCHIVED"
// @Param categoryId query string false "Category ID"
// @Success 200 {file} binary
// @Router /admin/products/export [get]
// @Security BearerAuth
func (h *AdminCatalogHandler) ExportProducts(c *gin.Context) {
	filter, ok := h.productFilter(c)
	if !ok {
		return
	}
	body, err := h.catalog.ExportProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "Failed to export products")
		return
	}
	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	sendAttachment(c, services.XLSXContentType, filename, body)
}

// ImportProducts handles POST /admin/products/import
// @Summary Import products from XLSX
// @Description Rows use the export columns. With validateOnly=true nothing is written.
// @Tags admin-products
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "XLSX workbook"
// @Param validateOnly query bool false "Dry run"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products/import [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) ImportProducts(c *gin.Context) {
	actorID, ok := currentUser(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "VALIDATION_ERROR", "file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, h.logger, err, "Failed to read file")
		return
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	validateOnly, _ := strconv.ParseBool(c.Query("validateOnly"))
	result, err := h.catalog.ImportProducts(c.Request.Context(), actorID, file, validateOnly)
	if err != nil {
		respondError(c, h.logger, err, "Failed to import products")
		return
	}
	respondData(c, http.StatusOK, result)
}

// ===== Categories =====

// ListCategories handles GET /admin/categories
// @Summary List all categories
// @Tags admin-categories
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Router /admin/categories [get]
// @Security BearerAuth
func (h *AdminCatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list categories")
		return
	}
	respondData(c, http.StatusOK, categories)
}

// CreateCategory handles POST /admin/categories
// @Summary Create category
// @Tags admin-categories
// @Accept json
// @Produce json
// @Param category body models.CategoryRequest true "Category"
// @Success 201 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/categories [post]
// @Security BearerAuth
func (h *AdminCatalogHandler) CreateCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.catalog.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to create category")
		return
	}
	respondData(c, http.StatusCreated, category)
}

// UpdateCategory handles PUT /admin/categories/:id
// @Summary Update category
// @Tags admin-categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param category body models.CategoryRequest true "Category"
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/categories/{id} [put]
// @Security BearerAuth
func (h *AdminCatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	category, err := h.catalog.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err, "Failed to update category")
		return
	}
	respondData(c, http.StatusOK, category)
}

// DeleteCategory handles DELETE /admin/categories/:id
// @Summary Delete category
// @Description Refused while products still reference the category
// @Tags admin-categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} models.SuccessResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/categories/{id} [delete]
// @Security BearerAuth
func (h *AdminCatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "Failed to delete category")
		return
	}
	respondMessage(c, "Category deleted")
}
