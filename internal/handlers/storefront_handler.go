package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"storefront-service/internal/catalog"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

// StorefrontHandler serves the public catalog
type StorefrontHandler struct {
	catalog services.CatalogService
	content services.ContentService
	logger  *logrus.Logger
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(catalogService services.CatalogService, contentService services.ContentService, logger *logrus.Logger) *StorefrontHandler {
	return &StorefrontHandler{catalog: catalogService, content: contentService, logger: logger}
}

// productView adds the locale-resolved display fields a product card needs
type productView struct {
	*models.Product
	Name            string                 `json:"name"`
	DiscountPercent int                    `json:"discountPercent"`
	InventoryStatus models.InventoryStatus `json:"inventoryStatus"`
}

func newProductView(p *models.Product, locale models.Locale) productView {
	return productView{
		Product:         p,
		Name:            p.LocalizedName(locale),
		DiscountPercent: p.DiscountPercent(),
		InventoryStatus: p.InventoryStatus(),
	}
}

func newProductViews(products []models.Product, locale models.Locale) []productView {
	views := make([]productView, len(products))
	for i := range products {
		views[i] = newProductView(&products[i], locale)
	}
	return views
}

type browseView struct {
	State           catalog.ResultState `json:"state"`
	Products        []productView       `json:"products"`
	Filters         catalog.FilterState `json:"filters"`
	QueryString     string              `json:"queryString"`
	ActiveFilters   int                 `json:"activeFilters"`
	UnknownCategory string              `json:"unknownCategory,omitempty"`
}

type homeView struct {
	Banners     []models.Banner   `json:"banners"`
	Categories  []models.Category `json:"categories"`
	Featured    []productView     `json:"featured"`
	NewArrivals []productView     `json:"newArrivals"`
	OnSale      []productView     `json:"onSale"`
}

// BrowseProducts handles GET /storefront/products
// @Summary Browse the catalog
// @Description Filter, sort and paginate active products. Filter parameters round-trip through queryString.
// @Tags storefront
// @Produce json
// @Param search query string false "Name search (English or Arabic)"
// @Param category query string false "Category slug"
// @Param min_price query number false "Minimum price" default(0)
// @Param max_price query number false "Maximum price" default(1000)
// @Param filter query string false "Any of new, sale, featured"
// @Param sort query string false "newest, oldest, price_asc or price_desc" default(newest)
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(24)
// @Param lang query string false "en or ar"
// @Success 200 {object} localizedResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /storefront/products [get]
func (h *StorefrontHandler) BrowseProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.catalog.Browse(c.Request.Context(), c.Request.URL.RawQuery, catalog.NewPageRequest(page, limit))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load products")
		return
	}

	respondLocalized(c, browseView{
		State:           result.State,
		Products:        newProductViews(result.Products, middleware.LocaleFrom(c)),
		Filters:         result.Filters,
		QueryString:     result.QueryString,
		ActiveFilters:   result.ActiveFilters,
		UnknownCategory: result.UnknownCategory,
	}, result.Pagination)
}

// GetProduct handles GET /storefront/products/:slug
// @Summary Get product by slug
// @Tags storefront
// @Produce json
// @Param slug path string true "Product slug"
// @Success 200 {object} localizedResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /storefront/products/{slug} [get]
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.ProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load product")
		return
	}
	respondLocalized(c, newProductView(product, middleware.LocaleFrom(c)), nil)
}

// ListCategories handles GET /storefront/categories
// @Summary List active categories
// @Tags storefront
// @Produce json
// @Success 200 {object} localizedResponse
// @Router /storefront/categories [get]
func (h *StorefrontHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load categories")
		return
	}
	respondLocalized(c, categories, nil)
}

// FilterMetadata handles GET /storefront/filters
// @Summary Filter panel bounds
// @Description Price range and category counts for the filter panel
// @Tags storefront
// @Produce json
// @Success 200 {object} localizedResponse
// @Router /storefront/filters [get]
func (h *StorefrontHandler) FilterMetadata(c *gin.Context) {
	meta, err := h.catalog.FilterMetadata(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load filter metadata")
		return
	}
	respondLocalized(c, meta, nil)
}

// Home handles GET /storefront/home
// @Summary Landing page sections
// @Tags storefront
// @Produce json
// @Success 200 {object} localizedResponse
// @Router /storefront/home [get]
func (h *StorefrontHandler) Home(c *gin.Context) {
	sections, err := h.catalog.HomeSections(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load home page")
		return
	}

	locale := middleware.LocaleFrom(c)
	respondLocalized(c, homeView{
		Banners:     sections.Banners,
		Categories:  sections.Categories,
		Featured:    newProductViews(sections.Featured, locale),
		NewArrivals: newProductViews(sections.NewArrivals, locale),
		OnSale:      newProductViews(sections.OnSale, locale),
	}, nil)
}

// ActiveBanners handles GET /storefront/banners
// @Summary Currently live banners
// @Tags storefront
// @Produce json
// @Success 200 {object} localizedResponse
// @Router /storefront/banners [get]
func (h *StorefrontHandler) ActiveBanners(c *gin.Context) {
	banners, err := h.content.ActiveBanners(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to load banners")
		return
	}
	respondLocalized(c, banners, nil)
}
