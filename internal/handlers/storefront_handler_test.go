package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/catalog"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Locale(models.LocaleEnglish))
	return r
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// withUser stands in for RequireAuth
func withUser(userID uuid.UUID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_email", email)
		c.Next()
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string              `json:"code"`
		Message string              `json:"message"`
		Field   string              `json:"field"`
		Details []models.FieldError `json:"details"`
	} `json:"error"`
	RequestID string `json:"requestId"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	decodeBody(t, w, &env)
	return env
}

func sampleProduct(nameEn, nameAr string) models.Product {
	original := decimal.NewFromInt(200)
	return models.Product{
		ID:            uuid.New(),
		NameEn:        nameEn,
		NameAr:        nameAr,
		Slug:          services.Slugify(nameEn),
		Price:         decimal.NewFromInt(150),
		OriginalPrice: &original,
		StockQuantity: 3,
		IsOnSale:      true,
		Status:        models.ProductStatusActive,
	}
}

func setupStorefront() (*gin.Engine, *MockCatalogService, *MockContentService) {
	catalogSvc := new(MockCatalogService)
	contentSvc := new(MockContentService)
	h := NewStorefrontHandler(catalogSvc, contentSvc, testLogger())

	r := setupTestRouter()
	r.GET("/storefront/products", h.BrowseProducts)
	r.GET("/storefront/products/:slug", h.GetProduct)
	r.GET("/storefront/categories", h.ListCategories)
	r.GET("/storefront/filters", h.FilterMetadata)
	r.GET("/storefront/home", h.Home)
	r.GET("/storefront/banners", h.ActiveBanners)
	return r, catalogSvc, contentSvc
}

func TestBrowseProducts(t *testing.T) {
	r, catalogSvc, _ := setupStorefront()

	rawQuery := "category=abayas&filter=sale&lang=ar&page=2"
	state := catalog.Hydrate(rawQuery)
	catalogSvc.On("Browse", mock.Anything, rawQuery, catalog.PageRequest{Page: 2, Limit: catalog.DefaultPageLimit}).
		Return(&services.BrowseResult{
			State:         catalog.StatePopulated,
			Products:      []models.Product{sampleProduct("Black Abaya", "عباية سوداء")},
			Filters:       state,
			QueryString:   state.QueryString(),
			ActiveFilters: state.CountActive(),
			Pagination:    models.NewPaginationInfo(2, catalog.DefaultPageLimit, 30),
		}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/storefront/products?"+rawQuery, nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Locale string `json:"locale"`
		Dir    string `json:"dir"`
		Data   struct {
			State         string `json:"state"`
			QueryString   string `json:"queryString"`
			ActiveFilters int    `json:"activeFilters"`
			Products      []struct {
				Name            string `json:"name"`
				NameEn          string `json:"nameEn"`
				DiscountPercent int    `json:"discountPercent"`
				InventoryStatus string `json:"inventoryStatus"`
			} `json:"products"`
		} `json:"data"`
		Pagination models.PaginationInfo `json:"pagination"`
	}
	decodeBody(t, w, &resp)

	assert.Equal(t, "ar", resp.Locale)
	assert.Equal(t, "rtl", resp.Dir)
	assert.Equal(t, "populated", resp.Data.State)
	assert.Equal(t, 2, resp.Data.ActiveFilters)
	assert.Contains(t, resp.Data.QueryString, "category=abayas")
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "عباية سوداء", resp.Data.Products[0].Name)
	assert.Equal(t, "Black Abaya", resp.Data.Products[0].NameEn)
	assert.Equal(t, 25, resp.Data.Products[0].DiscountPercent)
	assert.Equal(t, "LOW_STOCK", resp.Data.Products[0].InventoryStatus)
	assert.True(t, resp.Pagination.HasPrevious)
	catalogSvc.AssertExpectations(t)
}

func TestBrowseProductsErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"timeout", fmt.Errorf("failed to list products: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, catalogSvc, _ := setupStorefront()
			catalogSvc.On("Browse", mock.Anything, "", catalog.NewPageRequest(0, 0)).Return(nil, tt.err)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/storefront/products", nil))

			assert.Equal(t, tt.status, w.Code)
			env := decodeError(t, w)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.RequestID)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestGetProductBySlug(t *testing.T) {
	r, catalogSvc, _ := setupStorefront()
	product := sampleProduct("Silk Scarf", "وشاح حرير")
	catalogSvc.On("ProductBySlug", mock.Anything, "silk-scarf").Return(&product, nil)
	catalogSvc.On("ProductBySlug", mock.Anything, "gone").Return(nil, services.ErrProductNotFound)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/storefront/products/silk-scarf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Silk Scarf"`)
	assert.Contains(t, w.Body.String(), `"dir":"ltr"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/storefront/products/gone", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestStorefrontListings(t *testing.T) {
	r, catalogSvc, contentSvc := setupStorefront()
	catalogSvc.On("Categories", mock.Anything).Return([]models.Category{{ID: uuid.New(), NameEn: "Abayas", NameAr: "عبايات", Slug: "abayas"}}, nil)
	catalogSvc.On("FilterMetadata", mock.Anything).Return(&models.FilterMetadata{MinPrice: decimal.NewFromInt(10), MaxPrice: decimal.NewFromInt(900)}, nil)
	catalogSvc.On("HomeSections", mock.Anything).Return(&services.HomeSections{
		Featured: []models.Product{sampleProduct("Gold Ring", "خاتم ذهب")},
	}, nil)
	contentSvc.On("ActiveBanners", mock.Anything).Return([]models.Banner{{ID: uuid.New(), TitleEn: "Eid Sale"}}, nil)

	for path, want := range map[string]string{
		"/storefront/categories":   `"slug":"abayas"`,
		"/storefront/filters":      `"maxPrice":"900"`,
		"/storefront/home?lang=ar": `"name":"خاتم ذهب"`,
		"/storefront/banners":      `"titleEn":"Eid Sale"`,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}
