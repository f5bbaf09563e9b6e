package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/catalog"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

type catalogFixture struct {
	svc        CatalogService
	products   *MockProductsRepository
	categories *MockCategoriesRepository
	content    *MockContentRepository
}

func newCatalogFixture() catalogFixture {
	f := catalogFixture{
		products:   new(MockProductsRepository),
		categories: new(MockCategoriesRepository),
		content:    new(MockContentRepository),
	}
	f.svc = NewCatalogService(f.products, f.categories, f.content, time.Minute, time.Second, nil, testLogger())
	return f
}

func TestCatalogService_Browse(t *testing.T) {
	ctx := context.Background()
	page := catalog.NewPageRequest(1, 12)
	rugs := models.Category{ID: uuid.New(), Slug: "rugs", NameEn: "Rugs", IsActive: true}

	t.Run("populated with resolved category", func(t *testing.T) {
		f := newCatalogFixture()
		rug := activeProduct("Kilim Rug", "220.00", 3)

		f.categories.On("ListActive", mock.Anything).Return([]models.Category{rugs}, nil)
		f.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(q catalog.Query) bool {
			return q.CategoryID != nil && *q.CategoryID == rugs.ID &&
				q.RequireOnSale && q.Sort == catalog.SortPriceAsc &&
				q.MinPrice.Equal(decimal.NewFromInt(100))
		}), page).Return([]models.Product{*rug}, int64(1), nil)

		res, err := f.svc.Browse(ctx, "category=rugs&min_price=100&filter=sale&sort=price_asc", page)
		require.NoError(t, err)
		assert.Equal(t, catalog.StatePopulated, res.State)
		assert.Len(t, res.Products, 1)
		assert.Equal(t, "rugs", res.Filters.Category)
		assert.Empty(t, res.UnknownCategory)
		assert.Equal(t, int64(1), res.Pagination.Total)
		assert.Contains(t, res.QueryString, "category=rugs")
		assert.Equal(t, res.Filters.CountActive(), res.ActiveFilters)
	})

	t.Run("empty result", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("ListActive", mock.Anything).Return([]models.Category{rugs}, nil)
		f.products.On("ListProducts", mock.Anything, mock.Anything, page).Return([]models.Product{}, int64(0), nil)

		res, err := f.svc.Browse(ctx, "search=nothing", page)
		require.NoError(t, err)
		assert.Equal(t, catalog.StateEmpty, res.State)
		assert.Empty(t, res.Products)
	})

	t.Run("unknown category is dropped and reported", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("ListActive", mock.Anything).Return([]models.Category{rugs}, nil)
		f.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(q catalog.Query) bool {
			return q.CategoryID == nil
		}), page).Return([]models.Product{}, int64(0), nil)

		res, err := f.svc.Browse(ctx, "category=lamps", page)
		require.NoError(t, err)
		assert.Equal(t, "lamps", res.UnknownCategory)
		assert.Equal(t, "lamps", res.Filters.Category)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("ListActive", mock.Anything).Return([]models.Category{}, nil)
		f.products.On("ListProducts", mock.Anything, mock.Anything, page).Return(nil, int64(0), errors.New("connection reset"))

		res, err := f.svc.Browse(ctx, "", page)
		assert.Nil(t, res)
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("directory failure", func(t *testing.T) {
		f := newCatalogFixture()
		f.categories.On("ListActive", mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.svc.Browse(ctx, "", page)
		assert.ErrorContains(t, err, "failed to load categories")
		f.products.AssertNotCalled(t, "ListProducts", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogService_DirectoryCache(t *testing.T) {
	ctx := context.Background()
	page := catalog.NewPageRequest(1, 12)
	f := newCatalogFixture()

	f.categories.On("ListActive", mock.Anything).Return([]models.Category{}, nil)
	f.products.On("ListProducts", mock.Anything, mock.Anything, page).Return([]models.Product{}, int64(0), nil)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Browse(ctx, "", page)
		require.NoError(t, err)
	}
	f.categories.AssertNumberOfCalls(t, "ListActive", 1)

	f.svc.InvalidateDirectory()
	_, err := f.svc.Browse(ctx, "", page)
	require.NoError(t, err)
	f.categories.AssertNumberOfCalls(t, "ListActive", 2)
}

func TestDirectoryCache_ServesStaleOnFailure(t *testing.T) {
	categories := new(MockCategoriesRepository)
	rugs := models.Category{ID: uuid.New(), Slug: "rugs"}
	cache := &directoryCache{categories: categories, ttl: time.Nanosecond}

	categories.On("ListActive", mock.Anything).Return([]models.Category{rugs}, nil).Once()
	categories.On("ListActive", mock.Anything).Return(nil, errors.New("timeout")).Once()

	first, err := cache.get(context.Background())
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	second, err := cache.get(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)
	id, ok := second.CategoryID("rugs")
	assert.True(t, ok)
	assert.Equal(t, rugs.ID, id)
}

func TestDirectoryCache_InvalidateDuringRefresh(t *testing.T) {
	categories := new(MockCategoriesRepository)
	rugs := models.Category{ID: uuid.New(), Slug: "rugs"}
	lamps := models.Category{ID: uuid.New(), Slug: "lamps"}
	cache := &directoryCache{categories: categories, ttl: time.Minute}

	started := make(chan struct{})
	release := make(chan struct{})
	categories.On("ListActive", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return([]models.Category{rugs}, nil).Once()
	categories.On("ListActive", mock.Anything).Return([]models.Category{rugs, lamps}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := cache.get(context.Background())
		done <- err
	}()
	<-started
	cache.invalidate()
	close(release)
	require.NoError(t, <-done)

	cache.mu.RLock()
	assert.Nil(t, cache.dir)
	cache.mu.RUnlock()

	dir, err := cache.get(context.Background())
	require.NoError(t, err)
	_, ok := dir.CategoryID("lamps")
	assert.True(t, ok)
	categories.AssertNumberOfCalls(t, "ListActive", 2)
}

func TestSharedSource_CallerCancelDoesNotFailOthers(t *testing.T) {
	products := new(MockProductsRepository)
	src := &sharedSource{products: products, timeout: time.Second}
	q := catalog.Query{Sort: catalog.SortNewest}
	page := catalog.NewPageRequest(1, 12)
	items := []models.Product{*activeProduct("Brass Lamp", "120.00", 3)}

	var once sync.Once
	var flightCtx context.Context
	started := make(chan struct{})
	release := make(chan struct{})
	products.On("ListProducts", mock.Anything, q, page).Run(func(args mock.Arguments) {
		once.Do(func() {
			flightCtx = args.Get(0).(context.Context)
			close(started)
		})
		<-release
	}).Return(items, int64(1), nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, _, err := src.ListProducts(firstCtx, q, page)
		first <- err
	}()
	<-started

	type result struct {
		products []models.Product
		total    int64
		err      error
	}
	second := make(chan result, 1)
	go func() {
		got, total, err := src.ListProducts(context.Background(), q, page)
		second <- result{got, total, err}
	}()

	cancelFirst()
	assert.ErrorIs(t, <-first, context.Canceled)
	assert.NoError(t, flightCtx.Err())

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.products, 1)
	assert.Equal(t, int64(1), res.total)
}

func TestCatalogService_ProductBySlug(t *testing.T) {
	ctx := context.Background()

	t.Run("active product", func(t *testing.T) {
		f := newCatalogFixture()
		product := activeProduct("Copper Tray", "45.00", 4)
		f.products.On("GetBySlug", mock.Anything, "copper-tray").Return(product, nil)

		got, err := f.svc.ProductBySlug(ctx, "copper-tray")
		require.NoError(t, err)
		assert.Equal(t, product.ID, got.ID)
	})

	t.Run("draft is hidden", func(t *testing.T) {
		f := newCatalogFixture()
		product := activeProduct("Draft Tray", "45.00", 4)
		product.Status = models.ProductStatusDraft
		f.products.On("GetBySlug", mock.Anything, "draft-tray").Return(product, nil)

		_, err := f.svc.ProductBySlug(ctx, "draft-tray")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("missing", func(t *testing.T) {
		f := newCatalogFixture()
		f.products.On("GetBySlug", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.ProductBySlug(ctx, "nope")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestCatalogService_FilterMetadata(t *testing.T) {
	f := newCatalogFixture()
	f.products.On("PriceBounds", mock.Anything).Return(decimal.Zero, decimal.Zero, nil)
	f.categories.On("ListActive", mock.Anything).Return([]models.Category{}, nil)

	meta, err := f.svc.FilterMetadata(context.Background())
	require.NoError(t, err)
	assert.True(t, meta.MaxPrice.Equal(decimal.NewFromInt(catalog.DefaultMaxPrice)))
}

func TestCatalogService_HomeSections(t *testing.T) {
	f := newCatalogFixture()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	f.content.On("ListBanners", mock.Anything, true).Return([]models.Banner{
		{TitleEn: "Live", IsActive: true, StartsAt: &past},
		{TitleEn: "Scheduled", IsActive: true, StartsAt: &future},
	}, nil)
	f.categories.On("ListActive", mock.Anything).Return([]models.Category{}, nil)
	featured := activeProduct("Featured", "10.00", 1)
	f.products.On("ListProducts", mock.Anything, mock.MatchedBy(func(q catalog.Query) bool {
		return q.RequireFeatured
	}), mock.Anything).Return([]models.Product{*featured}, int64(1), nil)
	f.products.On("ListProducts", mock.Anything, mock.Anything, mock.Anything).Return([]models.Product{}, int64(0), nil)

	home, err := f.svc.HomeSections(context.Background())
	require.NoError(t, err)
	require.Len(t, home.Banners, 1)
	assert.Equal(t, "Live", home.Banners[0].TitleEn)
	assert.Len(t, home.Featured, 1)
	assert.Empty(t, home.NewArrivals)
	assert.Empty(t, home.OnSale)
}
