package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"storefront-service/internal/catalog"
	"storefront-service/internal/metrics"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

const homeSectionSize = 8

// home sections are not bounded by the filter panel's price range
var unboundedPrice = decimal.NewFromInt(1_000_000_000)

// CatalogService serves the public storefront catalog
type CatalogService interface {
	Browse(ctx context.Context, rawQuery string, page catalog.PageRequest) (*BrowseResult, error)
	ProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	Categories(ctx context.Context) ([]models.Category, error)
	FilterMetadata(ctx context.Context) (*models.FilterMetadata, error)
	HomeSections(ctx context.Context) (*HomeSections, error)
	InvalidateDirectory()
}

// BrowseResult is one rendered catalog page
type BrowseResult struct {
	State           catalog.ResultState    `json:"state"`
	Products        []models.Product       `json:"products"`
	Filters         catalog.FilterState    `json:"filters"`
	QueryString     string                 `json:"queryString"`
	ActiveFilters   int                    `json:"activeFilters"`
	UnknownCategory string                 `json:"unknownCategory,omitempty"`
	Pagination      *models.PaginationInfo `json:"pagination"`
}

// HomeSections is the storefront landing page content
type HomeSections struct {
	Banners     []models.Banner   `json:"banners"`
	Categories  []models.Category `json:"categories"`
	Featured    []models.Product  `json:"featured"`
	NewArrivals []models.Product  `json:"newArrivals"`
	OnSale      []models.Product  `json:"onSale"`
}

type catalogService struct {
	products     repository.ProductsRepositoryInterface
	categories   repository.CategoriesRepositoryInterface
	content      repository.ContentRepositoryInterface
	source       *sharedSource
	directory    *directoryCache
	queryTimeout time.Duration
	metrics      *metrics.Metrics
	logger       *logrus.Logger
	now          func() time.Time
}

// NewCatalogService creates a catalog service. Identical concurrent product
// queries share one store round trip.
func NewCatalogService(
	products repository.ProductsRepositoryInterface,
	categories repository.CategoriesRepositoryInterface,
	content repository.ContentRepositoryInterface,
	directoryTTL, queryTimeout time.Duration,
	m *metrics.Metrics,
	logger *logrus.Logger,
) CatalogService {
	return &catalogService{
		products:     products,
		categories:   categories,
		content:      content,
		source:       &sharedSource{products: products, timeout: queryTimeout, metrics: m},
		directory:    &directoryCache{categories: categories, ttl: directoryTTL},
		queryTimeout: queryTimeout,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Browse hydrates the filters from rawQuery and loads one page of matches
func (s *catalogService) Browse(ctx context.Context, rawQuery string, page catalog.PageRequest) (*BrowseResult, error) {
	dir, err := s.directory.get(ctx)
	if err != nil {
		s.metrics.ObserveCatalogResult(string(catalog.StateError))
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	listing := catalog.NewListing(s.source, dir, rawQuery, nil, catalog.WithPage(page))
	res := listing.Load(ctx)
	s.metrics.ObserveCatalogResult(string(res.State))

	state := listing.State()
	unknown, unresolved := catalog.UnresolvedCategory(state, dir)
	if unresolved {
		s.logger.WithField("category", unknown).Debug("Ignoring unknown category filter")
	}

	if res.State == catalog.StateError {
		return nil, fmt.Errorf("failed to list products: %w", res.Err)
	}

	out := &BrowseResult{
		State:         res.State,
		Products:      res.Products,
		Filters:       state,
		QueryString:   listing.QueryString(),
		ActiveFilters: state.CountActive(),
		Pagination:    models.NewPaginationInfo(res.Page.Page, res.Page.Limit, res.Total),
	}
	if unresolved {
		out.UnknownCategory = unknown
	}
	return out, nil
}

func (s *catalogService) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.products.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (s *catalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListActive(ctx)
}

// FilterMetadata returns the price bounds and categories for the filter panel
func (s *catalogService) FilterMetadata(ctx context.Context) (*models.FilterMetadata, error) {
	minPrice, maxPrice, err := s.products.PriceBounds(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if maxPrice.IsZero() {
		maxPrice = decimal.NewFromInt(catalog.DefaultMaxPrice)
	}
	return &models.FilterMetadata{MinPrice: minPrice, MaxPrice: maxPrice, Categories: categories}, nil
}

func (s *catalogService) HomeSections(ctx context.Context) (*HomeSections, error) {
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

	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	page := catalog.NewPageRequest(1, homeSectionSize)
	section := func(q catalog.Query) ([]models.Product, error) {
		q.MaxPrice = unboundedPrice
		products, _, err := s.source.ListProducts(ctx, q, page)
		return products, err
	}

	home := &HomeSections{Banners: live, Categories: categories}
	if home.Featured, err = section(catalog.Query{RequireFeatured: true, Sort: catalog.SortNewest}); err != nil {
		return nil, err
	}
	if home.NewArrivals, err = section(catalog.Query{RequireNew: true, Sort: catalog.SortNewest}); err != nil {
		return nil, err
	}
	if home.OnSale, err = section(catalog.Query{RequireOnSale: true, Sort: catalog.SortPriceAsc}); err != nil {
		return nil, err
	}
	return home, nil
}

// InvalidateDirectory drops the cached category directory after a category write
func (s *catalogService) InvalidateDirectory() {
	s.directory.invalidate()
}

// sharedSource collapses identical in-flight catalog queries into one call.
// The call runs detached from any single caller so one caller giving up does
// not fail the others waiting on it.
type sharedSource struct {
	products repository.ProductsRepositoryInterface
	timeout  time.Duration
	group    singleflight.Group
	metrics  *metrics.Metrics
}

type productPage struct {
	products []models.Product
	total    int64
}

func (s *sharedSource) ListProducts(ctx context.Context, q catalog.Query, page catalog.PageRequest) ([]models.Product, int64, error) {
	ch := s.group.DoChan(q.Key()+"|"+page.Key(), func() (interface{}, error) {
		flightCtx, cancel := s.flightContext(ctx)
		defer cancel()

		products, total, err := s.products.ListProducts(flightCtx, q, page)
		if err != nil {
			return nil, err
		}
		return productPage{products: products, total: total}, nil
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.metrics.ObserveSharedQuery()
		}
		if res.Err != nil {
			return nil, 0, res.Err
		}
		p := res.Val.(productPage)
		return p.products, p.total, nil
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

// flightContext keeps ctx values but not its cancellation, bounded by timeout
func (s *sharedSource) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		return context.WithTimeout(detached, s.timeout)
	}
	return context.WithCancel(detached)
}

// directoryCache keeps the active category directory for ttl. A failed
// refresh keeps serving the previous snapshot when there is one.
type directoryCache struct {
	categories repository.CategoriesRepositoryInterface
	ttl        time.Duration
	group      singleflight.Group

	mu       sync.RWMutex
	dir      *catalog.Directory
	loadedAt time.Time
	// version moves on every invalidate; a refresh started before it is not stored
	version uint64
}

func (d *directoryCache) get(ctx context.Context) (*catalog.Directory, error) {
	d.mu.RLock()
	dir, loadedAt := d.dir, d.loadedAt
	d.mu.RUnlock()
	if dir != nil && time.Since(loadedAt) < d.ttl {
		return dir, nil
	}

	v, err, _ := d.group.Do("directory", func() (interface{}, error) {
		d.mu.RLock()
		version := d.version
		d.mu.RUnlock()

		categories, err := d.categories.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		fresh := catalog.NewDirectory(categories)
		d.mu.Lock()
		if d.version == version {
			d.dir, d.loadedAt = fresh, time.Now()
		}
		d.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		if dir != nil {
			return dir, nil
		}
		return nil, err
	}
	return v.(*catalog.Directory), nil
}

func (d *directoryCache) invalidate() {
	d.mu.Lock()
	d.dir = nil
	d.version++
	d.mu.Unlock()
	d.group.Forget("directory")
}
