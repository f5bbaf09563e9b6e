package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront-service/internal/models"
)

var (
	lightingID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	rugsID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func testDirectory() *Directory {
	return NewDirectory([]models.Category{
		{ID: lightingID, Slug: "lighting", NameEn: "Lighting", NameAr: "إضاءة", IsActive: true},
		{ID: rugsID, Slug: "rugs", NameEn: "Rugs", NameAr: "سجاد", IsActive: true},
		{ID: uuid.New(), Slug: "hidden", NameEn: "Hidden", IsActive: false},
	})
}

func product(name, nameAr string, price float64, category uuid.UUID, age time.Duration) models.Product {
	cat := category
	return models.Product{
		ID:         uuid.New(),
		NameEn:     name,
		NameAr:     nameAr,
		Slug:       strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Price:      decimal.NewFromFloat(price),
		CategoryID: &cat,
		Status:     models.ProductStatusActive,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	}
}

func testProducts() []models.Product {
	brass := product("Brass Lamp", "مصباح نحاسي", 45, lightingID, 1*time.Hour)
	brass.IsOnSale = true
	lantern := product("Moroccan Lantern", "فانوس مغربي", 120, lightingID, 2*time.Hour)
	lantern.IsFeatured = true
	rug := product("Kilim Rug", "سجادة كليم", 300, rugsID, 3*time.Hour)
	rug.IsNew = true
	tray := product("Copper Tray", "صينية نحاس", 15, rugsID, 4*time.Hour)
	return []models.Product{brass, lantern, rug, tray}
}

// memorySource evaluates queries in memory the way the SQL repository does
type memorySource struct {
	mu       sync.Mutex
	products []models.Product
	err      error
	calls    []Query
	block    chan struct{}
}

func (s *memorySource) ListProducts(ctx context.Context, q Query, page PageRequest) ([]models.Product, int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, q)
	err := s.err
	block := s.block
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if err != nil {
		return nil, 0, err
	}

	var out []models.Product
	for _, p := range s.products {
		if matches(q, p) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch q.Sort {
		case SortOldest:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case SortPriceAsc:
			return out[i].Price.LessThan(out[j].Price)
		case SortPriceDesc:
			return out[i].Price.GreaterThan(out[j].Price)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})

	total := int64(len(out))
	start := page.Offset()
	if start > len(out) {
		start = len(out)
	}
	end := start + page.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *memorySource) queries() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.calls...)
}

func matches(q Query, p models.Product) bool {
	if q.Search != "" {
		term := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.NameEn), term) && !strings.Contains(strings.ToLower(p.NameAr), term) {
			return false
		}
	}
	if q.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *q.CategoryID) {
		return false
	}
	if q.RequireNew && !p.IsNew || q.RequireOnSale && !p.IsOnSale || q.RequireFeatured && !p.IsFeatured {
		return false
	}
	return !p.Price.LessThan(q.MinPrice) && !p.Price.GreaterThan(q.MaxPrice)
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.NameEn)
	}
	return out
}
