package catalog

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"storefront-service/internal/models"
)

const (
	DefaultPageLimit = 24
	MaxPageLimit     = 100
)

// CategoryDirectory resolves category slugs to identifiers
type CategoryDirectory interface {
	CategoryID(slug string) (uuid.UUID, bool)
}

// Directory is an immutable slug index over active categories
type Directory struct {
	bySlug map[string]uuid.UUID
}

// NewDirectory snapshots the active categories
func NewDirectory(categories []models.Category) *Directory {
	d := &Directory{bySlug: make(map[string]uuid.UUID, len(categories))}
	for _, c := range categories {
		if c.IsActive && c.Slug != "" {
			d.bySlug[c.Slug] = c.ID
		}
	}
	return d
}

func (d *Directory) CategoryID(slug string) (uuid.UUID, bool) {
	if d == nil {
		return uuid.Nil, false
	}
	id, ok := d.bySlug[slug]
	return id, ok
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.bySlug)
}

// Query is the set of constraints a listing sends to the catalog store
type Query struct {
	Search          string
	CategoryID      *uuid.UUID
	RequireNew      bool
	RequireOnSale   bool
	RequireFeatured bool
	MinPrice        decimal.Decimal
	MaxPrice        decimal.Decimal
	Sort            SortOption
}

// Translate maps a filter state onto query constraints. It never fails: a
// category slug the directory does not know is dropped, which leaves the
// query identical to one with no category selected.
func Translate(state FilterState, directory CategoryDirectory) Query {
	q := Query{
		Search:          state.Search,
		RequireNew:      state.IsNew,
		RequireOnSale:   state.IsOnSale,
		RequireFeatured: state.IsFeatured,
		MinPrice:        decimal.NewFromFloat(state.MinPrice),
		MaxPrice:        decimal.NewFromFloat(state.MaxPrice),
		Sort:            ParseSort(string(state.Sort)),
	}
	if state.Category != "" && directory != nil {
		if id, ok := directory.CategoryID(state.Category); ok {
			q.CategoryID = &id
		}
	}
	return q
}

// UnresolvedCategory reports a selected category the directory cannot resolve
func UnresolvedCategory(state FilterState, directory CategoryDirectory) (string, bool) {
	if state.Category == "" {
		return "", false
	}
	if directory != nil {
		if _, ok := directory.CategoryID(state.Category); ok {
			return "", false
		}
	}
	return state.Category, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters for the default backslash escape
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// SearchPattern is the ILIKE pattern for the search term, with LIKE
// metacharacters escaped.
func (q Query) SearchPattern() string {
	return "%" + EscapeLike(q.Search) + "%"
}

// OrderClause is the single ORDER BY for the sort option, with id as a
// tiebreak so pages do not overlap.
func (q Query) OrderClause() string {
	switch q.Sort {
	case SortOldest:
		return "created_at ASC, id ASC"
	case SortPriceAsc:
		return "price ASC, id ASC"
	case SortPriceDesc:
		return "price DESC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}

// Key identifies the query for caching and in-flight deduplication.
func (q Query) Key() string {
	category := ""
	if q.CategoryID != nil {
		category = q.CategoryID.String()
	}
	return fmt.Sprintf("q=%s|c=%s|new=%t|sale=%t|featured=%t|price=%s-%s|sort=%s",
		strings.ToLower(q.Search), category, q.RequireNew, q.RequireOnSale, q.RequireFeatured,
		q.MinPrice.String(), q.MaxPrice.String(), q.Sort)
}

// PageRequest selects one page of a listing
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// NewPageRequest clamps page to >= 1 and limit to (0, MaxPageLimit]
func NewPageRequest(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p PageRequest) Key() string {
	return fmt.Sprintf("p=%d|l=%d", p.Page, p.Limit)
}
