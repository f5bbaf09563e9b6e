package catalog

import (
	"context"
	"sync"

	"storefront-service/internal/models"
)

// ResultState is what the product grid renders
type ResultState string

const (
	StateLoading   ResultState = "loading"
	StateError     ResultState = "error"
	StateEmpty     ResultState = "empty"
	StatePopulated ResultState = "populated"
)

// Source runs catalog queries against the product store
type Source interface {
	ListProducts(ctx context.Context, q Query, page PageRequest) ([]models.Product, int64, error)
}

// Result is the outcome of one listing load
type Result struct {
	State      ResultState      `json:"state"`
	Products   []models.Product `json:"products"`
	Total      int64            `json:"total"`
	Page       PageRequest      `json:"page"`
	Query      Query            `json:"-"`
	Err        error            `json:"-"`
	Generation uint64           `json:"-"`
	// Stale marks a load that finished after a newer one was issued; its
	// products were not committed.
	Stale bool `json:"-"`
}

// Listing ties a filter session to a product source. Every Set or Clear
// rewrites the URL once and refetches once, and only the most recently
// issued load can commit its result.
type Listing struct {
	source    Source
	directory CategoryDirectory
	session   *Session

	mu        sync.Mutex
	page      PageRequest
	issued    uint64
	committed Result
	last      *pendingLoad
}

type pendingLoad struct {
	query Query
	page  PageRequest
}

// ListingOption configures a Listing
type ListingOption func(*Listing)

// WithPage sets the page the listing loads
func WithPage(page PageRequest) ListingOption {
	return func(l *Listing) { l.page = page }
}

// NewListing hydrates a listing from rawQuery. onURL, when set, receives the
// canonical query string after each filter change.
func NewListing(source Source, directory CategoryDirectory, rawQuery string, onURL func(string), opts ...ListingOption) *Listing {
	l := &Listing{
		source:    source,
		directory: directory,
		page:      NewPageRequest(1, DefaultPageLimit),
		committed: Result{State: StateLoading},
	}
	l.session = NewSession(rawQuery, func(_ FilterState, queryString string) {
		if onURL != nil {
			onURL(queryString)
		}
	})
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Listing) State() FilterState {
	return l.session.State()
}

func (l *Listing) QueryString() string {
	return l.session.QueryString()
}

// Result returns the last committed result
func (l *Listing) Result() Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.committed
}

// Hydrate follows a navigation to a new URL and reloads.
func (l *Listing) Hydrate(ctx context.Context, rawQuery string) Result {
	l.session.Hydrate(rawQuery)
	return l.Load(ctx)
}

// Set changes one filter and reloads.
func (l *Listing) Set(ctx context.Context, key FilterKey, value string) (Result, error) {
	if err := l.session.Set(key, value); err != nil {
		return l.Result(), err
	}
	return l.Load(ctx), nil
}

// Clear resets all filters and reloads; this is the empty state's action.
func (l *Listing) Clear(ctx context.Context) Result {
	l.session.Clear()
	return l.Load(ctx)
}

// Goto loads another page of the current filters.
func (l *Listing) Goto(ctx context.Context, page PageRequest) Result {
	l.mu.Lock()
	l.page = page
	l.mu.Unlock()
	return l.Load(ctx)
}

// Load translates the current state and fetches it.
func (l *Listing) Load(ctx context.Context) Result {
	q := Translate(l.session.State(), l.directory)
	l.mu.Lock()
	page := l.page
	l.mu.Unlock()
	return l.run(ctx, q, page)
}

// Retry re-issues exactly the last query.
func (l *Listing) Retry(ctx context.Context) Result {
	l.mu.Lock()
	last := l.last
	l.mu.Unlock()
	if last == nil {
		return l.Load(ctx)
	}
	return l.run(ctx, last.query, last.page)
}

func (l *Listing) run(ctx context.Context, q Query, page PageRequest) Result {
	l.mu.Lock()
	l.issued++
	generation := l.issued
	l.last = &pendingLoad{query: q, page: page}
	l.committed = Result{State: StateLoading, Query: q, Page: page, Generation: generation}
	l.mu.Unlock()

	products, total, err := l.source.ListProducts(ctx, q, page)

	res := Result{Query: q, Page: page, Generation: generation}
	switch {
	case err != nil:
		res.State = StateError
		res.Err = err
	case len(products) == 0:
		res.State = StateEmpty
		res.Products = []models.Product{}
		res.Total = total
	default:
		res.State = StatePopulated
		res.Products = products
		res.Total = total
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if generation != l.issued {
		res.Stale = true
		return res
	}
	l.committed = res
	return res
}
