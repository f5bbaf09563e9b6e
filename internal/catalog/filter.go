// Package catalog models storefront browsing: the filter state that lives in
// the page URL, its translation into a product query and the result state of
// a listing.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

const (
	DefaultMinPrice = 0.0
	DefaultMaxPrice = 1000.0
)

// SortOption orders a product listing
type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortOldest    SortOption = "oldest"
	SortPriceAsc  SortOption = "price_asc"
	SortPriceDesc SortOption = "price_desc"
)

// ParseSort maps a URL value to a sort option; unknown values mean newest.
func ParseSort(value string) SortOption {
	switch SortOption(value) {
	case SortOldest, SortPriceAsc, SortPriceDesc:
		return SortOption(value)
	default:
		return SortNewest
	}
}

// FilterKey names a single field of FilterState
type FilterKey string

const (
	KeySearch   FilterKey = "search"
	KeyCategory FilterKey = "category"
	KeyMinPrice FilterKey = "min_price"
	KeyMaxPrice FilterKey = "max_price"
	KeyNew      FilterKey = "new"
	KeySale     FilterKey = "sale"
	KeyFeatured FilterKey = "featured"
	KeySort     FilterKey = "sort"
)

// URL parameter names
const (
	paramSearch   = "search"
	paramCategory = "category"
	paramMinPrice = "min_price"
	paramMaxPrice = "max_price"
	paramFilter   = "filter"
	paramSort     = "sort"
)

var (
	ErrUnknownFilterKey   = errors.New("unknown filter key")
	ErrInvalidFilterValue = errors.New("invalid filter value")
)

// FilterState is the user's current catalog selection
type FilterState struct {
	Search     string     `json:"search"`
	Category   string     `json:"category"`
	MinPrice   float64    `json:"minPrice"`
	MaxPrice   float64    `json:"maxPrice"`
	IsNew      bool       `json:"isNew"`
	IsOnSale   bool       `json:"isOnSale"`
	IsFeatured bool       `json:"isFeatured"`
	Sort       SortOption `json:"sort"`
}

// DefaultState is the unfiltered catalog, newest first
func DefaultState() FilterState {
	return FilterState{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
		Sort:     SortNewest,
	}
}

// Hydrate builds a FilterState from a raw query string. A leading "?" is
// accepted and missing parameters take their defaults.
func Hydrate(rawQuery string) FilterState {
	// ParseQuery keeps every well-formed pair even when it reports an error
	values, _ := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	return FromValues(values)
}

// FromValues builds a FilterState from parsed query parameters.
func FromValues(values url.Values) FilterState {
	state := DefaultState()
	state.Search = values.Get(paramSearch)
	state.Category = values.Get(paramCategory)
	if values.Has(paramMinPrice) {
		state.MinPrice = coercePrice(values.Get(paramMinPrice))
	}
	if values.Has(paramMaxPrice) {
		state.MaxPrice = coercePrice(values.Get(paramMaxPrice))
	}

	filter := values.Get(paramFilter)
	state.IsNew = strings.Contains(filter, "new")
	state.IsOnSale = strings.Contains(filter, "sale")
	state.IsFeatured = strings.Contains(filter, "featured")

	state.Sort = ParseSort(values.Get(paramSort))
	return state
}

// coercePrice turns malformed input into 0 rather than failing.
func coercePrice(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func formatPrice(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Set returns a copy of the state with one field changed.
func (s FilterState) Set(key FilterKey, value string) (FilterState, error) {
	switch key {
	case KeySearch:
		s.Search = value
	case KeyCategory:
		s.Category = value
	case KeyMinPrice:
		s.MinPrice = coercePrice(value)
	case KeyMaxPrice:
		s.MaxPrice = coercePrice(value)
	case KeyNew, KeySale, KeyFeatured:
		on, err := strconv.ParseBool(value)
		if err != nil {
			return s, fmt.Errorf("%w: %s=%q", ErrInvalidFilterValue, key, value)
		}
		switch key {
		case KeyNew:
			s.IsNew = on
		case KeySale:
			s.IsOnSale = on
		default:
			s.IsFeatured = on
		}
	case KeySort:
		s.Sort = ParseSort(value)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownFilterKey, key)
	}
	return s, nil
}

// Flags returns the set boolean filters in URL order.
func (s FilterState) Flags() []string {
	var flags []string
	if s.IsNew {
		flags = append(flags, "new")
	}
	if s.IsOnSale {
		flags = append(flags, "sale")
	}
	if s.IsFeatured {
		flags = append(flags, "featured")
	}
	return flags
}

// Encode renders the canonical query string without the leading "?".
// Keys always appear in the order search, category, min_price, max_price,
// filter, sort and parameters at their default are left out.
func (s FilterState) Encode() string {
	var b strings.Builder
	add := func(key, value string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(value))
	}

	if s.Search != "" {
		add(paramSearch, s.Search)
	}
	if s.Category != "" {
		add(paramCategory, s.Category)
	}
	if s.MinPrice != DefaultMinPrice {
		add(paramMinPrice, formatPrice(s.MinPrice))
	}
	if s.MaxPrice != DefaultMaxPrice {
		add(paramMaxPrice, formatPrice(s.MaxPrice))
	}
	if flags := s.Flags(); len(flags) > 0 {
		add(paramFilter, strings.Join(flags, ","))
	}
	if s.Sort != "" && s.Sort != SortNewest {
		add(paramSort, string(s.Sort))
	}
	return b.String()
}

// QueryString is Encode with a leading "?", or "" for the default state.
func (s FilterState) QueryString() string {
	encoded := s.Encode()
	if encoded == "" {
		return ""
	}
	return "?" + encoded
}

// CountActive counts filter dimensions that differ from the default. The
// price range counts once and sort is not a filter.
func (s FilterState) CountActive() int {
	count := 0
	if s.Search != "" {
		count++
	}
	if s.Category != "" {
		count++
	}
	if s.PriceRangeActive() {
		count++
	}
	if s.IsNew {
		count++
	}
	if s.IsOnSale {
		count++
	}
	if s.IsFeatured {
		count++
	}
	return count
}

// PriceRangeActive reports whether the price slider moved off its defaults.
func (s FilterState) PriceRangeActive() bool {
	return s.MinPrice != DefaultMinPrice || s.MaxPrice != DefaultMaxPrice
}

// ChangeFunc receives the new state and its canonical query string after
// every mutation of a Session.
type ChangeFunc func(state FilterState, queryString string)

// Session owns the filter state of one catalog page. Each Set or Clear
// produces exactly one change notification.
type Session struct {
	mu       sync.Mutex
	state    FilterState
	onChange ChangeFunc
}

// NewSession hydrates a session from the page's query string.
func NewSession(rawQuery string, onChange ChangeFunc) *Session {
	return &Session{state: Hydrate(rawQuery), onChange: onChange}
}

func (s *Session) State() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) QueryString() string {
	return s.State().QueryString()
}

// Hydrate replaces the state from a navigated URL without notifying, since
// the URL already reflects it.
func (s *Session) Hydrate(rawQuery string) {
	s.mu.Lock()
	s.state = Hydrate(rawQuery)
	s.mu.Unlock()
}

// Set changes one field. On error the state is untouched and nothing is
// notified.
func (s *Session) Set(key FilterKey, value string) error {
	s.mu.Lock()
	next, err := s.state.Set(key, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.mu.Unlock()

	s.notify(next)
	return nil
}

// Clear resets every field, sort included, in one update.
func (s *Session) Clear() {
	s.mu.Lock()
	s.state = DefaultState()
	next := s.state
	s.mu.Unlock()

	s.notify(next)
}

func (s *Session) notify(state FilterState) {
	if s.onChange != nil {
		s.onChange(state, state.QueryString())
	}
}
