package listing

import (
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
)

// Sort orders understood by Filter.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
	SortRating    = "rating"
	SortName      = "name"
)

// SortOption is a sort order with its Arabic label.
type SortOption struct {
	Value string
	Label string
}

// SortOptions lists the sort orders in the order shown in the filter form.
var SortOptions = []SortOption{
	{SortRelevance, "الأكثر صلة"},
	{SortPriceAsc, "السعر: من الأقل للأعلى"},
	{SortPriceDesc, "السعر: من الأعلى للأقل"},
	{SortNewest, "الأحدث"},
	{SortRating, "الأعلى تقييماً"},
	{SortName, "الاسم"},
}

// Filter narrows and orders a product list. The zero value keeps every
// product in its original order.
type Filter struct {
	Query       string
	Brand       string
	MinPrice    float64
	MaxPrice    float64
	InStockOnly bool
	Sort        string
}

// ParseFilter reads a Filter from query parameters. Malformed numbers are
// ignored rather than rejected; negative bounds count as unbounded.
func ParseFilter(v url.Values) Filter {
	f := Filter{
		Query:       strings.TrimSpace(v.Get("q")),
		Brand:       strings.TrimSpace(v.Get("brand")),
		MinPrice:    parsePrice(v.Get("min_price")),
		MaxPrice:    parsePrice(v.Get("max_price")),
		InStockOnly: v.Get("in_stock") == "1" || v.Get("in_stock") == "on" || v.Get("in_stock") == "true",
		Sort:        v.Get("sort"),
	}
	if !validSort(f.Sort) {
		f.Sort = ""
	}
	if f.MaxPrice > 0 && f.MinPrice > f.MaxPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	return f
}

func parsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func validSort(s string) bool {
	if s == "" {
		return true
	}
	for _, o := range SortOptions {
		if o.Value == s {
			return true
		}
	}
	return false
}

// IsZero reports whether the filter changes nothing.
func (f Filter) IsZero() bool {
	return f == Filter{} || f == Filter{Sort: SortRelevance}
}

// Values encodes the filter back into query parameters, omitting zero values.
// It is used to keep the filter on pagination links.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.Brand != "" {
		v.Set("brand", f.Brand)
	}
	if f.MinPrice > 0 {
		v.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.InStockOnly {
		v.Set("in_stock", "1")
	}
	if f.Sort != "" && f.Sort != SortRelevance {
		v.Set("sort", f.Sort)
	}
	return v
}

// Apply returns the products that pass the filter, ordered by f.Sort.
// The input slice is left untouched.
func (f Filter) Apply(products []domain.Product) []domain.Product {
	query := i18n.Normalize(f.Query)
	brand := strings.ToLower(f.Brand)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.InStockOnly && !p.InStock {
			continue
		}
		if brand != "" && strings.ToLower(p.Brand) != brand {
			continue
		}
		price := p.EffectivePrice()
		if f.MinPrice > 0 && price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && price > f.MaxPrice {
			continue
		}
		if query != "" && !matches(p, query) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, f.Sort)
	return out
}

func matches(p domain.Product, normalizedQuery string) bool {
	if strings.Contains(i18n.Normalize(p.Name), normalizedQuery) ||
		strings.Contains(i18n.Normalize(p.Brand), normalizedQuery) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(i18n.Normalize(tag), normalizedQuery) {
			return true
		}
	}
	return false
}

func sortProducts(ps []domain.Product, order string) {
	var less func(a, b domain.Product) bool
	switch order {
	case SortPriceAsc:
		less = func(a, b domain.Product) bool { return a.EffectivePrice() < b.EffectivePrice() }
	case SortPriceDesc:
		less = func(a, b domain.Product) bool { return a.EffectivePrice() > b.EffectivePrice() }
	case SortNewest:
		less = func(a, b domain.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortRating:
		less = func(a, b domain.Product) bool { return a.Rating > b.Rating }
	case SortName:
		less = func(a, b domain.Product) bool { return a.Name < b.Name }
	default:
		return
	}
	sort.SliceStable(ps, func(i, j int) bool { return less(ps[i], ps[j]) })
}

// Brands returns the distinct brand names in products, sorted. Spellings that
// differ only in case count once, keeping the first one seen.
func Brands(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	var brands []string
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		key := strings.ToLower(p.Brand)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		brands = append(brands, p.Brand)
	}
	slices.Sort(brands)
	return brands
}
