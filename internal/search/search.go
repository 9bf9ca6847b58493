// Package search answers the storefront search box: ranked live suggestions
// while typing and the full results page.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xrash/smetrics"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/i18n"
)

const (
	// MinQueryRunes is the shortest query that produces suggestions.
	MinQueryRunes = 2
	// MaxSuggestions caps the dropdown.
	MaxSuggestions = 8
	// ResultsLimit caps the results page; it is paginated locally.
	ResultsLimit = 60

	suggestFetch = 20

	// Jaro-Winkler parameters: boost threshold and common prefix length.
	boostThreshold = 0.7
	prefixSize     = 4
)

// API is the part of the upstream client search needs.
type API interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)
}

// Suggestion is one entry of the live dropdown.
type Suggestion struct {
	ProductID string
	Label     string
	Brand     string
	Score     float64
}

// Result is the outcome of a full search.
type Result struct {
	// Query is what was actually searched, after rewriting.
	Query string
	// Original is what the customer typed.
	Original     string
	Alternatives []string
	Products     []domain.Product
}

// Rewritten reports whether the searched query differs from the typed one.
func (r Result) Rewritten() bool {
	return r.Query != "" && i18n.Normalize(r.Query) != i18n.Normalize(r.Original)
}

// Service runs searches through the page cache.
type Service struct {
	api      API
	results  *cache.Pages[[]domain.Product]
	rewriter Rewriter
}

// NewService creates the search service. store and rewriter may be nil.
func NewService(api API, store cache.Store, rewriter Rewriter) *Service {
	if rewriter == nil {
		rewriter = Identity{}
	}
	return &Service{
		api:      api,
		results:  cache.NewPages[[]domain.Product](store),
		rewriter: rewriter,
	}
}

// Suggest returns at most MaxSuggestions products ranked against q. Queries
// shorter than MinQueryRunes return nothing without calling the API.
func (s *Service) Suggest(ctx context.Context, q string) ([]Suggestion, error) {
	nq := i18n.Normalize(q)
	if utf8.RuneCountInString(nq) < MinQueryRunes {
		return nil, nil
	}
	products, err := s.fetch(ctx, "suggest:", nq, suggestFetch)
	if err != nil {
		return nil, err
	}
	return Rank(nq, products, MaxSuggestions), nil
}

// Search runs a full search. The query is first passed through the rewriter;
// when the rewritten query finds nothing its alternatives are tried in order.
func (s *Service) Search(ctx context.Context, q string) (Result, error) {
	res := Result{Original: strings.TrimSpace(q)}
	if i18n.Normalize(q) == "" {
		return res, nil
	}

	rw, err := s.rewriter.Rewrite(ctx, res.Original)
	if err != nil || rw.Primary == "" {
		if err != nil {
			slog.WarnContext(ctx, "Query rewrite failed, using raw query", "error", err)
		}
		rw = Rewrite{Primary: res.Original}
	}
	res.Alternatives = rw.Alternatives

	for _, candidate := range append([]string{rw.Primary}, rw.Alternatives...) {
		nq := i18n.Normalize(candidate)
		if nq == "" {
			continue
		}
		products, err := s.fetch(ctx, "search:", nq, ResultsLimit)
		if err != nil {
			return res, err
		}
		res.Query = candidate
		res.Products = products
		if len(products) > 0 {
			break
		}
	}
	return res, nil
}

func (s *Service) fetch(ctx context.Context, prefix, nq string, limit int) ([]domain.Product, error) {
	return s.results.GetOrLoad(ctx, prefix+nq, 1, func(ctx context.Context) ([]domain.Product, error) {
		return s.api.SearchProducts(ctx, nq, limit)
	})
}

// Rank scores products against an already normalized query and returns the
// best limit of them. The score is the better Jaro-Winkler similarity of name
// and brand, boosted when the name starts with the query.
func Rank(nq string, products []domain.Product, limit int) []Suggestion {
	seen := make(map[string]struct{}, len(products))
	out := make([]Suggestion, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, Suggestion{
			ProductID: p.ID,
			Label:     p.Name,
			Brand:     p.Brand,
			Score:     score(nq, p),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func score(nq string, p domain.Product) float64 {
	name := i18n.Normalize(p.Name)
	brand := i18n.Normalize(p.Brand)

	s := similarity(nq, name)
	if brand != "" {
		s = math.Max(s, similarity(nq, brand))
	}

	switch {
	case strings.HasPrefix(name, nq):
		s += 0.2
	case wordPrefix(name, nq), strings.HasPrefix(brand, nq) && brand != "":
		s += 0.1
	}
	return s
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, boostThreshold, prefixSize)
}

func wordPrefix(s, prefix string) bool {
	for _, w := range strings.Fields(s) {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}
