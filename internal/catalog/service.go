// Package catalog serves category listings and product details, reading
// through the page cache and decorating products with promotion rules.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/internal/resilience"
)

// ProductAPI is the part of the upstream client the catalog needs.
type ProductAPI interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

// Decorator applies display rules to products. *promo.Engine implements it.
type Decorator interface {
	Apply(ctx context.Context, products []domain.Product) []domain.Product
}

// Section is one category strip on the home page.
type Section struct {
	Category domain.Category
	Products []domain.Product
}

// Service reads the catalog. Listing pages are cached per category and page
// number; product details under their own key.
type Service struct {
	api      ProductAPI
	pages    *cache.Pages[domain.ProductPage]
	details  *cache.Pages[domain.Product]
	promo    Decorator
	pageSize int
	breaker  *resilience.CircuitBreaker
}

// NewService builds the catalog. store may be nil to disable caching and
// promo may be nil to skip decoration.
func NewService(api ProductAPI, store cache.Store, promo Decorator, pageSize int) *Service {
	return &Service{
		api:      api,
		pages:    cache.NewPages[domain.ProductPage](store),
		details:  cache.NewPages[domain.Product](store),
		promo:    promo,
		pageSize: listing.ClampPageSize(pageSize),
		breaker:  resilience.NewCircuitBreaker("catalog-featured", 3, 30*time.Second),
	}
}

// ListingKey is the cache key of a category listing.
func ListingKey(slug string) string { return "products:" + slug }

// ProductKey is the cache key of a product detail.
func ProductKey(id string) string { return "product:" + id }

// CategoryPage returns upstream page `page` of a category. Placeholder
// categories never reach the API.
func (s *Service) CategoryPage(ctx context.Context, slug string, page int) (domain.ProductPage, error) {
	cat, ok := domain.CategoryBySlug(slug)
	if !ok {
		return domain.ProductPage{}, fmt.Errorf("category %q: %w", slug, domain.ErrNotFound)
	}
	if cat.Placeholder {
		return domain.ProductPage{}, domain.ErrCategoryPlaceholder
	}
	if page < 1 {
		page = 1
	}

	result, err := s.pages.GetOrLoad(ctx, ListingKey(slug), page, func(ctx context.Context) (domain.ProductPage, error) {
		return s.api.ListProducts(ctx, domain.ProductQuery{Category: slug, Page: page, Limit: s.pageSize})
	})
	if err != nil {
		return domain.ProductPage{}, err
	}
	result.Items = s.decorate(ctx, result.Items)
	return result, nil
}

// Product returns one product by ID.
func (s *Service) Product(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.details.GetOrLoad(ctx, ProductKey(id), 1, func(ctx context.Context) (domain.Product, error) {
		return s.api.GetProduct(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return s.decorate(ctx, []domain.Product{p})[0], nil
}

// Featured loads the first page of every live category concurrently. A
// failing category yields an empty section instead of failing the page.
func (s *Service) Featured(ctx context.Context, perCategory int) []Section {
	var cats []domain.Category
	for _, c := range domain.Categories {
		if !c.Placeholder {
			cats = append(cats, c)
		}
	}

	sections := make([]Section, len(cats))
	g, gctx := errgroup.WithContext(ctx)
	for i, cat := range cats {
		sections[i].Category = cat
		g.Go(func() error {
			var page domain.ProductPage
			err := s.breaker.Execute(func() error {
				var err error
				page, err = s.CategoryPage(gctx, cat.Slug, 1)
				return err
			})
			if err != nil {
				slog.WarnContext(ctx, "Featured section unavailable", "category", cat.Slug, "error", err)
				return nil
			}
			items := page.Items
			if perCategory > 0 && len(items) > perCategory {
				items = items[:perCategory]
			}
			sections[i].Products = items
			return nil
		})
	}
	_ = g.Wait()
	return sections
}

// Invalidate drops every cached page of a category listing.
func (s *Service) Invalidate(ctx context.Context, slug string) error {
	return s.pages.Invalidate(ctx, ListingKey(slug))
}

func (s *Service) decorate(ctx context.Context, products []domain.Product) []domain.Product {
	if s.promo == nil || len(products) == 0 {
		return products
	}
	return s.promo.Apply(ctx, products)
}
