// Package storefront mounts the public shop: home, categories, products,
// favorites, search and the blog.
package storefront

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/blog"
	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/catalog"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/module"
	"github.com/nfrund/zina/internal/promo"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/registry"
	"github.com/nfrund/zina/internal/search"
)

// Services other modules can resolve.
var (
	CatalogKey   = registry.Key[*catalog.Service]("storefront.catalog")
	SearchKey    = registry.Key[*search.Service]("storefront.search")
	BlogKey      = registry.Key[*blog.Service]("storefront.blog")
	FavoritesKey = registry.Key[*favorites.Service]("storefront.favorites")
)

// Dependencies holds what the storefront needs from the application.
type Dependencies struct {
	API       *apiclient.Client
	Cache     cache.Store
	Promo     *promo.Engine
	Rewriter  search.Rewriter
	Publisher pubsub.Publisher
}

// StorefrontModule implements module.Module for the public shop.
type StorefrontModule struct {
	module.BaseModule
	deps Dependencies
}

// New creates the storefront module.
func New(deps Dependencies) *StorefrontModule {
	return &StorefrontModule{deps: deps}
}

func (m *StorefrontModule) Name() string {
	return "storefront"
}

// Register builds the shop services and shares them through the registry.
func (m *StorefrontModule) Register(reg *registry.Registry) error {
	pageSize := reg.Config().GetPageSize()

	var decorator catalog.Decorator
	if m.deps.Promo != nil {
		decorator = m.deps.Promo
	}
	rewriter := m.deps.Rewriter
	if rewriter == nil {
		rewriter = search.Identity{}
	}

	cat := catalog.NewService(m.deps.API, m.deps.Cache, decorator, pageSize)
	registry.Set(reg, CatalogKey, cat)
	registry.Set(reg, SearchKey, search.NewService(m.deps.API, m.deps.Cache, rewriter))
	registry.Set(reg, BlogKey, blog.NewService(m.deps.API, m.deps.Cache))
	registry.Set(reg, FavoritesKey, favorites.NewService(cat, m.deps.Publisher))
	return nil
}

// Boot mounts the shop routes and starts the promo watcher when enabled.
func (m *StorefrontModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	cfg := reg.Config()
	if m.deps.Promo != nil && cfg.GetPromoWatch() && cfg.GetPromoScript() != "" {
		if err := m.deps.Promo.Watch(ctx); err != nil {
			return err
		}
	}

	cat := registry.MustGet(reg, CatalogKey)
	posts := registry.MustGet(reg, BlogKey)
	pageSize := cfg.GetPageSize()

	home := handlers.NewHomeHandler(cat, posts)
	catalogHandler := handlers.NewCatalogHandler(cat)
	favoritesHandler := handlers.NewFavoritesHandler(registry.MustGet(reg, FavoritesKey), cat, pageSize)
	searchHandler := handlers.NewSearchHandler(registry.MustGet(reg, SearchKey), pageSize)
	blogHandler := handlers.NewBlogHandler(posts)

	g.GET("/", home.HomeGet)
	g.GET("/category/:slug", catalogHandler.CategoryGet)
	g.GET("/products/:id", catalogHandler.ProductGet)

	g.GET("/favorites", favoritesHandler.List)
	g.POST("/favorites/clear", favoritesHandler.Clear)
	g.POST("/favorites/:id/toggle", favoritesHandler.Toggle)
	g.POST("/favorites/:id/remove", favoritesHandler.Remove)

	g.GET("/search", searchHandler.Results)
	g.GET("/search/suggest", searchHandler.Suggest)

	g.GET("/blog", blogHandler.Index)
	g.GET("/blog/:slug", blogHandler.Show)

	slog.Info("Storefront module booted", "page_size", pageSize)
	return nil
}

// Shutdown waits for the promo watcher to stop.
func (m *StorefrontModule) Shutdown(ctx context.Context) error {
	if m.deps.Promo != nil {
		m.deps.Promo.Close()
	}
	return nil
}
