package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/nfrund/zina/internal/catalog"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

const (
	homePerCategory = 4
	homePosts       = 3
)

// FeaturedSource provides the category strips of the home page.
type FeaturedSource interface {
	Featured(ctx context.Context, perCategory int) []catalog.Section
}

// LatestPosts provides the blog strip of the home page.
type LatestPosts interface {
	Latest(ctx context.Context, n int) []domain.Post
}

// HomeHandler handles requests for the home page.
type HomeHandler struct {
	catalog FeaturedSource
	blog    LatestPosts
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(catalog FeaturedSource, blog LatestPosts) *HomeHandler {
	return &HomeHandler{catalog: catalog, blog: blog}
}

// HomeGet renders the landing page. Both sources degrade to empty sections
// on their own, so the page always renders.
func (h *HomeHandler) HomeGet(c echo.Context) error {
	var data pages.HomeData
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		data.Sections = h.catalog.Featured(ctx, homePerCategory)
		return nil
	})
	g.Go(func() error {
		data.Posts = h.blog.Latest(ctx, homePosts)
		return nil
	})
	_ = g.Wait()

	if favs, _ := favorites.Open(c); favs != nil {
		data.Favorites = favs.Set()
	}
	meta := layouts.PageMeta{
		Description: "متجر زينة لمستحضرات التجميل والعناية بالبشرة والشعر.",
		Active:      "home",
	}
	return page(c, http.StatusOK, meta, pages.Home(data))
}
