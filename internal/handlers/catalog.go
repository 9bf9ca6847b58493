package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// CatalogService serves category listings and product details.
type CatalogService interface {
	CategoryPage(ctx context.Context, slug string, page int) (domain.ProductPage, error)
	Product(ctx context.Context, id string) (domain.Product, error)
}

// CatalogHandler renders category and product pages.
type CatalogHandler struct {
	catalog CatalogService
}

func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CategoryGet renders one upstream page of a category (GET /category/:slug).
// The filter narrows and orders that page only; pagination links carry it
// along to the next page.
func (h *CatalogHandler) CategoryGet(c echo.Context) error {
	cat, ok := domain.CategoryBySlug(c.Param("slug"))
	if !ok {
		return notFound(nil)
	}
	meta := layouts.PageMeta{Title: cat.Name, Description: cat.Description, Active: cat.Slug}
	if cat.Placeholder {
		return page(c, http.StatusOK, meta, pages.ComingSoon(cat))
	}

	n := pageParam(c)
	res, err := h.catalog.CategoryPage(c.Request().Context(), cat.Slug, n)
	switch {
	case errors.Is(err, domain.ErrCategoryPlaceholder):
		return page(c, http.StatusOK, meta, pages.ComingSoon(cat))
	case err != nil:
		return upstreamError(err)
	}
	if res.Page < 1 {
		res.Page = n
	}

	filter := listing.ParseFilter(c.QueryParams())
	data := pages.CategoryData{
		Category:   cat,
		Products:   filter.Apply(res.Items),
		Brands:     listing.Brands(res.Items),
		Filter:     filter,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		TotalItems: res.TotalItems,
	}
	if favs, _ := favorites.Open(c); favs != nil {
		data.Favorites = favs.Set()
	}
	return page(c, http.StatusOK, meta, pages.Category(data))
}

// ProductGet renders a product detail page (GET /products/:id).
func (h *CatalogHandler) ProductGet(c echo.Context) error {
	p, err := h.catalog.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		return upstreamError(err)
	}
	cat, _ := domain.CategoryBySlug(p.Category)

	data := pages.ProductData{Product: p, Category: cat}
	if favs, _ := favorites.Open(c); favs != nil {
		data.Favorite = favs.Contains(p.ID)
	}
	meta := layouts.PageMeta{Title: p.Name, Description: p.Description, Active: cat.Slug}
	return page(c, http.StatusOK, meta, pages.Product(data))
}
