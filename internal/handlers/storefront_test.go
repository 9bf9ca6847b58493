package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/zina/internal/catalog"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/search"
)

type fakeCatalog struct {
	products map[string]domain.Product
	pageErr  error
	pages    []int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]domain.Product{
		"sk-1": {ID: "sk-1", Name: "سيروم فيتامين سي", Brand: "لوريال", Category: "skincare", Price: 120, InStock: true},
		"sk-2": {ID: "sk-2", Name: "غسول لطيف", Brand: "سيرافي", Category: "skincare", Price: 60, InStock: false},
		"hc-1": {ID: "hc-1", Name: "زيت الأرغان", Brand: "موروكان أويل", Category: "haircare", Price: 210, InStock: true},
	}}
}

func (f *fakeCatalog) CategoryPage(_ context.Context, slug string, page int) (domain.ProductPage, error) {
	f.pages = append(f.pages, page)
	if f.pageErr != nil {
		return domain.ProductPage{}, f.pageErr
	}
	var items []domain.Product
	for _, id := range []string{"sk-1", "sk-2", "hc-1"} {
		if p := f.products[id]; p.Category == slug {
			items = append(items, p)
		}
	}
	return domain.ProductPage{Items: items, Page: page, PageSize: 12, TotalItems: 30, TotalPages: 3}, nil
}

func (f *fakeCatalog) Product(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Featured(context.Context, int) []catalog.Section {
	return []catalog.Section{{Category: domain.Categories[0], Products: []domain.Product{f.products["sk-1"]}}}
}

type fakeSearch struct {
	result      search.Result
	suggestions []search.Suggestion
	calls       int
}

func (f *fakeSearch) Suggest(context.Context, string) ([]search.Suggestion, error) {
	return f.suggestions, nil
}

func (f *fakeSearch) Search(_ context.Context, q string) (search.Result, error) {
	f.calls++
	r := f.result
	r.Original = q
	return r, nil
}

type noPosts struct{}

func (noPosts) Latest(context.Context, int) []domain.Post { return nil }

func setupStorefront(t *testing.T) (*browser, *fakeCatalog, *fakeSearch) {
	cat := newFakeCatalog()
	srch := &fakeSearch{}
	api := newFakeAPI()
	b := newBrowser(t, func(e *echo.Echo) {
		registerAuth(e, api, nil)
		home := handlers.NewHomeHandler(cat, noPosts{})
		ch := handlers.NewCatalogHandler(cat)
		fh := handlers.NewFavoritesHandler(favorites.NewService(cat, nil), cat, 2)
		sh := handlers.NewSearchHandler(srch, 12)
		e.GET("/", home.HomeGet)
		e.GET("/category/:slug", ch.CategoryGet)
		e.GET("/products/:id", ch.ProductGet)
		e.GET("/favorites", fh.List)
		e.POST("/favorites/clear", fh.Clear)
		e.POST("/favorites/:id/toggle", fh.Toggle)
		e.POST("/favorites/:id/remove", fh.Remove)
		e.GET("/search", sh.Results)
		e.GET("/search/suggest", sh.Suggest)
	})
	return b, cat, srch
}

func TestHomeRendersSections(t *testing.T) {
	b, _, _ := setupStorefront(t)
	r := b.get("/")
	require.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, `dir="rtl"`)
	assert.Contains(t, r.Body, "سيروم فيتامين سي")
}

func TestCategoryPage(t *testing.T) {
	t.Run("filters the current upstream page", func(t *testing.T) {
		b, cat, _ := setupStorefront(t)
		r := b.get("/category/skincare?page=2&in_stock=1")
		require.Equal(t, http.StatusOK, r.Status)
		assert.Equal(t, []int{2}, cat.pages)
		assert.Contains(t, r.Body, "سيروم فيتامين سي")
		assert.NotContains(t, r.Body, "غسول لطيف", "out of stock products are filtered")
		assert.Contains(t, r.Body, "in_stock=1", "pagination keeps the filter")
	})

	t.Run("placeholder category never hits the API", func(t *testing.T) {
		b, cat, _ := setupStorefront(t)
		r := b.get("/category/perfume")
		assert.Equal(t, http.StatusOK, r.Status)
		assert.Contains(t, r.Body, i18n.T(i18n.MsgComingSoon))
		assert.Empty(t, cat.pages)
	})

	t.Run("unknown category", func(t *testing.T) {
		b, _, _ := setupStorefront(t)
		assert.Equal(t, http.StatusNotFound, b.get("/category/shoes").Status)
	})

	t.Run("upstream down", func(t *testing.T) {
		b, cat, _ := setupStorefront(t)
		cat.pageErr = domain.ErrUpstreamUnavailable
		assert.Equal(t, http.StatusServiceUnavailable, b.get("/category/makeup").Status)
	})
}

func TestProductPage(t *testing.T) {
	b, _, _ := setupStorefront(t)
	r := b.get("/products/hc-1")
	require.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, "زيت الأرغان")
	assert.Contains(t, r.Body, "/favorites/hc-1/toggle")

	assert.Equal(t, http.StatusNotFound, b.get("/products/nope").Status)
}

func TestFavoritesFlow(t *testing.T) {
	b, cat, _ := setupStorefront(t)

	empty := b.get("/favorites")
	require.Equal(t, http.StatusOK, empty.Status)
	assert.Contains(t, empty.Body, "قائمة المفضلة فارغة")

	// htmx toggle returns the pressed heart.
	r := b.post("/favorites/sk-1/toggle", nil, htmx...)
	require.Equal(t, http.StatusOK, r.Status)
	assert.Contains(t, r.Body, `aria-pressed="true"`)
	assert.NotContains(t, r.Body, "<html")

	// Plain form post redirects back to the product.
	r = b.post("/favorites/hc-1/toggle", nil)
	assert.Equal(t, http.StatusSeeOther, r.Status)
	assert.Equal(t, "/products/hc-1", r.Location)

	r = b.post("/favorites/sk-2/toggle", nil, htmx...)
	require.Equal(t, http.StatusOK, r.Status)

	// Newest first, two per page.
	list := b.get("/favorites")
	assert.Contains(t, list.Body, "غسول لطيف")
	assert.Contains(t, list.Body, "زيت الأرغان")
	assert.NotContains(t, list.Body, "سيروم فيتامين سي")
	assert.Contains(t, b.get("/favorites?page=2").Body, "سيروم فيتامين سي")

	// A product gone upstream is pruned with a notice.
	delete(cat.products, "hc-1")
	list = b.get("/favorites")
	assert.Contains(t, list.Body, i18n.T(i18n.MsgFavoritesPruned))
	assert.NotContains(t, list.Body, "زيت الأرغان")

	// htmx remove answers with an empty body so the card disappears.
	r = b.post("/favorites/sk-2/remove", nil, htmx...)
	assert.Equal(t, http.StatusOK, r.Status)
	assert.Empty(t, strings.TrimSpace(r.Body))

	r = b.post("/favorites/clear", nil)
	assert.Equal(t, "/favorites", r.Location)
	assert.Contains(t, b.follow(r).Body, "قائمة المفضلة فارغة")
}

func TestToggleUnknownProduct(t *testing.T) {
	b, _, _ := setupStorefront(t)
	assert.Equal(t, http.StatusNotFound, b.post("/favorites/nope/toggle", nil, htmx...).Status)
}

func TestSearch(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		b, _, srch := setupStorefront(t)
		r := b.get("/search?q=" + url.QueryEscape("س"))
		assert.Equal(t, http.StatusOK, r.Status)
		assert.Contains(t, r.Body, i18n.T(i18n.MsgSearchMinLength))
		assert.Zero(t, srch.calls)
	})

	t.Run("rewritten query is announced", func(t *testing.T) {
		b, cat, srch := setupStorefront(t)
		srch.result = search.Result{Query: "سيروم", Products: []domain.Product{cat.products["sk-1"]}}
		r := b.get("/search?q=" + url.QueryEscape("سيرم"))
		assert.Equal(t, http.StatusOK, r.Status)
		assert.Contains(t, r.Body, "عرض نتائج «سيروم»")
		assert.Contains(t, r.Body, "سيروم فيتامين سي")
	})

	t.Run("no results offers alternatives", func(t *testing.T) {
		b, _, srch := setupStorefront(t)
		srch.result = search.Result{Query: "عطر", Alternatives: []string{"عطور"}}
		r := b.get("/search?q=" + url.QueryEscape("عطر"))
		assert.Contains(t, r.Body, i18n.T(i18n.MsgNoResults))
		assert.Contains(t, r.Body, "/search?q="+url.QueryEscape("عطور"))
	})

	t.Run("suggest fragment", func(t *testing.T) {
		b, _, srch := setupStorefront(t)
		srch.suggestions = []search.Suggestion{{ProductID: "sk-1", Label: "سيروم فيتامين سي", Brand: "لوريال", Score: 0.9}}
		r := b.get("/search/suggest?q="+url.QueryEscape("سيروم"), htmx...)
		assert.Equal(t, http.StatusOK, r.Status)
		assert.Contains(t, r.Body, "/products/sk-1")
		assert.NotContains(t, r.Body, "<html")
	})
}

func TestHTMXHelpersDistinguishBoostedNavigation(t *testing.T) {
	b, _, _ := setupStorefront(t)
	r := b.get("/favorites", "HX-Request", "true", "HX-Boosted", "true")
	assert.Contains(t, r.Body, "<html", fmt.Sprintf("boosted navigation gets a full page, got %q", r.Body[:min(len(r.Body), 40)]))
}
