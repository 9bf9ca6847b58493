package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/search"
	"github.com/nfrund/zina/web/src/templates/components"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// SearchService runs full searches and live suggestions.
type SearchService interface {
	Suggest(ctx context.Context, q string) ([]search.Suggestion, error)
	Search(ctx context.Context, q string) (search.Result, error)
}

// SearchHandler serves the results page and the suggestion fragment.
type SearchHandler struct {
	search   SearchService
	pageSize int
}

func NewSearchHandler(s SearchService, pageSize int) *SearchHandler {
	return &SearchHandler{search: s, pageSize: pageSize}
}

// Results renders GET /search?q=&page=.
func (h *SearchHandler) Results(c echo.Context) error {
	var req SearchRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		req = SearchRequest{Query: c.QueryParam("q")}
	}
	q := strings.TrimSpace(req.Query)
	data := pages.SearchData{Query: q, Searched: q}

	if utf8.RuneCountInString(i18n.Normalize(q)) < search.MinQueryRunes {
		data.TooShort = true
		data.Results = listing.Paginate([]domain.Product(nil), 1, h.pageSize)
	} else {
		res, err := h.search.Search(c.Request().Context(), q)
		if err != nil {
			return upstreamError(err)
		}
		data.Searched = res.Query
		data.Rewritten = res.Rewritten()
		data.Alternatives = res.Alternatives
		data.Results = listing.Paginate(res.Products, max(req.Page, 1), h.pageSize)
	}

	if favs, _ := favorites.Open(c); favs != nil {
		data.Favorites = favs.Set()
	}
	meta := layouts.PageMeta{Title: "بحث: " + q, Query: q, Active: "search"}
	return page(c, http.StatusOK, meta, pages.Search(data))
}

// Suggest renders the live suggestion list (GET /search/suggest?q=). A
// failing API shows no suggestions rather than an error.
func (h *SearchHandler) Suggest(c echo.Context) error {
	q := c.QueryParam("q")
	items, err := h.search.Suggest(c.Request().Context(), q)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Warn("Suggestions failed", "error", err)
		items = nil
	}
	return fragment(c, http.StatusOK, components.Suggestions(q, items))
}
