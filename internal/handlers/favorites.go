package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/favorites"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/listing"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/internal/view"
	"github.com/nfrund/zina/web/src/templates/components"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// FavoritesService enriches stored IDs and announces changes.
type FavoritesService interface {
	Enrich(ctx context.Context, ids []string) (found []domain.Product, missing []string, err error)
	Toggled(ctx context.Context, userID string, p domain.Product, added bool)
}

// ProductLookup resolves a product by ID.
type ProductLookup interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}

// FavoritesHandler serves the favorites list and the heart toggles.
type FavoritesHandler struct {
	favs     FavoritesService
	products ProductLookup
	pageSize int
}

func NewFavoritesHandler(favs FavoritesService, products ProductLookup, pageSize int) *FavoritesHandler {
	return &FavoritesHandler{favs: favs, products: products, pageSize: pageSize}
}

// List renders the favorites page (GET /favorites). IDs whose product no
// longer exists upstream are pruned from the cookie.
func (h *FavoritesHandler) List(c echo.Context) error {
	store, err := favorites.Open(c)
	if store == nil {
		return err
	}
	found, missing, err := h.favs.Enrich(c.Request().Context(), store.List())
	if err != nil {
		return upstreamError(err)
	}
	if len(missing) > 0 {
		middleware.FromContext(c.Request().Context()).Info("Pruning missing favorites", "ids", missing)
		if err := store.Remove(missing...); err != nil {
			return err
		}
		view.SetFlashError(c, i18n.T(i18n.MsgFavoritesPruned))
	}

	p := listing.Paginate(found, pageParam(c), h.pageSize)
	return page(c, http.StatusOK, layouts.PageMeta{Title: "المفضلة", Active: "favorites"}, pages.Favorites(p))
}

// Toggle adds or removes a product (POST /favorites/:id/toggle). htmx gets
// the updated heart button; plain form posts go back where they came from.
func (h *FavoritesHandler) Toggle(c echo.Context) error {
	id := c.Param("id")
	p, err := h.lookup(c, id)
	if err != nil {
		return err
	}
	store, err := favorites.Open(c)
	if store == nil {
		return err
	}
	added, err := store.Toggle(id)
	if err != nil {
		return err
	}
	h.favs.Toggled(c.Request().Context(), userID(c), p, added)

	if isHTMX(c) {
		return fragment(c, http.StatusOK, components.FavoriteButton(id, added))
	}
	if added {
		view.SetFlashSuccess(c, i18n.T(i18n.MsgFavoriteAdded))
	} else {
		view.SetFlashSuccess(c, i18n.T(i18n.MsgFavoriteRemoved))
	}
	return back(c, components.ProductURL(id))
}

// Remove drops a product from the list (POST /favorites/:id/remove). htmx
// swaps the card for nothing.
func (h *FavoritesHandler) Remove(c echo.Context) error {
	id := c.Param("id")
	store, err := favorites.Open(c)
	if store == nil {
		return err
	}
	wasFavorite := store.Contains(id)
	if err := store.Remove(id); err != nil {
		return err
	}
	if wasFavorite {
		p, err := h.lookup(c, id)
		if err != nil {
			p = domain.Product{ID: id, Name: id}
		}
		h.favs.Toggled(c.Request().Context(), userID(c), p, false)
	}

	if isHTMX(c) {
		return c.HTML(http.StatusOK, "")
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgFavoriteRemoved))
	return redirect(c, "/favorites")
}

// Clear empties the list (POST /favorites/clear).
func (h *FavoritesHandler) Clear(c echo.Context) error {
	store, err := favorites.Open(c)
	if store == nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	view.SetFlashSuccess(c, i18n.T(i18n.MsgFavoritesCleared))
	return redirect(c, "/favorites")
}

// lookup fetches the product being toggled. An unknown product is a 404; an
// unreachable API still lets the toggle through under the bare ID.
func (h *FavoritesHandler) lookup(c echo.Context, id string) (domain.Product, error) {
	p, err := h.products.Product(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.Product{}, notFound(err)
	case err != nil:
		middleware.FromContext(c.Request().Context()).Warn("Product lookup failed during toggle", "id", id, "error", err)
		return domain.Product{ID: id, Name: id}, nil
	}
	return p, nil
}

// userID is the signed-in customer's ID, or "" for guests.
func userID(c echo.Context) string {
	a, _ := session.GetAuth(c)
	if a == nil {
		return ""
	}
	u, _ := a.CurrentUser()
	return u.ID
}
