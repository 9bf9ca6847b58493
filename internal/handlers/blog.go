package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/blog"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/web/src/templates/layouts"
	"github.com/nfrund/zina/web/src/templates/pages"
)

// BlogService reads the journal.
type BlogService interface {
	Page(ctx context.Context, page int) (domain.PostPage, error)
	Post(ctx context.Context, slug string) (domain.Post, error)
}

type BlogHandler struct {
	blog BlogService
}

func NewBlogHandler(b BlogService) *BlogHandler {
	return &BlogHandler{blog: b}
}

// Index renders GET /blog?page=.
func (h *BlogHandler) Index(c echo.Context) error {
	n := pageParam(c)
	p, err := h.blog.Page(c.Request().Context(), n)
	if err != nil {
		return upstreamError(err)
	}
	if p.Page < 1 {
		p.Page = n
	}
	return page(c, http.StatusOK, layouts.PageMeta{Title: "المدونة", Active: "blog"}, pages.BlogIndex(p))
}

// Show renders GET /blog/:slug.
func (h *BlogHandler) Show(c echo.Context) error {
	post, err := h.blog.Post(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return upstreamError(err)
	}
	meta := layouts.PageMeta{Title: post.Title, Description: blog.Excerpt(post.BodyHTML), Active: "blog"}
	return page(c, http.StatusOK, meta, pages.Post(post))
}
