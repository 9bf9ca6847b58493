// Package blog serves the beauty journal: cached index pages and single posts
// with plain-text excerpts.
package blog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/resilience"
)

// ExcerptRunes is the length of index excerpts, before the ellipsis.
const ExcerptRunes = 160

// API is the part of the upstream client the blog needs.
type API interface {
	ListPosts(ctx context.Context, page int) (domain.PostPage, error)
	GetPost(ctx context.Context, slug string) (domain.Post, error)
}

// Service reads posts through the page cache.
type Service struct {
	api     API
	pages   *cache.Pages[domain.PostPage]
	posts   *cache.Pages[domain.Post]
	breaker *resilience.CircuitBreaker
}

func NewService(api API, store cache.Store) *Service {
	return &Service{
		api:     api,
		pages:   cache.NewPages[domain.PostPage](store),
		posts:   cache.NewPages[domain.Post](store),
		breaker: resilience.NewCircuitBreaker("blog", 3, 30*time.Second),
	}
}

// Page returns index page `page` of the blog.
func (s *Service) Page(ctx context.Context, page int) (domain.PostPage, error) {
	if page < 1 {
		page = 1
	}
	return s.pages.GetOrLoad(ctx, "posts", page, func(ctx context.Context) (domain.PostPage, error) {
		return s.api.ListPosts(ctx, page)
	})
}

// Post returns a single post by slug.
func (s *Service) Post(ctx context.Context, slug string) (domain.Post, error) {
	return s.posts.GetOrLoad(ctx, "post:"+slug, 1, func(ctx context.Context) (domain.Post, error) {
		return s.api.GetPost(ctx, slug)
	})
}

// Latest returns up to n posts from the first index page for the home page.
// Any failure yields no posts, and repeated failures stop calling the API
// for a while.
func (s *Service) Latest(ctx context.Context, n int) []domain.Post {
	if n <= 0 {
		return nil
	}
	var page domain.PostPage
	err := s.breaker.Execute(func() error {
		var err error
		page, err = s.Page(ctx, 1)
		return err
	})
	if err != nil {
		return nil
	}
	if len(page.Items) > n {
		return page.Items[:n]
	}
	return page.Items
}

// Excerpt extracts the visible text of a post body, collapses whitespace and
// cuts it at a word boundary to at most ExcerptRunes runes plus "…".
func Excerpt(bodyHTML string) string {
	text := PlainText(bodyHTML)
	if utf8.RuneCountInString(text) <= ExcerptRunes {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:ExcerptRunes])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ،,.؛:") + "…"
}

// PlainText returns the visible text of an HTML fragment. Script and style
// contents are skipped.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "li", "h1", "h2", "h3", "h4", "div":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "li", "h1", "h2", "h3", "h4", "div":
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
