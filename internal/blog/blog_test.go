package blog

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/domain"
)

func TestPlainText(t *testing.T) {
	in := `<h2>روتين  الصباح</h2><p>اغسلي وجهك<br>بالماء&nbsp;الفاتر.</p>
<script>alert("x")</script><style>p{color:red}</style><ul><li>تونر</li><li>سيروم</li></ul>`
	assert.Equal(t, "روتين الصباح اغسلي وجهك بالماء الفاتر. تونر سيروم", PlainText(in))
}

func TestExcerpt(t *testing.T) {
	t.Run("short text is kept whole", func(t *testing.T) {
		assert.Equal(t, "نص قصير", Excerpt("<p>نص قصير</p>"))
	})

	t.Run("long text is cut at a word boundary", func(t *testing.T) {
		body := "<p>" + strings.Repeat("كلمة ", 100) + "</p>"
		got := Excerpt(body)

		assert.True(t, strings.HasSuffix(got, "…"))
		trimmed := strings.TrimSuffix(got, "…")
		assert.LessOrEqual(t, utf8.RuneCountInString(trimmed), ExcerptRunes)
		assert.True(t, strings.HasSuffix(trimmed, "كلمة"), "no half words: %q", trimmed)
	})

	t.Run("a single long word is cut hard", func(t *testing.T) {
		got := Excerpt(strings.Repeat("ا", 300))
		assert.Equal(t, ExcerptRunes+1, utf8.RuneCountInString(got))
	})
}

type fakeAPI struct {
	lists, gets atomic.Int32
	err         error
}

func (f *fakeAPI) ListPosts(_ context.Context, page int) (domain.PostPage, error) {
	f.lists.Add(1)
	if f.err != nil {
		return domain.PostPage{}, f.err
	}
	return domain.PostPage{
		Items:      []domain.Post{{Slug: "a"}, {Slug: "b"}, {Slug: "c"}},
		Page:       page,
		TotalPages: 4,
	}, nil
}

func (f *fakeAPI) GetPost(_ context.Context, slug string) (domain.Post, error) {
	f.gets.Add(1)
	if slug == "missing" {
		return domain.Post{}, domain.ErrNotFound
	}
	return domain.Post{Slug: slug, Title: "عنوان"}, nil
}

func TestPagesAreCachedByNumber(t *testing.T) {
	api := &fakeAPI{}
	svc := NewService(api, cache.NewMemoryStore(0))
	ctx := context.Background()

	for _, n := range []int{1, 2, 1, 2, 0} {
		_, err := svc.Page(ctx, n)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), api.lists.Load(), "page 0 is page 1")

	p, err := svc.Post(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "عنوان", p.Title)
	_, _ = svc.Post(ctx, "a")
	assert.Equal(t, int32(1), api.gets.Load())

	_, err = svc.Post(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLatest(t *testing.T) {
	svc := NewService(&fakeAPI{}, nil)
	assert.Len(t, svc.Latest(context.Background(), 2), 2)
	assert.Len(t, svc.Latest(context.Background(), 10), 3)
	assert.Empty(t, svc.Latest(context.Background(), 0))
	assert.Empty(t, svc.Latest(context.Background(), -1))
}

func TestLatestDegradesAndTripsBreaker(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	svc := NewService(api, nil)

	for range 5 {
		assert.Empty(t, svc.Latest(context.Background(), 3))
	}
	assert.Equal(t, int32(3), api.lists.Load(), "breaker opens after three failures")
}
