package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/domain"
)

type fakeAPI struct {
	mu      sync.Mutex
	calls   []string
	limits  []int
	results map[string][]domain.Product
	err     error
}

func (f *fakeAPI) SearchProducts(_ context.Context, q string, limit int) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q], nil
}

var catalog = []domain.Product{
	{ID: "1", Name: "Hydrating Serum", Brand: "CeraVe"},
	{ID: "2", Name: "Vitamin C Serum", Brand: "The Ordinary"},
	{ID: "3", Name: "Hair Oil", Brand: "Serum Lab"},
	{ID: "4", Name: "سيروم فيتامين سي", Brand: "زينة"},
}

func TestRankPrefersPrefixMatches(t *testing.T) {
	got := Rank("hydra", catalog, 0)
	require.NotEmpty(t, got)
	assert.Equal(t, "1", got[0].ProductID)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestRankMatchesBrandAndWords(t *testing.T) {
	got := Rank("vitamin", catalog, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ProductID, "name prefix wins")

	byBrand := Rank("cerave", catalog, 1)
	assert.Equal(t, "1", byBrand[0].ProductID)
	assert.Equal(t, "CeraVe", byBrand[0].Brand)
}

func TestRankArabic(t *testing.T) {
	// Diacritics and taa marbuta variants do not matter.
	got := Rank("سيرُوم", catalog, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "4", got[0].ProductID)
}

func TestRankDeduplicatesAndCaps(t *testing.T) {
	dup := append(append([]domain.Product{}, catalog...), catalog...)
	for i := range 20 {
		dup = append(dup, domain.Product{ID: string(rune('a' + i)), Name: "Serum"})
	}
	got := Rank("serum", dup, MaxSuggestions)
	assert.Len(t, got, MaxSuggestions)

	ids := map[string]bool{}
	for _, s := range got {
		assert.False(t, ids[s.ProductID], "duplicate %s", s.ProductID)
		ids[s.ProductID] = true
	}
}

func TestSuggest(t *testing.T) {
	api := &fakeAPI{results: map[string][]domain.Product{"serum": catalog}}
	svc := NewService(api, cache.NewMemoryStore(0), nil)
	ctx := context.Background()

	t.Run("short queries skip the API", func(t *testing.T) {
		got, err := svc.Suggest(ctx, " s ")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.Empty(t, api.calls)
	})

	t.Run("normalized query is fetched once", func(t *testing.T) {
		got, err := svc.Suggest(ctx, "SERUM")
		require.NoError(t, err)
		assert.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), MaxSuggestions)

		_, err = svc.Suggest(ctx, "  serum ")
		require.NoError(t, err)
		assert.Equal(t, []string{"serum"}, api.calls)
		assert.Equal(t, []int{suggestFetch}, api.limits)
	})
}

func TestSuggestPropagatesErrors(t *testing.T) {
	api := &fakeAPI{err: domain.ErrUpstreamUnavailable}
	_, err := NewService(api, nil, nil).Suggest(context.Background(), "serum")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

type stubRewriter struct {
	rw  Rewrite
	err error
}

func (s stubRewriter) Rewrite(context.Context, string) (Rewrite, error) { return s.rw, s.err }

func TestSearch(t *testing.T) {
	results := map[string][]domain.Product{
		"serum":     catalog[:2],
		"hair oil":  catalog[2:3],
		"nothing":   nil,
		"hydrating": catalog[:1],
	}

	tests := []struct {
		name      string
		rewriter  Rewriter
		query     string
		wantQuery string
		wantIDs   []string
		rewritten bool
	}{
		{name: "identity", query: "Serum", wantQuery: "Serum", wantIDs: []string{"1", "2"}},
		{
			name:      "rewritten",
			rewriter:  stubRewriter{rw: Rewrite{Primary: "serum"}},
			query:     "sirum",
			wantQuery: "serum",
			wantIDs:   []string{"1", "2"},
			rewritten: true,
		},
		{
			name:      "falls through to alternatives",
			rewriter:  stubRewriter{rw: Rewrite{Primary: "nothing", Alternatives: []string{"hair oil"}}},
			query:     "hairoil",
			wantQuery: "hair oil",
			wantIDs:   []string{"3"},
			rewritten: true,
		},
		{
			name:      "rewriter failure uses raw query",
			rewriter:  stubRewriter{err: errors.New("quota")},
			query:     "hydrating",
			wantQuery: "hydrating",
			wantIDs:   []string{"1"},
		},
		{name: "no results", query: "nothing", wantQuery: "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&fakeAPI{results: results}, nil, tt.rewriter)
			res, err := svc.Search(context.Background(), tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.wantQuery, res.Query)
			var ids []string
			for _, p := range res.Products {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.rewritten, res.Rewritten())
		})
	}
}

func TestSearchBlankQuery(t *testing.T) {
	api := &fakeAPI{}
	res, err := NewService(api, nil, nil).Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, res.Products)
	assert.Empty(t, api.calls)
}

func TestParseRewrite(t *testing.T) {
	tests := []struct {
		name string
		txt  string
		want Rewrite
	}{
		{
			name: "clean answer",
			txt:  `{"primary":" serum ","alternatives":["سيروم","Serum","", "serum oil","extra"]}`,
			want: Rewrite{Primary: "serum", Alternatives: []string{"سيروم", "serum oil"}},
		},
		{name: "not json", txt: "Sure! Here you go", want: Rewrite{Primary: "sirum"}},
		{name: "unknown fields", txt: `{"primary":"x","why":"typo"}`, want: Rewrite{Primary: "sirum"}},
		{name: "blank primary", txt: `{"primary":"","alternatives":[]}`, want: Rewrite{Primary: "sirum"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRewrite("sirum", tt.txt))
		})
	}
}

func TestIdentityRewriter(t *testing.T) {
	rw, err := Identity{}.Rewrite(context.Background(), "  lipstick ")
	require.NoError(t, err)
	assert.Equal(t, Rewrite{Primary: "lipstick"}, rw)
}
