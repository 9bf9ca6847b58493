package devapi

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/listing"
)

type memTokens struct {
	mu      sync.Mutex
	tokens  domain.Tokens
	cleared bool
}

func (m *memTokens) Tokens() (domain.Tokens, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, !m.tokens.Empty()
}

func (m *memTokens) SetTokens(t domain.Tokens) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = t
	return nil
}

func (m *memTokens) ClearTokens() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = domain.Tokens{}
	m.cleared = true
	return nil
}

type fixture struct {
	store  *Store
	tokens *Tokens
	client *apiclient.Client
}

func setup(t *testing.T) fixture {
	t.Helper()
	seed, err := LoadSeed(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	store, err := NewStore(seed, bcrypt.MinCost)
	require.NoError(t, err)
	tokens := NewTokens("test-secret", 0)

	srv := httptest.NewServer(New(store, tokens).E)
	t.Cleanup(srv.Close)
	return fixture{
		store:  store,
		tokens: tokens,
		client: apiclient.New(srv.URL+"/api", apiclient.WithRetries(1)),
	}
}

func (f fixture) login(t *testing.T) (*memTokens, domain.User) {
	t.Helper()
	res, err := f.client.Login(context.Background(), domain.Credentials{Email: "sara@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	ts := &memTokens{tokens: res.Tokens}
	return ts, res.User
}

func TestSeed(t *testing.T) {
	t.Run("embedded seed covers every live category", func(t *testing.T) {
		seed, err := LoadSeed(nil, "")
		require.NoError(t, err)
		counts := map[string]int{}
		for _, p := range seed.Products {
			counts[p.Category]++
		}
		for _, c := range domain.Categories {
			if !c.Placeholder {
				assert.NotZero(t, counts[c.Slug], c.Slug)
			}
		}
		assert.NotEmpty(t, seed.Posts)
	})

	t.Run("reads a file from the filesystem", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/seed.yaml", []byte(`
products:
  - {id: p1, name: كريم, category: skincare, price: 10}
`), 0o644))
		seed, err := LoadSeed(fs, "/seed.yaml")
		require.NoError(t, err)
		assert.Len(t, seed.Products, 1)
	})

	for name, raw := range map[string]string{
		"unknown category":        "products: [{id: p1, name: x, category: shoes}]",
		"duplicate id":            "products: [{id: p1, name: x, category: makeup}, {id: p1, name: y, category: makeup}]",
		"user without password":   "users: [{id: u1, email: a@b.c}]",
		"notification for nobody": "notifications: [{user: ghost@example.com, title: x}]",
		"not yaml":                "products: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSeed([]byte(raw))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeed(afero.NewMemMapFs(), "/nope.yaml")
		assert.Error(t, err)
	})
}

func TestCatalogEndpoints(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	page, err := f.client.ListProducts(ctx, domain.ProductQuery{Category: "skincare", Page: 2, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 14, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	cheap, err := f.client.ListProducts(ctx, domain.ProductQuery{Category: "makeup", Limit: 3, Sort: listing.SortPriceAsc})
	require.NoError(t, err)
	var prices []float64
	for _, p := range cheap.Items {
		prices = append(prices, p.EffectivePrice())
		assert.Equal(t, "makeup", p.Category)
		assert.Equal(t, "SAR", p.Currency)
	}
	assert.Empty(t, cmp.Diff([]float64{55, 95, 140}, prices))

	perfume, err := f.client.ListProducts(ctx, domain.ProductQuery{Category: "perfume"})
	require.NoError(t, err)
	assert.Empty(t, perfume.Items)

	_, err = f.client.ListProducts(ctx, domain.ProductQuery{Category: "shoes"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	p, err := f.client.GetProduct(ctx, "hc-1")
	require.NoError(t, err)
	assert.Equal(t, "زيت الأرغان", p.Name)
	_, err = f.client.GetProduct(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	found, err := f.client.SearchProducts(ctx, "سيروم", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, found)
	assert.LessOrEqual(t, len(found), 3)
	for i := 1; i < len(found); i++ {
		assert.GreaterOrEqual(t, found[i-1].Rating, found[i].Rating, "best rated first")
	}
}

func TestBlogEndpoints(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	posts, err := f.client.ListPosts(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, posts.Items)
	assert.Equal(t, "vitamin-c-guide", posts.Items[0].Slug, "newest first")

	post, err := f.client.GetPost(ctx, "argan-oil")
	require.NoError(t, err)
	assert.Contains(t, post.BodyHTML, "<p>")
	_, err = f.client.GetPost(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthFlows(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		f := setup(t)
		_, err := f.client.Login(ctx, domain.Credentials{Email: "sara@example.com", Password: "nope-nope"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("register then duplicate", func(t *testing.T) {
		f := setup(t)
		res, err := f.client.Register(ctx, domain.Registration{Name: "ريم", Email: "reem@example.com", Password: "secret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "reem@example.com", res.User.Email)

		_, err = f.client.Register(ctx, domain.Registration{Name: "ريم", Email: "REEM@example.com", Password: "secret-pass"})
		assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

		_, err = f.client.Register(ctx, domain.Registration{Name: "ر", Email: "x@example.com", Password: "secret-pass"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("forgot and reset", func(t *testing.T) {
		f := setup(t)
		var issued string
		f.store.OnReset = func(_, token string) { issued = token }

		require.NoError(t, f.client.ForgotPassword(ctx, "nobody@example.com"))
		assert.Empty(t, issued, "unknown emails get no token but the same answer")

		require.NoError(t, f.client.ForgotPassword(ctx, "sara@example.com"))
		require.NotEmpty(t, issued)

		require.NoError(t, f.client.ResetPassword(ctx, issued, "brand-new-pass"))
		assert.ErrorIs(t, f.client.ResetPassword(ctx, issued, "another-pass"), domain.ErrInvalidResetToken, "tokens are single use")

		_, err := f.client.Login(ctx, domain.Credentials{Email: "sara@example.com", Password: "brand-new-pass"})
		assert.NoError(t, err)
	})

	t.Run("logout revokes the refresh token", func(t *testing.T) {
		f := setup(t)
		ts, _ := f.login(t)
		refresh := ts.tokens.RefreshToken
		require.NoError(t, f.client.Logout(ctx, ts))
		_, err := f.client.Refresh(ctx, refresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthedRequests(t *testing.T) {
	ctx := context.Background()

	t.Run("profile round trip", func(t *testing.T) {
		f := setup(t)
		ts, u := f.login(t)

		me, err := f.client.Me(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, u.ID, me.ID)

		updated, err := f.client.UpdateProfile(ctx, ts, domain.ProfileUpdate{Name: "سارة محمد", Phone: "+966511111111"})
		require.NoError(t, err)
		assert.Equal(t, "سارة محمد", updated.Name)

		_, err = f.client.UpdateProfile(ctx, ts, domain.ProfileUpdate{Name: "س"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("expired access token is refreshed up front", func(t *testing.T) {
		f := setup(t)
		ts, _ := f.login(t)
		oldRefresh := ts.tokens.RefreshToken

		f.tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
		stale, err := f.tokens.Issue("u-sara")
		require.NoError(t, err)
		f.tokens.now = time.Now
		ts.tokens.AccessToken = stale

		_, err = f.client.Me(ctx, ts)
		require.NoError(t, err)
		assert.NotEqual(t, stale, ts.tokens.AccessToken)
		assert.NotEqual(t, oldRefresh, ts.tokens.RefreshToken, "refresh tokens rotate")

		_, err = f.client.Refresh(ctx, oldRefresh)
		assert.ErrorIs(t, err, domain.ErrUnauthorized, "the spent refresh token is dead")
	})

	t.Run("rejected access token is refreshed once and retried", func(t *testing.T) {
		f := setup(t)
		ts, _ := f.login(t)
		ts.tokens.AccessToken = "not-a-jwt"

		ns, err := f.client.ListNotifications(ctx, ts)
		require.NoError(t, err)
		assert.Len(t, ns, 3)
		assert.Equal(t, 2, domain.UnreadCount(ns))
	})

	t.Run("dead refresh token signs the customer out", func(t *testing.T) {
		f := setup(t)
		ts, _ := f.login(t)
		ts.tokens = domain.Tokens{AccessToken: "not-a-jwt", RefreshToken: "revoked"}

		_, err := f.client.Me(ctx, ts)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.True(t, ts.cleared)
	})

	t.Run("wrong current password keeps the session", func(t *testing.T) {
		f := setup(t)
		ts, _ := f.login(t)

		err := f.client.ChangePassword(ctx, ts, "wrong-pass", "another-pass")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.False(t, ts.cleared)

		require.NoError(t, f.client.ChangePassword(ctx, ts, "secret-pass", "another-pass"))
		_, err = f.client.Login(ctx, domain.Credentials{Email: "sara@example.com", Password: "another-pass"})
		assert.NoError(t, err)
	})

	t.Run("notifications", func(t *testing.T) {
		f := setup(t)
		ts, u := f.login(t)
		f.store.Notify(u.ID, domain.Notification{Title: "وصل طلبك"})

		ns, err := f.client.ListNotifications(ctx, ts)
		require.NoError(t, err)
		require.Len(t, ns, 4)
		assert.Equal(t, "وصل طلبك", ns[0].Title, "newest first")

		require.NoError(t, f.client.MarkNotificationRead(ctx, ts, ns[0].ID))
		assert.ErrorIs(t, f.client.MarkNotificationRead(ctx, ts, "missing"), domain.ErrNotFound)
		require.NoError(t, f.client.MarkAllNotificationsRead(ctx, ts))

		ns, err = f.client.ListNotifications(ctx, ts)
		require.NoError(t, err)
		assert.Zero(t, domain.UnreadCount(ns))
	})
}

func TestTokens(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	raw, err := tokens.Issue("u1")
	require.NoError(t, err)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	_, err = NewTokens("other", 0).Verify(raw)
	assert.Error(t, err, "wrong secret")

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	assert.Error(t, err, "expired")
}
