package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/zina/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

// fakeAPI accepts a single valid access token, rotates it on refresh and
// records every request path it sees.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	refreshFails bool
	alwaysReject bool
	paths        []string
	bodies       []string
	refreshCalls atomic.Int32
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/refresh":
		f.refreshCalls.Add(1)
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = json.Unmarshal(body, &req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.refreshFails || req.RefreshToken != f.validRefresh {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"invalid_refresh_token","message":"refresh token rejected"}`))
			return
		}
		f.validAccess = "access-2"
		f.validRefresh = "refresh-2"
		_ = json.NewEncoder(w).Encode(domain.AuthResult{Tokens: domain.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}})
	case "/users/me":
		f.mu.Lock()
		ok := !f.alwaysReject && r.Header.Get("Authorization") == "Bearer "+f.validAccess
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodPut {
			var u domain.User
			_ = json.Unmarshal(body, &u)
			u.ID = "u1"
			_ = json.NewEncoder(w).Encode(u)
			return
		}
		_ = json.NewEncoder(w).Encode(domain.User{ID: "u1", Name: "سارة", Email: "sara@example.com"})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"not_found","message":"no such route"}`))
	}
}

func (f *fakeAPI) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func newFake(t *testing.T, access string) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{validAccess: access, validRefresh: "refresh-1"}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, New(srv.URL, WithRetryDelay(time.Millisecond))
}

func TestDoAuthed(t *testing.T) {
	ctx := context.Background()

	t.Run("no tokens makes no request", func(t *testing.T) {
		f, c := newFake(t, "access-1")
		_, err := c.Me(ctx, &memTokens{})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Empty(t, f.seen())
	})

	t.Run("valid token", func(t *testing.T) {
		f, c := newFake(t, "access-1")
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}}
		u, err := c.Me(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, "u1", u.ID)
		assert.Equal(t, []string{"GET /users/me"}, f.seen())
	})

	t.Run("401 refreshes once and retries with the new token", func(t *testing.T) {
		f, c := newFake(t, "unknown")
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}}

		u, err := c.Me(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, "sara@example.com", u.Email)
		assert.Equal(t, []string{"GET /users/me", "POST /auth/refresh", "GET /users/me"}, f.seen())

		got, _ := ts.Tokens()
		assert.Equal(t, domain.Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, got)
	})

	t.Run("request body is replayed on retry", func(t *testing.T) {
		f, c := newFake(t, "unknown")
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}}

		u, err := c.UpdateProfile(ctx, ts, domain.ProfileUpdate{Name: "نورة"})
		require.NoError(t, err)
		assert.Equal(t, "نورة", u.Name)

		f.mu.Lock()
		defer f.mu.Unlock()
		require.Len(t, f.bodies, 3)
		assert.JSONEq(t, f.bodies[0], f.bodies[2])
	})

	t.Run("failed refresh clears tokens", func(t *testing.T) {
		f, c := newFake(t, "unknown")
		f.refreshFails = true
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}}

		_, err := c.Me(ctx, ts)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.True(t, ts.cleared)
		assert.Equal(t, []string{"GET /users/me", "POST /auth/refresh"}, f.seen())
	})

	t.Run("missing refresh token clears tokens", func(t *testing.T) {
		f, c := newFake(t, "unknown")
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1"}}

		_, err := c.Me(ctx, ts)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.True(t, ts.cleared)
		assert.Equal(t, []string{"GET /users/me"}, f.seen())
	})

	t.Run("second 401 is not retried again", func(t *testing.T) {
		f, c := newFake(t, "access-1")
		f.alwaysReject = true
		ts := &memTokens{tokens: domain.Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}}

		_, err := c.Me(ctx, ts)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.True(t, ts.cleared)
		assert.Equal(t, []string{"GET /users/me", "POST /auth/refresh", "GET /users/me"}, f.seen())
		assert.EqualValues(t, 1, f.refreshCalls.Load())
	})

	t.Run("expired JWT is refreshed before the request", func(t *testing.T) {
		expired := signed(t, time.Now().Add(-time.Minute))
		f, c := newFake(t, expired)
		ts := &memTokens{tokens: domain.Tokens{AccessToken: expired, RefreshToken: "refresh-1"}}

		_, err := c.Me(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, []string{"POST /auth/refresh", "GET /users/me"}, f.seen())
	})

	t.Run("unexpired JWT is sent as is", func(t *testing.T) {
		fresh := signed(t, time.Now().Add(time.Hour))
		f, c := newFake(t, fresh)
		ts := &memTokens{tokens: domain.Tokens{AccessToken: fresh, RefreshToken: "refresh-1"}}

		_, err := c.Me(ctx, ts)
		require.NoError(t, err)
		assert.Equal(t, []string{"GET /users/me"}, f.seen())
	})

	t.Run("401 after a proactive refresh signs out", func(t *testing.T) {
		expired := signed(t, time.Now().Add(-time.Minute))
		f, c := newFake(t, expired)
		f.alwaysReject = true
		ts := &memTokens{tokens: domain.Tokens{AccessToken: expired, RefreshToken: "refresh-1"}}

		_, err := c.Me(ctx, ts)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.EqualValues(t, 1, f.refreshCalls.Load())
		assert.True(t, ts.cleared)
	})
}

func TestConcurrentRefreshIsShared(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(domain.AuthResult{Tokens: domain.Tokens{AccessToken: "a2", RefreshToken: "r2"}})
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL)

	var wg sync.WaitGroup
	results := make([]domain.AuthResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := c.Refresh(context.Background(), "r1")
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, res := range results {
		assert.Equal(t, "a2", res.AccessToken)
	}
}

func TestSharedRefreshSurvivesCancelledCaller(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_ = json.NewEncoder(w).Encode(domain.AuthResult{Tokens: domain.Tokens{AccessToken: "a2", RefreshToken: "r2"}})
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan struct{})
	go func() {
		defer close(first)
		_, _ = c.Refresh(ctx, "r1")
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	second := make(chan struct{})
	var res domain.AuthResult
	var err error
	go func() {
		defer close(second)
		res, err = c.Refresh(context.Background(), "r1")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)
	<-first
	<-second

	require.NoError(t, err)
	assert.Equal(t, "a2", res.AccessToken)
	assert.EqualValues(t, 1, calls.Load())
}

func TestDoRetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"p1","name":"كريم"}`))
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithRetries(3), WithRetryDelay(time.Millisecond))

	p, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "كريم", p.Name)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDoDoesNotRetryPosts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, WithRetries(3), WithRetryDelay(time.Millisecond))

	err := c.ForgotPassword(context.Background(), "a@b.co")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.EqualValues(t, 1, calls.Load())
}

func TestAPIErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusNotFound, `{"code":"not_found"}`, domain.ErrNotFound},
		{http.StatusConflict, `{"code":"email_taken"}`, domain.ErrUserAlreadyExists},
		{http.StatusUnprocessableEntity, `{}`, domain.ErrValidation},
		{http.StatusBadRequest, `not json`, domain.ErrValidation},
		{http.StatusUnauthorized, `{"code":"invalid_credentials"}`, domain.ErrInvalidCredentials},
		{http.StatusBadRequest, `{"code":"invalid_reset_token"}`, domain.ErrInvalidResetToken},
		{http.StatusInternalServerError, ``, domain.ErrUpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status)+" "+tt.body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(srv.URL, WithRetries(1)).Do(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestTransportErrorIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, WithRetries(2), WithRetryDelay(time.Millisecond)).ListProducts(context.Background(), domain.ProductQuery{Category: "skincare"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestListProductsQuery(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"items":[{"id":"1"}],"page":2,"page_size":12,"total_items":13,"total_pages":2}`))
	}))
	t.Cleanup(srv.Close)

	page, err := New(srv.URL).ListProducts(context.Background(), domain.ProductQuery{Category: "makeup", Page: 2, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, "category=makeup&limit=12&page=2", got)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
}
