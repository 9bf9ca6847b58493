package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/rendering"
	"github.com/nfrund/zina/internal/session"
)

const testSessionSecret = "a-very-secret-key-for-testing-!!"

// browser drives a real HTTP server with a cookie jar, so sessions and
// flashes survive between requests the way they do in a browser.
type browser struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newBrowser(t *testing.T, routes func(e *echo.Echo)) *browser {
	t.Helper()
	e := echo.New()
	e.Validator = handlers.NewValidator()
	e.Renderer = rendering.NewUniversalRenderer()
	e.Use(session.Middleware(session.NewStore(testSessionSecret, false)))
	routes(e)

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:   t,
		srv: srv,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type response struct {
	Status   int
	Location string
	Header   http.Header
	Body     string
}

func (b *browser) do(req *http.Request) response {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     string(body),
	}
}

func (b *browser) get(path string, headers ...string) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.srv.URL+path, nil)
	require.NoError(b.t, err)
	setHeaders(req, headers)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values, headers ...string) response {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setHeaders(req, headers)
	return b.do(req)
}

// follow GETs the redirect target of r.
func (b *browser) follow(r response) response {
	b.t.Helper()
	require.NotEmpty(b.t, r.Location, "expected a redirect, got %d", r.Status)
	return b.get(r.Location)
}

func setHeaders(req *http.Request, kv []string) {
	for i := 0; i+1 < len(kv); i += 2 {
		req.Header.Set(kv[i], kv[i+1])
	}
}

var htmx = []string{"HX-Request", "true"}

// fakeAPI stands in for the upstream API behind the auth, account and
// notification handlers.
type fakeAPI struct {
	mu sync.Mutex

	loginErr    error
	registerErr error
	forgotErr   error
	resetErr    error
	meErr       error
	updateErr   error
	passwordErr error
	listErr     error

	user          domain.User
	notifications []domain.Notification

	forgotEmails []string
	loggedOut    int
	readIDs      []string
	readAll      int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		user: domain.User{ID: "u1", Name: "سارة", Email: "sara@example.com"},
	}
}

func (f *fakeAPI) result() domain.AuthResult {
	return domain.AuthResult{User: f.user, Tokens: domain.Tokens{AccessToken: "access", RefreshToken: "refresh"}}
}

func (f *fakeAPI) Login(_ context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	if f.loginErr != nil {
		return domain.AuthResult{}, f.loginErr
	}
	return f.result(), nil
}

func (f *fakeAPI) Register(_ context.Context, reg domain.Registration) (domain.AuthResult, error) {
	if f.registerErr != nil {
		return domain.AuthResult{}, f.registerErr
	}
	f.user.Name, f.user.Email = reg.Name, reg.Email
	return f.result(), nil
}

func (f *fakeAPI) Logout(context.Context, apiclient.TokenStore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut++
	return nil
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgotEmails = append(f.forgotEmails, email)
	return f.forgotErr
}

func (f *fakeAPI) ResetPassword(context.Context, string, string) error {
	return f.resetErr
}

func (f *fakeAPI) Me(context.Context, apiclient.TokenStore) (domain.User, error) {
	if f.meErr != nil {
		return domain.User{}, f.meErr
	}
	return f.user, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, ts apiclient.TokenStore, upd domain.ProfileUpdate) (domain.User, error) {
	if f.updateErr != nil {
		if f.updateErr == domain.ErrUnauthorized {
			_ = ts.ClearTokens()
		}
		return domain.User{}, f.updateErr
	}
	f.user.Name, f.user.Phone, f.user.AvatarURL = upd.Name, upd.Phone, upd.AvatarURL
	return f.user, nil
}

func (f *fakeAPI) ChangePassword(context.Context, apiclient.TokenStore, string, string) error {
	return f.passwordErr
}

func (f *fakeAPI) ListNotifications(context.Context, apiclient.TokenStore) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out, nil
}

func (f *fakeAPI) MarkNotificationRead(_ context.Context, _ apiclient.TokenStore, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == id {
			f.notifications[i].Read = true
			f.readIDs = append(f.readIDs, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeAPI) MarkAllNotificationsRead(context.Context, apiclient.TokenStore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		f.notifications[i].Read = true
	}
	f.readAll++
	return nil
}

// recordingBus captures published events.
type recordingBus struct {
	mu   sync.Mutex
	msgs []pubsub.Message
}

func (b *recordingBus) Publish(_ context.Context, msg pubsub.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

func (b *recordingBus) Close() error { return nil }

func (b *recordingBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.msgs {
		out = append(out, m.Topic)
	}
	return out
}

// registerAuth mounts the auth routes the way the server does.
func registerAuth(e *echo.Echo, api *fakeAPI, bus pubsub.Publisher) {
	h := handlers.NewAuthHandler(api, bus)
	e.GET("/login", h.LoginGet)
	e.POST("/login", h.LoginPost)
	e.GET("/register", h.RegisterGet)
	e.POST("/register", h.RegisterPost)
	e.POST("/logout", h.Logout)
	e.GET("/forgot-password", h.ForgotPasswordGet)
	e.POST("/forgot-password", h.ForgotPasswordPost)
	e.GET("/reset-password", h.ResetPasswordGet)
	e.POST("/reset-password", h.ResetPasswordPost)
}

func (b *browser) signIn() {
	b.t.Helper()
	r := b.post("/login", url.Values{"email": {"sara@example.com"}, "password": {"secret-pass"}})
	require.Equal(b.t, http.StatusSeeOther, r.Status)
	require.NotContains(b.t, r.Location, "/login")
}
