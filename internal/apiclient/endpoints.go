package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nfrund/zina/internal/domain"
)

// ListProducts fetches one upstream page of a category listing.
func (c *Client) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	var page domain.ProductPage
	err := c.Do(ctx, http.MethodGet, withQuery("/products", v), nil, &page)
	return page, err
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &p)
	return p, err
}

// SearchProducts runs a full-text product search upstream.
func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	v := url.Values{"q": {query}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var res struct {
		Items []domain.Product `json:"items"`
	}
	err := c.Do(ctx, http.MethodGet, withQuery("/products/search", v), nil, &res)
	return res.Items, err
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.Do(ctx, http.MethodPost, "/auth/login", creds, &res)
	return res, err
}

// Register creates an account and signs it in.
func (c *Client) Register(ctx context.Context, reg domain.Registration) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.Do(ctx, http.MethodPost, "/auth/register", reg, &res)
	return res, err
}

// Logout revokes the refresh token upstream. It is best effort: the local
// session is cleared by the caller regardless of the result.
func (c *Client) Logout(ctx context.Context, ts TokenStore) error {
	tokens, ok := ts.Tokens()
	if !ok || tokens.Empty() {
		return nil
	}
	body := map[string]string{"refresh_token": tokens.RefreshToken}
	return c.send(ctx, http.MethodPost, "/auth/logout", mustEncode(body), tokens.AccessToken, nil)
}

// ForgotPassword asks the API to email a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Do(ctx, http.MethodPost, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.Do(ctx, http.MethodPost, "/auth/reset-password", body, nil)
}

// Me fetches the signed-in customer's profile.
func (c *Client) Me(ctx context.Context, ts TokenStore) (domain.User, error) {
	var u domain.User
	err := c.DoAuthed(ctx, ts, http.MethodGet, "/users/me", nil, &u)
	return u, err
}

// UpdateProfile saves profile changes and returns the updated profile.
func (c *Client) UpdateProfile(ctx context.Context, ts TokenStore, upd domain.ProfileUpdate) (domain.User, error) {
	var u domain.User
	err := c.DoAuthed(ctx, ts, http.MethodPut, "/users/me", upd, &u)
	return u, err
}

// ChangePassword changes the password of the signed-in customer.
func (c *Client) ChangePassword(ctx context.Context, ts TokenStore, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.DoAuthed(ctx, ts, http.MethodPut, "/users/me/password", body, nil)
}

// ListPosts fetches one page of the blog index.
func (c *Client) ListPosts(ctx context.Context, page int) (domain.PostPage, error) {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	var res domain.PostPage
	err := c.Do(ctx, http.MethodGet, withQuery("/posts", v), nil, &res)
	return res, err
}

// GetPost fetches a blog post by slug.
func (c *Client) GetPost(ctx context.Context, slug string) (domain.Post, error) {
	var p domain.Post
	err := c.Do(ctx, http.MethodGet, "/posts/"+url.PathEscape(slug), nil, &p)
	return p, err
}

// ListNotifications fetches the customer's notifications, newest first.
func (c *Client) ListNotifications(ctx context.Context, ts TokenStore) ([]domain.Notification, error) {
	var res struct {
		Items []domain.Notification `json:"items"`
	}
	err := c.DoAuthed(ctx, ts, http.MethodGet, "/notifications", nil, &res)
	return res.Items, err
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, ts TokenStore, id string) error {
	return c.DoAuthed(ctx, ts, http.MethodPost, "/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context, ts TokenStore) error {
	return c.DoAuthed(ctx, ts, http.MethodPost, "/notifications/read-all", nil, nil)
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}

func mustEncode(body any) []byte {
	b, err := encode(body)
	if err != nil {
		panic(err)
	}
	return b
}
