package apiclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/zina/internal/domain"
)

// expirySkew treats tokens this close to expiry as already expired.
const expirySkew = 10 * time.Second

// TokenStore holds one customer's credentials between requests.
type TokenStore interface {
	Tokens() (domain.Tokens, bool)
	SetTokens(domain.Tokens) error
	ClearTokens() error
}

// DoAuthed performs a request on behalf of the customer whose tokens live in
// ts. The access token is refreshed at most once per call: up front when it
// is a JWT past its expiry, or after the first 401. When refreshing is not
// possible the tokens are cleared and domain.ErrUnauthorized is returned.
func (c *Client) DoAuthed(ctx context.Context, ts TokenStore, method, path string, body, out any) error {
	tokens, ok := ts.Tokens()
	if !ok || tokens.Empty() {
		return domain.ErrUnauthorized
	}
	payload, err := encode(body)
	if err != nil {
		return err
	}

	refreshed := false
	if c.accessExpired(tokens.AccessToken) {
		if tokens, err = c.refreshInto(ctx, ts, tokens); err != nil {
			return err
		}
		refreshed = true
	}

	err = c.send(ctx, method, path, payload, tokens.AccessToken, out)
	if !isUnauthorized(err) {
		return err
	}
	if refreshed {
		return c.signOut(ctx, ts, "access token rejected after refresh")
	}

	if tokens, err = c.refreshInto(ctx, ts, tokens); err != nil {
		return err
	}
	err = c.send(ctx, method, path, payload, tokens.AccessToken, out)
	if isUnauthorized(err) {
		return c.signOut(ctx, ts, "access token rejected after refresh")
	}
	return err
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// accessExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens and tokens without exp are never considered expired here;
// the server's 401 decides for them.
func (c *Client) accessExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !c.now().Add(expirySkew).Before(claims.ExpiresAt.Time)
}

func (c *Client) refreshInto(ctx context.Context, ts TokenStore, old domain.Tokens) (domain.Tokens, error) {
	if old.RefreshToken == "" {
		return domain.Tokens{}, c.signOut(ctx, ts, "no refresh token")
	}

	slog.InfoContext(ctx, "Refreshing access token")
	res, err := c.Refresh(ctx, old.RefreshToken)
	if err != nil {
		slog.WarnContext(ctx, "Token refresh failed", "error", err)
		return domain.Tokens{}, c.signOut(ctx, ts, "refresh failed")
	}

	fresh := res.Tokens
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = old.RefreshToken
	}
	if err := ts.SetTokens(fresh); err != nil {
		return domain.Tokens{}, err
	}
	return fresh, nil
}

func (c *Client) signOut(ctx context.Context, ts TokenStore, reason string) error {
	slog.InfoContext(ctx, "Clearing customer tokens", "reason", reason)
	if err := ts.ClearTokens(); err != nil {
		slog.WarnContext(ctx, "Failed to clear tokens", "error", err)
	}
	return domain.ErrUnauthorized
}

// Refresh exchanges a refresh token for a new token pair. Concurrent calls
// with the same refresh token share one upstream request, since the API
// rotates refresh tokens on use. The shared request outlives a cancelled
// caller so the others still receive the rotated pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (domain.AuthResult, error) {
	v, err, _ := c.refreshes.Do(refreshToken, func() (any, error) {
		var res domain.AuthResult
		body := map[string]string{"refresh_token": refreshToken}
		if err := c.Do(context.WithoutCancel(ctx), http.MethodPost, "/auth/refresh", body, &res); err != nil {
			return domain.AuthResult{}, err
		}
		if res.AccessToken == "" {
			return domain.AuthResult{}, domain.ErrUnauthorized
		}
		return res, nil
	})
	if err != nil {
		return domain.AuthResult{}, err
	}
	return v.(domain.AuthResult), nil
}
