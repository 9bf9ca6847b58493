package session

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/zina/internal/domain"
)

// AuthSessionName is the cookie holding the customer's tokens and profile.
const AuthSessionName = "zina-auth"

const (
	keyTokens = "tokens"
	keyUser   = "user"
)

// Auth is the auth session of one request. It implements
// apiclient.TokenStore, so refreshed tokens are written straight back to
// the cookie.
type Auth struct {
	c    echo.Context
	sess *sessions.Session
}

// GetAuth loads the auth session. A cookie that fails verification yields a
// fresh, empty session.
func GetAuth(c echo.Context) (*Auth, error) {
	sess, err := Get(AuthSessionName, c)
	if sess == nil {
		return nil, err
	}
	return &Auth{c: c, sess: sess}, nil
}

func (a *Auth) Tokens() (domain.Tokens, bool) {
	t, ok := Load[domain.Tokens](a.sess, keyTokens)
	if !ok || t.Empty() {
		return domain.Tokens{}, false
	}
	return t, true
}

func (a *Auth) SetTokens(t domain.Tokens) error {
	if err := Put(a.sess, keyTokens, t); err != nil {
		return err
	}
	return Save(a.sess, a.c)
}

// ClearTokens signs the customer out locally.
func (a *Auth) ClearTokens() error {
	return a.Clear()
}

// CurrentUser returns the profile snapshot stored at sign-in. It is only
// meaningful while tokens are present.
func (a *Auth) CurrentUser() (domain.User, bool) {
	if _, ok := a.Tokens(); !ok {
		return domain.User{}, false
	}
	return Load[domain.User](a.sess, keyUser)
}

func (a *Auth) SetUser(u domain.User) error {
	if err := Put(a.sess, keyUser, u); err != nil {
		return err
	}
	return Save(a.sess, a.c)
}

// SignIn stores the result of a login, registration or refresh.
func (a *Auth) SignIn(res domain.AuthResult) error {
	if err := Put(a.sess, keyTokens, res.Tokens); err != nil {
		return err
	}
	if err := Put(a.sess, keyUser, res.User); err != nil {
		return err
	}
	return Save(a.sess, a.c)
}

// Clear removes tokens and profile from the cookie.
func (a *Auth) Clear() error {
	delete(a.sess.Values, keyTokens)
	delete(a.sess.Values, keyUser)
	return Save(a.sess, a.c)
}

// SignedIn reports whether the session carries an access token.
func (a *Auth) SignedIn() bool {
	_, ok := a.Tokens()
	return ok
}
