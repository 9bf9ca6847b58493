// Package account mounts sign-in, registration, password reset, the profile
// screens and customer notifications.
package account

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/hub"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/module"
	"github.com/nfrund/zina/internal/notifications"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/registry"
	"github.com/nfrund/zina/internal/rendering"
)

// LiveKey resolves the live notice pusher.
var LiveKey = registry.Key[*notifications.Live]("account.live")

// Dependencies holds what the account module needs from the application.
type Dependencies struct {
	API        *apiclient.Client
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Hub        *hub.Hub
	Renderer   rendering.Renderer
	// Origins are extra websocket origin patterns besides the serving host.
	Origins []string
}

// AccountModule implements module.Module for customer accounts.
type AccountModule struct {
	module.BaseModule
	deps Dependencies
}

// New creates the account module.
func New(deps Dependencies) *AccountModule {
	return &AccountModule{deps: deps}
}

func (m *AccountModule) Name() string {
	return "account"
}

func (m *AccountModule) Register(reg *registry.Registry) error {
	registry.Set(reg, LiveKey, notifications.NewLive(m.deps.Hub, m.deps.Subscriber, m.deps.Renderer))
	return nil
}

// Boot mounts the auth and account routes and starts pushing live notices.
func (m *AccountModule) Boot(ctx context.Context, g *echo.Group, reg *registry.Registry) error {
	if err := registry.MustGet(reg, LiveKey).Start(ctx); err != nil {
		return err
	}

	limit := middleware.RateLimiter(reg.Config().GetRateLimitPerMinute())
	auth := handlers.NewAuthHandler(m.deps.API, m.deps.Publisher)
	account := handlers.NewAccountHandler(m.deps.API, m.deps.Publisher)
	notes := handlers.NewNotificationsHandler(m.deps.API)

	g.GET("/login", auth.LoginGet)
	g.POST("/login", auth.LoginPost, limit)
	g.GET("/register", auth.RegisterGet)
	g.POST("/register", auth.RegisterPost, limit)
	g.POST("/logout", auth.Logout)
	g.GET("/forgot-password", auth.ForgotPasswordGet)
	g.POST("/forgot-password", auth.ForgotPasswordPost, limit)
	g.GET("/reset-password", auth.ResetPasswordGet)
	g.POST("/reset-password", auth.ResetPasswordPost, limit)

	// The badge is lazy-loaded on every page, signed in or not.
	g.GET("/account/notifications/badge", notes.Badge)

	protected := g.Group("/account", middleware.RequireAuth)
	protected.GET("", account.Overview)
	protected.GET("/profile", account.ProfileGet)
	protected.POST("/profile", account.ProfilePost)
	protected.POST("/password", account.PasswordPost)
	protected.GET("/notifications", notes.List)
	protected.POST("/notifications/read-all", notes.MarkAllRead)
	protected.POST("/notifications/:id/read", notes.MarkRead)

	g.GET("/ws/notifications", notifications.NewSocket(m.deps.Hub, m.deps.Origins...).Serve)
	return nil
}
