package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"

	"github.com/nfrund/zina/internal/apiclient"
	"github.com/nfrund/zina/internal/app"
	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/config"
	"github.com/nfrund/zina/internal/handlers"
	"github.com/nfrund/zina/internal/hub"
	"github.com/nfrund/zina/internal/metrics"
	"github.com/nfrund/zina/internal/middleware"
	"github.com/nfrund/zina/internal/module"
	"github.com/nfrund/zina/internal/promo"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/registry"
	"github.com/nfrund/zina/internal/rendering"
	"github.com/nfrund/zina/internal/search"
	"github.com/nfrund/zina/internal/session"
	"github.com/nfrund/zina/web"
)

const shutdownTimeout = 10 * time.Second

// Server holds the storefront's HTTP server and the services it owns.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	Registry *registry.Registry

	modules []module.Module
	hub     *hub.Hub
	bus     *pubsub.WatermillBridge
	cache   cache.Store
	promo   *promo.Engine
	closers []func()

	cancel context.CancelFunc
	done   chan struct{}
}

// Option customises New, mostly for tests.
type Option func(*options)

type options struct {
	fs         afero.Fs
	httpClient *http.Client
	store      cache.Store
}

// WithFs reads the promo script from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithHTTPClient sets the client used to reach the upstream API.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithCacheStore replaces the configured page cache.
func WithCacheStore(s cache.Store) Option {
	return func(o *options) { o.store = s }
}

// New wires the storefront: upstream client, cache, promo rules, event bus,
// hub, middleware and the feature modules. Routes are mounted by Boot.
func New(ctx context.Context, cfg config.Provider, opts ...Option) (*Server, error) {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{Cfg: cfg, Registry: registry.New(cfg), hub: hub.NewHub()}

	tracer, shutdownTracing, err := pubsub.SetupOTel(ctx, pubsub.TracingConfig{
		Enabled:     cfg.GetTracingEnabled(),
		ServiceName: cfg.GetTracingServiceName(),
		ZipkinURL:   cfg.GetTracingZipkinURL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}
	s.closers = append(s.closers, shutdownTracing)
	if !cfg.GetTracingEnabled() {
		tracer = nil
	}
	s.bus = pubsub.NewWatermillBridge(tracer)

	s.cache = o.store
	if s.cache == nil {
		if s.cache, err = cache.NewStore(cfg); err != nil {
			return nil, err
		}
	}

	s.promo, err = promo.New(o.fs, cfg.GetPromoScript())
	if err != nil {
		return nil, fmt.Errorf("failed to load promo rules: %w", err)
	}

	var rewriter search.Rewriter = search.Identity{}
	if key := cfg.GetGoogleAPIKey(); key != "" {
		gemini, err := search.NewGeminiRewriter(ctx, key, cfg.GetQueryRewriterModel())
		if err != nil {
			slog.Warn("Query rewriter unavailable, searching raw queries", "error", err)
		} else {
			rewriter = gemini
			s.closers = append(s.closers, func() { _ = gemini.Close() })
		}
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.GetAPITimeout()),
		apiclient.WithRetries(cfg.GetAPIRetries()),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	api := apiclient.New(cfg.GetAPIBaseURL(), clientOpts...)

	renderer := rendering.NewUniversalRenderer()
	s.E = newEcho(cfg, renderer)

	s.modules = app.NewModules(app.Dependencies{
		API:        api,
		Cache:      s.cache,
		Promo:      s.promo,
		Rewriter:   rewriter,
		Publisher:  s.bus,
		Subscriber: s.bus,
		Hub:        s.hub,
		Renderer:   renderer,
		Origins:    websocketOrigins(cfg.GetAppBaseURL()),
	})
	for _, m := range s.modules {
		if err := m.Register(s.Registry); err != nil {
			return nil, fmt.Errorf("module %s failed to register: %w", m.Name(), err)
		}
	}
	return s, nil
}

func newEcho(cfg config.Provider, renderer *rendering.UniversalRenderer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Renderer = renderer
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			middleware.FromContext(c.Request().Context()).Error("Recovered from panic", "error", err, "stack", string(stack))
			return err
		},
	}))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger)
	e.Use(metrics.Middleware)
	e.Use(session.Middleware(session.NewStore(cfg.GetSessionSecret(), strings.HasPrefix(cfg.GetAppBaseURL(), "https://"))))

	e.StaticFS("/static", echo.MustSubFS(web.FS, "static"))
	return e
}

// websocketOrigins allows the public host when the app sits behind a proxy
// that rewrites Host.
func websocketOrigins(baseURL string) []string {
	host := strings.TrimPrefix(strings.TrimPrefix(baseURL, "https://"), "http://")
	host = strings.TrimRight(host, "/")
	if host == "" {
		return nil
	}
	return []string{host}
}
