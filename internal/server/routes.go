package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/cache"
	"github.com/nfrund/zina/internal/metrics"
)

const janitorInterval = time.Minute

// Boot mounts the shared routes, boots every module and starts the
// background services. Cancelling ctx or calling Shutdown stops them.
func (s *Server) Boot(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.E.GET("/metrics", metrics.Handler())

	go func() {
		defer close(s.done)
		s.hub.Run(ctx)
	}()
	if mem, ok := s.cache.(*cache.MemoryStore); ok {
		go mem.RunJanitor(ctx, janitorInterval)
	}

	root := s.E.Group("")
	for _, m := range s.modules {
		if err := m.Boot(ctx, root, s.Registry); err != nil {
			s.cancel()
			return fmt.Errorf("module %s failed to boot: %w", m.Name(), err)
		}
		slog.Info("Module booted", "module", m.Name())
	}
	return nil
}

// Routes lists the registered routes as "METHOD path" lines.
func (s *Server) Routes() []string {
	var out []string
	for _, r := range s.E.Routes() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}
