package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// Shutdown stops accepting requests, then stops modules and background
// services in reverse order of startup.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.E.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.cancel != nil {
		s.cancel()
	}
	for i := len(s.modules) - 1; i >= 0; i-- {
		if err := s.modules[i].Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if s.done != nil {
		select {
		case <-s.done:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}
	if err := s.bus.Close(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := s.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, closeFn := range s.closers {
		closeFn()
	}
	slog.Info("Storefront stopped")
	return errors.Join(errs...)
}
