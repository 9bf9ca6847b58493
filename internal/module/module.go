// Package module defines how a storefront feature plugs into the server.
// The app package lists the modules; the server registers all of them and
// then boots them in order.
package module

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/registry"
)

// Module is one feature area: the storefront pages or the customer account.
type Module interface {
	// Name is used in logs and must be unique.
	Name() string

	// Register publishes services other modules may look up. Every module is
	// registered before the first Boot, so lookups in Boot always succeed.
	Register(reg *registry.Registry) error

	// Boot mounts routes on router and starts subscribers. ctx ends with the server.
	Boot(ctx context.Context, router *echo.Group, reg *registry.Registry) error

	// Shutdown stops what Boot started, within ctx's deadline.
	Shutdown(ctx context.Context) error
}

// BaseModule lets a module skip the lifecycle steps it has no use for.
type BaseModule struct{}

func (BaseModule) Register(*registry.Registry) error { return nil }

func (BaseModule) Boot(context.Context, *echo.Group, *registry.Registry) error { return nil }

func (BaseModule) Shutdown(context.Context) error { return nil }
