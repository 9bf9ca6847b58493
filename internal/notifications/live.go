// Package notifications serves the account notifications screen and pushes
// live activity notices to the customer's open tabs.
package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/nfrund/zina/internal/events"
	"github.com/nfrund/zina/internal/hub"
	"github.com/nfrund/zina/internal/i18n"
	"github.com/nfrund/zina/internal/pubsub"
	"github.com/nfrund/zina/internal/rendering"
	"github.com/nfrund/zina/web/src/templates/components"
)

// Live turns bus events into htmx out-of-band fragments for the hub.
type Live struct {
	hub      *hub.Hub
	bus      pubsub.Subscriber
	renderer rendering.Renderer
}

func NewLive(h *hub.Hub, bus pubsub.Subscriber, r rendering.Renderer) *Live {
	return &Live{hub: h, bus: bus, renderer: r}
}

// Start subscribes to the activity events. Deliveries stop when ctx is done.
func (l *Live) Start(ctx context.Context) error {
	if err := pubsub.Subscribe(ctx, l.bus, events.FavoriteToggled, func(ctx context.Context, userID string, p events.FavoriteToggledPayload) error {
		msg := i18n.MsgActivityUnfavored
		if p.Added {
			msg = i18n.MsgActivityFavorite
		}
		l.push(ctx, userID, i18n.T(msg, p.ProductName), "/favorites", p.At)
		return nil
	}); err != nil {
		return err
	}

	if err := pubsub.Subscribe(ctx, l.bus, events.ProfileUpdated, func(ctx context.Context, userID string, p events.ProfileUpdatedPayload) error {
		l.push(ctx, userID, i18n.T(i18n.MsgActivityProfile), "/account/profile", p.At)
		return nil
	}); err != nil {
		return err
	}

	return pubsub.Subscribe(ctx, l.bus, events.SignedIn, func(ctx context.Context, userID string, p events.SignedInPayload) error {
		if p.Registered {
			return nil
		}
		l.push(ctx, userID, i18n.T(i18n.MsgActivitySignedIn), "/account", p.At)
		return nil
	})
}

func (l *Live) push(ctx context.Context, userID, text, link string, at time.Time) {
	if userID == "" {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	b, err := l.renderer.RenderComponent(ctx, components.LiveNotice(text, link, at))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to render live notice", "error", err)
		return
	}
	l.hub.SendTo(ctx, userID, b)
}
