package notifications

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"

	"github.com/nfrund/zina/internal/hub"
	"github.com/nfrund/zina/internal/session"
)

const (
	writeTimeout      = 5 * time.Second
	unregisterTimeout = time.Second
)

// Socket serves GET /ws/notifications. Each open tab of a signed-in customer
// becomes one hub subscriber; whatever the hub sends is written as a text
// frame for the htmx ws extension to swap.
type Socket struct {
	hub     *hub.Hub
	origins []string
}

// NewSocket creates the endpoint. origins are extra host patterns accepted
// besides same-origin requests.
func NewSocket(h *hub.Hub, origins ...string) *Socket {
	return &Socket{hub: h, origins: origins}
}

func (s *Socket) Serve(c echo.Context) error {
	auth, err := session.GetAuth(c)
	if auth == nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	user, ok := auth.CurrentUser()
	if !ok {
		return c.NoContent(http.StatusUnauthorized)
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		// Accept has already written the error response.
		slog.Warn("Failed to upgrade notifications socket", "error", err)
		return nil
	}
	defer conn.CloseNow()

	ctx := c.Request().Context()
	sub := hub.NewSubscriber(user.ID)
	select {
	case s.hub.Register <- sub:
	case <-ctx.Done():
		return nil
	}
	defer s.unregister(sub)
	slog.Debug("Notifications socket opened", "user_id", user.ID)

	// The client never sends anything; CloseRead handles pings and reports
	// the close through ctx.
	ctx = conn.CloseRead(ctx)
	for {
		select {
		case msg, ok := <-sub.Send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return nil
			}
			if err := write(ctx, conn, msg); err != nil {
				if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					slog.Warn("Notifications socket write failed", "user_id", user.ID, "error", err)
				}
				return nil
			}
		case <-ctx.Done():
			slog.Debug("Notifications socket closed", "user_id", user.ID)
			return nil
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// unregister gives up when the hub has already stopped; Run closes every
// subscriber on its way out anyway.
func (s *Socket) unregister(sub *hub.Subscriber) {
	select {
	case s.hub.Unregister <- sub:
	case <-time.After(unregisterTimeout):
	}
}
