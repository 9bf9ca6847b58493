package favorites

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nfrund/zina/internal/domain"
	"github.com/nfrund/zina/internal/events"
	"github.com/nfrund/zina/internal/pubsub"
)

// enrichConcurrency bounds parallel product lookups.
const enrichConcurrency = 4

// ProductSource resolves a product ID. *catalog.Service implements it.
type ProductSource interface {
	Product(ctx context.Context, id string) (domain.Product, error)
}

// Service resolves favorites and announces changes on the event bus.
type Service struct {
	products ProductSource
	bus      pubsub.Publisher
	now      func() time.Time
}

// NewService creates the favorites service. bus may be nil.
func NewService(products ProductSource, bus pubsub.Publisher) *Service {
	return &Service{products: products, bus: bus, now: time.Now}
}

// Enrich fetches the products behind ids, keeping their order. IDs the API no
// longer knows are returned in missing so the caller can prune them; any
// other failure fails the whole call.
func (s *Service) Enrich(ctx context.Context, ids []string) (found []domain.Product, missing []string, err error) {
	results := make([]domain.Product, len(ids))
	gone := make([]bool, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := s.products.Product(gctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				gone[i] = true
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	found = make([]domain.Product, 0, len(ids))
	for i, id := range ids {
		if gone[i] {
			missing = append(missing, id)
			continue
		}
		found = append(found, results[i])
	}
	return found, missing, nil
}

// Toggled publishes a favorites.toggled event for a signed-in customer.
// Anonymous toggles are not announced.
func (s *Service) Toggled(ctx context.Context, userID string, p domain.Product, added bool) {
	if s.bus == nil || userID == "" {
		return
	}
	err := pubsub.Publish(ctx, s.bus, events.FavoriteToggled, userID, events.FavoriteToggledPayload{
		ProductID:   p.ID,
		ProductName: p.Name,
		Added:       added,
		At:          s.now(),
	})
	if err != nil {
		slog.WarnContext(ctx, "Failed to publish favorite event", "product_id", p.ID, "error", err)
	}
}
