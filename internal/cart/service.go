package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
)

type productFinder interface {
	Find(ref catalog.ProductRef) (catalog.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Products productFinder
	State    clientstate.Store
	Notifier notifications.Sink
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

// Service owns every visitor's cart. Mutations for one session are serialised
// and each one persists the full line list.
type Service struct {
	products productFinder
	lines    *clientstate.Cache[[]Line]
	notify   notifications.Sink
	metrics  *metrics.StorefrontMetrics
	now      func() time.Time
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product catalog is required")
	}
	if params.State == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "client state store is required")
	}
	return &Service{
		products: params.Products,
		lines:    clientstate.NewCache(params.State, clientstate.KeyCart, cloneLines, params.Logger, params.Metrics),
		notify:   params.Notifier,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

// Get returns the visitor's cart.
func (s *Service) Get(ctx context.Context, session string) (*Cart, error) {
	lines, err := s.lines.Get(ctx, session)
	if err != nil {
		return nil, sessionError(err)
	}
	return newCart(lines), nil
}

// AddToCart adds quantity of a product in size. An existing line grows and
// stays within MaxQuantity; quantity <= 0 adds one.
func (s *Service) AddToCart(ctx context.Context, session string, ref catalog.ProductRef, size string, quantity int) (*Cart, error) {
	product, err := s.products.Find(ref)
	if err != nil {
		return nil, err
	}
	size = strings.TrimSpace(size)
	switch {
	case product.HasSizes() && size == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please select a size").
			WithDetails(map[string]string{"size": "required"})
	case product.HasSizes() && !product.HasSize(size):
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Selected size is not available").
			WithDetails(map[string]any{"size": size, "available": product.Sizes})
	case !product.HasSizes():
		size = ""
	default:
		size = product.CanonicalSize(size)
	}
	if !product.InStock {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product is out of stock")
	}
	if quantity <= 0 {
		quantity = MinQuantity
	}

	id := LineID(product.Ref(), size)
	lines, err := s.lines.Update(ctx, session, func(current []Line) ([]Line, error) {
		for i := range current {
			if current[i].ID == id {
				current[i].Quantity = Clamp(current[i].Quantity + quantity)
				return current, nil
			}
		}
		return append(current, Line{
			ID:         id,
			Collection: product.Collection,
			ProductID:  product.ID,
			Name:       product.Name,
			Image:      product.ImageMain,
			Size:       size,
			UnitPrice:  product.Price,
			Quantity:   Clamp(quantity),
			AddedAt:    s.now().UTC(),
		}), nil
	})
	if err != nil {
		return nil, sessionError(err)
	}
	s.metrics.IncMutation("cart_add")
	s.show(ctx, session, fmt.Sprintf("%s added to cart!", product.Name), enums.NotificationSeveritySuccess)
	return newCart(lines), nil
}

// UpdateQuantity moves a line's quantity by delta within [MinQuantity, MaxQuantity].
// It never removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, session, lineID string, delta int) (*Cart, error) {
	lines, err := s.lines.Update(ctx, session, func(current []Line) ([]Line, error) {
		for i := range current {
			if current[i].ID == lineID {
				current[i].Quantity = Clamp(current[i].Quantity + delta)
				return current, nil
			}
		}
		return nil, lineNotFound()
	})
	if err != nil {
		return nil, sessionError(err)
	}
	s.metrics.IncMutation("cart_update")
	return newCart(lines), nil
}

// RemoveItem deletes a line.
func (s *Service) RemoveItem(ctx context.Context, session, lineID string) (*Cart, error) {
	var removed Line
	lines, err := s.lines.Update(ctx, session, func(current []Line) ([]Line, error) {
		for i := range current {
			if current[i].ID == lineID {
				removed = current[i]
				return append(current[:i:i], current[i+1:]...), nil
			}
		}
		return nil, lineNotFound()
	})
	if err != nil {
		return nil, sessionError(err)
	}
	s.metrics.IncMutation("cart_remove")
	s.show(ctx, session, fmt.Sprintf("%s removed from cart", removed.Name), enums.NotificationSeverityInfo)
	return newCart(lines), nil
}

// Clear empties the cart, typically after an order is placed.
func (s *Service) Clear(ctx context.Context, session string) error {
	_, err := s.lines.Update(ctx, session, func([]Line) ([]Line, error) {
		return []Line{}, nil
	})
	if err != nil {
		return sessionError(err)
	}
	s.metrics.IncMutation("cart_clear")
	return nil
}

// ClearOrdered removes what an order took from the cart. Quantity added after
// the order was priced stays in the cart, and so do lines the order never saw.
func (s *Service) ClearOrdered(ctx context.Context, session string, ordered []Line) error {
	taken := make(map[string]int, len(ordered))
	for _, line := range ordered {
		taken[line.ID] += line.Quantity
	}
	_, err := s.lines.Update(ctx, session, func(current []Line) ([]Line, error) {
		kept := make([]Line, 0, len(current))
		for _, line := range current {
			line.Quantity -= taken[line.ID]
			if line.Quantity > 0 {
				kept = append(kept, line)
			}
		}
		return kept, nil
	})
	if err != nil {
		return sessionError(err)
	}
	s.metrics.IncMutation("cart_clear")
	return nil
}

// EvictIdle drops in-memory cart copies not touched for idle.
func (s *Service) EvictIdle(idle time.Duration) int {
	return s.lines.EvictIdle(idle)
}

func (s *Service) show(ctx context.Context, session, message string, severity enums.NotificationSeverity) {
	if s.notify == nil {
		return
	}
	s.notify.Show(ctx, session, message, severity)
}

func lineNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func sessionError(err error) error {
	if errors.Is(err, clientstate.ErrMissingSession) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "visitor session id is required")
	}
	return err
}
