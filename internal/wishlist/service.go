package wishlist

import (
	"context"
	"errors"
	"time"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
)

const (
	msgAdded   = "Added to wishlist!"
	msgRemoved = "Removed from wishlist"
)

type productFinder interface {
	Find(ref catalog.ProductRef) (catalog.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Products productFinder
	State    clientstate.Store
	Notifier notifications.Sink
	Logger   *logger.Logger
	Metrics  *metrics.StorefrontMetrics
}

// Service keeps each visitor's wishlist, a set of product refs in the order
// they were added.
type Service struct {
	products productFinder
	refs     *clientstate.Cache[[]catalog.ProductRef]
	notify   notifications.Sink
	metrics  *metrics.StorefrontMetrics
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product catalog is required")
	}
	if params.State == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "client state store is required")
	}
	return &Service{
		products: params.Products,
		refs:     clientstate.NewCache(params.State, clientstate.KeyWishlist, cloneRefs, params.Logger, params.Metrics),
		notify:   params.Notifier,
		metrics:  params.Metrics,
	}, nil
}

// Toggle adds ref when absent and removes it when present. It reports
// whether ref is in the wishlist afterwards.
func (s *Service) Toggle(ctx context.Context, session string, ref catalog.ProductRef) (bool, error) {
	product, err := s.products.Find(ref)
	if err != nil {
		return false, err
	}
	canonical := product.Ref()

	var added bool
	_, err = s.refs.Update(ctx, session, func(current []catalog.ProductRef) ([]catalog.ProductRef, error) {
		for i, existing := range current {
			if existing == canonical {
				added = false
				return append(current[:i:i], current[i+1:]...), nil
			}
		}
		added = true
		return append(current, canonical), nil
	})
	if err != nil {
		return false, sessionError(err)
	}

	if added {
		s.metrics.IncMutation("wishlist_add")
		s.show(ctx, session, msgAdded, enums.NotificationSeveritySuccess)
	} else {
		s.metrics.IncMutation("wishlist_remove")
		s.show(ctx, session, msgRemoved, enums.NotificationSeverityInfo)
	}
	return added, nil
}

// List returns the wishlist refs in insertion order.
func (s *Service) List(ctx context.Context, session string) ([]catalog.ProductRef, error) {
	refs, err := s.refs.Get(ctx, session)
	if err != nil {
		return nil, sessionError(err)
	}
	if refs == nil {
		refs = []catalog.ProductRef{}
	}
	return refs, nil
}

// Products resolves the wishlist against the current catalog. Refs whose
// product has left the catalog are skipped.
func (s *Service) Products(ctx context.Context, session string) ([]catalog.Product, error) {
	refs, err := s.List(ctx, session)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Product, 0, len(refs))
	for _, ref := range refs {
		product, err := s.products.Find(ref)
		if err != nil {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

// Contains reports whether ref is wishlisted. Refs through a derived
// collection match their stored product.
func (s *Service) Contains(ctx context.Context, session string, ref catalog.ProductRef) (bool, error) {
	if product, err := s.products.Find(ref); err == nil {
		ref = product.Ref()
	}
	refs, err := s.List(ctx, session)
	if err != nil {
		return false, err
	}
	for _, existing := range refs {
		if existing == ref {
			return true, nil
		}
	}
	return false, nil
}

// EvictIdle drops in-memory wishlist copies not touched for idle.
func (s *Service) EvictIdle(idle time.Duration) int {
	return s.refs.EvictIdle(idle)
}

func (s *Service) show(ctx context.Context, session, message string, severity enums.NotificationSeverity) {
	if s.notify == nil {
		return
	}
	s.notify.Show(ctx, session, message, severity)
}

func cloneRefs(in []catalog.ProductRef) []catalog.ProductRef {
	if in == nil {
		return nil
	}
	out := make([]catalog.ProductRef, len(in))
	copy(out, in)
	return out
}

func sessionError(err error) error {
	if errors.Is(err, clientstate.ErrMissingSession) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "visitor session id is required")
	}
	return err
}
