package catalog

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
)

// snapshot is immutable once published.
type snapshot struct {
	collections []Collection
	products    map[string][]Product
	stored      []string
	loadedAt    time.Time
}

func emptySnapshot() *snapshot {
	return &snapshot{products: map[string][]Product{}}
}

func buildSnapshot(data *Data, now time.Time) *snapshot {
	snap := &snapshot{
		products: make(map[string][]Product, len(data.Collections)+len(derivedCollections)),
		loadedAt: now,
	}
	for _, coll := range data.Collections {
		products := cloneProducts(coll.Products)
		snap.products[coll.Name] = products
		snap.stored = append(snap.stored, coll.Name)
		description := strings.TrimSpace(coll.Description)
		if description == "" {
			description = DefaultCollectionDescription
		}
		snap.collections = append(snap.collections, Collection{
			Name:        coll.Name,
			Description: description,
			Count:       len(products),
		})
	}
	for _, d := range derivedCollections {
		base, ok := snap.products[d.Base]
		if !ok {
			continue
		}
		view := d.filter(base)
		snap.products[d.Name] = view
		snap.collections = append(snap.collections, Collection{
			Name:        d.Name,
			Description: d.Description,
			Count:       len(view),
			Derived:     true,
			Base:        d.Base,
		})
	}
	return snap
}

// Store serves the current catalog snapshot. Reads never block reloads; a
// reload swaps the whole snapshot atomically.
type Store struct {
	source  Source
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	now     func() time.Time
	current atomic.Pointer[snapshot]
}

// NewStore builds an empty store over source. Call Reload to populate it.
func NewStore(source Source, logg *logger.Logger, m *metrics.StorefrontMetrics) *Store {
	s := &Store{source: source, logg: logg, metrics: m, now: time.Now}
	s.current.Store(emptySnapshot())
	return s
}

// NewStoreFromData publishes data immediately. Used by seeding and tests.
func NewStoreFromData(data *Data) (*Store, error) {
	if err := ValidateData(data); err != nil {
		return nil, err
	}
	s := &Store{now: time.Now}
	s.current.Store(buildSnapshot(data, s.now()))
	return s, nil
}

// Reload fetches the source and publishes a new snapshot. On failure the
// previous snapshot stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog source not configured")
	}
	data, err := s.source.Fetch(ctx)
	if err == nil {
		err = ValidateData(data)
	}
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"catalog_products": s.Size(),
				"error":            err.Error(),
			}), "catalog reload failed; keeping previous snapshot")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	snap := buildSnapshot(data, s.now())
	s.current.Store(snap)
	s.metrics.SetCatalogSize(snap.size())
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"catalog_products":    snap.size(),
			"catalog_collections": len(snap.stored),
		}), "catalog loaded")
	}
	return nil
}

func (snap *snapshot) size() int {
	total := 0
	for _, name := range snap.stored {
		total += len(snap.products[name])
	}
	return total
}

// Size is the number of stored products, derived views excluded.
func (s *Store) Size() int {
	return s.current.Load().size()
}

// LoadedAt is when the active snapshot was published. Zero means never.
func (s *Store) LoadedAt() time.Time {
	return s.current.Load().loadedAt
}

// Collections lists stored collections followed by derived ones.
func (s *Store) Collections() []Collection {
	snap := s.current.Load()
	out := make([]Collection, len(snap.collections))
	copy(out, snap.collections)
	return out
}

// Products returns a copy of a collection's products in catalog order.
func (s *Store) Products(collection string) ([]Product, error) {
	products, ok := s.current.Load().products[normalizeCollection(collection)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "products not found")
	}
	return cloneProducts(products), nil
}

// All returns every stored product once, in collection order.
func (s *Store) All() []Product {
	snap := s.current.Load()
	out := make([]Product, 0, snap.size())
	for _, name := range snap.stored {
		out = append(out, cloneProducts(snap.products[name])...)
	}
	return out
}

// Find looks a product up by its id field within a collection (derived
// collections included). The returned copy always carries its stored collection.
func (s *Store) Find(ref ProductRef) (Product, error) {
	products, ok := s.current.Load().products[normalizeCollection(ref.Collection)]
	if !ok {
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	for _, p := range products {
		if p.ID == ref.ID {
			return p.Clone(), nil
		}
	}
	return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
}

func normalizeCollection(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
