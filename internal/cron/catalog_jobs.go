package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

const (
	CatalogReloadJobName = "catalog-reload"
	CatalogSyncJobName   = "catalog-sync"
)

type catalogReloader interface {
	Reload(ctx context.Context) error
	Size() int
}

type catalogJob struct {
	name string
	run  func(ctx context.Context) error
}

func (j *catalogJob) Name() string                  { return j.name }
func (j *catalogJob) Run(ctx context.Context) error { return j.run(ctx) }

// NewCatalogReloadJob refreshes the in-memory catalog from its source. A failed
// reload keeps serving the previous snapshot.
func NewCatalogReloadJob(store catalogReloader) (Job, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog store required")
	}
	return &catalogJob{name: CatalogReloadJobName, run: store.Reload}, nil
}

type catalogWriter interface {
	UpsertCatalog(ctx context.Context, data *catalog.Data) error
}

// NewCatalogSyncJob copies the catalog document into the database so that
// instances reading from the database pick up file edits.
func NewCatalogSyncJob(source catalog.Source, repo catalogWriter, logg *logger.Logger) (Job, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &catalogJob{name: CatalogSyncJobName, run: func(ctx context.Context) error {
		data, err := source.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("fetch catalog: %w", err)
		}
		if err := repo.UpsertCatalog(ctx, data); err != nil {
			return fmt.Errorf("upsert catalog: %w", err)
		}
		products := 0
		for _, coll := range data.Collections {
			products += len(coll.Products)
		}
		logg.Info(logg.WithFields(ctx, map[string]any{
			"collections": len(data.Collections),
			"products":    products,
		}), "catalog synced")
		return nil
	}}, nil
}
