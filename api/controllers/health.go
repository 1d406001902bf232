package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/omnicart-backend/api/responses"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// catalogSizer reports how many products the live catalog holds.
type catalogSizer interface {
	Size() int
	LoadedAt() time.Time
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OmniCart-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every named dependency. The catalog is reported but an
// empty catalog does not fail readiness.
func HealthReady(cfg *config.Config, catalog catalogSizer, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-OmniCart-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, len(deps))
		failed := false
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				checks[name] = "unavailable"
				failed = true
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "readiness check failed")
				}
				continue
			}
			checks[name] = "ok"
		}
		if failed {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}

		payload := map[string]any{"status": "ready", "checks": checks}
		if catalog != nil {
			payload["catalog_products"] = catalog.Size()
			if loaded := catalog.LoadedAt(); !loaded.IsZero() {
				payload["catalog_loaded_at"] = loaded.UTC().Format(time.RFC3339)
			}
		}
		responses.WriteSuccess(w, payload)
	}
}
