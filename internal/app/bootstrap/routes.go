// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	healthfeature "github.com/dalemusser/instructorsearch/internal/app/features/health"
	instructorsfeature "github.com/dalemusser/instructorsearch/internal/app/features/instructors"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app. It runs
// after Startup, so the search service is ready.
//
// Routes:
//   - /health: Mongo and search backend connectivity
//   - /metrics: Prometheus metrics
//   - /instructors, /courses: the JSON API
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	if deps.services == nil || deps.services.search == nil {
		return nil, errors.New("search service not initialized")
	}

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(
		healthfeature.Mongo(deps.MongoClient),
		deps.SearchIndex,
		appCfg.SearchBackend,
		logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.Handler())

	instructorsHandler := instructorsfeature.NewHandler(
		deps.services.instructors,
		deps.services.courses,
		deps.services.search,
		logger)
	r.Mount("/", instructorsfeature.Routes(instructorsHandler))

	return r, nil
}
