// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/instructorsearch/internal/app/search/indexer"
	"github.com/dalemusser/instructorsearch/internal/app/search/instructordoc"
	coursestore "github.com/dalemusser/instructorsearch/internal/app/store/courses"
	instructorstore "github.com/dalemusser/instructorsearch/internal/app/store/instructors"
	"github.com/dalemusser/instructorsearch/internal/app/system/searchkey"
	"github.com/dalemusser/instructorsearch/internal/app/system/timeouts"
	"github.com/dalemusser/instructorsearch/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup applies timeouts, builds the search service, and starts the
// reindex worker when an interval is configured.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{
		Lookup:  appCfg.TimeoutLookup,
		Write:   appCfg.TimeoutWrite,
		Search:  appCfg.TimeoutSearch,
		Reindex: appCfg.TimeoutReindex,
	})
	t := timeouts.Current()
	logger.Info("timeouts configured",
		zap.Duration("lookup", t.Lookup),
		zap.Duration("write", t.Write),
		zap.Duration("search", t.Search),
		zap.Duration("reindex", t.Reindex))

	if err := buildServices(appCfg, deps, logger); err != nil {
		return err
	}
	svc := deps.services.search

	if appCfg.ReindexInterval > 0 {
		w := workers.NewReindexer(svc, logger, appCfg.ReindexInterval)
		w.Start()
		deps.services.reindexer = w
	}
	return nil
}

// buildServices creates the stores and the search service once; the
// handlers built in BuildHandler share them.
func buildServices(appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	keys, err := searchkey.New(appCfg.SearchKeySecret)
	if err != nil {
		return err
	}
	courses := coursestore.New(deps.MongoDatabase)
	instructors := instructorstore.New(deps.MongoDatabase, keys)

	kind := instructordoc.New(
		instructordoc.NewProjector(courses, keys),
		instructordoc.NewReconciler(instructors, deps.SearchIndex, logger, appCfg.ReconcileConcurrency),
	)
	deps.services.instructors = instructors
	deps.services.courses = courses
	deps.services.search = indexer.New(kind, deps.SearchIndex, instructors, logger, indexer.Options{
		Backend:     appCfg.SearchBackend,
		MaxLimit:    appCfg.SearchResultLimit,
		RebuildRate: float64(appCfg.ReindexRate),
	})
	return nil
}
