// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the reindex worker, closes the search backend, and
// disconnects MongoDB. Every step runs even if an earlier one fails.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if deps.services != nil && deps.services.reindexer != nil {
		deps.services.reindexer.Stop()
	}

	if deps.SearchIndex != nil {
		logger.Info("closing search backend", zap.String("backend", appCfg.SearchBackend))
		if err := deps.SearchIndex.Close(); err != nil {
			logger.Error("search backend close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}

	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
