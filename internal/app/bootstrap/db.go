// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/instructorsearch/internal/app/search/mongoindex"
	"github.com/dalemusser/instructorsearch/internal/app/search/redisindex"
	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	"github.com/dalemusser/instructorsearch/internal/app/search/sqliteindex"
	"github.com/dalemusser/instructorsearch/internal/app/system/indexes"
	"github.com/dalemusser/instructorsearch/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and opens the configured search backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	index, err := openIndex(appCfg, db)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, err
	}
	logger.Info("search backend opened", zap.String("backend", appCfg.SearchBackend))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		SearchIndex:   index,
		services:      &services{},
	}, nil
}

func openIndex(appCfg AppConfig, db *mongo.Database) (searchdoc.Index, error) {
	switch appCfg.SearchBackend {
	case BackendMongo:
		return mongoindex.New(db, mongoindex.DefaultCollection), nil
	case BackendRedis:
		ix, err := redisindex.New(redisindex.Config{
			Addrs:     appCfg.RedisAddrs,
			Password:  appCfg.RedisPassword,
			KeyPrefix: appCfg.RedisKeyPrefix,
			IndexName: appCfg.RedisIndexName,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis search backend: %w", err)
		}
		return ix, nil
	case BackendSQLite:
		ix, err := sqliteindex.Open(appCfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite search backend: %w", err)
		}
		return ix, nil
	default:
		return nil, fmt.Errorf("unknown search backend %q", appCfg.SearchBackend)
	}
}

// EnsureSchema creates the store indexes and the search backend's schema.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}
	if err := deps.SearchIndex.EnsureSchema(ctx); err != nil {
		logger.Error("ensure search schema failed",
			zap.String("backend", appCfg.SearchBackend),
			zap.Error(err))
		return err
	}
	return nil
}
