// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Search backends.
const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// devSearchKeySecret is the default secret. It is refused in prod.
const devSearchKeySecret = "dev-only-change-me-search-key-secret"

// appConfigKeys defines the configuration keys for instructor search.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, search_backend, etc.
//   - Environment variables: INSTRUCTORSEARCH_MONGO_URI, INSTRUCTORSEARCH_SEARCH_BACKEND, etc.
//   - Command-line flags: --mongo_uri, --search_backend, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "instructor_search", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Search backend
	{Name: "search_backend", Default: BackendMongo, Desc: "Search backend: 'mongo', 'redis' or 'sqlite'"},
	{Name: "redis_addrs", Default: "localhost:6379", Desc: "Comma-separated Redis addresses (redis backend)"},
	{Name: "redis_password", Default: "", Desc: "Redis password (redis backend)"},
	{Name: "redis_key_prefix", Default: "instructorsearch:doc:", Desc: "Key prefix for search document hashes"},
	{Name: "redis_index_name", Default: "instructorsearch:idx", Desc: "RediSearch index name"},
	{Name: "sqlite_path", Default: "./data/search.db", Desc: "SQLite database path (sqlite backend)"},

	// Search behavior
	{Name: "search_key_secret", Default: devSearchKeySecret, Desc: "Secret for deriving search document IDs (must be strong in production)"},
	{Name: "search_result_limit", Default: 50, Desc: "Maximum results per search"},
	{Name: "reconcile_concurrency", Default: 8, Desc: "Concurrent store lookups while reconciling a search"},
	{Name: "reindex_interval", Default: "0s", Desc: "Periodic full reindex interval (e.g., 6h); 0 disables"},
	{Name: "reindex_rate", Default: 0, Desc: "Documents per second during reindex; 0 is unthrottled"},

	// Timeouts
	{Name: "timeout_lookup", Default: "0s", Desc: "Single-record read timeout (0 keeps default)"},
	{Name: "timeout_write", Default: "0s", Desc: "Write timeout (0 keeps default)"},
	{Name: "timeout_search", Default: "0s", Desc: "Search timeout (0 keeps default)"},
	{Name: "timeout_reindex", Default: "0s", Desc: "Full reindex timeout (0 keeps default)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// environment variables and flags with precedence flags > env > files >
// defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "INSTRUCTORSEARCH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SearchBackend:  strings.ToLower(strings.TrimSpace(appValues.String("search_backend"))),
		RedisAddrs:     splitList(appValues.String("redis_addrs")),
		RedisPassword:  appValues.String("redis_password"),
		RedisKeyPrefix: appValues.String("redis_key_prefix"),
		RedisIndexName: appValues.String("redis_index_name"),
		SQLitePath:     appValues.String("sqlite_path"),

		SearchKeySecret:      appValues.String("search_key_secret"),
		SearchResultLimit:    appValues.Int("search_result_limit"),
		ReconcileConcurrency: appValues.Int("reconcile_concurrency"),
		ReindexInterval:      appValues.Duration("reindex_interval", 0),
		ReindexRate:          appValues.Int("reindex_rate"),

		TimeoutLookup:  appValues.Duration("timeout_lookup", 0),
		TimeoutWrite:   appValues.Duration("timeout_write", 0),
		TimeoutSearch:  appValues.Duration("timeout_search", 0),
		TimeoutReindex: appValues.Duration("timeout_reindex", 0),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation before any
// connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}

	switch appCfg.SearchBackend {
	case BackendMongo:
	case BackendRedis:
		if len(appCfg.RedisAddrs) == 0 {
			return errors.New("search_backend 'redis' requires redis_addrs")
		}
	case BackendSQLite:
		if appCfg.SQLitePath == "" {
			return errors.New("search_backend 'sqlite' requires sqlite_path")
		}
	default:
		return fmt.Errorf("unknown search_backend %q (want 'mongo', 'redis' or 'sqlite')", appCfg.SearchBackend)
	}

	if appCfg.SearchKeySecret == "" {
		return errors.New("search_key_secret is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SearchKeySecret == devSearchKeySecret {
		return errors.New("search_key_secret must be changed from the development default in prod")
	}

	if appCfg.SearchResultLimit < 1 {
		return errors.New("search_result_limit must be at least 1")
	}
	if appCfg.ReconcileConcurrency < 1 {
		return errors.New("reconcile_concurrency must be at least 1")
	}
	if appCfg.ReindexInterval < 0 || appCfg.ReindexRate < 0 {
		return errors.New("reindex_interval and reindex_rate must not be negative")
	}
	return nil
}
