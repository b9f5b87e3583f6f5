// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (INSTRUCTORSEARCH_*),
// configuration files, or command-line flags, loaded in LoadConfig. WAFFLE's
// CoreConfig covers ports, TLS, logging and CORS; everything specific to
// instructor search lives here.
type AppConfig struct {
	// MongoDB: the store of record for instructors and courses.
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Search backend: "mongo", "redis" or "sqlite".
	SearchBackend string

	// Redis backend (only used if SearchBackend is "redis").
	RedisAddrs     []string
	RedisPassword  string
	RedisKeyPrefix string
	RedisIndexName string

	// SQLite backend (only used if SearchBackend is "sqlite").
	SQLitePath string

	// SearchKeySecret keys the one-way derivation of search document IDs.
	// Each record stores its key at creation, so changing the secret only
	// affects records created afterwards.
	SearchKeySecret string

	SearchResultLimit    int           // max hits per search
	ReconcileConcurrency int           // concurrent store lookups per search
	ReindexInterval      time.Duration // 0 disables the periodic rebuild
	ReindexRate          int           // documents per second during rebuild, 0 is unthrottled

	// Timeouts; zero keeps the package default.
	TimeoutLookup  time.Duration
	TimeoutWrite   time.Duration
	TimeoutSearch  time.Duration
	TimeoutReindex time.Duration
}
