// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/instructorsearch/internal/app/search/indexer"
	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	coursestore "github.com/dalemusser/instructorsearch/internal/app/store/courses"
	instructorstore "github.com/dalemusser/instructorsearch/internal/app/store/instructors"
	"github.com/dalemusser/instructorsearch/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database and search back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// SearchIndex is the configured backend; for "mongo" it lives in
	// MongoDatabase.
	SearchIndex searchdoc.Index

	// services is filled in by Startup. DBDeps is passed by value between
	// hooks, so it is shared through a pointer allocated in ConnectDB.
	services *services
}

type services struct {
	instructors *instructorstore.Store
	courses     *coursestore.Store
	search      *indexer.Service
	reindexer   *workers.Reindexer
}
