// Package mongoindex stores search documents in a Mongo collection with a
// text index and queries them with $text.
package mongoindex

import (
	"context"
	"fmt"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	"github.com/dalemusser/instructorsearch/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultCollection holds instructor search documents.
const DefaultCollection = "instructor_search_documents"

type document struct {
	ID             string  `bson:"_id"`
	SearchableText string  `bson:"searchable_text"`
	Score          float64 `bson:"score,omitempty"`
}

type Index struct {
	c *mongo.Collection
}

var _ searchdoc.Index = (*Index)(nil)

func New(db *mongo.Database, collection string) *Index {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{c: db.Collection(collection)}
}

func (ix *Index) EnsureSchema(ctx context.Context) error {
	return indexes.EnsureSearchDocuments(ctx, ix.c, searchdoc.SearchableTextField)
}

func (ix *Index) Upsert(ctx context.Context, doc searchdoc.Document) error {
	_, err := ix.c.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		document{ID: doc.ID, SearchableText: doc.SearchableText},
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongoindex upsert %q: %w", doc.ID, err)
	}
	return nil
}

// Delete removes the document. A missing document is not an error.
func (ix *Index) Delete(ctx context.Context, id string) error {
	if _, err := ix.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongoindex delete %q: %w", id, err)
	}
	return nil
}

// Query runs a $text search. Blank text matches nothing.
func (ix *Index) Query(ctx context.Context, text string, limit int) ([]searchdoc.Hit, error) {
	if text == "" || limit <= 0 {
		return []searchdoc.Hit{}, nil
	}
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := ix.c.Find(ctx, bson.M{"$text": bson.M{"$search": text}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoindex query: %w", err)
	}
	defer cur.Close(ctx)

	hits := make([]searchdoc.Hit, 0, limit)
	for cur.Next(ctx) {
		var d document
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("mongoindex decode: %w", err)
		}
		hits = append(hits, searchdoc.Hit{ID: d.ID, Score: d.Score})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongoindex cursor: %w", err)
	}
	return hits, nil
}

func (ix *Index) Ping(ctx context.Context) error {
	return ix.c.Database().Client().Ping(ctx, readpref.Primary())
}

// Close is a no-op; the Mongo client is owned by the caller.
func (ix *Index) Close() error { return nil }
