// Package searchdoc defines the contract shared by every searchable entity
// kind: the flat document handed to a full-text index, the raw hits the index
// returns, the ordered result bundle built from those hits, and the Index
// backends that store the documents.
package searchdoc

import (
	"context"
	"strings"
)

// SearchableTextField is the single text field every backend indexes.
const SearchableTextField = "searchable_text"

// Delimiter joins the attributes of the searchable text. Collisions with the
// attribute values are not escaped; the field is only used for matching.
const Delimiter = ","

// Document is the write-once searchable form of one record. A changed record
// produces a new Document with the same ID, which replaces the old one.
type Document struct {
	ID             string
	SearchableText string
}

// Hit is one raw match returned by an Index, in the index's relevance order.
type Hit struct {
	ID    string
	Score float64
}

// Bundle is the ordered result of reconciling hits. Count always equals
// len(Items); use Add rather than appending to Items directly.
type Bundle[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewBundle returns an empty bundle whose Items encode as [] rather than null.
func NewBundle[T any]() Bundle[T] {
	return Bundle[T]{Items: []T{}}
}

// Add appends item and increments Count.
func (b *Bundle[T]) Add(item T) {
	b.Items = append(b.Items, item)
	b.Count++
}

// JoinFields builds searchable text from attributes in the given order.
func JoinFields(fields ...string) string {
	return strings.Join(fields, Delimiter)
}

// Kind is implemented once per searchable entity type. The set of kinds is
// fixed; callers pick the one for the entity they are indexing or querying.
type Kind[T any] interface {
	// Project builds the document for record. A nil record yields a nil
	// document and no error.
	Project(ctx context.Context, record *T) (*Document, error)
	// Reconcile resolves hits to live records, repairs drift, and returns
	// the records in the kind's deterministic order.
	Reconcile(ctx context.Context, hits []Hit) (Bundle[T], error)
}

// Index is a full-text index backend.
type Index interface {
	// EnsureSchema creates whatever the backend needs before use. Idempotent.
	EnsureSchema(ctx context.Context) error
	// Upsert stores doc, replacing any document with the same ID.
	Upsert(ctx context.Context, doc Document) error
	// Delete removes the document with id. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error
	// Query returns up to limit hits for text, best match first.
	Query(ctx context.Context, text string, limit int) ([]Hit, error)
	Ping(ctx context.Context) error
	Close() error
}
