// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup for the store collections. Each ensure*
function is idempotent. Errors are aggregated so every problem is visible and
startup can fail fast. The search document collection is ensured by the
Mongo index backend through EnsureSearchDocuments.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureInstructors(ctx, db); err != nil {
		problems = append(problems, "instructors: "+err.Error())
	}
	if err := ensureCourses(ctx, db); err != nil {
		problems = append(problems, "courses: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Unique  *bool  `bson:"unique,omitempty"`
	Weights bson.M `bson:"weights,omitempty"`
}

// sig is the comparable form of an existing index. Text indexes are stored
// under the internal _fts/_ftsx keys, so their fields come from weights.
func (ix existingIndex) sig() string {
	if len(ix.Weights) > 0 {
		fields := make([]string, 0, len(ix.Weights))
		for f := range ix.Weights {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return "text(" + strings.Join(fields, ",") + ")"
	}
	return keySig(ix.Key)
}

func keySig(keys bson.D) string {
	var text []string
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		if kv.Value == "text" {
			text = append(text, kv.Key)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	if len(text) > 0 {
		sort.Strings(text)
		return "text(" + strings.Join(text, ",") + ")"
	}
	return strings.Join(parts, ", ")
}

func boolValue(b *bool) bool {
	return b != nil && *b
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "IndexOptionsConflict")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var ix existingIndex
		if err := cur.Decode(&ix); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[ix.sig()] = ix
	}
	return existing
}

// desired is one wanted index in comparable form.
type desired struct {
	model  mongo.IndexModel
	name   string
	unique bool
	sig    string
}

func describe(m mongo.IndexModel) desired {
	d := desired{model: m, sig: keySig(m.Keys.(bson.D))}
	if m.Options != nil {
		if m.Options.Name != nil {
			d.name = *m.Options.Name
		}
		d.unique = boolValue(m.Options.Unique)
	}
	return d
}

// create builds the index, turning a duplicate-key failure on a unique index
// into a message that says so.
func create(ctx context.Context, coll *mongo.Collection, d desired) (string, error) {
	name, err := coll.Indexes().CreateOne(ctx, d.model)
	if err != nil && d.unique && isDuplicateKeyErr(err) {
		return "", fmt.Errorf("cannot create unique index (duplicates present): %w", err)
	}
	return name, err
}

// replace drops ex and creates d in its place.
func replace(ctx context.Context, coll *mongo.Collection, ex existingIndex, d desired) error {
	if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
		return fmt.Errorf("drop %s failed: %w", ex.Name, err)
	}
	if _, err := create(ctx, coll, d); err != nil {
		return err
	}
	return nil
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	fail := func(d desired, err error) {
		zap.L().Warn("index ensure failed",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Error(err))
		errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err))
	}

	for _, m := range models {
		d := describe(m)
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Bool("unique", d.unique))
		log.Info("ensuring index")

		ex, ok := listExisting(ctx, coll)[d.sig]
		switch {
		case ok && boolValue(ex.Unique) == d.unique && (d.name == "" || ex.Name == d.name):
			log.Info("reusing existing index", zap.Duration("took", time.Since(start)))

		case ok:
			// Name or uniqueness differs: drop and recreate with the desired options.
			if err := replace(ctx, coll, ex, d); err != nil {
				fail(d, err)
				continue
			}
			log.Info("index replaced",
				zap.String("previous_name", ex.Name),
				zap.Duration("took", time.Since(start)))

		default:
			created, err := create(ctx, coll, d)
			if err != nil && isOptionsConflictErr(err) {
				// Raced with another instance or an equivalent index under
				// another name. Reload and align.
				if ex, ok := listExisting(ctx, coll)[d.sig]; ok {
					err = replace(ctx, coll, ex, d)
					created = d.name
				}
			}
			if err != nil {
				fail(d, err)
				continue
			}
			log.Info("index ensured",
				zap.String("created_name", created),
				zap.Duration("took", time.Since(start)))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureInstructors(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("instructors")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		// Registration keys are handed out in join links and must be unique.
		{
			Keys:    bson.D{{Key: "registration_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_instructors_registration_key"),
		},
		// Search hits resolve through the search key.
		{
			Keys:    bson.D{{Key: "search_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_instructors_search_key"),
		},
		// One membership per (course, email).
		{
			Keys:    bson.D{{Key: "course_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_instructors_course_email"),
		},
		// Course roster listing sorted by name.
		{
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "name_ci", Value: 1},
				{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_instructors_course_nameci__id"),
		},
	})
}

func ensureCourses(ctx context.Context, db *mongo.Database) error {
	c := db.Collection("courses")
	return ensureIndexSet(ctx, c, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_courses_created"),
		},
	})
}

// EnsureSearchDocuments creates the text index the Mongo search backend
// queries with $text.
func EnsureSearchDocuments(ctx context.Context, coll *mongo.Collection, field string) error {
	return ensureIndexSet(ctx, coll, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: field, Value: "text"}},
			Options: options.Index().SetName("text_" + field),
		},
	})
}
