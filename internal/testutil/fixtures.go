package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/system/searchkey"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TestSearchKeySecret is the secret fixture search keys are derived with.
const TestSearchKeySecret = "test-search-key-secret"

// SearchKeys returns the deriver used by fixtures, so stores built in tests
// compute the same search keys.
func SearchKeys(t *testing.T) *searchkey.Deriver {
	t.Helper()
	d, err := searchkey.New(TestSearchKeySecret)
	if err != nil {
		t.Fatalf("searchkey.New: %v", err)
	}
	return d
}

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures inserts test data directly, bypassing store validation.
type Fixtures struct {
	db   *mongo.Database
	t    *testing.T
	keys *searchkey.Deriver
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t, keys: SearchKeys(t)}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) CreateCourse(ctx context.Context, id, name string) models.Course {
	f.t.Helper()

	course := models.Course{
		ID:        id,
		Name:      name,
		TimeZone:  "America/New_York",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, course); err != nil {
		f.t.Fatalf("failed to create course: %v", err)
	}
	return course
}

// CreateInstructor inserts an instructor with a fresh registration key and
// its derived search key.
func (f *Fixtures) CreateInstructor(ctx context.Context, courseID, name, email, role string) models.Instructor {
	f.t.Helper()

	now := time.Now().UTC()
	regKey := uuid.NewString()
	in := models.Instructor{
		ID:              primitive.NewObjectID(),
		CourseID:        courseID,
		Name:            name,
		NameCI:          text.Fold(name),
		Email:           email,
		Role:            role,
		DisplayedName:   "Instructor",
		RegistrationKey: regKey,
		SearchKey:       f.keys.Derive(regKey),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("instructors").InsertOne(ctx, in); err != nil {
		f.t.Fatalf("failed to create instructor: %v", err)
	}
	return in
}
