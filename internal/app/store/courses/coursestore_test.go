package coursestore_test

import (
	"errors"
	"testing"

	coursestore "github.com/dalemusser/instructorsearch/internal/app/store/courses"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"github.com/dalemusser/instructorsearch/internal/testutil"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Course{ID: "  CS101 ", Name: " Intro to CS ", TimeZone: "America/Chicago"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "CS101" || created.Name != "Intro to CS" {
		t.Errorf("expected trimmed fields, got %+v", created)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, "CS101")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Intro to CS" || got.TimeZone != "America/Chicago" {
		t.Errorf("unexpected course: %+v", got)
	}
}

func TestStore_Create_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Course{ID: "CS101", Name: "A"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Course{ID: "CS101", Name: "B"})
	if !errors.Is(err, coursestore.ErrDuplicateCourse) {
		t.Errorf("expected ErrDuplicateCourse, got %v", err)
	}
}

func TestStore_Create_MissingID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Course{ID: "   "}); !errors.Is(err, coursestore.ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, "NOPE"); !errors.Is(err, coursestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := coursestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateCourse(ctx, "CS101", "Intro to CS")

	n, err := store.Delete(ctx, "CS101")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	n, err = store.Delete(ctx, "CS101")
	if err != nil || n != 0 {
		t.Errorf("second Delete = %d, %v; want 0, nil", n, err)
	}
}
