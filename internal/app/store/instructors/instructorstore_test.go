package instructorstore_test

import (
	"errors"
	"testing"

	instructorstore "github.com/dalemusser/instructorsearch/internal/app/store/instructors"
	"github.com/dalemusser/instructorsearch/internal/app/system/indexes"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"github.com/dalemusser/instructorsearch/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) (*instructorstore.Store, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return instructorstore.New(db, testutil.SearchKeys(t)), db
}

func TestStore_Create(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Instructor{
		CourseID: " CS101 ",
		Name:     "  <b>Amy</b>   Smith ",
		Email:    " Amy@X.com ",
		Role:     "co-owner",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.CourseID != "CS101" {
		t.Errorf("CourseID = %q", created.CourseID)
	}
	if created.Name != "Amy Smith" {
		t.Errorf("Name = %q, want tags stripped and spaces collapsed", created.Name)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.Email != "amy@x.com" {
		t.Errorf("Email = %q", created.Email)
	}
	if created.Role != "Co-owner" {
		t.Errorf("Role = %q, want canonical Co-owner", created.Role)
	}
	if created.DisplayedName != instructorstore.DefaultDisplayedName {
		t.Errorf("DisplayedName = %q", created.DisplayedName)
	}
	if created.RegistrationKey == "" {
		t.Fatal("expected RegistrationKey to be assigned")
	}
	if want := testutil.SearchKeys(t).Derive(created.RegistrationKey); created.SearchKey != want {
		t.Errorf("SearchKey = %q, want %q", created.SearchKey, want)
	}
	if created.GoogleID != nil {
		t.Errorf("GoogleID = %v, want nil", *created.GoogleID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_Validation(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name string
		in   models.Instructor
		want error
	}{
		{"missing course", models.Instructor{Email: "a@x.com", Role: "Tutor"}, instructorstore.ErrMissingCourse},
		{"missing email", models.Instructor{CourseID: "CS101", Role: "Tutor"}, instructorstore.ErrMissingEmail},
		{"bad role", models.Instructor{CourseID: "CS101", Email: "a@x.com", Role: "Dean"}, instructorstore.ErrBadRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Create(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestStore_Create_DuplicateEmailInCourse(t *testing.T) {
	store, _ := newStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := models.Instructor{CourseID: "CS101", Name: "Amy", Email: "amy@x.com", Role: "Tutor"}
	if _, err := store.Create(ctx, in); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	in.Email = "AMY@x.com"
	if _, err := store.Create(ctx, in); !errors.Is(err, instructorstore.ErrDuplicateInstructor) {
		t.Errorf("expected ErrDuplicateInstructor, got %v", err)
	}

	// Same email in another course is fine.
	in.CourseID = "CS102"
	if _, err := store.Create(ctx, in); err != nil {
		t.Errorf("Create in other course failed: %v", err)
	}
}

func TestStore_Lookups(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	amy := fixtures.CreateInstructor(ctx, "CS101", "Amy", "amy@x.com", "Tutor")

	got, err := store.GetBySearchKey(ctx, amy.SearchKey)
	if err != nil {
		t.Fatalf("GetBySearchKey failed: %v", err)
	}
	if got.ID != amy.ID {
		t.Errorf("GetBySearchKey returned %s, want %s", got.ID.Hex(), amy.ID.Hex())
	}

	got, err = store.GetByRegistrationKey(ctx, amy.RegistrationKey)
	if err != nil || got.ID != amy.ID {
		t.Errorf("GetByRegistrationKey = %v, %v", got.ID.Hex(), err)
	}

	got, err = store.GetByCourseAndEmail(ctx, "CS101", "AMY@x.com")
	if err != nil || got.ID != amy.ID {
		t.Errorf("GetByCourseAndEmail = %v, %v", got.ID.Hex(), err)
	}

	for name, fn := range map[string]func() error{
		"search key":       func() error { _, err := store.GetBySearchKey(ctx, "nope"); return err },
		"registration key": func() error { _, err := store.GetByRegistrationKey(ctx, "nope"); return err },
		"course and email": func() error { _, err := store.GetByCourseAndEmail(ctx, "CS101", "nobody@x.com"); return err },
	} {
		if err := fn(); !errors.Is(err, instructorstore.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestStore_ListByCourseAndEach(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateInstructor(ctx, "CS101", "Zoe", "zoe@x.com", "Tutor")
	fixtures.CreateInstructor(ctx, "CS101", "amy", "amy@x.com", "Tutor")
	fixtures.CreateInstructor(ctx, "CS102", "Bob", "bob@x.com", "Manager")

	list, err := store.ListByCourse(ctx, "CS101")
	if err != nil {
		t.Fatalf("ListByCourse failed: %v", err)
	}
	if len(list) != 2 || list[0].Name != "amy" || list[1].Name != "Zoe" {
		t.Errorf("ListByCourse = %+v, want amy then Zoe", list)
	}

	seen := 0
	if err := store.Each(ctx, func(models.Instructor) error { seen++; return nil }); err != nil {
		t.Fatalf("Each failed: %v", err)
	}
	if seen != 3 {
		t.Errorf("Each visited %d, want 3", seen)
	}

	stop := errors.New("stop")
	seen = 0
	err = store.Each(ctx, func(models.Instructor) error { seen++; return stop })
	if !errors.Is(err, stop) || seen != 1 {
		t.Errorf("Each should stop at first error: seen=%d err=%v", seen, err)
	}
}

func TestStore_Update(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	amy := fixtures.CreateInstructor(ctx, "CS101", "Amy", "amy@x.com", "Tutor")
	fixtures.CreateInstructor(ctx, "CS101", "Bob", "bob@x.com", "Tutor")

	gid := " g-42 "
	updated, err := store.Update(ctx, amy.RegistrationKey, models.Instructor{
		Name:     "Amy Jones",
		Role:     "manager",
		GoogleID: &gid,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Amy Jones" || updated.Role != "Manager" || updated.GoogleIDOrEmpty() != "g-42" {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if updated.Email != "amy@x.com" {
		t.Errorf("empty Email should leave email unchanged, got %q", updated.Email)
	}
	if updated.SearchKey != amy.SearchKey || updated.RegistrationKey != amy.RegistrationKey {
		t.Error("keys must not change on update")
	}

	if _, err := store.Update(ctx, amy.RegistrationKey, models.Instructor{Role: "Dean"}); !errors.Is(err, instructorstore.ErrBadRole) {
		t.Errorf("expected ErrBadRole, got %v", err)
	}
	if _, err := store.Update(ctx, amy.RegistrationKey, models.Instructor{Email: "bob@x.com"}); !errors.Is(err, instructorstore.ErrDuplicateInstructor) {
		t.Errorf("expected ErrDuplicateInstructor, got %v", err)
	}
	if _, err := store.Update(ctx, "nope", models.Instructor{Name: "X"}); !errors.Is(err, instructorstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store, db := newStore(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	amy := fixtures.CreateInstructor(ctx, "CS101", "Amy", "amy@x.com", "Tutor")
	fixtures.CreateInstructor(ctx, "CS101", "Bob", "bob@x.com", "Tutor")

	deleted, err := store.Delete(ctx, amy.RegistrationKey)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.SearchKey != amy.SearchKey {
		t.Errorf("Delete should return the removed record")
	}
	if _, err := store.Delete(ctx, amy.RegistrationKey); !errors.Is(err, instructorstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	n, err := store.DeleteByCourse(ctx, "CS101")
	if err != nil || n != 1 {
		t.Errorf("DeleteByCourse = %d, %v; want 1, nil", n, err)
	}
}
