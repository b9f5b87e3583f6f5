// internal/app/store/instructors/instructorstore.go
package instructorstore

// Terminology: Instructor Keys
//   - RegistrationKey / registration_key: the secret key handed to the instructor in join links
//   - SearchKey / search_key: the one-way derivation of the registration key, used as the search document ID

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/system/htmlsanitize"
	"github.com/dalemusser/instructorsearch/internal/app/system/normalize"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultDisplayedName is used when an instructor is created without one.
const DefaultDisplayedName = "Instructor"

// KeyDeriver turns a registration key into its search key.
type KeyDeriver interface {
	Derive(registrationKey string) string
}

type Store struct {
	c    *mongo.Collection
	keys KeyDeriver
}

func New(db *mongo.Database, keys KeyDeriver) *Store {
	return &Store{
		c:    db.Collection("instructors"),
		keys: keys,
	}
}

var (
	ErrNotFound            = errors.New("instructor not found")
	ErrDuplicateInstructor = errors.New("an instructor with this email already exists in the course")
	ErrBadRole             = errors.New(`role must be one of "Co-owner", "Manager", "Observer", "Tutor", "Custom"`)
	ErrMissingCourse       = errors.New("instructor missing course_id")
	ErrMissingEmail        = errors.New("instructor missing email")
)

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func cleanGoogleID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

// Create validates and stores a new instructor. It assigns a fresh
// registration key and the matching search key.
func (s *Store) Create(ctx context.Context, in models.Instructor) (models.Instructor, error) {
	in.CourseID = normalize.CourseID(in.CourseID)
	if in.CourseID == "" {
		return models.Instructor{}, ErrMissingCourse
	}
	in.Email = normalize.Email(in.Email)
	if in.Email == "" {
		return models.Instructor{}, ErrMissingEmail
	}
	role, ok := normalize.Role(in.Role)
	if !ok {
		return models.Instructor{}, ErrBadRole
	}
	in.Role = role
	in.Name = normalize.Name(htmlsanitize.StripTags(in.Name))
	in.NameCI = text.Fold(in.Name)
	in.DisplayedName = normalize.Name(htmlsanitize.StripTags(in.DisplayedName))
	if in.DisplayedName == "" {
		in.DisplayedName = DefaultDisplayedName
	}
	in.GoogleID = cleanGoogleID(in.GoogleID)

	now := time.Now().UTC()
	in.ID = primitive.NewObjectID()
	in.RegistrationKey = uuid.NewString()
	in.SearchKey = s.keys.Derive(in.RegistrationKey)
	in.CreatedAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Instructor{}, ErrDuplicateInstructor
		}
		return models.Instructor{}, err
	}
	return in, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Instructor, error) {
	var in models.Instructor
	if err := s.c.FindOne(ctx, filter).Decode(&in); err != nil {
		return models.Instructor{}, notFound(err)
	}
	return in, nil
}

func (s *Store) GetByRegistrationKey(ctx context.Context, key string) (models.Instructor, error) {
	return s.findOne(ctx, bson.M{"registration_key": key})
}

// GetBySearchKey resolves a search document ID back to its instructor.
// Returns ErrNotFound when the document no longer has a live instructor.
func (s *Store) GetBySearchKey(ctx context.Context, searchKey string) (models.Instructor, error) {
	return s.findOne(ctx, bson.M{"search_key": searchKey})
}

func (s *Store) GetByCourseAndEmail(ctx context.Context, courseID, email string) (models.Instructor, error) {
	return s.findOne(ctx, bson.M{
		"course_id": normalize.CourseID(courseID),
		"email":     normalize.Email(email),
	})
}

// ListByCourse returns a course's instructors ordered by name.
func (s *Store) ListByCourse(ctx context.Context, courseID string) ([]models.Instructor, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"course_id": normalize.CourseID(courseID)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Instructor
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Each calls fn for every instructor in _id order, stopping at the first
// error fn returns.
func (s *Store) Each(ctx context.Context, fn func(models.Instructor) error) error {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var in models.Instructor
		if err := cur.Decode(&in); err != nil {
			return err
		}
		if err := fn(in); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Update modifies the mutable fields of the instructor with the given
// registration key and returns the updated record. Empty fields in upd are
// left unchanged. The registration and search keys never change.
func (s *Store) Update(ctx context.Context, registrationKey string, upd models.Instructor) (models.Instructor, error) {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if name := normalize.Name(htmlsanitize.StripTags(upd.Name)); name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if email := normalize.Email(upd.Email); email != "" {
		set["email"] = email
	}
	if strings.TrimSpace(upd.Role) != "" {
		role, ok := normalize.Role(upd.Role)
		if !ok {
			return models.Instructor{}, ErrBadRole
		}
		set["role"] = role
	}
	if dn := normalize.Name(htmlsanitize.StripTags(upd.DisplayedName)); dn != "" {
		set["displayed_name"] = dn
	}
	if gid := cleanGoogleID(upd.GoogleID); gid != nil {
		set["google_id"] = *gid
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.Instructor
	err := s.c.FindOneAndUpdate(ctx, bson.M{"registration_key": registrationKey}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Instructor{}, ErrDuplicateInstructor
		}
		return models.Instructor{}, notFound(err)
	}
	return out, nil
}

// Delete removes the instructor with the given registration key and returns
// the removed record so its search document can be removed too.
func (s *Store) Delete(ctx context.Context, registrationKey string) (models.Instructor, error) {
	var out models.Instructor
	if err := s.c.FindOneAndDelete(ctx, bson.M{"registration_key": registrationKey}).Decode(&out); err != nil {
		return models.Instructor{}, notFound(err)
	}
	return out, nil
}

// DeleteByCourse removes all instructors of a course.
// Returns the number of documents deleted.
func (s *Store) DeleteByCourse(ctx context.Context, courseID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"course_id": normalize.CourseID(courseID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
