// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/system/normalize"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrNotFound        = errors.New("course not found")
	ErrDuplicateCourse = errors.New("a course with this ID already exists")
	ErrMissingID       = errors.New("course ID is required")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("courses")}
}

func (s *Store) Create(ctx context.Context, course models.Course) (models.Course, error) {
	course.ID = normalize.CourseID(course.ID)
	if course.ID == "" {
		return models.Course{}, ErrMissingID
	}
	course.Name = strings.TrimSpace(course.Name)
	course.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, course); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Course{}, ErrDuplicateCourse
		}
		return models.Course{}, err
	}
	return course, nil
}

// GetByID returns ErrNotFound when no course has the given ID.
func (s *Store) GetByID(ctx context.Context, id string) (models.Course, error) {
	var course models.Course
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Course{}, ErrNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

// Delete removes a course by ID. Returns the number of documents deleted (0 or 1).
// Instructors of the course are left in place.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
