// Package instructordoc is the instructor kind of searchable document: it
// projects instructors into index documents and reconciles index hits back
// into live instructors.
package instructordoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	coursestore "github.com/dalemusser/instructorsearch/internal/app/store/courses"
	"github.com/dalemusser/instructorsearch/internal/app/system/searchmetrics"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
)

// KindName labels this kind in logs and metrics.
const KindName = "instructor"

// CourseLookup reads a course by ID. Implemented by coursestore.Store.
type CourseLookup interface {
	GetByID(ctx context.Context, courseID string) (models.Course, error)
}

// KeyDeriver maps a registration key to its search document ID.
// Implemented by searchkey.Deriver.
type KeyDeriver interface {
	Derive(registrationKey string) string
}

// Projector builds index documents for instructors.
type Projector struct {
	courses CourseLookup
	keys    KeyDeriver
}

func NewProjector(courses CourseLookup, keys KeyDeriver) *Projector {
	return &Projector{courses: courses, keys: keys}
}

// documentID is the search key stored with the record, so documents are
// always written under the ID the reconciler resolves. Records saved before
// a search key was stored fall back to deriving it.
func documentID(keys KeyDeriver, in *models.Instructor) string {
	if in.SearchKey != "" {
		return in.SearchKey
	}
	return keys.Derive(in.RegistrationKey)
}

// Project returns the search document for in. A nil instructor yields no
// document. A missing course leaves the course name empty.
func (p *Projector) Project(ctx context.Context, in *models.Instructor) (*searchdoc.Document, error) {
	if in == nil {
		return nil, nil
	}

	courseName := ""
	course, err := p.courses.GetByID(ctx, in.CourseID)
	switch {
	case err == nil:
		courseName = course.Name
	case errors.Is(err, coursestore.ErrNotFound):
	default:
		return nil, fmt.Errorf("project instructor: course %q: %w", in.CourseID, err)
	}

	doc := &searchdoc.Document{
		ID: documentID(p.keys, in),
		SearchableText: searchdoc.JoinFields(
			in.CourseID,
			courseName,
			in.Name,
			in.Email,
			in.GoogleIDOrEmpty(),
			in.Role,
			in.DisplayedName,
		),
	}
	searchmetrics.DocumentsProjected.WithLabelValues(KindName).Inc()
	return doc, nil
}
