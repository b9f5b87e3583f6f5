// internal/domain/models/instructor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Instructor is one instructor's membership in one course.
// Exactly one document per (course_id, email).
//
// RegistrationKey is the secret, unguessable key handed to the instructor in
// join links. SearchKey is the one-way derivation of RegistrationKey used as
// the search document ID; it is always stored so a search hit can be resolved
// back to its instructor without reversing the derivation.
type Instructor struct {
	ID              primitive.ObjectID `bson:"_id" json:"-"`
	CourseID        string             `bson:"course_id" json:"course_id"`
	Name            string             `bson:"name" json:"name"`
	NameCI          string             `bson:"name_ci" json:"-"` // ← always stored
	Email           string             `bson:"email" json:"email"`
	GoogleID        *string            `bson:"google_id,omitempty" json:"google_id,omitempty"`
	Role            string             `bson:"role" json:"role"`                     // e.g. "Co-owner", "Manager", "Observer", "Tutor", "Custom"
	DisplayedName   string             `bson:"displayed_name" json:"displayed_name"` // label shown to students, e.g. "Instructor"
	RegistrationKey string             `bson:"registration_key" json:"-"`
	SearchKey       string             `bson:"search_key" json:"-"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// GoogleIDOrEmpty returns the linked Google ID, or "" when the instructor has
// not joined with a Google account yet.
func (i Instructor) GoogleIDOrEmpty() string {
	if i.GoogleID == nil {
		return ""
	}
	return *i.GoogleID
}
