// internal/domain/models/course.go
package models

import "time"

// Course is keyed by its human-chosen course ID (e.g. "CS101").
type Course struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	TimeZone  string    `bson:"time_zone" json:"time_zone"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
