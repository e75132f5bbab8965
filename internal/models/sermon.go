package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sermon is a piece of markdown content authored by an administrator and
// served to the public site once published.
type Sermon struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	Summary     string             `bson:"summary,omitempty" json:"summary,omitempty"`
	Body        string             `bson:"body" json:"body"`
	Speaker     string             `bson:"speaker,omitempty" json:"speaker,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Published   bool               `bson:"published" json:"published"`
	PublishedAt *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
