package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Encounter represents one scheduled retreat event. At most one encounter
// is active at any time; activeness is additionally gated by the start
// date when reading, not only by the stored flag.
type Encounter struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	StartDate       time.Time          `bson:"start_date" json:"start_date"`
	EndDate         time.Time          `bson:"end_date" json:"end_date"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	MaxParticipants int                `bson:"max_participants,omitempty" json:"max_participants,omitempty"`
	Active          bool               `bson:"active" json:"active"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}
