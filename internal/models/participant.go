package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participation types accepted on registration.
const (
	ParticipationFirstTime  = "firstTime"
	ParticipationReturning  = "returning"
	ParticipationLeadership = "leadership"
)

var AllowedParticipationTypes = map[string]bool{
	ParticipationFirstTime:  true,
	ParticipationReturning:  true,
	ParticipationLeadership: true,
}

// Participant is one person's registration of interest for an encounter.
type Participant struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	Age               int                `bson:"age" json:"age"`
	Address           string             `bson:"address,omitempty" json:"address,omitempty"`
	Observations      string             `bson:"observations,omitempty" json:"observations,omitempty"`
	ParticipationType string             `bson:"participation_type" json:"participation_type"`
	EncounterID       primitive.ObjectID `bson:"encounter_id" json:"encounter_id"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}
