package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ParticipantRepository handles database operations related to participants.
type ParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new instance of ParticipantRepository.
func NewParticipantRepository(db *mongo.Database) *ParticipantRepository {
	return &ParticipantRepository{
		collection: db.Collection("participants"),
	}
}

// CreateParticipant inserts a new participant into the database.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	participant.CreatedAt = time.Now()
	participant.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, participant)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert participant into database")
		return nil, fmt.Errorf("failed to insert participant: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	participant.ID = insertedID

	logrus.WithField("participantID", participant.ID.Hex()).Info("Participant inserted successfully")
	return participant, nil
}

// GetParticipantsByEncounter returns one page of participants for an
// encounter plus the total count. The count and the page are independent
// queries, so they can momentarily disagree under concurrent writes.
func (r *ParticipantRepository) GetParticipantsByEncounter(ctx context.Context, encounterID primitive.ObjectID, pageSize, pageNumber int64) ([]models.Participant, int64, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	filter := bson.M{"encounter_id": encounterID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to count participants")
		return nil, 0, fmt.Errorf("failed to count participants: %v", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((pageNumber - 1) * pageSize).
		SetLimit(pageSize)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch participants")
		return nil, 0, fmt.Errorf("failed to fetch participants: %v", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	for cursor.Next(ctx) {
		var participant models.Participant
		if err := cursor.Decode(&participant); err != nil {
			return nil, 0, fmt.Errorf("failed to decode participant: %v", err)
		}
		participants = append(participants, participant)
	}

	return participants, total, nil
}

// GetParticipantByID retrieves a participant by their ID.
func (r *ParticipantRepository) GetParticipantByID(ctx context.Context, id primitive.ObjectID) (*models.Participant, error) {
	var participant models.Participant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{
			"participantID": id.Hex(),
			"error":         err,
		}).Warn("Failed to find participant by ID")
		return nil, fmt.Errorf("failed to find participant by id: %v", err)
	}

	return &participant, nil
}

// GetParticipantByEmail returns the first participant registered with the
// given email, or nil when none exists.
func (r *ParticipantRepository) GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error) {
	var participant models.Participant
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Failed to find participant by email")
		return nil, fmt.Errorf("failed to find participant by email: %v", err)
	}

	return &participant, nil
}

// UpdateParticipant applies a partial update, re-stamping updated_at.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"participantID": id.Hex(),
			"error":         err,
		}).Error("Failed to update participant")
		return fmt.Errorf("failed to update participant: %v", err)
	}

	logrus.WithField("participantID", id.Hex()).Info("Participant updated successfully")
	return nil
}

// DeleteParticipant deletes a participant from the database.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"participantID": id.Hex(),
			"error":         err,
		}).Error("Failed to delete participant")
		return fmt.Errorf("failed to delete participant: %v", err)
	}

	logrus.WithField("participantID", id.Hex()).Info("Participant deleted successfully")
	return nil
}

// GetAllParticipants fetches one page of participants across all
// encounters, using the same over-fetch-and-slice pagination as the
// encounter listing.
func (r *ParticipantRepository) GetAllParticipants(ctx context.Context, pageSize, pageNumber int64) ([]models.Participant, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(pageSize * pageNumber)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch participants")
		return nil, fmt.Errorf("failed to fetch participants: %v", err)
	}
	defer cursor.Close(ctx)

	var participants []models.Participant
	for cursor.Next(ctx) {
		var participant models.Participant
		if err := cursor.Decode(&participant); err != nil {
			return nil, fmt.Errorf("failed to decode participant: %v", err)
		}
		participants = append(participants, participant)
	}

	offset := (pageNumber - 1) * pageSize
	if offset >= int64(len(participants)) {
		return []models.Participant{}, nil
	}
	return participants[offset:], nil
}
