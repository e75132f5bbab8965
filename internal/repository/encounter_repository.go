package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EncounterRepository struct handles database operations related to encounters
type EncounterRepository struct {
	collection *mongo.Collection
}

// NewEncounterRepository creates a new instance of EncounterRepository
func NewEncounterRepository(db *mongo.Database) *EncounterRepository {
	return &EncounterRepository{
		collection: db.Collection("encounters"),
	}
}

// CreateEncounter inserts a new encounter into the database
func (r *EncounterRepository) CreateEncounter(ctx context.Context, encounter *models.Encounter) (*models.Encounter, error) {
	encounter.CreatedAt = time.Now()
	encounter.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, encounter)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert encounter")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	encounter.ID = insertedID

	logger.Log.WithField("encounter_id", encounter.ID.Hex()).Info("Encounter created successfully")
	return encounter, nil
}

// GetEncounterByID fetches an encounter by its ID
func (r *EncounterRepository) GetEncounterByID(ctx context.Context, id primitive.ObjectID) (*models.Encounter, error) {
	var encounter models.Encounter

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&encounter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Log.WithError(err).WithField("encounter_id", id.Hex()).Error("Failed to find encounter by ID")
		return nil, err
	}

	return &encounter, nil
}

// GetEncounters fetches one page of encounters ordered by start date
// descending. The store is asked for pageSize*pageNumber records and the
// requested page is sliced off client-side, so deep pages re-read all the
// pages before them. Acceptable at the record counts this system sees.
func (r *EncounterRepository) GetEncounters(ctx context.Context, pageSize, pageNumber int64) ([]models.Encounter, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetLimit(pageSize * pageNumber)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch encounters")
		return nil, err
	}
	defer cursor.Close(ctx)

	var encounters []models.Encounter
	for cursor.Next(ctx) {
		var encounter models.Encounter
		if err := cursor.Decode(&encounter); err != nil {
			logger.Log.WithError(err).Error("Failed to decode encounter")
			return nil, err
		}
		encounters = append(encounters, encounter)
	}

	offset := (pageNumber - 1) * pageSize
	if offset >= int64(len(encounters)) {
		return []models.Encounter{}, nil
	}
	return encounters[offset:], nil
}

// GetActiveEncounter returns the encounter currently flagged active, or
// nil when none is flagged. Date gating happens at the service layer.
func (r *EncounterRepository) GetActiveEncounter(ctx context.Context) (*models.Encounter, error) {
	var encounter models.Encounter

	err := r.collection.FindOne(ctx, bson.M{"active": true}).Decode(&encounter)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Log.WithError(err).Error("Failed to query active encounter")
		return nil, err
	}

	return &encounter, nil
}

// DeactivateAllEncounters flips active to false on every flagged record,
// issuing the updates in parallel and awaiting all of them.
func (r *EncounterRepository) DeactivateAllEncounters(ctx context.Context) error {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch active encounters for deactivation")
		return err
	}
	defer cursor.Close(ctx)

	var ids []primitive.ObjectID
	for cursor.Next(ctx) {
		var encounter models.Encounter
		if err := cursor.Decode(&encounter); err != nil {
			logger.Log.WithError(err).Error("Failed to decode encounter during deactivation")
			return err
		}
		ids = append(ids, encounter.ID)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(ids))
	for _, id := range ids {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
				"$set": bson.M{"active": false, "updated_at": time.Now()},
			})
			if err != nil {
				errs <- err
			}
		}(id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		logger.Log.WithError(err).Error("Failed to deactivate encounter")
		return err
	}

	logger.Log.WithField("count", len(ids)).Info("Encounters deactivated")
	return nil
}

// SetActiveEncounter deactivates every flagged encounter and then activates
// the target. The two steps are independent writes, not a transaction: a
// concurrent reader can observe zero active encounters between them, and a
// racing writer can reintroduce a second active record.
func (r *EncounterRepository) SetActiveEncounter(ctx context.Context, id primitive.ObjectID) error {
	if err := r.DeactivateAllEncounters(ctx); err != nil {
		return err
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"active": true, "updated_at": time.Now()},
	})
	if err != nil {
		logger.Log.WithError(err).WithField("encounter_id", id.Hex()).Error("Failed to activate encounter")
		return err
	}

	logger.Log.WithField("encounter_id", id.Hex()).Info("Encounter set as active")
	return nil
}

// UpdateEncounter applies a partial update, re-stamping updated_at
func (r *EncounterRepository) UpdateEncounter(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logger.Log.WithError(err).WithField("encounter_id", id.Hex()).Error("Failed to update encounter")
		return err
	}

	return nil
}
