package repository

import (
	"context"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SermonRepository struct handles database operations related to sermons
type SermonRepository struct {
	collection *mongo.Collection
}

// NewSermonRepository creates a new instance of SermonRepository
func NewSermonRepository(db *mongo.Database) *SermonRepository {
	return &SermonRepository{
		collection: db.Collection("sermons"),
	}
}

// CreateSermon inserts a new sermon into the database
func (r *SermonRepository) CreateSermon(ctx context.Context, sermon *models.Sermon) (*models.Sermon, error) {
	sermon.CreatedAt = time.Now()
	sermon.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, sermon)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert sermon")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	sermon.ID = insertedID

	logger.Log.WithField("sermon_id", sermon.ID.Hex()).Info("Sermon created successfully")
	return sermon, nil
}

// GetSermonByID fetches a sermon by its ID
func (r *SermonRepository) GetSermonByID(ctx context.Context, id primitive.ObjectID) (*models.Sermon, error) {
	var sermon models.Sermon

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sermon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Log.WithError(err).WithField("sermon_id", id.Hex()).Error("Failed to find sermon by ID")
		return nil, err
	}

	return &sermon, nil
}

// GetSermonBySlug fetches a sermon by its public slug
func (r *SermonRepository) GetSermonBySlug(ctx context.Context, slug string) (*models.Sermon, error) {
	var sermon models.Sermon

	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&sermon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logger.Log.WithError(err).WithField("slug", slug).Error("Failed to find sermon by slug")
		return nil, err
	}

	return &sermon, nil
}

// GetSermons fetches one page of sermons ordered by publication date
// descending, optionally restricted to published ones.
func (r *SermonRepository) GetSermons(ctx context.Context, publishedOnly bool, pageSize, pageNumber int64) ([]models.Sermon, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}

	filter := bson.M{}
	if publishedOnly {
		filter["published"] = true
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(pageSize * pageNumber)

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch sermons")
		return nil, err
	}
	defer cursor.Close(ctx)

	var sermons []models.Sermon
	for cursor.Next(ctx) {
		var sermon models.Sermon
		if err := cursor.Decode(&sermon); err != nil {
			logger.Log.WithError(err).Error("Failed to decode sermon")
			return nil, err
		}
		sermons = append(sermons, sermon)
	}

	offset := (pageNumber - 1) * pageSize
	if offset >= int64(len(sermons)) {
		return []models.Sermon{}, nil
	}
	return sermons[offset:], nil
}

// UpdateSermon applies a partial update, re-stamping updated_at
func (r *SermonRepository) UpdateSermon(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logger.Log.WithError(err).WithField("sermon_id", id.Hex()).Error("Failed to update sermon")
		return err
	}

	return nil
}

// DeleteSermon deletes a sermon from the database by its ID
func (r *SermonRepository) DeleteSermon(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("sermon_id", id.Hex()).Error("Failed to delete sermon")
		return err
	}

	logger.Log.WithField("sermon_id", id.Hex()).Info("Sermon deleted successfully")
	return nil
}
