package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TokenRepository handles database operations for notification tokens and
// the install metrics singleton kept in step with them.
type TokenRepository struct {
	tokens  *mongo.Collection
	metrics *mongo.Collection
}

// NewTokenRepository creates a new instance of TokenRepository.
func NewTokenRepository(db *mongo.Database) *TokenRepository {
	return &TokenRepository{
		tokens:  db.Collection("notification_tokens"),
		metrics: db.Collection("install_metrics"),
	}
}

// GetTokenByID fetches a token record by its derived document ID. Absence
// is not an error.
func (r *TokenRepository) GetTokenByID(ctx context.Context, id string) (*models.NotificationToken, error) {
	var token models.NotificationToken
	err := r.tokens.FindOne(ctx, bson.M{"_id": id}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logrus.WithError(err).WithField("tokenID", id).Error("Failed to find token by ID")
		return nil, fmt.Errorf("failed to find token: %v", err)
	}
	return &token, nil
}

// InsertToken inserts a new token record.
func (r *TokenRepository) InsertToken(ctx context.Context, token *models.NotificationToken) error {
	_, err := r.tokens.InsertOne(ctx, token)
	if err != nil {
		logrus.WithError(err).WithField("tokenID", token.ID).Error("Failed to insert token")
		return fmt.Errorf("failed to insert token: %v", err)
	}

	logrus.WithField("tokenID", token.ID).Info("Token registered")
	return nil
}

// TouchToken refreshes last_active_at and re-asserts validity.
func (r *TokenRepository) TouchToken(ctx context.Context, id string, now time.Time) error {
	_, err := r.tokens.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"last_active_at": now,
			"is_valid":       true,
			"updated_at":     now,
		},
	})
	if err != nil {
		logrus.WithError(err).WithField("tokenID", id).Error("Failed to touch token")
		return fmt.Errorf("failed to touch token: %v", err)
	}
	return nil
}

// MarkInvalid flips is_valid to false on the token record.
func (r *TokenRepository) MarkInvalid(ctx context.Context, id string) error {
	_, err := r.tokens.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_valid": false, "updated_at": time.Now()},
	})
	if err != nil {
		logrus.WithError(err).WithField("tokenID", id).Error("Failed to mark token invalid")
		return fmt.Errorf("failed to mark token invalid: %v", err)
	}
	return nil
}

// DeleteToken removes a token record.
func (r *TokenRepository) DeleteToken(ctx context.Context, id string) error {
	_, err := r.tokens.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("tokenID", id).Error("Failed to delete token")
		return fmt.Errorf("failed to delete token: %v", err)
	}
	return nil
}

// GetValidTokens fetches all records still marked valid.
func (r *TokenRepository) GetValidTokens(ctx context.Context) ([]models.NotificationToken, error) {
	return r.findTokens(ctx, bson.M{"is_valid": true}, nil)
}

// GetAllTokens fetches every token record, newest first.
func (r *TokenRepository) GetAllTokens(ctx context.Context) ([]models.NotificationToken, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findTokens(ctx, bson.M{}, opts)
}

// GetTokensLastActiveBefore fetches records whose last activity predates
// the cutoff.
func (r *TokenRepository) GetTokensLastActiveBefore(ctx context.Context, cutoff time.Time) ([]models.NotificationToken, error) {
	return r.findTokens(ctx, bson.M{"last_active_at": bson.M{"$lt": cutoff}}, nil)
}

func (r *TokenRepository) findTokens(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.NotificationToken, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.tokens.Find(ctx, filter, opts)
	} else {
		cursor, err = r.tokens.Find(ctx, filter)
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch tokens")
		return nil, fmt.Errorf("failed to fetch tokens: %v", err)
	}
	defer cursor.Close(ctx)

	var tokens []models.NotificationToken
	for cursor.Next(ctx) {
		var token models.NotificationToken
		if err := cursor.Decode(&token); err != nil {
			return nil, fmt.Errorf("failed to decode token: %v", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// GetInstallMetrics reads the metrics singleton; nil when it has never
// been initialized.
func (r *TokenRepository) GetInstallMetrics(ctx context.Context) (*models.InstallMetrics, error) {
	var metrics models.InstallMetrics
	err := r.metrics.FindOne(ctx, bson.M{"_id": models.InstallMetricsID}).Decode(&metrics)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		logrus.WithError(err).Error("Failed to read install metrics")
		return nil, fmt.Errorf("failed to read install metrics: %v", err)
	}
	return &metrics, nil
}

// IncrementInstallMetrics applies atomic counter deltas to the metrics
// singleton, creating it on first use. monthKey, when non-empty, also
// bumps that month's install bucket.
func (r *TokenRepository) IncrementInstallMetrics(ctx context.Context, totalDelta, activeDelta int64, monthKey string) error {
	inc := bson.M{
		"total_installs":  totalDelta,
		"active_installs": activeDelta,
	}
	if monthKey != "" {
		inc["monthly_installs."+monthKey] = int64(1)
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.metrics.UpdateOne(ctx, bson.M{"_id": models.InstallMetricsID}, bson.M{
		"$inc": inc,
		"$set": bson.M{"last_updated": time.Now()},
	}, opts)
	if err != nil {
		logrus.WithError(err).Error("Failed to update install metrics")
		return fmt.Errorf("failed to update install metrics: %v", err)
	}
	return nil
}
