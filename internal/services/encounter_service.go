package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EncounterStore is the slice of the encounter repository the service
// depends on.
type EncounterStore interface {
	CreateEncounter(ctx context.Context, encounter *models.Encounter) (*models.Encounter, error)
	GetEncounterByID(ctx context.Context, id primitive.ObjectID) (*models.Encounter, error)
	GetEncounters(ctx context.Context, pageSize, pageNumber int64) ([]models.Encounter, error)
	GetActiveEncounter(ctx context.Context) (*models.Encounter, error)
	SetActiveEncounter(ctx context.Context, id primitive.ObjectID) error
	DeactivateAllEncounters(ctx context.Context) error
	UpdateEncounter(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

// EncounterService encapsulates the encounter lifecycle: single-active
// enforcement and date-based expiry gating.
type EncounterService struct {
	repo EncounterStore
	now  func() time.Time
}

// NewEncounterService creates a new instance of EncounterService.
func NewEncounterService(repo EncounterStore) *EncounterService {
	return &EncounterService{repo: repo, now: time.Now}
}

// CreateEncounter validates and stores a new encounter. New encounters are
// always created inactive; activation is a separate explicit step.
func (s *EncounterService) CreateEncounter(ctx context.Context, encounter *models.Encounter) (*models.Encounter, error) {
	if encounter.Title == "" {
		logger.Log.Warn("Encounter title is empty during creation")
		return nil, fmt.Errorf("encounter title is required")
	}
	if encounter.StartDate.IsZero() {
		return nil, fmt.Errorf("encounter start date is required")
	}
	if !encounter.EndDate.IsZero() && encounter.EndDate.Before(encounter.StartDate) {
		return nil, fmt.Errorf("encounter end date cannot be before start date")
	}

	encounter.Active = false

	created, err := s.repo.CreateEncounter(ctx, encounter)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create encounter")
		return nil, fmt.Errorf("failed to create encounter: %v", err)
	}

	logger.Log.WithField("encounter_id", created.ID.Hex()).Info("Encounter created in service layer")
	return created, nil
}

// GetEncounter retrieves an encounter by its ID.
func (s *EncounterService) GetEncounter(ctx context.Context, id string) (*models.Encounter, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("encounter_id", id).WithError(err).Warn("Invalid encounter ID in GetEncounter")
		return nil, fmt.Errorf("invalid encounter ID: %v", err)
	}

	encounter, err := s.repo.GetEncounterByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("failed to get encounter: %v", err)
	}
	return encounter, nil
}

// GetEncounters returns one page of encounters, newest start date first.
func (s *EncounterService) GetEncounters(ctx context.Context, pageSize, pageNumber int64) ([]models.Encounter, error) {
	encounters, err := s.repo.GetEncounters(ctx, pageSize, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch encounters: %v", err)
	}
	return encounters, nil
}

// GetActiveEncounter resolves the encounter currently open for
// registration. An encounter whose start date has already passed is never
// returned, even when its stored flag is still true; the flag is left
// untouched here and corrected by the expiry sweep.
func (s *EncounterService) GetActiveEncounter(ctx context.Context) (*models.Encounter, error) {
	encounter, err := s.repo.GetActiveEncounter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active encounter: %v", err)
	}
	if encounter == nil {
		return nil, nil
	}

	if startsBeforeToday(encounter.StartDate, s.now()) {
		logger.Log.WithField("encounter_id", encounter.ID.Hex()).Info("Active encounter has expired by date")
		return nil, nil
	}
	return encounter, nil
}

// SetActiveEncounter promotes the given encounter to active, deactivating
// every other one. The underlying operation is two independent writes;
// readers racing it can briefly observe zero active encounters.
func (s *EncounterService) SetActiveEncounter(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Log.WithField("encounter_id", id).WithError(err).Warn("Invalid encounter ID in SetActiveEncounter")
		return fmt.Errorf("invalid encounter ID: %v", err)
	}

	encounter, err := s.repo.GetEncounterByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("failed to get encounter: %v", err)
	}
	if encounter == nil {
		return fmt.Errorf("encounter %s: %w", id, ErrNotFound)
	}

	if err := s.repo.SetActiveEncounter(ctx, objID); err != nil {
		return fmt.Errorf("failed to set active encounter: %v", err)
	}

	logger.Log.WithField("encounter_id", id).Info("Encounter activated in service layer")
	return nil
}

// UpdateEncounter applies a partial update to an encounter.
func (s *EncounterService) UpdateEncounter(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid encounter ID: %v", err)
	}

	if err := s.repo.UpdateEncounter(ctx, objID, fields); err != nil {
		return fmt.Errorf("failed to update encounter: %v", err)
	}
	return nil
}

// Deactivate clears the active flag on a single encounter.
func (s *EncounterService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.UpdateEncounter(ctx, id, bson.M{"active": false}); err != nil {
		return fmt.Errorf("failed to deactivate encounter: %v", err)
	}
	return nil
}

// startsBeforeToday reports whether t falls on a calendar day strictly
// before now's day. Time of day is zeroed on both sides.
func startsBeforeToday(t, now time.Time) bool {
	day := func(v time.Time) time.Time {
		y, m, d := v.In(now.Location()).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	return day(t).Before(day(now))
}
