package services

import (
	"context"
	"fmt"
	"regexp"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParticipantStore is the slice of the participant repository the service
// depends on.
type ParticipantStore interface {
	CreateParticipant(ctx context.Context, participant *models.Participant) (*models.Participant, error)
	GetParticipantsByEncounter(ctx context.Context, encounterID primitive.ObjectID, pageSize, pageNumber int64) ([]models.Participant, int64, error)
	GetParticipantByID(ctx context.Context, id primitive.ObjectID) (*models.Participant, error)
	GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	DeleteParticipant(ctx context.Context, id primitive.ObjectID) error
	GetAllParticipants(ctx context.Context, pageSize, pageNumber int64) ([]models.Participant, error)
}

// ActiveEncounterResolver yields the encounter currently open for
// registration, nil when there is none.
type ActiveEncounterResolver interface {
	GetActiveEncounter(ctx context.Context) (*models.Encounter, error)
}

// Mailer sends registration confirmation mail.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// RegisterParticipantRequest is the public registration form payload.
type RegisterParticipantRequest struct {
	Name              string `json:"name" validate:"required,min=2,max=100"`
	Email             string `json:"email" validate:"required,email"`
	Phone             string `json:"phone" validate:"required,numeric,min=10,max=11"`
	Age               int    `json:"age" validate:"required,gte=1,lte=120"`
	Address           string `json:"address" validate:"omitempty,min=5,max=200"`
	Observations      string `json:"observations" validate:"omitempty,max=500"`
	ParticipationType string `json:"participation_type" validate:"required,oneof=firstTime returning leadership"`
}

var (
	nameRegexp  = regexp.MustCompile(`^[\p{L} ]+$`)
	phoneRegexp = regexp.MustCompile(`^[0-9]{10,11}$`)
)

// ParticipantService owns the registration workflow and participant CRUD.
type ParticipantService struct {
	repo       ParticipantStore
	encounters ActiveEncounterResolver
	mailer     Mailer
	validate   *validator.Validate
}

// NewParticipantService creates a new instance of ParticipantService.
// mailer may be nil when confirmation mail is not configured.
func NewParticipantService(repo ParticipantStore, encounters ActiveEncounterResolver, mailer Mailer) *ParticipantService {
	return &ParticipantService{
		repo:       repo,
		encounters: encounters,
		mailer:     mailer,
		validate:   validator.New(),
	}
}

// Register validates the public form, resolves the active encounter and
// stores the participant. Resolving an active encounter is a hard
// precondition: when none is open the request fails with
// ErrNoActiveEncounter and nothing is written.
func (s *ParticipantService) Register(ctx context.Context, req *RegisterParticipantRequest) (*models.Participant, error) {
	if err := s.validate.Struct(req); err != nil {
		logger.Log.WithError(err).Warn("Participant registration failed validation")
		return nil, fmt.Errorf("invalid registration: %v", err)
	}
	if !nameRegexp.MatchString(req.Name) {
		return nil, fmt.Errorf("invalid registration: name must contain only letters and spaces")
	}
	if !phoneRegexp.MatchString(req.Phone) {
		return nil, fmt.Errorf("invalid registration: phone must be 10 to 11 digits")
	}

	encounter, err := s.encounters.GetActiveEncounter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active encounter: %v", err)
	}
	if encounter == nil {
		logger.Log.Warn("Registration attempted with no active encounter")
		return nil, ErrNoActiveEncounter
	}

	participant := &models.Participant{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		Age:               req.Age,
		Address:           req.Address,
		Observations:      req.Observations,
		ParticipationType: req.ParticipationType,
		EncounterID:       encounter.ID,
	}

	created, err := s.repo.CreateParticipant(ctx, participant)
	if err != nil {
		return nil, fmt.Errorf("failed to register participant: %v", err)
	}

	if s.mailer != nil {
		go func() {
			body := fmt.Sprintf("Hi %s,\n\nYour registration for %s was received. We will be in touch soon.",
				created.Name, encounter.Title)
			if err := s.mailer.SendEmail(created.Email, "Registration received", body); err != nil {
				logrus.WithError(err).Warn("Failed to send registration confirmation email")
			}
		}()
	}

	logger.Log.WithFields(map[string]interface{}{
		"participant_id": created.ID.Hex(),
		"encounter_id":   encounter.ID.Hex(),
	}).Info("Participant registered")

	return created, nil
}

// GetParticipants returns one page of participants for an encounter plus
// the total count.
func (s *ParticipantService) GetParticipants(ctx context.Context, encounterID string, pageSize, pageNumber int64) ([]models.Participant, int64, error) {
	objID, err := primitive.ObjectIDFromHex(encounterID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid encounter ID: %v", err)
	}

	participants, total, err := s.repo.GetParticipantsByEncounter(ctx, objID, pageSize, pageNumber)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch participants: %v", err)
	}
	return participants, total, nil
}

// GetParticipant retrieves a single participant by ID.
func (s *ParticipantService) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID: %v", err)
	}
	return s.repo.GetParticipantByID(ctx, objID)
}

// GetParticipantByEmail returns the first registration under an email.
func (s *ParticipantService) GetParticipantByEmail(ctx context.Context, email string) (*models.Participant, error) {
	return s.repo.GetParticipantByEmail(ctx, email)
}

// UpdateParticipant applies a partial update.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid participant ID: %v", err)
	}
	if err := s.repo.UpdateParticipant(ctx, objID, fields); err != nil {
		return fmt.Errorf("failed to update participant: %v", err)
	}
	return nil
}

// DeleteParticipant removes a participant record.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid participant ID: %v", err)
	}
	if err := s.repo.DeleteParticipant(ctx, objID); err != nil {
		return fmt.Errorf("failed to delete participant: %v", err)
	}
	return nil
}

// GetAllParticipants returns one page of participants across every
// encounter, for the administrative aggregate view.
func (s *ParticipantService) GetAllParticipants(ctx context.Context, pageSize, pageNumber int64) ([]models.Participant, error) {
	participants, err := s.repo.GetAllParticipants(ctx, pageSize, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch participants: %v", err)
	}
	return participants, nil
}
