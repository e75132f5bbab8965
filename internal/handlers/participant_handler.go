package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// ParticipantHandler handles HTTP requests related to participants.
type ParticipantHandler struct {
	Service *services.ParticipantService
}

// NewParticipantHandler creates a new instance of ParticipantHandler.
func NewParticipantHandler(service *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{Service: service}
}

// RegisterParticipantHandler handles the public registration form.
func (h *ParticipantHandler) RegisterParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterParticipantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	participant, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrNoActiveEncounter) {
			http.Error(w, "No active encounter is open for registration", http.StatusConflict)
			return
		}
		log.WithError(err).Warn("Participant registration rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.WithField("participantID", participant.ID.Hex()).Info("Participant registered successfully")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(participant)
}

// GetParticipantsHandler lists participants. With ?encounterId= it returns
// the page plus a total for that encounter; without it, the aggregate
// admin listing.
func (h *ParticipantHandler) GetParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	pageSize := parseQueryInt(r, "pageSize", 10)
	pageNumber := parseQueryInt(r, "page", 1)
	encounterID := r.URL.Query().Get("encounterId")

	w.Header().Set("Content-Type", "application/json")

	if encounterID == "" {
		participants, err := h.Service.GetAllParticipants(r.Context(), pageSize, pageNumber)
		if err != nil {
			log.WithError(err).Error("Failed to fetch participants")
			http.Error(w, "Failed to fetch participants", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(participants)
		return
	}

	participants, total, err := h.Service.GetParticipants(r.Context(), encounterID, pageSize, pageNumber)
	if err != nil {
		log.WithError(err).Error("Failed to fetch participants for encounter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"participants": participants,
		"total":        total,
	})
}

// GetParticipantHandler returns one participant by ID.
func (h *ParticipantHandler) GetParticipantHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	participant, err := h.Service.GetParticipant(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if participant == nil {
		http.Error(w, "Participant not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(participant)
}

// GetParticipantByEmailHandler returns the first registration under an
// email, used for duplicate checks.
func (h *ParticipantHandler) GetParticipantByEmailHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		http.Error(w, "email query parameter is required", http.StatusBadRequest)
		return
	}

	participant, err := h.Service.GetParticipantByEmail(r.Context(), email)
	if err != nil {
		log.WithError(err).Error("Failed to look up participant by email")
		http.Error(w, "Failed to look up participant", http.StatusInternalServerError)
		return
	}
	if participant == nil {
		http.Error(w, "Participant not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(participant)
}

// UpdateParticipantHandler applies a partial update to a participant. The
// body is decoded into typed fields; the encounter binding is immutable
// through this endpoint.
func (h *ParticipantHandler) UpdateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Name              *string `json:"name"`
		Email             *string `json:"email"`
		Phone             *string `json:"phone"`
		Age               *int    `json:"age"`
		Address           *string `json:"address"`
		Observations      *string `json:"observations"`
		ParticipationType *string `json:"participation_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request payload during participant update")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	fields := bson.M{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Age != nil {
		if *req.Age < 1 || *req.Age > 120 {
			http.Error(w, "Age must be between 1 and 120", http.StatusBadRequest)
			return
		}
		fields["age"] = *req.Age
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Observations != nil {
		fields["observations"] = *req.Observations
	}
	if req.ParticipationType != nil {
		if !models.AllowedParticipationTypes[*req.ParticipationType] {
			http.Error(w, "Invalid participation type", http.StatusBadRequest)
			return
		}
		fields["participation_type"] = *req.ParticipationType
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateParticipant(r.Context(), vars["id"], fields); err != nil {
		log.WithError(err).WithField("participantID", vars["id"]).Error("Failed to update participant")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteParticipantHandler removes a participant record.
func (h *ParticipantHandler) DeleteParticipantHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.Service.DeleteParticipant(r.Context(), vars["id"]); err != nil {
		log.WithError(err).WithField("participantID", vars["id"]).Error("Failed to delete participant")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
