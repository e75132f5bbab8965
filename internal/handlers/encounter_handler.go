package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/AndersonAGodoy/noah-server/internal/jobs"
	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

// EncounterHandler handles HTTP requests related to encounters.
type EncounterHandler struct {
	Service *services.EncounterService
	Expirer *jobs.EncounterExpirer
}

// NewEncounterHandler creates a new instance of EncounterHandler.
func NewEncounterHandler(service *services.EncounterService, expirer *jobs.EncounterExpirer) *EncounterHandler {
	return &EncounterHandler{
		Service: service,
		Expirer: expirer,
	}
}

// CreateEncounterHandler handles the creation of a new encounter.
func (h *EncounterHandler) CreateEncounterHandler(w http.ResponseWriter, r *http.Request) {
	var encounter models.Encounter
	if err := json.NewDecoder(r.Body).Decode(&encounter); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during encounter creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateEncounter(r.Context(), &encounter)
	if err != nil {
		logrus.WithError(err).Error("Failed to create encounter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logrus.WithField("encounterID", created.ID.Hex()).Info("Encounter successfully created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetEncountersHandler returns one page of encounters.
func (h *EncounterHandler) GetEncountersHandler(w http.ResponseWriter, r *http.Request) {
	pageSize := parseQueryInt(r, "pageSize", 10)
	pageNumber := parseQueryInt(r, "page", 1)

	encounters, err := h.Service.GetEncounters(r.Context(), pageSize, pageNumber)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch encounters")
		http.Error(w, "Failed to fetch encounters", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(encounters)
}

// GetActiveEncounterHandler returns the encounter currently open for
// registration, or 404 when none is.
func (h *EncounterHandler) GetActiveEncounterHandler(w http.ResponseWriter, r *http.Request) {
	encounter, err := h.Service.GetActiveEncounter(r.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to resolve active encounter")
		http.Error(w, "Failed to resolve active encounter", http.StatusInternalServerError)
		return
	}
	if encounter == nil {
		http.Error(w, "No active encounter", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(encounter)
}

// GetEncounterHandler returns a single encounter by ID.
func (h *EncounterHandler) GetEncounterHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	encounter, err := h.Service.GetEncounter(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if encounter == nil {
		http.Error(w, "Encounter not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(encounter)
}

// UpdateEncounterHandler applies a partial update to an encounter. The
// body is decoded into typed fields so a malformed value is rejected here
// instead of being written into the collection. The active flag only
// changes through activation and the sweep.
func (h *EncounterHandler) UpdateEncounterHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Title           *string    `json:"title"`
		Description     *string    `json:"description"`
		StartDate       *time.Time `json:"start_date"`
		EndDate         *time.Time `json:"end_date"`
		Location        *string    `json:"location"`
		MaxParticipants *int       `json:"max_participants"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during encounter update")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	fields := bson.M{}
	if req.Title != nil {
		if *req.Title == "" {
			http.Error(w, "Title cannot be empty", http.StatusBadRequest)
			return
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants < 0 {
			http.Error(w, "Max participants cannot be negative", http.StatusBadRequest)
			return
		}
		fields["max_participants"] = *req.MaxParticipants
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateEncounter(r.Context(), vars["id"], fields); err != nil {
		logrus.WithError(err).WithField("encounterID", vars["id"]).Error("Failed to update encounter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateEncounterHandler promotes an encounter to active, deactivating
// all others.
func (h *EncounterHandler) ActivateEncounterHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.Service.SetActiveEncounter(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).WithField("encounterID", vars["id"]).Error("Failed to activate encounter")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SweepEncountersHandler runs the expiry sweep on demand, mirroring the
// admin view's mount-time trigger.
func (h *EncounterHandler) SweepEncountersHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Expirer.RunSweep(r.Context()); err != nil {
		logrus.WithError(err).Error("On-demand expiry sweep failed")
		http.Error(w, "Sweep failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQueryInt(r *http.Request, key string, fallback int64) int64 {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
