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

// SermonHandler handles HTTP requests related to sermons.
type SermonHandler struct {
	Service *services.SermonService
}

// NewSermonHandler creates a new instance of SermonHandler.
func NewSermonHandler(service *services.SermonService) *SermonHandler {
	return &SermonHandler{Service: service}
}

// CreateSermonHandler stores a new draft sermon.
func (h *SermonHandler) CreateSermonHandler(w http.ResponseWriter, r *http.Request) {
	var sermon models.Sermon
	if err := json.NewDecoder(r.Body).Decode(&sermon); err != nil {
		log.WithError(err).Warn("Invalid request payload during sermon creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	created, err := h.Service.CreateSermon(r.Context(), &sermon)
	if err != nil {
		log.WithError(err).Error("Failed to create sermon")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetSermonsHandler lists sermons. Public callers only see published ones;
// administrators pass ?all=true for drafts too.
func (h *SermonHandler) GetSermonsHandler(w http.ResponseWriter, r *http.Request) {
	pageSize := parseQueryInt(r, "pageSize", 10)
	pageNumber := parseQueryInt(r, "page", 1)
	publishedOnly := r.URL.Query().Get("all") != "true"

	sermons, err := h.Service.GetSermons(r.Context(), publishedOnly, pageSize, pageNumber)
	if err != nil {
		log.WithError(err).Error("Failed to fetch sermons")
		http.Error(w, "Failed to fetch sermons", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sermons)
}

// GetSermonBySlugHandler returns one published sermon for the public site.
func (h *SermonHandler) GetSermonBySlugHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sermon, err := h.Service.GetSermonBySlug(r.Context(), vars["slug"])
	if err != nil {
		log.WithError(err).Error("Failed to fetch sermon by slug")
		http.Error(w, "Failed to fetch sermon", http.StatusInternalServerError)
		return
	}
	if sermon == nil || !sermon.Published {
		http.Error(w, "Sermon not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sermon)
}

// UpdateSermonHandler applies a partial update to a sermon. The body is
// decoded into typed fields; publication state changes only through the
// publish endpoint, and the slug stays fixed once assigned.
func (h *SermonHandler) UpdateSermonHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Title   *string   `json:"title"`
		Summary *string   `json:"summary"`
		Body    *string   `json:"body"`
		Speaker *string   `json:"speaker"`
		Tags    *[]string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Invalid request payload during sermon update")
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
	if req.Summary != nil {
		fields["summary"] = *req.Summary
	}
	if req.Body != nil {
		if *req.Body == "" {
			http.Error(w, "Body cannot be empty", http.StatusBadRequest)
			return
		}
		fields["body"] = *req.Body
	}
	if req.Speaker != nil {
		fields["speaker"] = *req.Speaker
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if len(fields) == 0 {
		http.Error(w, "No updatable fields provided", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateSermon(r.Context(), vars["id"], fields); err != nil {
		log.WithError(err).WithField("sermonID", vars["id"]).Error("Failed to update sermon")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSermonHandler removes a sermon.
func (h *SermonHandler) DeleteSermonHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.Service.DeleteSermon(r.Context(), vars["id"]); err != nil {
		log.WithError(err).WithField("sermonID", vars["id"]).Error("Failed to delete sermon")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PublishSermonHandler publishes a sermon and triggers frontend
// revalidation.
func (h *SermonHandler) PublishSermonHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	sermon, err := h.Service.PublishSermon(r.Context(), vars["id"])
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Sermon not found", http.StatusNotFound)
			return
		}
		log.WithError(err).WithField("sermonID", vars["id"]).Error("Failed to publish sermon")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sermon)
}
