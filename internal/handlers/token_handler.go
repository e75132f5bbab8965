package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AndersonAGodoy/noah-server/internal/models"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	log "github.com/sirupsen/logrus"
)

// TokenHandler handles HTTP requests related to push notification tokens.
type TokenHandler struct {
	Service *services.TokenService
}

// NewTokenHandler creates a new instance of TokenHandler.
func NewTokenHandler(service *services.TokenService) *TokenHandler {
	return &TokenHandler{Service: service}
}

// SaveTokenHandler registers or refreshes a device token after the user
// grants notification consent.
func (h *TokenHandler) SaveTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		UserID   string `json:"user_id"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.WithError(err).Warn("Failed to decode token registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	device := models.DeviceInfo{
		UserAgent: r.UserAgent(),
		Platform:  req.Platform,
	}

	record, err := h.Service.SaveToken(r.Context(), req.Token, device, req.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to save token")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// GetTokensHandler returns hydrated token records for the admin view.
func (h *TokenHandler) GetTokensHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Query().Get("valid") == "true" {
		json.NewEncoder(w).Encode(h.Service.GetAllValidTokens(r.Context()))
		return
	}
	json.NewEncoder(w).Encode(h.Service.GetAllTokensWithDetails(r.Context()))
}

// InvalidateTokenHandler flags a token after a failed delivery attempt.
func (h *TokenHandler) InvalidateTokenHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.Service.MarkTokenInvalid(r.Context(), req.Token); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "Token not found", http.StatusNotFound)
			return
		}
		log.WithError(err).Error("Failed to invalidate token")
		http.Error(w, "Failed to invalidate token", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetInstallMetricsHandler returns the aggregate install counters.
func (h *TokenHandler) GetInstallMetricsHandler(w http.ResponseWriter, r *http.Request) {
	metrics := h.Service.GetInstallMetrics(r.Context())
	if metrics == nil {
		http.Error(w, "No metrics recorded yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics)
}

// CleanupTokensHandler purges tokens inactive beyond the threshold.
func (h *TokenHandler) CleanupTokensHandler(w http.ResponseWriter, r *http.Request) {
	days := int(parseQueryInt(r, "days", 90))

	deleted, err := h.Service.CleanupOldTokens(r.Context(), days)
	if err != nil {
		log.WithError(err).Error("Token cleanup failed")
		http.Error(w, "Cleanup failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"deleted": deleted})
}
