// Package handlers provides HTTP handlers for fund recommendations.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/allocation"
)

// Handler handles recommendation HTTP requests
type Handler struct {
	service *allocation.Service
	log     zerolog.Logger
}

// NewHandler creates a new recommendation handler
func NewHandler(service *allocation.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "allocation").Logger(),
	}
}

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/recommendations", h.HandleGetRecommendations)       // ?capital=
	r.Get("/categories/{category}/funds", h.HandleGetBestFunds) // Full ranking
}

// HandleGetRecommendations plans an allocation for the given capital
func (h *Handler) HandleGetRecommendations(w http.ResponseWriter, r *http.Request) {
	capital, err := strconv.ParseFloat(r.URL.Query().Get("capital"), 64)
	if err != nil || !(capital > 0) {
		h.writeError(w, http.StatusBadRequest, "capital must be a positive number")
		return
	}

	rec, err := h.service.Recommend(r.Context(), capital)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build recommendation")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// HandleGetBestFunds returns every fund of a category, ranked
func (h *Handler) HandleGetBestFunds(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	ranked, err := h.service.BestFunds(r.Context(), category)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"category":     category,
		"display_name": category.DisplayName(),
		"funds":        ranked,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
