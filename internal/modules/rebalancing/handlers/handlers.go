// Package handlers provides HTTP handlers for rebalancing suggestions.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
	"github.com/Andre13Filho/FII-AI/internal/modules/rebalancing"
)

// SummaryProvider supplies the current ledger summary.
type SummaryProvider interface {
	Summary() portfolio.Summary
}

// Handler handles rebalancing HTTP requests
type Handler struct {
	advisor *rebalancing.Advisor
	ledger  SummaryProvider
	target  map[domain.Category]float64
	log     zerolog.Logger
}

// NewHandler creates a new rebalancing handler. target is in percentage
// points.
func NewHandler(advisor *rebalancing.Advisor, ledger SummaryProvider, target map[domain.Category]float64, log zerolog.Logger) *Handler {
	return &Handler{
		advisor: advisor,
		ledger:  ledger,
		target:  target,
		log:     log.With().Str("handler", "rebalancing").Logger(),
	}
}

// RegisterRoutes registers all rebalancing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rebalance", func(r chi.Router) {
		r.Get("/analysis", h.HandleGetAnalysis)
		r.Get("/suggestions", h.HandleGetSuggestions) // ?amount= defaults to 5% of invested
	})
}

// HandleGetAnalysis handles GET /api/rebalance/analysis
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.advisor.Analyze(h.ledger.Summary(), h.target))
}

// HandleGetSuggestions handles GET /api/rebalance/suggestions
func (h *Handler) HandleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	var amount float64
	if raw := r.URL.Query().Get("amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			h.writeError(w, http.StatusBadRequest, "amount must be a non-negative number")
			return
		}
		amount = v
	}

	result := h.advisor.Rebalance(r.Context(), h.ledger.Summary(), h.target, amount)
	h.writeJSON(w, http.StatusOK, result)
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
