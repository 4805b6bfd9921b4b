// Package handlers provides HTTP handlers for charts.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/charts"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
)

// SummaryProvider supplies the current ledger summary.
type SummaryProvider interface {
	Summary() portfolio.Summary
}

// Handler handles chart HTTP requests
type Handler struct {
	service *charts.Service
	ledger  SummaryProvider
	target  map[domain.Category]float64
	log     zerolog.Logger
}

// NewHandler creates a new charts handler. target is in percentage points.
func NewHandler(service *charts.Service, ledger SummaryProvider, target map[domain.Category]float64, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		ledger:  ledger,
		target:  target,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes registers all chart routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Get("/allocation.png", h.HandleAllocationChart)
		r.Get("/balance.png", h.HandleBalanceChart)
		r.Get("/prices/{ticker}", h.HandleGetPriceSeries) // ?group=day|week|month
		r.Get("/prices/{ticker}/chart.png", h.HandlePriceChart)
	})
}

// HandleAllocationChart handles GET /api/charts/allocation.png
func (h *Handler) HandleAllocationChart(w http.ResponseWriter, r *http.Request) {
	png, err := charts.RenderAllocationPie("Carteira de FIIs", h.ledger.Summary().InvestedByCategory)
	h.writePNG(w, png, err)
}

// HandleBalanceChart handles GET /api/charts/balance.png
func (h *Handler) HandleBalanceChart(w http.ResponseWriter, r *http.Request) {
	png, err := charts.RenderCurrentVsTarget(h.ledger.Summary().ByCategory, h.target)
	h.writePNG(w, png, err)
}

// HandleGetPriceSeries handles GET /api/charts/prices/{ticker}
func (h *Handler) HandleGetPriceSeries(w http.ResponseWriter, r *http.Request) {
	points, err := h.service.PriceSeries(chi.URLParam(r, "ticker"), r.URL.Query().Get("group"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, points)
}

// HandlePriceChart handles GET /api/charts/prices/{ticker}/chart.png
func (h *Handler) HandlePriceChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.PriceChart(chi.URLParam(r, "ticker"))
	h.writePNG(w, png, err)
}

func (h *Handler) writePNG(w http.ResponseWriter, png []byte, err error) {
	if errors.Is(err, charts.ErrNoData) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render chart")
		h.writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart")
	}
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
