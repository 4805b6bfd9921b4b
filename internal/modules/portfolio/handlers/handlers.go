// Package handlers provides HTTP handlers for the position ledger.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Andre13Filho/FII-AI/internal/domain"
	"github.com/Andre13Filho/FII-AI/internal/modules/portfolio"
)

// Backuper uploads a ledger snapshot and returns the object key.
type Backuper interface {
	Backup(ctx context.Context) (string, error)
}

// Handler handles ledger HTTP requests
type Handler struct {
	ledger    *portfolio.Ledger
	prices    domain.PriceSource
	backup    Backuper
	validator *validator.Validate
	log       zerolog.Logger
}

// NewHandler creates a new ledger handler. backup may be nil when no bucket
// is configured.
func NewHandler(ledger *portfolio.Ledger, prices domain.PriceSource, backup Backuper, log zerolog.Logger) *Handler {
	return &Handler{
		ledger:    ledger,
		prices:    prices,
		backup:    backup,
		validator: validator.New(),
		log:       log.With().Str("handler", "ledger").Logger(),
	}
}

// BuyRequest is the body of POST /ledger/buy
type BuyRequest struct {
	Ticker    string  `json:"ticker" validate:"required,min=4,max=12"`
	Category  string  `json:"category" validate:"omitempty,oneof=cri shopping logistica escritorio renda_urbana fof"`
	UnitPrice float64 `json:"unit_price" validate:"gt=0"`
	Shares    int     `json:"shares" validate:"gt=0"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// SellRequest is the body of POST /ledger/sell
type SellRequest struct {
	Ticker    string  `json:"ticker" validate:"required,min=4,max=12"`
	UnitPrice float64 `json:"unit_price" validate:"gt=0"`
	Shares    int     `json:"shares" validate:"gt=0"`
	Date      string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// HandleGetPositions returns the open positions
func (h *Handler) HandleGetPositions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ledger.CurrentPositions())
}

// HandleGetSummary returns totals and percentage breakdowns
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ledger.Summary())
}

// HandleGetPerformance marks the open positions to current prices
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	prices := h.ledger.Prices(r.Context(), h.prices)
	h.writeJSON(w, http.StatusOK, h.ledger.Performance(prices))
}

// HandleGetHistory lists transactions, optionally for one ticker
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.ledger.History(r.URL.Query().Get("ticker")))
}

// HandleBuy records a purchase
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	var req BuyRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	position, err := h.ledger.RecordBuy(req.Ticker, domain.Category(req.Category), req.UnitPrice, req.Shares, date)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, position)
}

// HandleSell records a sale
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	var req SellRequest
	if !h.decode(w, r, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	position, err := h.ledger.RecordSell(req.Ticker, req.Shares, req.UnitPrice, date)
	if err != nil {
		h.writeLedgerError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, position)
}

// HandleBackup uploads a ledger snapshot to object storage
func (h *Handler) HandleBackup(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		h.writeError(w, http.StatusServiceUnavailable, "backup storage is not configured")
		return
	}

	key, err := h.backup.Backup(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Ledger backup failed")
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.log.Debug().Err(err).Msg("Ledger request validation failed")
		h.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// writeLedgerError maps ledger rejections to HTTP status codes.
func (h *Handler) writeLedgerError(w http.ResponseWriter, err error) {
	var verr *portfolio.ValidationError
	if !errors.As(err, &verr) {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch {
	case errors.Is(err, portfolio.ErrNoPosition):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, portfolio.ErrInsufficientShares):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
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
