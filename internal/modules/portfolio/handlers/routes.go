package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all ledger routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/ledger", func(r chi.Router) {
		r.Get("/positions", h.HandleGetPositions)
		r.Get("/summary", h.HandleGetSummary)
		r.Get("/performance", h.HandleGetPerformance) // Marked to current prices
		r.Get("/history", h.HandleGetHistory)         // ?ticker= filters one fund

		r.Post("/buy", h.HandleBuy)
		r.Post("/sell", h.HandleSell)
		r.Post("/backup", h.HandleBackup)
	})
}
