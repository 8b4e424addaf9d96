package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/powchat/internal/hub"
	"github.com/nfrund/powchat/internal/pow"
	"github.com/nfrund/powchat/internal/presence"
)

// StatsHandler reports relay state.
type StatsHandler struct {
	hub      *hub.Hub
	pool     *pow.SolverPool
	presence *presence.Service
	gate     string
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(h *hub.Hub, pool *pow.SolverPool, presenceService *presence.Service, gate string) *StatsHandler {
	return &StatsHandler{
		hub:      h,
		pool:     pool,
		presence: presenceService,
		gate:     gate,
	}
}

// GetStats returns hub, solver and presence statistics as JSON.
func (h *StatsHandler) GetStats(c echo.Context) error {
	peers := h.presence.Online()
	return c.JSON(http.StatusOK, StatsResponse{
		Difficulty: h.pool.Engine().Difficulty(),
		Gate:       h.gate,
		Online:     len(peers),
		Peers:      peers,
		Hub:        h.hub.Stats(),
		Solver:     h.pool.Stats(),
	})
}
