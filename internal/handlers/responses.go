package handlers

import (
	"github.com/nfrund/powchat/internal/hub"
	"github.com/nfrund/powchat/internal/pow"
	"github.com/nfrund/powchat/internal/presence"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// VerifyResponse reports the outcome of verifying a commitment.
type VerifyResponse struct {
	Valid bool   `json:"valid"`
	Hash  string `json:"hash"`
}

// StatsResponse is the DTO for the stats endpoint.
type StatsResponse struct {
	Difficulty uint8               `json:"difficulty"`
	Gate       string              `json:"gate"`
	Online     int                 `json:"online"`
	Peers      []presence.Presence `json:"peers"`
	Hub        hub.Stats           `json:"hub"`
	Solver     pow.PoolStats       `json:"solver"`
}
