package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/powchat/internal/domain"
	"github.com/nfrund/powchat/internal/middleware"
	"github.com/nfrund/powchat/internal/pow"
)

// maxCommitmentBody bounds the verify request body.
const maxCommitmentBody = 64 << 10

// CommitmentHandler exposes solving and verification over HTTP.
type CommitmentHandler struct {
	pool *pow.SolverPool
}

// NewCommitmentHandler creates a new CommitmentHandler.
func NewCommitmentHandler(pool *pow.SolverPool) *CommitmentHandler {
	return &CommitmentHandler{pool: pool}
}

// SolvePost solves a commitment for the posted message on the solver pool.
// The search is abandoned if the client goes away.
func (h *CommitmentHandler) SolvePost(c echo.Context) error {
	var req SolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: "malformed request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "validation_failed", Message: err.Error()})
	}

	engine := h.pool.Engine()
	if req.Difficulty != nil {
		var err error
		if engine, err = pow.NewEngine(*req.Difficulty); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "difficulty_out_of_range", Message: err.Error()})
		}
	}

	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	commitment, err := h.pool.SolveWith(ctx, engine, pow.NewChatMessage(req.Message, req.Sender))
	switch {
	case errors.Is(err, domain.ErrSolverQueueFull), errors.Is(err, domain.ErrSolverClosed):
		logger.Warn("Solve request refused", "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "solver_unavailable", Message: err.Error()})
	case err != nil:
		return err
	}

	logger.Info("Commitment solved", "sender", req.Sender, "nonce", commitment.Nonce, "difficulty", commitment.Difficulty)
	return c.JSON(http.StatusOK, commitment)
}

// VerifyPost checks a serialized commitment. A structurally invalid body is
// a 400; a well-formed commitment whose proof fails is a 200 with
// valid=false.
func (h *CommitmentHandler) VerifyPost(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCommitmentBody))
	if err != nil {
		return err
	}

	commitment, err := pow.ParseCommitment(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Code: "invalid_commitment", Message: err.Error()})
	}

	return c.JSON(http.StatusOK, VerifyResponse{
		Valid: pow.Verify(commitment),
		Hash:  commitment.Hash,
	})
}
