package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/powchat/internal/metrics"
	"github.com/nfrund/powchat/internal/middleware"
)

// Solving is CPU-bound, so the API is rate limited per client IP.
const (
	apiRatePerSecond = 5
	apiBurst         = 20
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(apiRatePerSecond, apiBurst)

	s.E.GET("/ws", s.wsHandler.Handle)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	s.E.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	api := s.E.Group("/api")
	api.GET("/stats", s.statsHandler.GetStats)
	api.POST("/solve", s.commitmentHandler.SolvePost, rateLimiter)
	api.POST("/verify", s.commitmentHandler.VerifyPost, rateLimiter)
}
