package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/powchat/internal/config"
	"github.com/nfrund/powchat/internal/handlers"
	"github.com/nfrund/powchat/internal/hub"
	"github.com/nfrund/powchat/internal/metrics"
	appmiddleware "github.com/nfrund/powchat/internal/middleware"
	"github.com/nfrund/powchat/internal/pow"
	"github.com/nfrund/powchat/internal/presence"
	"github.com/nfrund/powchat/internal/pubsub"
	"github.com/nfrund/powchat/internal/relay"
	"github.com/nfrund/powchat/internal/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      *config.Config
	Hub      *hub.Hub
	Pool     *pow.SolverPool
	Bus      *pubsub.WatermillBridge
	Presence *presence.Service
	Relay    *relay.Relay

	registry *prometheus.Registry
	metrics  *metrics.Metrics

	// base outlives every request and is cancelled by Shutdown.
	base   context.Context
	cancel context.CancelFunc

	wsHandler         *websocket.Handler
	commitmentHandler *handlers.CommitmentHandler
	statsHandler      *handlers.StatsHandler
}

// New creates a new Server instance from cfg. Routes are registered by
// RegisterRoutes.
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine, err := pow.NewEngine(cfg.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	base, cancel := context.WithCancel(context.Background())

	bus := pubsub.NewWatermillBridge()
	presenceService, err := presence.NewService(base, bus)
	if err != nil {
		cancel()
		bus.Close()
		return nil, fmt.Errorf("starting presence service: %w", err)
	}

	h := hub.NewHub(cfg.Backlog, hub.WithDropHook(m.RecordDropped))
	pool := pow.NewSolverPool("solver", engine, cfg.SolverWorkers, cfg.SolverQueue, pow.WithObserver(m.RecordSolve))

	gate := relay.PassThrough
	if cfg.Gate == config.GateVerify {
		gate = relay.NewCommitmentGate(engine)
	}
	r := relay.New(h,
		relay.WithGate(gate),
		relay.WithEvents(bus),
		relay.WithRecorder(m),
		relay.WithWriteTimeout(cfg.WriteTimeout),
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	setupErrorHandling(e)

	return &Server{
		E:                 e,
		Cfg:               cfg,
		Hub:               h,
		Pool:              pool,
		Bus:               bus,
		Presence:          presenceService,
		Relay:             r,
		registry:          registry,
		metrics:           m,
		base:              base,
		cancel:            cancel,
		wsHandler:         websocket.NewHandler(base, r),
		commitmentHandler: handlers.NewCommitmentHandler(pool),
		statsHandler:      handlers.NewStatsHandler(h, pool, presenceService, cfg.Gate),
	}, nil
}
