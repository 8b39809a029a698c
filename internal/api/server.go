package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/fontsound-core/internal/bank"
	"github.com/nerrad567/fontsound-core/internal/fontsound"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/config"
	"github.com/nerrad567/fontsound-core/internal/infrastructure/logging"
	"github.com/nerrad567/fontsound-core/internal/observability/metrics"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	Logger *logging.Logger
	Device *fontsound.Device
	Banks  bank.Repository

	// Metrics and Gatherer are optional. Without a Gatherer /metrics is not
	// served.
	Metrics  *metrics.FontsoundMetrics
	Gatherer prometheus.Gatherer

	// WebSocket configures the event stream. Hub, if set, is used instead
	// of a server-owned hub; its owner runs it and registers it as a
	// device observer.
	WebSocket config.WebSocketConfig
	Hub       *Hub

	Version string
}

// Server is the HTTP API server for fontsoundd.
type Server struct {
	cfg      config.APIConfig
	logger   *logging.Logger
	device   *fontsound.Device
	banks    bank.Repository
	metrics  *metrics.FontsoundMetrics
	gatherer prometheus.Gatherer
	version  string
	server   *http.Server

	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc

	startTime time.Time
}

// New creates a new API server. It is not started until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Device == nil {
		return nil, fmt.Errorf("fontsound device is required")
	}
	if deps.Banks == nil {
		return nil, fmt.Errorf("bank repository is required")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		device:   deps.Device,
		banks:    deps.Banks,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		version:  deps.Version,

		startTime: time.Now(),
	}
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WebSocket, deps.Logger)
	}
	return s, nil
}

// Hub returns the WebSocket hub serving device events.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed handler with the full middleware stack.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start launches the HTTP listener in a background goroutine, and the
// WebSocket hub unless it was injected. The server is stopped with Close.
func (s *Server) Start(ctx context.Context) error {
	srvCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server listening", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close waits up to gracefulShutdownTimeout for in-flight requests, then
// closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if s.cancel != nil {
		s.cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck reports whether the server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

// record counts an operation outcome when metrics are configured.
func (s *Server) record(operation string, err error) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, err)
	}
}
