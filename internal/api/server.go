package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/ledcontroller/internal/api/models"
	"github.com/smazurov/ledcontroller/internal/bridge"
	"github.com/smazurov/ledcontroller/internal/events"
	"github.com/smazurov/ledcontroller/internal/logging"
	"github.com/smazurov/ledcontroller/internal/version"
)

const shutdownTimeout = 5 * time.Second

// BridgeLister reports the currently bridged LEDs.
type BridgeLister interface {
	Bridges() []bridge.Info
	Len() int
}

// Options configures the status server.
type Options struct {
	Addr           string // listen address, e.g. ":8090"
	Bridges        BridgeLister
	EventBus       *events.Bus
	MetricsHandler http.Handler // served at /metrics when set
}

// Server is the read-only status API of the controller.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	bridges    BridgeLister
	eventBus   *events.Bus
	logger     *slog.Logger
}

// NewServer creates the status API on a Go 1.22+ ServeMux.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("LED Controller API", version.String())
	config.Info.Description = "Status of sysfs LEDs bridged onto the message bus"
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)
	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	server := newServer(api, opts)
	server.mux = mux
	server.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	server.registerRoutes()
	return server
}

func newServer(api huma.API, opts *Options) *Server {
	return &Server{
		api:      api,
		bridges:  opts.Bridges,
		eventBus: opts.EventBus,
		logger:   logging.GetLogger("api"),
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start serves until Stop. It returns nil after a clean shutdown, also when
// Stop ran first.
func (s *Server) Start() error {
	addr := s.httpServer.Addr
	s.logger.Info("Starting status API", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down. Open SSE streams are cut after a short grace period.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping status API")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
				Bridged: s.bridgedCount(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				BuildID:   info.BuildID,
				GoVersion: info.GoVersion,
				Compiler:  info.Compiler,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerLEDRoutes()
	s.registerLogRoutes()
	s.registerSSERoutes()
}

func (s *Server) bridgedCount() int {
	if s.bridges == nil {
		return 0
	}
	return s.bridges.Len()
}
