// Package api serves the optional control panel: board and display state,
// a soft button, live events over SSE and Prometheus metrics.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/smazurov/gpiosample/internal/api/models"
	"github.com/smazurov/gpiosample/internal/app"
	"github.com/smazurov/gpiosample/internal/board"
	"github.com/smazurov/gpiosample/internal/display"
	"github.com/smazurov/gpiosample/internal/events"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/reactor"
	"github.com/smazurov/gpiosample/internal/version"
	"github.com/smazurov/gpiosample/ui"
)

const authRealm = `Basic realm="gpiosample panel"`

// Controller is the part of the application the panel drives.
type Controller interface {
	Press() bool
	Release() bool
	State() app.State
	Board() (profile board.Profile, identity string, ok bool)
	Display() display.State
	LED() reactor.State
}

// Options configures the panel server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	Controller        Controller
	EventBus          *events.Bus
	PrometheusHandler http.Handler // Optional, served at /metrics without auth
	CORS              *CORSConfig  // Defaults to DefaultCORSConfig
}

// Server is the panel HTTP server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	logger     logging.Logger
}

// NewServer creates the panel API using Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	if opts.CORS != nil {
		corsConfig = *opts.CORS
	}
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("gpiosample panel", version.String())
	config.Info.Description = "User button and LED sample for ConnectCore boards"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()

	if panel, err := ui.Handler(); err == nil {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api") {
				http.NotFound(w, r)
				return
			}
			panel.ServeHTTP(w, r)
		})
	} else {
		server.logger.Warn("Panel page unavailable", "error", err)
	}

	return server
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// API returns the Huma API instance.
func (s *Server) API() huma.API {
	return s.api
}

// Start serves on addr until Stop. It returns http.ErrServerClosed after
// a normal Stop.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting panel server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Stop closes the listener and all connections, SSE streams included.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("Stopping panel server")
	return s.httpServer.Close()
}

func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	want := []byte(username + ":" + password)

	return func(ctx huma.Context, next func(huma.Context)) {
		// Operations without security requirements are public.
		if op := ctx.Operation(); op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		// EventSource cannot set headers, so SSE clients pass ?auth=.
		var encoded string
		if header := ctx.Header("Authorization"); header != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(header, prefix) {
				s.unauthorized(ctx, "Invalid authentication type")
				return
			}
			encoded = header[len(prefix):]
		} else {
			encoded = ctx.Query("auth")
		}

		if encoded == "" {
			s.unauthorized(ctx, "Authentication required")
			return
		}

		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || !strings.Contains(string(decoded), ":") {
			s.unauthorized(ctx, "Invalid credentials format")
			return
		}

		if subtle.ConstantTimeCompare(decoded, want) != 1 {
			s.unauthorized(ctx, "Invalid credentials")
			return
		}

		next(ctx)
	}
}

func (s *Server) unauthorized(ctx huma.Context, msg string) {
	ctx.SetHeader("WWW-Authenticate", authRealm)
	huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg)
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health and application lifecycle state",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		state := s.options.Controller.State()
		status, message := "ok", "Button sample is running"
		if state != app.StateRunning {
			status, message = "degraded", "Button sample is not running"
		}
		return &models.HealthResponse{
			Body: models.HealthData{Status: status, Message: message, State: string(state)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerPanelRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
}

// withAuth returns the basic auth security requirement.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}
