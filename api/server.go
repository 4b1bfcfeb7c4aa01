package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"weather-viewer/collector"
	"weather-viewer/datasource"
	"weather-viewer/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Display states reported by GET /api/forecast
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateEmpty   = "empty"
	StateError   = "error"
)

// Refresher runs a forecast refresh on demand
type Refresher interface {
	Refresh(ctx context.Context) (models.ViewModel, error)
}

// ForecastResponse is the body of the forecast endpoints
type ForecastResponse struct {
	State   string            `json:"state"`
	FetchID string            `json:"fetchId,omitempty"`
	Updated *time.Time        `json:"updated,omitempty"`
	View    *models.ViewModel `json:"view,omitempty"`
	Error   *ErrorBody        `json:"error,omitempty"`
}

// ErrorBody describes a failed fetch to the client
type ErrorBody struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Server represents the API server
type Server struct {
	store     *ForecastStore
	refresher Refresher
	logger    *zap.SugaredLogger
	server    *http.Server
}

// NewServer creates a new API server
func NewServer(store *ForecastStore, refresher Refresher, port int, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Server{
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(s.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Get("/api/forecast", s.handleGetForecast)
	router.Post("/api/forecast/refresh", s.handleRefresh)
	router.Get("/api/health", s.handleHealthCheck)
	return router
}

// Start begins the API server
func (s *Server) Start() error {
	s.logger.Infow("Starting API server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleGetForecast returns the latest view model, or the loading / error state
func (s *Server) handleGetForecast(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.describe(s.store.Snapshot()))
}

// handleRefresh runs a refresh and returns its outcome
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if _, err := s.refresher.Refresh(r.Context()); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, collector.ErrSuperseded) {
			status = http.StatusConflict
		}
		s.writeJSON(w, status, ForecastResponse{
			State: StateError,
			Error: errorBody(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, s.describe(s.store.Snapshot()))
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) describe(snap Snapshot) ForecastResponse {
	if !snap.Ready() {
		if snap.LastError != nil {
			return ForecastResponse{State: StateError, Error: errorBody(snap.LastError)}
		}
		return ForecastResponse{State: StateLoading}
	}

	view := snap.View
	updated := snap.Updated
	resp := ForecastResponse{
		State:   StateReady,
		FetchID: snap.FetchID,
		Updated: &updated,
		View:    &view,
	}
	if !view.HasData() {
		resp.State = StateEmpty
	}
	return resp
}

func errorBody(err error) *ErrorBody {
	return &ErrorBody{
		Kind:    string(datasource.KindOf(err)),
		Message: "Couldn't load forecast: " + err.Error(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorw("Failed to write response", "status", status, "error", err)
	}
}
