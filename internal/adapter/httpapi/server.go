// Package httpapi exposes the forecast service over HTTP: health,
// readiness, and metrics endpoints alongside the JSON API for regions,
// stations, and on-demand predictions.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marinecast/wave-forecast/internal/alert"
	"github.com/marinecast/wave-forecast/internal/forecast"
)

// Forecaster is the service surface the API needs.
type Forecaster interface {
	Forecast(ctx context.Context, stationID string, thresholdM float64) (forecast.Result, alert.Event, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the forecast API plus health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	svc        Forecaster
	locator    forecast.StationLocator
	threshold  float64
	validate   *validator.Validate
	logger     *slog.Logger
}

// NewServer builds the router. thresholdM is the default alert threshold
// applied when a predict request does not carry its own.
func NewServer(addr string, svc Forecaster, locator forecast.StationLocator, thresholdM float64, logger *slog.Logger) *Server {
	s := &Server{
		svc:       svc,
		locator:   locator,
		threshold: thresholdM,
		validate:  validator.New(),
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.handleRegions)
		r.Get("/stations", s.handleStations)
		r.Get("/stations/{id}", s.handleStation)
		r.Post("/predict", s.handlePredict)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"regions": forecast.Regions()})
}

// handleStations lists known stations, optionally filtered to a region.
func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	box := forecast.BBox{MinLon: -180, MinLat: -90, MaxLon: 180, MaxLat: 90}
	if key := r.URL.Query().Get("region"); key != "" {
		region, ok := forecast.RegionByKey(key)
		if !ok {
			writeError(w, http.StatusNotFound, "unknown region: "+key)
			return
		}
		box = region.BBox
	}

	stations, err := s.locator.WithinBBox(r.Context(), box)
	if err != nil {
		s.logger.Error("station lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "station lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": stations})
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	station, err := s.locator.Locate(r.Context(), id)
	if err != nil {
		if errors.Is(err, forecast.ErrUnknownStation) {
			writeError(w, http.StatusNotFound, "unknown station: "+id)
			return
		}
		s.logger.Error("station lookup failed", "station_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "station lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, station)
}

type predictRequest struct {
	StationID  string  `json:"station_id" validate:"required"`
	ThresholdM float64 `json:"threshold_m" validate:"omitempty,gt=0"`
}

type predictResponse struct {
	Forecast forecast.Result `json:"forecast"`
	Alert    alert.Event     `json:"alert"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	threshold := req.ThresholdM
	if threshold == 0 {
		threshold = s.threshold
	}

	result, ev, err := s.svc.Forecast(r.Context(), req.StationID, threshold)
	if err != nil {
		if errors.Is(err, forecast.ErrUnknownStation) {
			writeError(w, http.StatusNotFound, "unknown station: "+req.StationID)
			return
		}
		s.logger.Error("prediction failed", "station_id", req.StationID, "error", err)
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{Forecast: result, Alert: ev})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
