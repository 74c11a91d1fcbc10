// Package api provides the HTTP server for the nearlink registry.
// It wraps the discovery service in a JSON-over-HTTP surface; the
// peer-to-peer transport itself is out of scope and handled by clients.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/nearlink-net/nearlink/internal/discovery"
	"github.com/nearlink-net/nearlink/internal/domain"
)

// Server is the nearlink HTTP API server.
type Server struct {
	svc            *discovery.Service
	log            *logrus.Logger
	metricsEnabled bool
	instanceID     string
	startedAt      time.Time
}

// NewServer creates a new API server around the discovery service.
func NewServer(svc *discovery.Service, log *logrus.Logger) *Server {
	return &Server{
		svc:        svc,
		log:        log,
		instanceID: uuid.NewString(),
		startedAt:  time.Now(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Get("/peers/{peerID}/nearby", s.handleNearby)
		r.Post("/peers/{peerID}/heartbeat", s.handleHeartbeat)
		r.Post("/peers/{peerID}/status", s.handleStatus)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the domain error code so
// clients can surface the specific rejection reason.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatus(err), map[string]interface{}{
		"error": map[string]interface{}{
			"code":    domain.Code(err),
			"message": err.Error(),
		},
	})
}

// errorStatus maps domain errors onto HTTP status codes. Everything in
// the registry's taxonomy is a validation or not-found condition.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrPeerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidPeerID),
		errors.Is(err, domain.ErrMissingUsername),
		errors.Is(err, domain.ErrUsernameLength),
		errors.Is(err, domain.ErrUsernameChars),
		errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrInvalidAvatar),
		errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// corsMiddleware adds CORS headers so browser clients on other origins
// can talk to the registry.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
