// Package httpapi exposes the intake assistant over HTTP. Channel adapters
// (Telegram gateways, web chat widgets) post normalized events to /v1/events
// and render the returned directive back to the user.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intakebot/pkg/config"
	"intakebot/pkg/dispatch"
	"intakebot/pkg/logx"
	"intakebot/pkg/metrics"
	"intakebot/pkg/persistence"
	"intakebot/pkg/proto"
	"intakebot/pkg/version"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
	maxEventBody      = 64 * 1024
	defaultListLimit  = 50
)

// Server is the HTTP front end for the intake pipeline.
type Server struct {
	dispatcher *dispatch.Dispatcher
	store      *persistence.Store
	query      *metrics.QueryService
	logger     *logx.Logger
	httpServer *http.Server
}

// NewServer creates an HTTP server bound to addr. The metrics query service
// is optional; when nil the stats endpoint reports database counts only.
func NewServer(addr string, dispatcher *dispatch.Dispatcher, store *persistence.Store, query *metrics.QueryService) *Server {
	s := &Server{
		dispatcher: dispatcher,
		store:      store,
		query:      query,
		logger:     logx.NewLogger("httpapi"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/v1/events", s.handleEvent)
		r.Get("/v1/submissions", s.handleSubmissions)
		r.Get("/v1/stats", s.handleStats)
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start begins serving and blocks until the listener fails or Stop is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully drains in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// requireAuth checks the bearer token against the configured API token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected, err := config.GetSecret(config.EnvAPIToken)
		if err != nil || expected == "" {
			s.logger.Error("API token not configured - denying access")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			s.logger.Warn("Failed authentication attempt from %s", r.RemoteAddr)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleEvent runs one normalized channel event through the dispatcher and
// returns the directive the adapter should render.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev proto.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid event payload"})
		return
	}
	if err := ev.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	directive := s.dispatcher.Dispatch(r.Context(), &ev)
	writeJSON(w, http.StatusOK, directive)
}

// handleSubmissions lists stored submissions, optionally filtered by status.
func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !validStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown status " + strconv.Quote(status) + ", expected one of: " +
				strings.Join(persistence.ValidStatuses(), ", "),
		})
		return
	}
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	subs, err := s.store.List(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("Failed to list submissions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list submissions"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"submissions": subs,
		"count":       len(subs),
	})
}

// statsResponse is the operator-facing snapshot of pipeline activity.
type statsResponse struct {
	Submissions int                 `json:"submissions"`
	Flow        *metrics.FlowTotals `json:"flow,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.logger.Error("Failed to count submissions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to count submissions"})
		return
	}

	resp := statsResponse{Submissions: count}
	if s.query != nil {
		totals, err := s.query.GetFlowTotals(r.Context())
		if err != nil {
			// Stats stay useful without Prometheus; log and return what we have.
			s.logger.Warn("Flow totals unavailable: %v", err)
		} else {
			resp.Flow = totals
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func validStatus(status string) bool {
	for _, s := range persistence.ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
