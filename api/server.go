// Package api - Thin HTTP layer over the estimate service.
// The API is only responsible for decoding requests, calling the service and
// encoding responses. It never performs cost logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"sitecost/core/estimate"
	"sitecost/core/output"
	"sitecost/internal/errors"
	"sitecost/internal/logging"
	"sitecost/internal/store"
)

const maxBodyBytes = 1 << 20

// EstimateStore persists reports
type EstimateStore interface {
	Save(ctx context.Context, report *output.Report) error
	Get(ctx context.Context, id string) (*output.Report, error)
	List(ctx context.Context, inputHash string, limit int) ([]store.Summary, error)
}

// Server is the API server
type Server struct {
	router  chi.Router
	service *estimate.Service
	store   EstimateStore
	version string
	logger  *zap.Logger
	audit   AuditLogger
}

// Option configures a Server
type Option func(*Server)

// WithStore enables saving and retrieving estimates
func WithStore(s EstimateStore) Option {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithLogger sets the request logger
func WithLogger(l *zap.Logger) Option {
	return func(srv *Server) {
		srv.logger = l
	}
}

// WithAuditLogger replaces the default zap audit trail
func WithAuditLogger(a AuditLogger) Option {
	return func(srv *Server) {
		srv.audit = a
	}
}

// NewServer creates a new API server
func NewServer(version string, service *estimate.Service, opts ...Option) *Server {
	s := &Server{
		service: service,
		version: version,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	if s.audit == nil {
		s.audit = NewZapAuditLogger(s.logger)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	// Core endpoints
	r.Post("/estimate", s.handleEstimate)
	r.Post("/convert", s.handleConvert)
	r.Get("/tables", s.handleTables)

	// Stored estimates
	r.Get("/estimates", s.handleListEstimates)
	r.Get("/estimates/{id}", s.handleGetEstimate)

	// Supporting endpoints
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)

	s.router = r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Parsing("invalid request body", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	errType := errors.TypeOf(err)
	if errType == "" {
		errType = errors.TypeInternal
	}
	status := statusFor(errType)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	message := err.Error()
	var e *errors.Error
	if errors.As(err, &e) {
		message = e.Message
		if e.Cause != nil && status == http.StatusBadRequest {
			message += ": " + e.Cause.Error()
		}
	}
	s.writeJSON(w, ErrorResponse{Error: ErrorDetail{Code: string(errType), Message: message}}, status)
}

func statusFor(t errors.Type) int {
	switch t {
	case errors.TypeTierMismatch, errors.TypeInvalidNumeric, errors.TypeInput, errors.TypeParsing:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
