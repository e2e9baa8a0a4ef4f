// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/diabetes-predictor/internal/domain/features"
	"github.com/okian/diabetes-predictor/internal/domain/predictor"
	"github.com/okian/diabetes-predictor/pkg/logger"
)

// defaultMaxBodyBytes caps POST /predict bodies when no limit is configured.
const defaultMaxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictDependencies
	StatusProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statusHandler  *StatusHandler
	predictHandler *PredictHandler
	logger         logger.Logger
}

// ServerOption configures a Server.
type ServerOption func(*serverOptions)

type serverOptions struct {
	maxBodyBytes int64
	logger       logger.Logger
}

// WithMaxBodyBytes caps the size of prediction request bodies.
func WithMaxBodyBytes(n int64) ServerOption {
	return func(o *serverOptions) {
		if n > 0 {
			o.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by middleware and handlers.
func WithLogger(l logger.Logger) ServerOption {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	o := serverOptions{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statusHandler:  NewStatusHandler(deps),
		predictHandler: NewPredictHandler(deps, o.maxBodyBytes, o.logger),
		logger:         o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", s.route("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("/status", s.route("status", s.statusHandler.HandleStatus))
	mux.HandleFunc("/predict", s.route("predict", s.predictHandler.HandlePredict))
}

// route applies the shared middleware chain to h.
func (s *Server) route(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return RequestIDMiddleware(
		RecoverMiddleware(s.logger,
			MetricsMiddleware(
				AccessLogMiddleware(s.logger, h, endpoint),
				endpoint,
			),
		),
	)
}

// Request and Result mirror the domain shapes returned over the wire.
type (
	Request = features.Request
	Result  = predictor.Result
)

type errorResponse struct {
	Detail string `json:"detail"`
}

// encodeFailureBody is sent when a response value cannot be encoded.
const encodeFailureBody = `{"detail":"Internal Server Error"}` + "\n"

// writeJSON encodes v before the status goes out, so an unencodable value
// becomes a 500 instead of a truncated 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, encodeFailureBody)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, detail string) {
	if detail == "" {
		detail = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
