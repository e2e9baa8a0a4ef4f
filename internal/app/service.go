// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/okian/diabetes-predictor/internal/adapters/artifact"
	"github.com/okian/diabetes-predictor/internal/domain/features"
	"github.com/okian/diabetes-predictor/internal/domain/predictor"
	"github.com/okian/diabetes-predictor/pkg/logger"
	"github.com/okian/diabetes-predictor/pkg/metrics"
)

// Loader reads a classifier from path.
type Loader func(ctx context.Context, path string) (predictor.Classifier, error)

// artifactLoader is the default Loader backed by the artifact codec.
func artifactLoader(ctx context.Context, path string) (predictor.Classifier, error) {
	m, err := artifact.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Service owns the loaded model handle and serves predictions from it.
type Service struct {
	mu sync.RWMutex

	handle    *predictor.Handle
	modelPath string
	loader    Loader

	started bool
	stopped bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets the artifact path loaded by Start.
func WithModelPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.modelPath = path
		}
	}
}

// WithLoader replaces the artifact loader, e.g. with a stub in tests.
func WithLoader(l Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration. The model is
// not loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath: "model/model.gob",
		loader:    artifactLoader,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.handle = predictor.Unavailable(errNotStarted, s.modelPath)
	return s
}

// Start loads the model once. A failed load leaves the service running in
// degraded mode with the failure recorded on the handle; Start itself only
// fails when called twice or after Stop. A stopped service is never
// reloaded.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	if s.stopped {
		return errStopped
	}

	s.handle = s.load(ctx)
	s.started = true
	return nil
}

func (s *Service) load(ctx context.Context) *predictor.Handle {
	path := s.modelPath
	c, err := s.loader(ctx, path)
	if err != nil {
		metrics.RecordModelLoad(loadResult(err))
		s.logger.Warn(ctx, "model unavailable; serving in degraded mode",
			logger.String("path", path), logger.Error(err))
		return predictor.Unavailable(err, path)
	}

	h, err := predictor.NewHandle(c, path)
	if err != nil {
		metrics.RecordModelLoad(loadResult(err))
		s.logger.Warn(ctx, "model rejected; serving in degraded mode",
			logger.String("path", path), logger.Error(err))
		return predictor.Unavailable(err, path)
	}

	metrics.RecordModelLoad(metrics.LoadOK)
	st := h.Status()
	s.logger.Info(ctx, "model loaded",
		logger.String("path", path),
		logger.String("kind", st.Kind),
		logger.Any("classes", st.Classes),
		logger.Bool("probabilities", st.Probabilities),
	)
	return h
}

func loadResult(err error) string {
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		return metrics.LoadNotFound
	case errors.Is(err, predictor.ErrShapeMismatch):
		return metrics.LoadShape
	default:
		return metrics.LoadDecode
	}
}

// Stop releases the loaded model. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.handle = predictor.Unavailable(errStopped, s.modelPath)
	s.started = false
	s.stopped = true
	metrics.SetModelLoaded(false)
	s.logger.Info(context.Background(), "model released", logger.String("path", s.modelPath))
}

// Handle returns the current model handle. The handle is immutable.
func (s *Service) Handle() *predictor.Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// Predict serves one prediction from the current handle.
func (s *Service) Predict(_ context.Context, req features.Request) (predictor.Result, error) {
	h := s.Handle()

	start := time.Now()
	res, err := predictor.Predict(h, req)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000

	switch {
	case err == nil:
		metrics.RecordPrediction(metrics.OutcomeOK, latencyMs)
		metrics.RecordPredictedClass(res.Prediction)
	case errors.Is(err, predictor.ErrUnavailable):
		metrics.RecordPrediction(metrics.OutcomeUnavailable, 0)
	default:
		metrics.RecordPrediction(metrics.OutcomeFailed, latencyMs)
	}
	return res, err
}

// Status describes the current model handle.
func (s *Service) Status(_ context.Context) predictor.Status {
	return s.Handle().Status()
}

// Started reports whether Start has run and Stop has not.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
