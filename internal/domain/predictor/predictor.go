// Package predictor holds the loaded model handle and the prediction
// algorithm that runs against it.
package predictor

import (
	"fmt"
	"time"

	"github.com/okian/diabetes-predictor/internal/domain/features"
)

// Classifier maps a batch of feature rows to one class label per row.
type Classifier interface {
	Classify(x [][]float64) ([]int, error)
}

// Scorer is the optional confidence extension of a Classifier. Each row of
// the result is a probability per class, aligned to the classifier's class
// order.
type Scorer interface {
	Scores(x [][]float64) ([][]float64, error)
}

// Shaped is implemented by classifiers that know their input width.
type Shaped interface {
	NumFeatures() int
}

// Describer is implemented by classifiers that can report what they are.
type Describer interface {
	Kind() string
	Classes() []int
}

// Handle is the immutable result of a model load. A Handle either holds a
// classifier or the reason no classifier could be loaded.
type Handle struct {
	classifier Classifier
	scorer     Scorer
	loadErr    error
	source     string
	loadedAt   time.Time
}

// NewHandle wraps c after checking its input width against the feature
// contract. The Scorer capability is probed here, once.
func NewHandle(c Classifier, source string) (*Handle, error) {
	if c == nil {
		return nil, fmt.Errorf("nil classifier from %s", source)
	}
	if s, ok := c.(Shaped); ok && s.NumFeatures() != features.Width {
		return nil, fmt.Errorf("%w: model expects %d features, request carries %d",
			ErrShapeMismatch, s.NumFeatures(), features.Width)
	}
	h := &Handle{classifier: c, source: source, loadedAt: time.Now().UTC()}
	if s, ok := c.(Scorer); ok {
		h.scorer = s
	}
	return h, nil
}

// Unavailable returns a Handle recording why no model is loaded.
func Unavailable(err error, source string) *Handle {
	return &Handle{loadErr: err, source: source}
}

// Available reports whether a classifier is loaded.
func (h *Handle) Available() bool {
	return h != nil && h.classifier != nil
}

// Err returns the load failure, if any.
func (h *Handle) Err() error {
	if h == nil {
		return nil
	}
	return h.loadErr
}

// HasScores reports whether predictions will carry probabilities.
func (h *Handle) HasScores() bool {
	return h.Available() && h.scorer != nil
}

// Source returns the artifact path the handle was built from.
func (h *Handle) Source() string {
	if h == nil {
		return ""
	}
	return h.source
}

// Status is a read-only description of a Handle.
type Status struct {
	Loaded        bool       `json:"loaded"`
	Kind          string     `json:"kind,omitempty"`
	Classes       []int      `json:"classes,omitempty"`
	Features      int        `json:"features,omitempty"`
	Probabilities bool       `json:"probabilities"`
	Source        string     `json:"source,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// Status describes the handle for diagnostics.
func (h *Handle) Status() Status {
	st := Status{Source: h.Source()}
	if !h.Available() {
		st.Error = reason(h)
		return st
	}
	st.Loaded = true
	st.Probabilities = h.scorer != nil
	st.Features = features.Width
	if s, ok := h.classifier.(Shaped); ok {
		st.Features = s.NumFeatures()
	}
	if d, ok := h.classifier.(Describer); ok {
		st.Kind = d.Kind()
		st.Classes = append([]int(nil), d.Classes()...)
	}
	at := h.loadedAt
	st.LoadedAt = &at
	return st
}

func reason(h *Handle) string {
	if err := h.Err(); err != nil {
		return err.Error()
	}
	return "unknown"
}
