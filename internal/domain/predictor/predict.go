package predictor

import (
	"fmt"
	"math"

	"github.com/okian/diabetes-predictor/internal/domain/features"
)

// Result is the outcome of one prediction. Probability is nil when the
// loaded model has no confidence scoring.
type Result struct {
	Prediction  int       `json:"prediction"`
	Probability []float64 `json:"probability"`
}

// Predict runs one request through the handle's classifier. It fails with
// ErrUnavailable before touching the request when no model is loaded, and
// with ErrPredictionFailed when the model errors or panics.
func Predict(h *Handle, req features.Request) (Result, error) {
	if !h.Available() {
		return Result{}, unavailable(reason(h))
	}
	return h.run(req.Matrix())
}

func (h *Handle) run(x [][]float64) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, failed(fmt.Sprint(r))
		}
	}()

	labels, err := h.classifier.Classify(x)
	if err != nil {
		return Result{}, failed(err.Error())
	}
	if len(labels) == 0 {
		return Result{}, failed("classifier returned no labels")
	}
	res.Prediction = labels[0]

	if h.scorer == nil {
		return res, nil
	}
	rows, err := h.scorer.Scores(x)
	if err != nil {
		return Result{}, failed(err.Error())
	}
	if len(rows) == 0 {
		return Result{}, failed("scorer returned no rows")
	}
	if d, ok := h.classifier.(Describer); ok && len(d.Classes()) > 0 && len(rows[0]) != len(d.Classes()) {
		return Result{}, failed(fmt.Sprintf("scorer returned %d probabilities for %d classes", len(rows[0]), len(d.Classes())))
	}
	for i, p := range rows[0] {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Result{}, failed(fmt.Sprintf("non-finite probability %v for class index %d", p, i))
		}
	}
	res.Probability = append([]float64(nil), rows[0]...)
	return res, nil
}
