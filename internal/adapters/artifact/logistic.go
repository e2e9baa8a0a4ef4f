package artifact

import (
	"errors"
	"fmt"
)

// Logistic is a linear classifier. A binary model carries one coefficient
// row scored with the logistic function; a multinomial model carries one
// row per class scored with softmax.
type Logistic struct {
	Coef      [][]float64
	Intercept []float64

	classes []int
}

// NewLogistic builds a validated logistic model.
func NewLogistic(classes []int, coef [][]float64, intercept []float64) (*Logistic, error) {
	m := &Logistic{Coef: coef, Intercept: intercept}
	m.setClasses(classes)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Logistic) Kind() string             { return KindLogistic }
func (m *Logistic) Classes() []int           { return m.classes }
func (m *Logistic) NumFeatures() int         { return len(m.Coef[0]) }
func (m *Logistic) setClasses(classes []int) { m.classes = append([]int(nil), classes...) }

func (m *Logistic) validate() error {
	if len(m.Coef) == 0 || len(m.Coef[0]) == 0 {
		return errors.New("empty coefficient matrix")
	}
	if err := sameWidth(m.Coef, len(m.Coef[0])); err != nil {
		return err
	}
	if len(m.Intercept) != len(m.Coef) {
		return fmt.Errorf("%d intercepts for %d coefficient rows", len(m.Intercept), len(m.Coef))
	}
	switch {
	case len(m.Coef) == 1 && len(m.classes) == 2:
	case len(m.Coef) == len(m.classes) && len(m.Coef) > 2:
	default:
		return fmt.Errorf("%d coefficient rows cannot score %d classes", len(m.Coef), len(m.classes))
	}
	return nil
}

// Scores returns class probabilities per row.
func (m *Logistic) Scores(x [][]float64) ([][]float64, error) {
	if err := checkBatch(x, m.NumFeatures()); err != nil {
		return nil, err
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(m.Coef) == 1 {
			p := sigmoid(dot(m.Coef[0], row) + m.Intercept[0])
			out[i] = []float64{1 - p, p}
			continue
		}
		z := make([]float64, len(m.Coef))
		for k, w := range m.Coef {
			z[k] = dot(w, row) + m.Intercept[k]
		}
		softmax(z)
		out[i] = z
	}
	return out, nil
}

// Classify returns the most probable class per row.
func (m *Logistic) Classify(x [][]float64) ([]int, error) {
	rows, err := m.Scores(x)
	if err != nil {
		return nil, err
	}
	return labelsFor(rows, m.classes), nil
}
