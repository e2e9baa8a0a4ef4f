package artifact

import (
	"errors"
	"fmt"
	"math"
)

var errEmptyBatch = errors.New("empty input batch")

// checkBatch rejects batches whose rows do not have the trained width.
func checkBatch(x [][]float64, width int) error {
	if len(x) == 0 {
		return errEmptyBatch
	}
	for _, row := range x {
		if len(row) != width {
			return fmt.Errorf("X has %d features, but model is expecting %d features as input", len(row), width)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.New("input contains NaN or infinity")
			}
		}
	}
	return nil
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softmax normalises z in place.
func softmax(z []float64) {
	peak := z[argmax(z)]
	var sum float64
	for i, v := range z {
		z[i] = math.Exp(v - peak)
		sum += z[i]
	}
	for i := range z {
		z[i] /= sum
	}
}

// labelsFor maps each probability row to the class with the highest score.
func labelsFor(rows [][]float64, classes []int) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		out[i] = classes[argmax(row)]
	}
	return out
}

func sameWidth(rows [][]float64, width int) error {
	for i, r := range rows {
		if len(r) != width {
			return fmt.Errorf("row %d has width %d, want %d", i, len(r), width)
		}
	}
	return nil
}
