package artifact

import (
	"errors"
	"fmt"
	"math"
)

// Centroid assigns each row to the class of its nearest centroid. It has
// no confidence scoring.
type Centroid struct {
	Centroids [][]float64

	classes []int
}

// NewCentroid builds a validated nearest-centroid model.
func NewCentroid(classes []int, centroids [][]float64) (*Centroid, error) {
	m := &Centroid{Centroids: centroids}
	m.setClasses(classes)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Centroid) Kind() string             { return KindCentroid }
func (m *Centroid) Classes() []int           { return m.classes }
func (m *Centroid) NumFeatures() int         { return len(m.Centroids[0]) }
func (m *Centroid) setClasses(classes []int) { m.classes = append([]int(nil), classes...) }

func (m *Centroid) validate() error {
	if len(m.Centroids) == 0 || len(m.Centroids[0]) == 0 {
		return errors.New("no centroids")
	}
	if len(m.Centroids) != len(m.classes) {
		return fmt.Errorf("%d centroids for %d classes", len(m.Centroids), len(m.classes))
	}
	return sameWidth(m.Centroids, len(m.Centroids[0]))
}

// Classify returns the class of the closest centroid per row.
func (m *Centroid) Classify(x [][]float64) ([]int, error) {
	if err := checkBatch(x, m.NumFeatures()); err != nil {
		return nil, err
	}
	out := make([]int, len(x))
	for i, row := range x {
		best, bestDist := 0, math.Inf(1)
		for k, c := range m.Centroids {
			var d float64
			for j := range c {
				diff := row[j] - c[j]
				d += diff * diff
			}
			if d < bestDist {
				best, bestDist = k, d
			}
		}
		out[i] = m.classes[best]
	}
	return out, nil
}
