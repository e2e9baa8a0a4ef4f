package artifact

import (
	"errors"
	"fmt"
)

// Forest averages the class probabilities of its trees.
type Forest struct {
	Trees []Tree

	classes []int
}

// NewForest builds a validated forest. Every tree must share the forest's
// classes and width.
func NewForest(classes []int, trees []Tree) (*Forest, error) {
	f := &Forest{Trees: trees}
	f.setClasses(classes)
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) Kind() string   { return KindForest }
func (f *Forest) Classes() []int { return f.classes }

func (f *Forest) NumFeatures() int { return f.Trees[0].NFeatures }

func (f *Forest) setClasses(classes []int) {
	f.classes = append([]int(nil), classes...)
	for i := range f.Trees {
		f.Trees[i].setClasses(classes)
	}
}

func (f *Forest) validate() error {
	if len(f.Trees) == 0 {
		return errors.New("forest has no trees")
	}
	width := f.Trees[0].NFeatures
	for i := range f.Trees {
		if err := f.Trees[i].validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		if f.Trees[i].NFeatures != width {
			return fmt.Errorf("tree %d has width %d, want %d", i, f.Trees[i].NFeatures, width)
		}
	}
	return nil
}

// Scores returns the mean tree probabilities per row.
func (f *Forest) Scores(x [][]float64) ([][]float64, error) {
	if err := checkBatch(x, f.NumFeatures()); err != nil {
		return nil, err
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		acc := make([]float64, len(f.classes))
		for j := range f.Trees {
			for k, p := range f.Trees[j].proba(row) {
				acc[k] += p
			}
		}
		for k := range acc {
			acc[k] /= float64(len(f.Trees))
		}
		out[i] = acc
	}
	return out, nil
}

// Classify returns the class with the highest mean probability per row.
func (f *Forest) Classify(x [][]float64) ([]int, error) {
	rows, err := f.Scores(x)
	if err != nil {
		return nil, err
	}
	return labelsFor(rows, f.classes), nil
}
