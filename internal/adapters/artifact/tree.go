package artifact

import (
	"errors"
	"fmt"
)

// Node is one decision tree node. Internal nodes send a row left when
// row[Feature] <= Threshold. Leaves have Left and Right set to -1 and
// carry per-class sample counts.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Counts    []float64
}

func (n Node) leaf() bool { return n.Left < 0 && n.Right < 0 }

// Tree is a binary decision tree stored as a flat node array with the
// root at index 0. Children always sit after their parent.
type Tree struct {
	Nodes     []Node
	NFeatures int

	classes []int
}

// NewTree builds a validated decision tree.
func NewTree(classes []int, width int, nodes []Node) (*Tree, error) {
	t := &Tree{Nodes: nodes, NFeatures: width}
	t.setClasses(classes)
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) Kind() string             { return KindTree }
func (t *Tree) Classes() []int           { return t.classes }
func (t *Tree) NumFeatures() int         { return t.NFeatures }
func (t *Tree) setClasses(classes []int) { t.classes = append([]int(nil), classes...) }

func (t *Tree) validate() error {
	if len(t.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	if t.NFeatures <= 0 {
		return fmt.Errorf("invalid feature width %d", t.NFeatures)
	}
	for i, n := range t.Nodes {
		if n.leaf() {
			if len(n.Counts) != len(t.classes) {
				return fmt.Errorf("leaf %d has %d counts for %d classes", i, len(n.Counts), len(t.classes))
			}
			var total float64
			for _, c := range n.Counts {
				if c < 0 {
					return fmt.Errorf("leaf %d has a negative count", i)
				}
				total += c
			}
			if total == 0 {
				return fmt.Errorf("leaf %d has no samples", i)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= t.NFeatures {
			return fmt.Errorf("node %d splits on feature %d outside [0,%d)", i, n.Feature, t.NFeatures)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

func (t *Tree) leafFor(row []float64) Node {
	idx := 0
	for {
		n := t.Nodes[idx]
		if n.leaf() {
			return n
		}
		if row[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
}

func (t *Tree) proba(row []float64) []float64 {
	counts := t.leafFor(row).Counts
	var total float64
	for _, c := range counts {
		total += c
	}
	p := make([]float64, len(counts))
	for i, c := range counts {
		p[i] = c / total
	}
	return p
}

// Scores returns the leaf class frequencies per row.
func (t *Tree) Scores(x [][]float64) ([][]float64, error) {
	if err := checkBatch(x, t.NFeatures); err != nil {
		return nil, err
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = t.proba(row)
	}
	return out, nil
}

// Classify returns the majority class of each row's leaf.
func (t *Tree) Classify(x [][]float64) ([]int, error) {
	rows, err := t.Scores(x)
	if err != nil {
		return nil, err
	}
	return labelsFor(rows, t.classes), nil
}
