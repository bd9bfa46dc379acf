package model

import (
	"fmt"

	"github.com/haskel/studycost/internal/feature"
)

// ensemble holds validated regression trees shared by boosting and forests.
type ensemble struct {
	base
	trees []Tree
}

func newEnsemble(a *Artifact) (ensemble, error) {
	if len(a.Trees) == 0 {
		return ensemble{}, fmt.Errorf("%s model has no trees", a.Type)
	}

	for i, t := range a.Trees {
		if err := validateTree(t, len(a.Features)); err != nil {
			return ensemble{}, fmt.Errorf("tree %d: %w", i, err)
		}
	}

	e := ensemble{
		base:  newBase(a),
		trees: a.Trees,
	}
	if e.importances == nil {
		e.importances = gainImportances(a.Trees, len(a.Features))
	}
	return e, nil
}

func validateTree(t Tree, nFeatures int) error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= nFeatures {
			return fmt.Errorf("node %d: feature index %d out of range", i, n.Feature)
		}
		if n.Left <= 0 || n.Left >= len(t.Nodes) || n.Right <= 0 || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d: child index out of range", i)
		}
	}
	return nil
}

// eval walks one tree. The walk is bounded by the node count so a malformed
// artifact with a cycle cannot loop forever.
func eval(t Tree, x []float64) (float64, error) {
	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}
		if x[n.Feature] <= n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("tree traversal did not reach a leaf")
}

// gainImportances sums split gains per feature. Returns nil when no split
// recorded a gain.
func gainImportances(trees []Tree, nFeatures int) []float64 {
	gains := make([]float64, nFeatures)
	var total float64
	for _, t := range trees {
		for _, n := range t.Nodes {
			if n.Leaf || n.Gain <= 0 {
				continue
			}
			gains[n.Feature] += n.Gain
			total += n.Gain
		}
	}
	if total == 0 {
		return nil
	}
	return normalize(gains)
}

// sum evaluates all trees on the record and returns the raw total.
func (e *ensemble) sum(rec feature.Record) (float64, error) {
	x, err := e.vector(rec)
	if err != nil {
		return 0, err
	}

	var total float64
	for i, t := range e.trees {
		v, err := eval(t, x)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		total += v
	}
	return total, nil
}

// TreeCount returns the number of trees in the ensemble.
func (e *ensemble) TreeCount() int {
	return len(e.trees)
}
