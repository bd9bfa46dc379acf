package model

import (
	"fmt"

	"github.com/haskel/studycost/internal/feature"
)

// GradientBoostModel evaluates an exported gradient boosted tree ensemble:
// base_score + learning_rate * sum(tree(x)).
type GradientBoostModel struct {
	ensemble
	baseScore    float64
	learningRate float64
}

// NewGradientBoostModel creates a gradient boosting model from the artifact.
// A zero learning rate is treated as 1, matching exporters that pre-scale leaves.
func NewGradientBoostModel(a *Artifact) (*GradientBoostModel, error) {
	e, err := newEnsemble(a)
	if err != nil {
		return nil, err
	}

	lr := a.LearningRate
	if lr < 0 {
		return nil, fmt.Errorf("negative learning rate: %v", lr)
	}
	if lr == 0 {
		lr = 1
	}

	return &GradientBoostModel{
		ensemble:     e,
		baseScore:    a.BaseScore,
		learningRate: lr,
	}, nil
}

// Predict returns the boosted prediction.
func (m *GradientBoostModel) Predict(rec feature.Record) (float64, error) {
	total, err := m.sum(rec)
	if err != nil {
		return 0, err
	}
	return finite(m.baseScore + m.learningRate*total)
}
