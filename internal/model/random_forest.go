package model

import "github.com/haskel/studycost/internal/feature"

// RandomForestModel averages the predictions of its trees.
type RandomForestModel struct {
	ensemble
}

// NewRandomForestModel creates a random forest model from the artifact.
func NewRandomForestModel(a *Artifact) (*RandomForestModel, error) {
	e, err := newEnsemble(a)
	if err != nil {
		return nil, err
	}
	return &RandomForestModel{ensemble: e}, nil
}

// Predict returns the mean of all tree outputs.
func (m *RandomForestModel) Predict(rec feature.Record) (float64, error) {
	total, err := m.sum(rec)
	if err != nil {
		return 0, err
	}
	return finite(total / float64(len(m.trees)))
}
