package model

import "github.com/haskel/studycost/internal/feature"

// ConstantModel predicts the same value for every record.
// Useful as a baseline and for smoke-testing a deployment.
type ConstantModel struct {
	base
	value float64
}

// NewConstantModel creates a constant model from the artifact intercept.
func NewConstantModel(a *Artifact) *ConstantModel {
	return &ConstantModel{
		base:  newBase(a),
		value: a.Intercept,
	}
}

// Predict returns the intercept once the record carries every model feature.
func (m *ConstantModel) Predict(rec feature.Record) (float64, error) {
	if err := m.require(rec); err != nil {
		return 0, err
	}
	return finite(m.value)
}
