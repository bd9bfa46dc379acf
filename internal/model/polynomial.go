package model

import "github.com/haskel/studycost/internal/feature"

// PolynomialModel is an additive polynomial regression without interaction terms.
// Coefficients for a feature are ordered by ascending power, starting at x^1.
type PolynomialModel struct {
	additive
	degree int
}

// NewPolynomialModel creates a polynomial model from the artifact.
func NewPolynomialModel(a *Artifact) (*PolynomialModel, error) {
	m, err := newAdditive(a, 0)
	if err != nil {
		return nil, err
	}

	degree := 1
	for _, c := range m.coefs {
		if len(c) > degree {
			degree = len(c)
		}
	}

	return &PolynomialModel{additive: m, degree: degree}, nil
}

// Degree returns the highest power used by any feature.
func (m *PolynomialModel) Degree() int {
	return m.degree
}

// Predict returns intercept + sum over features of sum_k coef_k * x^(k+1).
func (m *PolynomialModel) Predict(rec feature.Record) (float64, error) {
	return m.predict(rec)
}
