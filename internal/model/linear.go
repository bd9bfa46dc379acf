package model

import (
	"fmt"

	"github.com/haskel/studycost/internal/feature"
)

// additive evaluates intercept + sum of per-feature polynomial terms plus
// one-hot category weights. Linear and polynomial models share it.
type additive struct {
	base
	intercept float64
	coefs     map[string][]float64
	weights   map[string]map[string]float64
}

func newAdditive(a *Artifact, maxDegree int) (additive, error) {
	m := additive{
		base:      newBase(a),
		intercept: a.Intercept,
		coefs:     make(map[string][]float64, len(a.Features)),
		weights:   a.CategoryWeights,
	}

	for _, name := range a.Features {
		if _, categorical := a.Categories[name]; categorical {
			continue
		}
		if _, categorical := a.CategoryWeights[name]; categorical {
			continue
		}

		c, ok := a.Coefficients[name]
		if !ok || len(c) == 0 {
			return additive{}, fmt.Errorf("missing coefficients for feature %s", name)
		}
		if maxDegree > 0 && len(c) > maxDegree {
			return additive{}, fmt.Errorf("feature %s has %d coefficients, %s model allows %d",
				name, len(c), a.Type, maxDegree)
		}
		m.coefs[name] = append([]float64(nil), c...)
	}

	for name := range a.Coefficients {
		if !contains(a.Features, name) {
			return additive{}, fmt.Errorf("coefficients given for unknown feature %q", name)
		}
	}

	return m, nil
}

func (m *additive) predict(rec feature.Record) (float64, error) {
	sum := m.intercept

	for _, name := range m.features {
		v, ok := rec.Get(name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}

		if levels, categorical := m.weights[name]; categorical {
			if v.Kind != feature.KindCategorical {
				return 0, fmt.Errorf("feature %s expects a category", name)
			}
			w, known := levels[v.Text]
			if !known {
				// The dropped baseline level is listed in categories without a weight.
				if _, listed := m.categories[name]; !listed {
					return 0, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, name, v.Text)
				}
				if _, err := m.encode(name, v.Text); err != nil {
					return 0, err
				}
			}
			sum += w
			continue
		}

		if _, categorical := m.categories[name]; categorical {
			if _, err := m.encode(name, v.Text); err != nil {
				return 0, err
			}
			continue
		}

		sum += horner(m.coefs[name], v.Number)
	}

	return finite(sum)
}

// horner evaluates c[0]*x + c[1]*x^2 + ... + c[n-1]*x^n.
func horner(c []float64, x float64) float64 {
	var acc float64
	for i := len(c) - 1; i >= 0; i-- {
		acc = (acc + c[i]) * x
	}
	return acc
}

// LinearModel is an ordinary least squares model exported from training.
type LinearModel struct {
	additive
}

// NewLinearModel creates a linear model. Each numeric feature has exactly one coefficient.
func NewLinearModel(a *Artifact) (*LinearModel, error) {
	m, err := newAdditive(a, 1)
	if err != nil {
		return nil, err
	}
	return &LinearModel{additive: m}, nil
}

// Predict returns intercept + sum(coef * x).
func (m *LinearModel) Predict(rec feature.Record) (float64, error) {
	return m.predict(rec)
}

// Coefficient returns the slope for a numeric feature.
func (m *LinearModel) Coefficient(name string) (float64, bool) {
	c, ok := m.coefs[name]
	if !ok {
		return 0, false
	}
	return c[0], true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
