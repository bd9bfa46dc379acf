package model

import "fmt"

// New creates a predictor from a decoded artifact.
func New(a *Artifact) (Predictor, error) {
	if a == nil {
		return nil, fmt.Errorf("nil model artifact")
	}
	if a.Version == 0 {
		a.Version = CurrentArtifactVersion
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	var (
		p   Predictor
		err error
	)

	switch a.Type {
	case ModelTypeConstant:
		p = NewConstantModel(a)

	case ModelTypeLinear:
		p, err = asPredictor(NewLinearModel(a))

	case ModelTypePolynomial:
		p, err = asPredictor(NewPolynomialModel(a))

	case ModelTypeGradientBoost:
		p, err = asPredictor(NewGradientBoostModel(a))

	case ModelTypeRandomForest:
		p, err = asPredictor(NewRandomForestModel(a))

	default:
		return nil, fmt.Errorf("unknown model type: %s", a.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("invalid %s model: %w", a.Type, err)
	}
	return p, nil
}

// asPredictor drops typed nil pointers so failed constructors yield a nil interface.
func asPredictor[T Predictor](m T, err error) (Predictor, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}
