package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/haskel/studycost/internal/feature"
)

var (
	// ErrUnknownCategory is returned when a categorical value was not seen during training.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrMissingFeature is returned when a record lacks a feature the model needs.
	ErrMissingFeature = errors.New("missing feature")
	// ErrNonFinite is returned when the model output is NaN or infinite.
	ErrNonFinite = errors.New("non-finite prediction")
)

// ModelType represents the type of a serialized model.
type ModelType string

const (
	ModelTypeConstant      ModelType = "constant"
	ModelTypeLinear        ModelType = "linear"
	ModelTypePolynomial    ModelType = "polynomial"
	ModelTypeGradientBoost ModelType = "gradient_boosting"
	ModelTypeRandomForest  ModelType = "random_forest"
)

// IsValid checks if the model type is valid.
func (m ModelType) IsValid() bool {
	switch m {
	case ModelTypeConstant, ModelTypeLinear, ModelTypePolynomial, ModelTypeGradientBoost, ModelTypeRandomForest:
		return true
	}
	return false
}

// String returns string representation.
func (m ModelType) String() string {
	return string(m)
}

// Predictor is a loaded, read-only regression model.
type Predictor interface {
	// Name returns the model type name.
	Name() string

	// Features returns the feature names in the order the model was fit on.
	Features() []string

	// SchemaVersion returns the schema version recorded in the artifact, if any.
	SchemaVersion() string

	// Predict evaluates the model on one record.
	// Fields are looked up by name, so record order does not matter.
	Predict(rec feature.Record) (float64, error)
}

// Explainer is implemented by models that can report feature importances.
// The returned slice is aligned with Features(); nil means not supported.
type Explainer interface {
	FeatureImportances() []float64
}

// Importances returns the model's feature importances when it supports them.
func Importances(p Predictor) ([]float64, bool) {
	e, ok := p.(Explainer)
	if !ok {
		return nil, false
	}
	imp := e.FeatureImportances()
	if len(imp) == 0 || len(imp) != len(p.Features()) {
		return nil, false
	}
	return imp, true
}

// base holds metadata shared by all models.
type base struct {
	modelType     ModelType
	features      []string
	schemaVersion string
	categories    map[string][]string
	importances   []float64
}

func newBase(a *Artifact) base {
	features := make([]string, len(a.Features))
	copy(features, a.Features)

	var imp []float64
	if len(a.FeatureImportances) > 0 {
		imp = normalize(a.FeatureImportances)
	}

	return base{
		modelType:     a.Type,
		features:      features,
		schemaVersion: a.SchemaVersion,
		categories:    a.Categories,
		importances:   imp,
	}
}

// Name returns the model name.
func (b *base) Name() string {
	return string(b.modelType)
}

// Features returns a copy of the feature list.
func (b *base) Features() []string {
	out := make([]string, len(b.features))
	copy(out, b.features)
	return out
}

// SchemaVersion returns the schema version the artifact was exported for.
func (b *base) SchemaVersion() string {
	return b.schemaVersion
}

// FeatureImportances returns normalized importances, or nil when the artifact has none.
func (b *base) FeatureImportances() []float64 {
	if b.importances == nil {
		return nil
	}
	out := make([]float64, len(b.importances))
	copy(out, b.importances)
	return out
}

// vector encodes a record into the model's column layout.
// Categorical values become their index in the training category list.
func (b *base) vector(rec feature.Record) ([]float64, error) {
	x := make([]float64, len(b.features))
	for i, name := range b.features {
		v, ok := rec.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}

		if v.Kind != feature.KindCategorical {
			x[i] = v.Number
			continue
		}

		code, err := b.encode(name, v.Text)
		if err != nil {
			return nil, err
		}
		x[i] = float64(code)
	}
	return x, nil
}

// require checks that every model feature is present in the record.
func (b *base) require(rec feature.Record) error {
	for _, name := range b.features {
		if _, ok := rec.Get(name); !ok {
			return fmt.Errorf("%w: %s", ErrMissingFeature, name)
		}
	}
	return nil
}

func (b *base) encode(name, value string) (int, error) {
	levels, ok := b.categories[name]
	if !ok {
		return 0, fmt.Errorf("feature %s is not categorical in this model", name)
	}
	for i, l := range levels {
		if l == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, name, value)
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNonFinite
	}
	return v, nil
}

// normalize scales values so they sum to 1. All-zero input is returned as zeros.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	if sum == 0 {
		return out
	}
	for i, v := range values {
		if v > 0 {
			out[i] = v / sum
		}
	}
	return out
}
