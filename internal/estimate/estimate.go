// Package estimate turns submitted form fields into a cost prediction.
package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/haskel/studycost/internal/feature"
	"github.com/haskel/studycost/internal/model"
	"github.com/haskel/studycost/internal/session"
)

// NoImportanceNote is shown when the loaded model cannot explain itself.
const NoImportanceNote = "This model does not support feature importance."

// RangePolicy controls how out-of-range numeric input is handled.
type RangePolicy string

const (
	// PolicyClamp clamps numeric fields into their schema range.
	PolicyClamp RangePolicy = "clamp"
	// PolicyNone passes values through but rejects negatives.
	PolicyNone RangePolicy = "none"
)

// IsValid checks if the policy is known.
func (p RangePolicy) IsValid() bool {
	return p == PolicyClamp || p == PolicyNone
}

// Input is a set of submitted field values keyed by field name.
// Values are numbers, numeric strings, category strings or nil.
type Input map[string]any

// Result is a successful prediction.
type Result struct {
	Estimate       float64              `json:"estimate"`
	Formatted      string               `json:"formatted"`
	Record         feature.Record       `json:"record"`
	Importances    []feature.Importance `json:"importances,omitempty"`
	ImportanceNote string               `json:"importance_note,omitempty"`
}

// Snapshot converts the result into the pair a session stores.
func (r *Result) Snapshot() *session.Snapshot {
	return &session.Snapshot{
		Record:      r.Record,
		Estimate:    r.Estimate,
		Formatted:   r.Formatted,
		Importances: r.Importances,
		UpdatedAt:   time.Now(),
	}
}

// Recorder receives estimate outcomes. internal/metrics implements it.
type Recorder interface {
	ObserveEstimate(modelName string, d time.Duration)
	ObserveFailure(kind string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveEstimate(string, time.Duration) {}
func (noopRecorder) ObserveFailure(string)                 {}

// Estimator validates input, builds the record and calls the predictor once.
type Estimator struct {
	schema    *feature.Schema
	policy    RangePolicy
	logger    *slog.Logger
	recorder  Recorder
	predictor atomic.Pointer[predictorHolder]
}

type predictorHolder struct {
	p model.Predictor
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Estimator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// New creates an estimator. The predictor's features must match the schema.
func New(schema *feature.Schema, p model.Predictor, policy RangePolicy, logger *slog.Logger, opts ...Option) (*Estimator, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if policy == "" {
		policy = PolicyClamp
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("unknown range policy: %s", policy)
	}

	e := &Estimator{
		schema:   schema,
		policy:   policy,
		logger:   logger,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.SetPredictor(p); err != nil {
		return nil, err
	}
	return e, nil
}

// Schema returns the form schema.
func (e *Estimator) Schema() *feature.Schema {
	return e.schema
}

// Policy returns the range policy.
func (e *Estimator) Policy() RangePolicy {
	return e.policy
}

// Predictor returns the current predictor.
func (e *Estimator) Predictor() model.Predictor {
	return e.predictor.Load().p
}

// SetPredictor checks p against the schema and swaps it in atomically.
// In-flight estimates finish on the predictor they started with.
func (e *Estimator) SetPredictor(p model.Predictor) error {
	if p == nil {
		return fmt.Errorf("nil predictor")
	}
	if err := CheckCompatible(e.schema, p); err != nil {
		return err
	}
	e.predictor.Store(&predictorHolder{p: p})
	return nil
}

// CheckCompatible reports whether a predictor can serve records of schema.
func CheckCompatible(schema *feature.Schema, p model.Predictor) error {
	if v := p.SchemaVersion(); v != "" && v != schema.Version {
		return fmt.Errorf("model was exported for schema %s, configured schema is %s", v, schema.Version)
	}
	return schema.Matches(p.Features())
}

// Importances returns the current model's importances keyed by feature, if any.
func (e *Estimator) Importances() ([]feature.Importance, bool) {
	p := e.Predictor()
	imp, ok := model.Importances(p)
	if !ok {
		return nil, false
	}

	names := p.Features()
	out := make([]feature.Importance, len(names))
	for i, name := range names {
		out[i] = feature.Importance{Name: name, Weight: imp[i]}
	}
	return out, true
}

// Estimate validates in, predicts, and on success remembers the result in
// sess when one is given. Failures are *ValidationError or *InferenceError
// and leave the session untouched.
func (e *Estimator) Estimate(ctx context.Context, in Input, sess *session.Session) (*Result, error) {
	rec, err := e.Record(in)
	if err != nil {
		e.recorder.ObserveFailure(KindValidation)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := e.Predictor()
	start := time.Now()

	value, err := p.Predict(rec)
	if err != nil {
		e.recorder.ObserveFailure(KindInference)
		e.logger.Warn("inference failed", "model", p.Name(), "error", err)
		return nil, &InferenceError{Err: err}
	}
	e.recorder.ObserveEstimate(p.Name(), time.Since(start))

	if value < 0 {
		e.logger.Warn("model returned a negative cost, flooring at zero", "model", p.Name(), "value", value)
		value = 0
	}

	res := &Result{
		Estimate:  value,
		Formatted: FormatUSD(value),
		Record:    rec,
	}
	if imp, ok := e.Importances(); ok {
		res.Importances = imp
	} else {
		res.ImportanceNote = NoImportanceNote
	}

	if sess != nil {
		if err := sess.Remember(ctx, res.Snapshot()); err != nil {
			return nil, fmt.Errorf("failed to remember estimate: %w", err)
		}
	}

	e.logger.Debug("estimate completed", "model", p.Name(), "estimate", value)
	return res, nil
}

// Record validates in against the schema and builds a record in schema order.
func (e *Estimator) Record(in Input) (feature.Record, error) {
	verr := &ValidationError{}

	for name := range in {
		if _, ok := e.schema.Field(name); !ok {
			verr.invalid(name, "unknown field")
		}
	}

	rec := feature.Record{
		SchemaVersion: e.schema.Version,
		Entries:       make([]feature.Entry, 0, len(e.schema.Fields)),
	}

	for _, f := range e.schema.Fields {
		raw, ok := in[f.Name]
		if !ok || raw == nil {
			verr.Missing = append(verr.Missing, f.Name)
			continue
		}

		v, err := e.value(f, raw)
		if err != nil {
			if errors.Is(err, errBlank) {
				verr.Missing = append(verr.Missing, f.Name)
			} else {
				verr.invalid(f.Name, err.Error())
			}
			continue
		}
		rec.Entries = append(rec.Entries, feature.Entry{Name: f.Name, Value: v})
	}

	if !verr.empty() {
		return feature.Record{}, verr
	}
	return rec, nil
}

var errBlank = errors.New("blank")

func (e *Estimator) value(f feature.Field, raw any) (feature.Value, error) {
	if f.Kind == feature.KindCategorical {
		s, ok := raw.(string)
		if !ok {
			return feature.Value{}, fmt.Errorf("expected text, got %T", raw)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return feature.Value{}, errBlank
		}
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return feature.Value{}, fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
		}
		return feature.Cat(s), nil
	}

	n, err := number(raw)
	if err != nil {
		return feature.Value{}, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return feature.Value{}, fmt.Errorf("must be a finite number")
	}

	switch e.policy {
	case PolicyClamp:
		n = f.Clamp(n)
	case PolicyNone:
		if n < 0 {
			return feature.Value{}, fmt.Errorf("must not be negative")
		}
	}
	return feature.Num(n), nil
}

func number(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, errBlank
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", raw)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
