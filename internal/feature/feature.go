package feature

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the value type of a field.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// IsValid checks if the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindNumeric, KindCategorical:
		return true
	}
	return false
}

// Field describes one model input.
type Field struct {
	Name    string   `yaml:"name" json:"name"`
	Label   string   `yaml:"label,omitempty" json:"label"`
	Kind    Kind     `yaml:"kind" json:"kind"`
	Min     float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max     float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// DisplayLabel returns the label shown on forms.
// Falls back to the field name with underscores replaced by spaces.
func (f Field) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return strings.ReplaceAll(f.Name, "_", " ")
}

// HasRange reports whether the field declares a [min, max] range. A field
// with min == max is pinned to that value; 0/0 means no range.
func (f Field) HasRange() bool {
	return f.Kind == KindNumeric && f.Max >= f.Min && (f.Min != 0 || f.Max != 0)
}

// Clamp limits v to the field range. Fields without a range only drop negatives.
func (f Field) Clamp(v float64) float64 {
	if !f.HasRange() {
		if v < 0 {
			return 0
		}
		return v
	}
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Schema is a versioned, ordered list of fields shared by the form and the model adapter.
type Schema struct {
	Version string  `yaml:"version" json:"version"`
	Fields  []Field `yaml:"fields" json:"fields"`
}

// Names returns field names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks the schema definition itself.
func (s *Schema) Validate() error {
	if s.Version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}

	var errs []error
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			errs = append(errs, fmt.Errorf("fields[%d]: name cannot be empty", i))
			continue
		}
		if seen[f.Name] {
			errs = append(errs, fmt.Errorf("fields[%d]: duplicate name %q", i, f.Name))
		}
		seen[f.Name] = true

		if !f.Kind.IsValid() {
			errs = append(errs, fmt.Errorf("%s: invalid kind %q (valid: numeric, categorical)", f.Name, f.Kind))
		}
		if f.Kind == KindNumeric && f.Min > f.Max {
			errs = append(errs, fmt.Errorf("%s: min %.2f is greater than max %.2f", f.Name, f.Min, f.Max))
		}
		if f.Kind == KindNumeric && f.Min < 0 {
			errs = append(errs, fmt.Errorf("%s: min must be non-negative", f.Name))
		}
	}
	return errors.Join(errs...)
}

// Matches checks that names is exactly the schema's field set.
// Order is not compared: records are mapped to the model layout by name.
func (s *Schema) Matches(names []string) error {
	want := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		want[f.Name] = true
	}

	var unexpected []string
	got := make(map[string]bool, len(names))
	for _, n := range names {
		got[n] = true
		if !want[n] {
			unexpected = append(unexpected, n)
		}
	}

	var missing []string
	for _, f := range s.Fields {
		if !got[f.Name] {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		parts = append(parts, "unexpected "+strings.Join(unexpected, ", "))
	}
	return fmt.Errorf("schema %s does not match model features: %s", s.Version, strings.Join(parts, "; "))
}

// JSONSchema returns a JSON Schema document describing a request body for this schema.
// Fields are typed but not required; missing values are reported by the estimator.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		switch f.Kind {
		case KindCategorical:
			prop := map[string]any{"type": []any{"string", "null"}}
			if len(f.Options) > 0 {
				enum := make([]any, 0, len(f.Options)+1)
				for _, o := range f.Options {
					enum = append(enum, o)
				}
				enum = append(enum, nil)
				prop["enum"] = enum
			}
			props[f.Name] = prop
		default:
			props[f.Name] = map[string]any{"type": []any{"number", "null"}}
		}
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}
