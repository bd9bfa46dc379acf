package feature

import "fmt"

// Value holds one field value. Numeric fields use Number, categorical fields use Text.
type Value struct {
	Kind   Kind    `json:"kind"`
	Number float64 `json:"number,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// Num creates a numeric value.
func Num(v float64) Value {
	return Value{Kind: KindNumeric, Number: v}
}

// Cat creates a categorical value.
func Cat(v string) Value {
	return Value{Kind: KindCategorical, Text: v}
}

// String returns a display representation of the value.
func (v Value) String() string {
	if v.Kind == KindCategorical {
		return v.Text
	}
	return fmt.Sprintf("%.2f", v.Number)
}

// Entry is a named value inside a record.
type Entry struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Record is a single-row feature record in schema order.
type Record struct {
	SchemaVersion string  `json:"schema_version"`
	Entries       []Entry `json:"entries"`
}

// Get returns the value for a field name.
func (r *Record) Get(name string) (Value, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Names returns the field names in record order.
func (r *Record) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}

// Numbers returns the numeric entries in record order.
func (r *Record) Numbers() []Entry {
	out := make([]Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Value.Kind == KindNumeric {
			out = append(out, e)
		}
	}
	return out
}

// Importance is the relative weight of one feature in a model's predictions.
type Importance struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}
