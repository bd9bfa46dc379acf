package feature

import (
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"
)

func TestStudyCostPresetOrder(t *testing.T) {
	s := StudyCost()
	expected := []string{
		"Living_Cost_Index",
		"Tuition_USD",
		"Exchange_Rate",
		"Duration_Years",
		"Rent_USD",
		"Visa_Fee_USD",
		"Insurance_USD",
	}

	names := s.Names()
	if len(names) != len(expected) {
		t.Fatalf("expected %d fields, got %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("field %d: expected %s, got %s", i, expected[i], names[i])
		}
	}

	if err := s.Validate(); err != nil {
		t.Errorf("preset should be valid: %v", err)
	}
}

func TestStudyCostCategoricalPreset(t *testing.T) {
	s := StudyCostCategorical()
	if len(s.Fields) != 9 {
		t.Fatalf("expected 9 fields, got %d", len(s.Fields))
	}

	f, ok := s.Field("Country")
	if !ok {
		t.Fatal("expected Country field")
	}
	if f.Kind != KindCategorical {
		t.Errorf("expected categorical kind, got %s", f.Kind)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("preset should be valid: %v", err)
	}
}

func TestPreset(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"", "study-cost/v1", false},
		{PresetStudyCost, "study-cost/v1", false},
		{PresetStudyCostCategorical, "study-cost-categorical/v1", false},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		s, err := Preset(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("preset %q: wantErr=%v, got %v", tt.name, tt.wantErr, err)
			continue
		}
		if err == nil && s.Version != tt.version {
			t.Errorf("preset %q: expected version %s, got %s", tt.name, tt.version, s.Version)
		}
	}
}

func TestFieldDisplayLabel(t *testing.T) {
	f := Field{Name: "Living_Cost_Index"}
	if f.DisplayLabel() != "Living Cost Index" {
		t.Errorf("expected 'Living Cost Index', got %q", f.DisplayLabel())
	}

	f.Label = "Cost of living"
	if f.DisplayLabel() != "Cost of living" {
		t.Errorf("expected explicit label, got %q", f.DisplayLabel())
	}
}

func TestFieldClamp(t *testing.T) {
	f := Field{Name: "Rent_USD", Kind: KindNumeric, Min: 150, Max: 2500}

	tests := []struct {
		in, want float64
	}{
		{100, 150},
		{150, 150},
		{800, 800},
		{2500, 2500},
		{9000, 2500},
	}
	for _, tt := range tests {
		if got := f.Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v): expected %v, got %v", tt.in, tt.want, got)
		}
	}

	unbounded := Field{Name: "Other", Kind: KindNumeric}
	if got := unbounded.Clamp(-3); got != 0 {
		t.Errorf("expected negative to clamp to 0, got %v", got)
	}
	if got := unbounded.Clamp(12345); got != 12345 {
		t.Errorf("expected value unchanged, got %v", got)
	}
}

func TestFieldClampPinned(t *testing.T) {
	f := Field{Name: "Duration_Years", Kind: KindNumeric, Min: 3, Max: 3}
	if !f.HasRange() {
		t.Fatal("expected min == max to count as a range")
	}
	for _, in := range []float64{-1, 0, 2.5, 3, 7} {
		if got := f.Clamp(in); got != 3 {
			t.Errorf("Clamp(%v): expected 3, got %v", in, got)
		}
	}

	if (Field{Kind: KindNumeric}).HasRange() {
		t.Error("expected 0/0 to mean no range")
	}
	if (Field{Kind: KindCategorical, Min: 3, Max: 3}).HasRange() {
		t.Error("expected categorical fields to have no range")
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		wantErr bool
	}{
		{
			name:    "valid",
			schema:  Schema{Version: "v1", Fields: []Field{{Name: "a", Kind: KindNumeric, Min: 0, Max: 1}}},
			wantErr: false,
		},
		{
			name:    "no version",
			schema:  Schema{Fields: []Field{{Name: "a", Kind: KindNumeric}}},
			wantErr: true,
		},
		{
			name:    "no fields",
			schema:  Schema{Version: "v1"},
			wantErr: true,
		},
		{
			name:    "duplicate",
			schema:  Schema{Version: "v1", Fields: []Field{{Name: "a", Kind: KindNumeric}, {Name: "a", Kind: KindNumeric}}},
			wantErr: true,
		},
		{
			name:    "bad kind",
			schema:  Schema{Version: "v1", Fields: []Field{{Name: "a", Kind: "bool"}}},
			wantErr: true,
		},
		{
			name:    "inverted range",
			schema:  Schema{Version: "v1", Fields: []Field{{Name: "a", Kind: KindNumeric, Min: 5, Max: 1}}},
			wantErr: true,
		},
		{
			name:    "negative min",
			schema:  Schema{Version: "v1", Fields: []Field{{Name: "a", Kind: KindNumeric, Min: -5, Max: 1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSchemaMatches(t *testing.T) {
	s := StudyCost()

	// Different order is fine
	reordered := []string{
		"Insurance_USD", "Visa_Fee_USD", "Rent_USD", "Duration_Years",
		"Exchange_Rate", "Tuition_USD", "Living_Cost_Index",
	}
	if err := s.Matches(reordered); err != nil {
		t.Errorf("expected match for reordered names: %v", err)
	}

	err := s.Matches([]string{"Tuition_USD", "Country"})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if !strings.Contains(err.Error(), "missing Living_Cost_Index") {
		t.Errorf("expected missing fields in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unexpected Country") {
		t.Errorf("expected unexpected fields in error, got %v", err)
	}
}

func TestSchemaJSONSchema(t *testing.T) {
	s := StudyCostCategorical()
	loader := gojsonschema.NewGoLoader(s.JSONSchema())

	tests := []struct {
		name  string
		doc   map[string]any
		valid bool
	}{
		{"numbers", map[string]any{"Tuition_USD": 20000.0, "Rent_USD": 800.0}, true},
		{"null allowed", map[string]any{"Tuition_USD": nil}, true},
		{"string for number", map[string]any{"Tuition_USD": "a lot"}, false},
		{"unknown field", map[string]any{"Pets": 2.0}, false},
		{"level option", map[string]any{"Level": "Master"}, true},
		{"bad level", map[string]any{"Level": "Diploma"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := gojsonschema.Validate(loader, gojsonschema.NewGoLoader(tt.doc))
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if result.Valid() != tt.valid {
				t.Errorf("expected valid=%v, got %v (%v)", tt.valid, result.Valid(), result.Errors())
			}
		})
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{
		SchemaVersion: "v1",
		Entries: []Entry{
			{Name: "Tuition_USD", Value: Num(20000)},
			{Name: "Country", Value: Cat("Germany")},
			{Name: "Rent_USD", Value: Num(800)},
		},
	}

	v, ok := r.Get("Country")
	if !ok || v.Text != "Germany" {
		t.Errorf("expected Germany, got %+v", v)
	}
	if _, ok := r.Get("Missing"); ok {
		t.Error("expected missing field lookup to fail")
	}

	nums := r.Numbers()
	if len(nums) != 2 || nums[0].Name != "Tuition_USD" || nums[1].Name != "Rent_USD" {
		t.Errorf("unexpected numeric entries: %+v", nums)
	}

	if got := Num(1234.5).String(); got != "1234.50" {
		t.Errorf("expected 1234.50, got %s", got)
	}
}
