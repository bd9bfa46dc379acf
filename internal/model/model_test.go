package model

import (
	"errors"
	"testing"

	"github.com/haskel/studycost/internal/feature"
)

var studyFeatures = []string{
	"Living_Cost_Index",
	"Tuition_USD",
	"Exchange_Rate",
	"Duration_Years",
	"Rent_USD",
	"Visa_Fee_USD",
	"Insurance_USD",
}

func studyRecord() feature.Record {
	return feature.Record{
		SchemaVersion: "study-cost/v1",
		Entries: []feature.Entry{
			{Name: "Living_Cost_Index", Value: feature.Num(70)},
			{Name: "Tuition_USD", Value: feature.Num(20000)},
			{Name: "Exchange_Rate", Value: feature.Num(1.0)},
			{Name: "Duration_Years", Value: feature.Num(2)},
			{Name: "Rent_USD", Value: feature.Num(800)},
			{Name: "Visa_Fee_USD", Value: feature.Num(160)},
			{Name: "Insurance_USD", Value: feature.Num(700)},
		},
	}
}

func TestModelTypeIsValid(t *testing.T) {
	tests := []struct {
		modelType ModelType
		valid     bool
	}{
		{ModelTypeConstant, true},
		{ModelTypeLinear, true},
		{ModelTypePolynomial, true},
		{ModelTypeGradientBoost, true},
		{ModelTypeRandomForest, true},
		{ModelType("invalid"), false},
		{ModelType(""), false},
	}

	for _, tt := range tests {
		if tt.modelType.IsValid() != tt.valid {
			t.Errorf("ModelType(%q).IsValid() = %v, want %v",
				tt.modelType, tt.modelType.IsValid(), tt.valid)
		}
	}
}

func TestNormalize(t *testing.T) {
	got := normalize([]float64{1, 3, 0, -2})
	want := []float64{0.25, 0.75, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}

	zero := normalize([]float64{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("expected zeros, got %v", zero)
	}
}

func TestImportances(t *testing.T) {
	withImp, err := New(&Artifact{
		Type:               ModelTypeConstant,
		Features:           []string{"a", "b"},
		FeatureImportances: []float64{2, 6},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	imp, ok := Importances(withImp)
	if !ok {
		t.Fatal("expected importances")
	}
	if imp[0] != 0.25 || imp[1] != 0.75 {
		t.Errorf("expected normalized importances, got %v", imp)
	}

	// Callers must not be able to mutate model state.
	imp[0] = 99
	again, _ := Importances(withImp)
	if again[0] != 0.25 {
		t.Error("importances slice should be a copy")
	}

	without, err := New(&Artifact{Type: ModelTypeConstant, Features: []string{"a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := Importances(without); ok {
		t.Error("expected no importances")
	}
}

func TestMissingFeature(t *testing.T) {
	m, err := New(&Artifact{Type: ModelTypeConstant, Intercept: 5, Features: studyFeatures})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec := studyRecord()
	rec.Entries = rec.Entries[:3]

	_, err = m.Predict(rec)
	if !errors.Is(err, ErrMissingFeature) {
		t.Errorf("expected ErrMissingFeature, got %v", err)
	}
}

func TestFeaturesIsCopy(t *testing.T) {
	m, err := New(&Artifact{Type: ModelTypeConstant, Features: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := m.Features()
	f[0] = "changed"
	if m.Features()[0] != "a" {
		t.Error("Features should return a copy")
	}
}
