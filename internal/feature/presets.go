package feature

import "fmt"

// Preset names accepted in configuration.
const (
	PresetStudyCost            = "study_cost"
	PresetStudyCostCategorical = "study_cost_categorical"
)

// StudyCost returns the seven-field numeric schema in the column order the
// published cost model was fit on.
func StudyCost() *Schema {
	return &Schema{
		Version: "study-cost/v1",
		Fields:  studyCostNumeric(),
	}
}

// StudyCostCategorical extends StudyCost with the Country and Level columns.
func StudyCostCategorical() *Schema {
	fields := studyCostNumeric()
	fields = append(fields,
		Field{Name: "Country", Kind: KindCategorical},
		Field{Name: "Level", Kind: KindCategorical, Options: []string{"Bachelor", "Master", "PhD"}},
	)
	return &Schema{
		Version: "study-cost-categorical/v1",
		Fields:  fields,
	}
}

func studyCostNumeric() []Field {
	return []Field{
		{Name: "Living_Cost_Index", Kind: KindNumeric, Min: 27, Max: 122},
		{Name: "Tuition_USD", Kind: KindNumeric, Min: 0, Max: 62000},
		{Name: "Exchange_Rate", Kind: KindNumeric, Min: 0, Max: 42150},
		{Name: "Duration_Years", Kind: KindNumeric, Min: 0.6, Max: 5.0},
		{Name: "Rent_USD", Kind: KindNumeric, Min: 150, Max: 2500},
		{Name: "Visa_Fee_USD", Kind: KindNumeric, Min: 40, Max: 490},
		{Name: "Insurance_USD", Kind: KindNumeric, Min: 200, Max: 1500},
	}
}

// Preset returns a built-in schema by name.
func Preset(name string) (*Schema, error) {
	switch name {
	case PresetStudyCost, "":
		return StudyCost(), nil
	case PresetStudyCostCategorical:
		return StudyCostCategorical(), nil
	default:
		return nil, fmt.Errorf("unknown schema preset: %s", name)
	}
}
