// Package dataset loads the historical cost table shown on the EDA view.
package dataset

import (
	"fmt"
	"time"
)

// Column names of the source table.
const (
	ColCountry         = "Country"
	ColLevel           = "Level"
	ColTuition         = "Tuition_USD"
	ColLivingCostIndex = "Living_Cost_Index"
	ColRent            = "Rent_USD"
	ColTotalCost       = "Total Annual Cost (USD)"
)

// Columns lists the required columns in load order.
var Columns = []string{ColCountry, ColLevel, ColTuition, ColLivingCostIndex, ColRent, ColTotalCost}

// Row is one program in the dataset.
type Row struct {
	Country         string  `json:"country"`
	Level           string  `json:"level"`
	Tuition         float64 `json:"tuition_usd"`
	LivingCostIndex float64 `json:"living_cost_index"`
	Rent            float64 `json:"rent_usd"`
	TotalCost       float64 `json:"total_cost_usd"`
}

// Dataset is an immutable loaded table with its precomputed summary.
type Dataset struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     []Row     `json:"-"`
	Summary  *Summary  `json:"summary"`
}

// New wraps rows and computes the summary once.
func New(source string, rows []Row, topN int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no rows", source)
	}
	return &Dataset{
		Source:   source,
		LoadedAt: time.Now(),
		Rows:     rows,
		Summary:  Summarize(rows, topN),
	}, nil
}
