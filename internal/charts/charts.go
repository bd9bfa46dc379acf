// Package charts builds chart descriptions for the visualization and EDA
// views. Rendering is left to the client.
package charts

import (
	"math"

	"github.com/haskel/studycost/internal/dataset"
	"github.com/haskel/studycost/internal/feature"
	"github.com/haskel/studycost/internal/session"
)

// Kind is the chart type.
type Kind string

const (
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindLine      Kind = "line"
)

// Chart is a renderer-neutral chart: Labels[i] pairs with Values[i].
type Chart struct {
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label,omitempty"`
	YLabel string    `json:"y_label,omitempty"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Max returns the largest value, or 0 for an empty chart.
func (c Chart) Max() float64 {
	m := 0.0
	for _, v := range c.Values {
		m = math.Max(m, v)
	}
	return m
}

// InputBars charts the numeric inputs of a record.
func InputBars(rec feature.Record) Chart {
	c := Chart{
		Kind:   KindBar,
		Title:  "Input Feature Values",
		XLabel: "Value",
		YLabel: "Feature",
	}
	for _, e := range rec.Numbers() {
		c.Labels = append(c.Labels, label(e.Name))
		c.Values = append(c.Values, e.Value.Number)
	}
	return c
}

// ImportanceBars charts model feature importances.
func ImportanceBars(imp []feature.Importance) Chart {
	c := Chart{
		Kind:   KindBar,
		Title:  "Feature Importance",
		XLabel: "Importance",
		YLabel: "Feature",
	}
	for _, i := range imp {
		c.Labels = append(c.Labels, label(i.Name))
		c.Values = append(c.Values, i.Weight)
	}
	return c
}

// DurationField is the record field used for the cumulative cost projection.
const DurationField = "Duration_Years"

// CumulativeCost projects the annual estimate over the course duration.
// A partial final year is charged pro rata.
func CumulativeCost(annual, years float64) Chart {
	c := Chart{
		Kind:   KindLine,
		Title:  "Projected Cumulative Cost",
		XLabel: "Year",
		YLabel: "Cost (USD)",
	}
	if years <= 0 {
		return c
	}

	full := int(math.Floor(years))
	for y := 1; y <= full; y++ {
		c.Labels = append(c.Labels, yearLabel(float64(y)))
		c.Values = append(c.Values, annual*float64(y))
	}
	if frac := years - float64(full); frac > 1e-9 {
		c.Labels = append(c.Labels, yearLabel(years))
		c.Values = append(c.Values, annual*years)
	}
	return c
}

// Visualize builds the charts for a stored estimate.
func Visualize(snap *session.Snapshot) []Chart {
	out := []Chart{InputBars(snap.Record)}
	if len(snap.Importances) > 0 {
		out = append(out, ImportanceBars(snap.Importances))
	}
	if v, ok := snap.Record.Get(DurationField); ok && v.Kind == feature.KindNumeric {
		out = append(out, CumulativeCost(snap.Estimate, v.Number))
	}
	return out
}

// EDA builds the dataset overview charts.
func EDA(s *dataset.Summary) []Chart {
	byCountry := Chart{
		Kind:   KindBar,
		Title:  "Average Total Annual Cost by Country",
		XLabel: "Country",
		YLabel: "Average Cost (USD)",
	}
	for _, g := range s.CostByCountry {
		byCountry.Labels = append(byCountry.Labels, g.Name)
		byCountry.Values = append(byCountry.Values, g.Average)
	}

	levels := Chart{
		Kind:  KindPie,
		Title: "Programs by Level",
	}
	for _, sh := range s.LevelShare {
		levels.Labels = append(levels.Labels, sh.Name)
		levels.Values = append(levels.Values, sh.Fraction)
	}

	hist := Chart{
		Kind:   KindHistogram,
		Title:  "Distribution of Total Annual Cost",
		XLabel: "Total Annual Cost (USD)",
		YLabel: "Programs",
	}
	h := s.CostHistogram
	for i, n := range h.Counts {
		hist.Labels = append(hist.Labels, binLabel(h.Edges[i], h.Edges[i+1]))
		hist.Values = append(hist.Values, float64(n))
	}

	means := Chart{
		Kind:   KindBar,
		Title:  "Average Cost Components",
		XLabel: "Column",
		YLabel: "Mean",
	}
	for _, col := range []string{dataset.ColTuition, dataset.ColRent, dataset.ColLivingCostIndex} {
		if stats, ok := s.Column(col); ok {
			means.Labels = append(means.Labels, label(col))
			means.Values = append(means.Values, stats.Mean)
		}
	}

	return []Chart{byCountry, levels, hist, means}
}
