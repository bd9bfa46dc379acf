package dataset

import (
	"math"
	"sort"
)

// DefaultTopCountries is the number of countries kept in the cost ranking.
const DefaultTopCountries = 10

// HistogramBins is the bin count of the total cost histogram.
const HistogramBins = 10

// ColumnStats describes one numeric column.
type ColumnStats struct {
	Name   string  `json:"name"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// GroupAverage is the mean total cost of one country.
type GroupAverage struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// Share is the fraction of rows in one category.
type Share struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// Histogram has len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// Summary is the precomputed EDA view of a dataset.
type Summary struct {
	Rows          int            `json:"rows"`
	Columns       []ColumnStats  `json:"columns"`
	CostByCountry []GroupAverage `json:"cost_by_country"`
	LevelShare    []Share        `json:"level_share"`
	CostHistogram Histogram      `json:"cost_histogram"`
}

// Column returns the stats for a column by name.
func (s *Summary) Column(name string) (ColumnStats, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// Summarize computes descriptive statistics. topN <= 0 uses DefaultTopCountries.
func Summarize(rows []Row, topN int) *Summary {
	if topN <= 0 {
		topN = DefaultTopCountries
	}

	s := &Summary{Rows: len(rows)}

	columns := []struct {
		name string
		get  func(Row) float64
	}{
		{ColTuition, func(r Row) float64 { return r.Tuition }},
		{ColLivingCostIndex, func(r Row) float64 { return r.LivingCostIndex }},
		{ColRent, func(r Row) float64 { return r.Rent }},
		{ColTotalCost, func(r Row) float64 { return r.TotalCost }},
	}

	for _, c := range columns {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = c.get(r)
		}
		stats := describe(values)
		stats.Name = c.name
		s.Columns = append(s.Columns, stats)
	}

	s.CostByCountry = costByCountry(rows, topN)
	s.LevelShare = levelShare(rows)

	costs := make([]float64, len(rows))
	for i, r := range rows {
		costs[i] = r.TotalCost
	}
	s.CostHistogram = histogram(costs, HistogramBins)

	return s
}

// describe uses the sample standard deviation.
func describe(values []float64) ColumnStats {
	n := len(values)
	stats := ColumnStats{Count: n}
	if n == 0 {
		return stats
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	stats.Mean = sum / float64(n)
	stats.Min = sorted[0]
	stats.Max = sorted[n-1]

	if n%2 == 1 {
		stats.Median = sorted[n/2]
	} else {
		stats.Median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	if n > 1 {
		var ss float64
		for _, v := range sorted {
			d := v - stats.Mean
			ss += d * d
		}
		stats.Std = math.Sqrt(ss / float64(n-1))
	}

	return stats
}

func costByCountry(rows []Row, topN int) []GroupAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range rows {
		sums[r.Country] += r.TotalCost
		counts[r.Country]++
	}

	out := make([]GroupAverage, 0, len(sums))
	for name, sum := range sums {
		out = append(out, GroupAverage{
			Name:    name,
			Count:   counts[name],
			Average: sum / float64(counts[name]),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func levelShare(rows []Row) []Share {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Level]++
	}

	out := make([]Share, 0, len(counts))
	for name, c := range counts {
		out = append(out, Share{
			Name:     name,
			Count:    c,
			Fraction: float64(c) / float64(len(rows)),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// histogram splits [min, max] into equal bins. The last bin is closed.
// histogram bins the finite values; NaN and infinities are skipped.
func histogram(values []float64, bins int) Histogram {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	values = finite

	if len(values) == 0 || bins <= 0 {
		return Histogram{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return Histogram{Edges: []float64{lo, hi}, Counts: []int{len(values)}}
	}

	width := (hi - lo) / float64(bins)
	h := Histogram{
		Edges:  make([]float64, bins+1),
		Counts: make([]int, bins),
	}
	for i := range h.Edges {
		h.Edges[i] = lo + float64(i)*width
	}
	h.Edges[bins] = hi

	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		h.Counts[i]++
	}
	return h
}
