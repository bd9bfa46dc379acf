package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Country,City,Level,Tuition_USD,Living_Cost_Index,Rent_USD,Total Annual Cost (USD)
Germany,Berlin,Master,0,70,900,12000
USA,Boston,Master,50000,90,2200,80000
USA,Austin,Bachelor,30000,70,1500,52000
UK,London,PhD,20000,85,1800,45000
`

func sampleRows(t *testing.T) []Row {
	t.Helper()
	rows, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return rows
}

func TestReadCSV(t *testing.T) {
	rows := sampleRows(t)
	require.Len(t, rows, 4)

	assert.Equal(t, Row{
		Country:         "Germany",
		Level:           "Master",
		Tuition:         0,
		LivingCostIndex: 70,
		Rent:            900,
		TotalCost:       12000,
	}, rows[0])
	assert.Equal(t, "UK", rows[3].Country)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Country,Level,Tuition_USD\nGermany,Master,0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Living_Cost_Index")
	assert.Contains(t, err.Error(), "Total Annual Cost (USD)")
}

func TestReadCSVBadNumber(t *testing.T) {
	doc := "Country,Level,Tuition_USD,Living_Cost_Index,Rent_USD,Total Annual Cost (USD)\n" +
		"Germany,Master,free,70,900,12000\n"

	_, err := ReadCSV(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "Tuition_USD")
}

func TestReadCSVNonFinite(t *testing.T) {
	for _, cell := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		t.Run(cell, func(t *testing.T) {
			doc := "Country,Level,Tuition_USD,Living_Cost_Index,Rent_USD,Total Annual Cost (USD)\n" +
				"Germany,Master,0,70,900,12000\n" +
				"USA,Master,50000,90,2200," + cell + "\n"

			_, err := ReadCSV(strings.NewReader(doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 3")
			assert.Contains(t, err.Error(), "column Total Annual Cost (USD): invalid number")
		})
	}
}

func TestNewDatasetNonFiniteRows(t *testing.T) {
	rows := []Row{
		{Country: "Germany", Level: "Master", TotalCost: 12000},
		{Country: "USA", Level: "Master", TotalCost: math.NaN()},
		{Country: "UK", Level: "PhD", TotalCost: math.Inf(1)},
		{Country: "UK", Level: "PhD", TotalCost: 45000},
	}

	ds, err := New("test", rows, 0)
	require.NoError(t, err)

	total := 0
	for _, c := range ds.Summary.CostHistogram.Counts {
		total += c
	}
	assert.Equal(t, 2, total)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))

	rows, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows(t), 2)

	assert.Equal(t, 4, s.Rows)

	tuition, ok := s.Column(ColTuition)
	require.True(t, ok)
	assert.Equal(t, 4, tuition.Count)
	assert.Equal(t, 25000.0, tuition.Mean)
	assert.Equal(t, 0.0, tuition.Min)
	assert.Equal(t, 50000.0, tuition.Max)
	assert.Equal(t, 25000.0, tuition.Median)
	// sample std of 0, 50000, 30000, 20000
	assert.InDelta(t, math.Sqrt(1.3e9/3), tuition.Std, 1e-6)

	// USA avg 66000, UK 45000, Germany 12000; top 2 kept
	require.Len(t, s.CostByCountry, 2)
	assert.Equal(t, "USA", s.CostByCountry[0].Name)
	assert.Equal(t, 66000.0, s.CostByCountry[0].Average)
	assert.Equal(t, 2, s.CostByCountry[0].Count)
	assert.Equal(t, "UK", s.CostByCountry[1].Name)

	require.Len(t, s.LevelShare, 3)
	assert.Equal(t, "Master", s.LevelShare[0].Name)
	assert.Equal(t, 0.5, s.LevelShare[0].Fraction)

	h := s.CostHistogram
	require.Len(t, h.Counts, HistogramBins)
	require.Len(t, h.Edges, HistogramBins+1)
	assert.Equal(t, 12000.0, h.Edges[0])
	assert.Equal(t, 80000.0, h.Edges[HistogramBins])

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 4, total)
	assert.Equal(t, 1, h.Counts[HistogramBins-1], "max value lands in the last bin")
}

func TestHistogramSingleValue(t *testing.T) {
	h := histogram([]float64{5, 5, 5}, 10)
	assert.Equal(t, []int{3}, h.Counts)
	assert.Equal(t, []float64{5, 5}, h.Edges)
}

func TestHistogramSkipsNonFinite(t *testing.T) {
	h := histogram([]float64{0, math.NaN(), 10, math.Inf(-1)}, 2)
	assert.Equal(t, []int{1, 1}, h.Counts)
	assert.Equal(t, []float64{0, 5, 10}, h.Edges)

	assert.Equal(t, Histogram{}, histogram([]float64{math.NaN()}, 10))
}

func TestDescribeEmptyAndSingle(t *testing.T) {
	assert.Equal(t, ColumnStats{}, describe(nil))

	one := describe([]float64{7})
	assert.Equal(t, 7.0, one.Mean)
	assert.Equal(t, 7.0, one.Median)
	assert.Equal(t, 0.0, one.Std)
}

func TestNewDataset(t *testing.T) {
	d, err := New("csv:data.csv", sampleRows(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 4, d.Summary.Rows)
	assert.False(t, d.LoadedAt.IsZero())

	_, err = New("csv:empty.csv", nil, 0)
	assert.Error(t, err)
}

func TestSelectQuery(t *testing.T) {
	q := SelectQuery("study_costs")
	assert.Equal(t,
		`SELECT "Country", "Level", "Tuition_USD", "Living_Cost_Index", "Rent_USD", "Total Annual Cost (USD)" FROM "study_costs"`,
		q)

	// Identifiers are quoted, not interpolated.
	assert.Contains(t, SelectQuery(`x"; DROP TABLE y; --`), `"x""; DROP TABLE y; --"`)
}

func TestLoadPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rows := sqlmock.NewRows(Columns).
		AddRow("Germany", "Master", 0.0, 70.0, 900.0, 12000.0).
		AddRow("USA", nil, 50000.0, 90.0, 2200.0, 80000.0)

	mock.ExpectQuery(regexp.QuoteMeta(SelectQuery("study_costs"))).WillReturnRows(rows)

	got, err := LoadPostgres(context.Background(), db, "study_costs")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Germany", got[0].Country)
	assert.Equal(t, "", got[1].Level)
	assert.Equal(t, 80000.0, got[1].TotalCost)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadPostgresQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	_, err = LoadPostgres(context.Background(), db, "study_costs")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestLoadPostgresNoTable(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = LoadPostgres(context.Background(), db, "")
	assert.Error(t, err)
}
