package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads rows from a CSV file with a header line.
func LoadCSV(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses rows from r. Columns are matched by header name and extra
// columns are ignored.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty dataset")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRow(record []string, index map[string]int) (Row, error) {
	num := func(col string) (float64, error) {
		raw := strings.TrimSpace(record[index[col]])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("column %s: invalid number %q", col, raw)
		}
		return v, nil
	}

	row := Row{
		Country: strings.TrimSpace(record[index[ColCountry]]),
		Level:   strings.TrimSpace(record[index[ColLevel]]),
	}

	var err error
	if row.Tuition, err = num(ColTuition); err != nil {
		return Row{}, err
	}
	if row.LivingCostIndex, err = num(ColLivingCostIndex); err != nil {
		return Row{}, err
	}
	if row.Rent, err = num(ColRent); err != nil {
		return Row{}, err
	}
	if row.TotalCost, err = num(ColTotalCost); err != nil {
		return Row{}, err
	}
	return row, nil
}
