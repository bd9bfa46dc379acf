package charts

import (
	"fmt"
	"strconv"
	"strings"
)

func label(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func yearLabel(y float64) string {
	return "Year " + strconv.FormatFloat(y, 'f', -1, 64)
}

func binLabel(lo, hi float64) string {
	return fmt.Sprintf("%.0f-%.0f", lo, hi)
}
