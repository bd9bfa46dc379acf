package estimate

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.English)

// FormatUSD renders an amount as $X,XXX.XX.
func FormatUSD(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	if v < 0 {
		return "-" + usd.Sprintf("$%.2f", math.Abs(v))
	}
	return usd.Sprintf("$%.2f", v)
}
