package numeric

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseDecimal parses user numeric input accepting both "." and "," as
// the decimal separator and ignoring whitespace (thousand separators).
// Anything that does not parse yields 0, never an error.
func ParseDecimal(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0':
			return -1
		case ',':
			return '.'
		}
		return r
	}, s)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// Round2 rounds a monetary or quantity-derived value to exactly two
// decimal places. All stored prices and values go through this.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// AlmostEqual reports whether two monetary values are equal within the
// 0.01 tolerance used to keep float noise from triggering spurious
// recomputation and writes.
func AlmostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 0.01
}

// NewClientID returns a client-side unique element identity, usable
// immediately, before any server round trip.
func NewClientID() string {
	return uuid.New().String()
}
