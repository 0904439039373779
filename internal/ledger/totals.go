// Package ledger implements the grouped line-item ledger: aggregation,
// tax derivation, move/reclassify reducers, and reconciliation between
// remote content, the local cache, and external updates. Everything in
// this package is pure and UI-agnostic; the terminal views and the
// persistence layer sit on top of it.
package ledger

import (
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/numeric"
)

// TotalOptions control which elements contribute to a total and how
// values are scaled for display.
type TotalOptions struct {
	// ExcludeTax sums only non-tax elements. The inclusive total (tax
	// and non-tax alike) is what the table shows; the exclusive total
	// is the tax-base view.
	ExcludeTax bool

	// Wspreg is the external display-only multiplier. 1.0 (or 0,
	// meaning unset) leaves values untouched. It never applies to tax
	// lines and never touches stored figures.
	Wspreg float64
}

// displayValue returns the element's value as it should be counted for
// display totals, applying the wspreg multiplier to non-tax lines only.
func displayValue(el model.Element, wspreg float64) float64 {
	if el.IsTax || wspreg == 0 || wspreg == 1.0 {
		return el.Value
	}
	return numeric.Round2(el.Value * wspreg)
}

// GroupTotals returns the total per group id over all elements matching
// the options. Groups with no contributing elements are absent.
func GroupTotals(els []model.Element, opts TotalOptions) map[int]float64 {
	totals := make(map[int]float64)
	for _, el := range els {
		if opts.ExcludeTax && el.IsTax {
			continue
		}
		totals[el.Group] = numeric.Round2(totals[el.Group] + displayValue(el, opts.Wspreg))
	}
	return totals
}

// ProjectTotal returns the total over all elements matching the options.
func ProjectTotal(els []model.Element, opts TotalOptions) float64 {
	var total float64
	for _, el := range els {
		if opts.ExcludeTax && el.IsTax {
			continue
		}
		total += displayValue(el, opts.Wspreg)
	}
	return numeric.Round2(total)
}

// Scaled returns a display copy of the elements with the wspreg
// multiplier applied to non-tax price and value. The input slice is
// never mutated; stored base figures stay unscaled.
func Scaled(els []model.Element, wspreg float64) []model.Element {
	out := make([]model.Element, len(els))
	copy(out, els)
	if wspreg == 0 || wspreg == 1.0 {
		return out
	}
	for i := range out {
		if out[i].IsTax {
			continue
		}
		out[i].Price = numeric.Round2(out[i].Price * wspreg)
		out[i].Value = numeric.Round2(out[i].Value * wspreg)
	}
	return out
}
