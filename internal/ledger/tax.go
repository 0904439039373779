package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/numeric"
)

// TaxFingerprint digests everything a tax value can depend on: the
// (clientId, value, group) triples of the non-tax elements, and the
// configuration (percentage, target) of the tax rows themselves. Tax
// recomputation is keyed off this: when it has not changed since the
// last pass, no derived value can have changed and the recompute is
// skipped entirely. Derived tax values are deliberately excluded so
// writing them back cannot re-trigger the pass.
func TaxFingerprint(els []model.Element) string {
	var b strings.Builder
	for _, el := range els {
		if el.IsTax {
			target := "-"
			if el.TaxTarget != nil {
				target = fmt.Sprintf("%d", *el.TaxTarget)
			}
			fmt.Fprintf(&b, "tax:%s|%.4f|%s\n", el.ClientID, el.TaxPercentage, target)
			continue
		}
		fmt.Fprintf(&b, "%s|%.2f|%d\n", el.ClientID, el.Value, el.Group)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// RecomputeTaxes recalculates the derived value of every tax line from
// the current non-tax totals:
//
//   - TaxTarget nil: base is the sum of all non-tax values (project scope),
//   - TaxTarget g: base is the sum of non-tax values in group g.
//
// A tax value is replaced only when it moves by more than 0.01, so a
// stable ledger round-trips unchanged and no recompute/save loop can
// form. The returned slice is a copy when changed is true; otherwise
// the input is returned as-is.
func RecomputeTaxes(els []model.Element) ([]model.Element, bool) {
	projectBase := 0.0
	groupBase := make(map[int]float64)
	for _, el := range els {
		if el.IsTax {
			continue
		}
		projectBase += el.Value
		groupBase[el.Group] += el.Value
	}

	changed := false
	out := els
	for i, el := range els {
		if !el.IsTax {
			continue
		}
		base := projectBase
		if el.TaxTarget != nil {
			base = groupBase[*el.TaxTarget]
		}
		newValue := numeric.Round2(base * el.TaxPercentage / 100)
		if numeric.AlmostEqual(newValue, el.Value) {
			continue
		}
		if !changed {
			out = make([]model.Element, len(els))
			copy(out, els)
			changed = true
		}
		out[i].Value = newValue
	}
	return out, changed
}
