package estimate

import (
	"fmt"
	"strings"

	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/theme"
)

// rowKind classifies one rendered line of the estimate table.
type rowKind int

const (
	rowGroupHeader rowKind = iota
	rowElement
	rowGroupTotal
	rowProjectTotal
)

// row is one rendered line. Group headers and element rows are
// selectable; totals are display-only.
type row struct {
	kind    rowKind
	group   model.Group
	element model.Element
	total   float64
}

func (r row) selectable() bool {
	return r.kind == rowGroupHeader || r.kind == rowElement
}

// buildRows lays the content out as the table: each group's header, its
// elements, its subtotal, and finally the project total. Empty groups
// still render so they can receive moved items.
func buildRows(content model.Content, opts ledger.TotalOptions) []row {
	// The regional factor scales displayed prices and values too, not
	// just the totals. Stored content is never touched.
	shown := content.Elements
	if opts.Wspreg != 0 && opts.Wspreg != 1 {
		shown = ledger.Scaled(shown, opts.Wspreg)
	}

	byGroup := make(map[int][]model.Element)
	for _, el := range shown {
		byGroup[el.Group] = append(byGroup[el.Group], el)
	}
	groupTotals := ledger.GroupTotals(content.Elements, opts)

	var rows []row
	for _, g := range content.Groups {
		rows = append(rows, row{kind: rowGroupHeader, group: g})
		for _, el := range byGroup[g.ID] {
			rows = append(rows, row{kind: rowElement, group: g, element: el})
		}
		rows = append(rows, row{kind: rowGroupTotal, group: g, total: groupTotals[g.ID]})
	}
	rows = append(rows, row{
		kind:  rowProjectTotal,
		total: ledger.ProjectTotal(content.Elements, opts),
	})
	return rows
}

// Column widths for the fixed part of the table; the name column
// absorbs the rest.
const (
	colSymbol = 14
	colUnit   = 6
	colQty    = 9
	colPrice  = 11
	colValue  = 13
)

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

func pad(s string, width int) string {
	s = truncate(s, width)
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

func padLeft(s string, width int) string {
	s = truncate(s, width)
	if n := width - len([]rune(s)); n > 0 {
		return strings.Repeat(" ", n) + s
	}
	return s
}

// renderRow formats one table line at the given total width.
func renderRow(r row, width int, selected, moving bool) string {
	nameWidth := width - colSymbol - colUnit - colQty - colPrice - colValue - 8
	if nameWidth < 10 {
		nameWidth = 10
	}

	switch r.kind {
	case rowGroupHeader:
		label := fmt.Sprintf("▸ %s", r.group.Name)
		line := theme.GroupColorStyle(r.group.Color).Render(pad(label, width-2))
		if selected {
			return theme.SelectedItemStyle.Render(line)
		}
		return theme.ListItemStyle.Render(line)

	case rowElement:
		el := r.element
		var line string
		if el.IsTax {
			line = fmt.Sprintf("%s %s %s %s %s %s",
				pad(el.Symbol, colSymbol),
				pad(el.Name, nameWidth),
				pad("", colUnit),
				padLeft(fmt.Sprintf("%.2f%%", el.TaxPercentage), colQty),
				pad("", colPrice),
				padLeft(fmt.Sprintf("%.2f", el.Value), colValue),
			)
			line = theme.TaxRowStyle.Render(line)
		} else {
			line = fmt.Sprintf("%s %s %s %s %s %s",
				pad(el.Symbol, colSymbol),
				pad(el.Name, nameWidth),
				pad(el.Unit, colUnit),
				padLeft(fmt.Sprintf("%.2f", el.Quantity), colQty),
				padLeft(fmt.Sprintf("%.2f", el.Price), colPrice),
				padLeft(fmt.Sprintf("%.2f", el.Value), colValue),
			)
		}
		if moving {
			return theme.MovingRowStyle.Render("⇅ " + line)
		}
		if selected {
			return theme.SelectedItemStyle.Render(line)
		}
		return theme.ListItemStyle.Render(line)

	case rowGroupTotal:
		return theme.GroupTotalStyle.Render(
			fmt.Sprintf("subtotal %s: %.2f", r.group.Name, r.total),
		)

	default:
		return theme.ProjectTotalStyle.Render(
			fmt.Sprintf("TOTAL: %.2f", r.total),
		)
	}
}
