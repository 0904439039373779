package model

import (
	"encoding/json"
	"sort"

	"github.com/kosztorapp/kosztor/internal/numeric"
)

// ContentVersion tags the persisted content format. Bump only on
// incompatible layout changes.
const ContentVersion = 1

// UngroupedID is the reserved id of the permanent "no subgroup" bucket.
// It always exists, cannot be deleted, and is never reassigned.
const UngroupedID = 0

// Element kinds.
const (
	KindCustom  = "custom"
	KindCatalog = "catalog"
	KindTax     = "tax"
)

// Group is a named bucket of elements with a display color.
type Group struct {
	// ID is the integer identity of the group. 0 is the reserved
	// "ungrouped" bucket.
	ID int `json:"id"`

	// Name is free text, editable in place.
	Name string `json:"name"`

	// Color is a display hint (hex string), not semantically load-bearing.
	Color string `json:"color,omitempty"`
}

// Element is one priced line in the ledger: a catalog-sourced item, a
// free-form custom item, or a tax line whose value is derived from other
// elements' totals.
type Element struct {
	// ClientID is the stable client-assigned identity used for moving,
	// editing, and deletion. It survives save/reload round trips.
	ClientID string `json:"clientId"`

	// ServerID is the secondary server-assigned id, present once
	// persisted. It is never required for editor operations.
	ServerID string `json:"id,omitempty"`

	// Kind is one of custom, catalog, or tax.
	Kind string `json:"kind,omitempty"`

	// Symbol is an optional reference code ("Podstawa"). Always a
	// string, never null.
	Symbol string `json:"symbol"`

	// Name is the required description of the line.
	Name string `json:"name"`

	// Unit is the unit of measure, default "szt".
	Unit string `json:"unit"`

	// Quantity is the amount, >= 0, default 1. Meaningless for tax lines.
	Quantity float64 `json:"quantity"`

	// Price is the unit price, >= 0, 2 decimals.
	Price float64 `json:"price"`

	// Value is quantity x price for normal lines (2 decimals). For tax
	// lines it is derived from the tax base and never user-set.
	Value float64 `json:"value"`

	// Group is the owning group id; 0 means ungrouped. On the wire an
	// absent/null group is the ungrouped convention.
	Group int `json:"-"`

	// Order is the element's position within its group. It is recomputed
	// from in-memory array order on every write and never trusted from
	// stale input.
	Order int `json:"order"`

	// IsTax marks a tax line.
	IsTax bool `json:"isTax,omitempty"`

	// TaxPercentage is the tax rate, > 0 for tax lines.
	TaxPercentage float64 `json:"taxPercentage,omitempty"`

	// TaxTarget scopes the tax: nil means the whole project, otherwise
	// the id of the single group whose non-tax total forms the base.
	TaxTarget *int `json:"taxTarget,omitempty"`
}

// MarshalJSON writes the wire convention: group 0 becomes null.
func (e Element) MarshalJSON() ([]byte, error) {
	type alias Element
	w := struct {
		alias
		WireGroup *int `json:"group"`
	}{alias: alias(e)}
	if e.Group != UngroupedID {
		g := e.Group
		w.WireGroup = &g
	}
	return json.Marshal(w)
}

// UnmarshalJSON reads the wire convention: null/absent group becomes 0.
func (e *Element) UnmarshalJSON(data []byte) error {
	type alias Element
	w := struct {
		*alias
		WireGroup *int `json:"group"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.WireGroup != nil {
		e.Group = *w.WireGroup
	} else {
		e.Group = UngroupedID
	}
	return nil
}

// Content is the persisted aggregate for one project.
type Content struct {
	Version  int       `json:"version"`
	Groups   []Group   `json:"groups"`
	Elements []Element `json:"elements"`
}

// UngroupedGroup returns the synthesized reserved group 0.
func UngroupedGroup() Group {
	return Group{ID: UngroupedID, Name: "Brak podgrupy", Color: "#ffffff"}
}

// DefaultContent returns the starting content for a project with no
// remote and no cached state.
func DefaultContent() Content {
	return Content{
		Version: ContentVersion,
		Groups: []Group{
			UngroupedGroup(),
			{ID: 1, Name: "Podgrupa 1", Color: "#fef08a"},
			{ID: 2, Name: "Podgrupa 2", Color: "#bfdbfe"},
		},
	}
}

// Normalize enforces the boundary contract on content read from any
// source or about to be written:
//
//   - group 0 is present exactly once and first in the list,
//   - groups are deduplicated by id (first occurrence wins),
//   - every element's group refers to an existing group, else 0,
//   - symbol defaults to "", unit to "szt", quantity to 1,
//   - price and value are rounded to 2 decimals,
//   - elements are sorted by persisted order, clustered by group in
//     group-list order, and order is reassigned as the index within
//     the owning group.
//
// Normalize is idempotent: applying it twice equals applying it once.
func Normalize(c Content) Content {
	out := Content{Version: ContentVersion}

	seen := make(map[int]bool)
	out.Groups = append(out.Groups, UngroupedGroup())
	seen[UngroupedID] = true
	for _, g := range c.Groups {
		if seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		out.Groups = append(out.Groups, g)
	}
	// Keep a user-provided name/color for group 0 if one was stored.
	for _, g := range c.Groups {
		if g.ID == UngroupedID {
			out.Groups[0] = g
			break
		}
	}

	els := make([]Element, len(c.Elements))
	copy(els, c.Elements)
	sort.SliceStable(els, func(i, j int) bool { return els[i].Order < els[j].Order })

	for i := range els {
		el := &els[i]
		if !seen[el.Group] {
			el.Group = UngroupedID
		}
		if el.Unit == "" {
			el.Unit = "szt"
		}
		if el.ClientID == "" {
			el.ClientID = numeric.NewClientID()
		}
		if el.Kind == "" {
			if el.IsTax {
				el.Kind = KindTax
			} else {
				el.Kind = KindCatalog
			}
		}
		if !el.IsTax && el.Quantity <= 0 {
			el.Quantity = 1
		}
		el.Price = numeric.Round2(el.Price)
		el.Value = numeric.Round2(el.Value)
	}

	// Canonical array order: cluster elements by group following the
	// group list, preserving relative order inside each group. This is
	// what makes Normalize a fixed point of itself.
	for _, g := range out.Groups {
		order := 0
		for i := range els {
			if els[i].Group != g.ID {
				continue
			}
			el := els[i]
			el.Order = order
			order++
			out.Elements = append(out.Elements, el)
		}
	}

	return out
}
