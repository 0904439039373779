package ledger

import (
	"strconv"
	"strings"

	"github.com/kosztorapp/kosztor/internal/model"
	"github.com/kosztorapp/kosztor/internal/numeric"
)

// Ledger owns the single authoritative in-memory content of one open
// project. Every user mutation goes through it; after each one it
// re-derives tax lines (keyed off the tax fingerprint so a no-op edit
// recomputes nothing) and keeps element order consistent.
//
// Ledger is not goroutine-safe; in the application it lives on the
// Bubble Tea update loop, which is single-threaded.
type Ledger struct {
	content   model.Content
	lastTaxFP string
}

// New builds a Ledger around reconciled content.
func New(content model.Content) *Ledger {
	l := &Ledger{content: model.Normalize(content)}
	l.recomputeTaxes()
	return l
}

// Content returns a normalized snapshot of the current state, with
// order recomputed from in-memory array positions. This is the payload
// for both the local cache mirror and the remote write.
func (l *Ledger) Content() model.Content {
	return model.Normalize(l.content)
}

// Elements returns the current element list. Callers must not mutate it.
func (l *Ledger) Elements() []model.Element {
	return l.content.Elements
}

// Groups returns the current group list. Callers must not mutate it.
func (l *Ledger) Groups() []model.Group {
	return l.content.Groups
}

// Fingerprint returns the content fingerprint of the current elements.
func (l *Ledger) Fingerprint() string {
	return Fingerprint(l.content.Elements)
}

// ApplyRemote replaces the in-memory state wholesale from freshly
// fetched remote content. This is how external mutations such as a
// completed reprice propagate into an open editor.
func (l *Ledger) ApplyRemote(content model.Content) {
	l.content = model.Normalize(content)
	l.lastTaxFP = ""
	l.recomputeTaxes()
}

// AddElement appends an element to the ledger. The caller provides a
// fully built element (see model.Element); a missing client id is
// assigned here. Tax lines get their value derived immediately.
func (l *Ledger) AddElement(el model.Element) model.Element {
	if el.ClientID == "" {
		el.ClientID = numeric.NewClientID()
	}
	if el.Unit == "" {
		el.Unit = "szt"
	}
	if !el.IsTax {
		if el.Quantity <= 0 {
			el.Quantity = 1
		}
		el.Price = numeric.Round2(el.Price)
		el.Value = numeric.Round2(el.Quantity * el.Price)
	}
	l.content.Elements = append(l.content.Elements, el)
	l.recomputeTaxes()
	return el
}

// ElementUpdate carries the editable fields of an element. Nil fields
// are left unchanged.
type ElementUpdate struct {
	Symbol        *string
	Name          *string
	Unit          *string
	Quantity      *float64
	Price         *float64
	Group         *int
	TaxPercentage *float64
	TaxTarget     **int
}

// UpdateElement applies an inline/modal edit to the element with the
// given client id. For non-tax elements the value is re-derived from
// quantity and price; a tax element keeps its value and the recompute
// pass re-derives it from the (possibly new) percentage and target.
func (l *Ledger) UpdateElement(clientID string, upd ElementUpdate) bool {
	idx := indexByClientID(l.content.Elements, clientID)
	if idx < 0 {
		return false
	}
	el := &l.content.Elements[idx]

	if upd.Symbol != nil {
		el.Symbol = strings.TrimSpace(*upd.Symbol)
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		el.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Unit != nil && strings.TrimSpace(*upd.Unit) != "" {
		el.Unit = strings.TrimSpace(*upd.Unit)
	}
	if upd.Group != nil && l.groupExists(*upd.Group) {
		el.Group = *upd.Group
	}

	if el.IsTax {
		if upd.TaxPercentage != nil && *upd.TaxPercentage > 0 {
			el.TaxPercentage = *upd.TaxPercentage
		}
		if upd.TaxTarget != nil {
			el.TaxTarget = *upd.TaxTarget
		}
	} else {
		if upd.Quantity != nil && *upd.Quantity > 0 {
			el.Quantity = *upd.Quantity
		}
		if upd.Price != nil && *upd.Price >= 0 {
			el.Price = numeric.Round2(*upd.Price)
		}
		el.Value = numeric.Round2(el.Quantity * el.Price)
	}

	l.recomputeTaxes()
	return true
}

// DeleteElement removes the element with the given client id.
func (l *Ledger) DeleteElement(clientID string) bool {
	idx := indexByClientID(l.content.Elements, clientID)
	if idx < 0 {
		return false
	}
	l.content.Elements = append(
		l.content.Elements[:idx], l.content.Elements[idx+1:]...,
	)
	l.recomputeTaxes()
	return true
}

// RemoveFromGroup moves the element back to the ungrouped bucket.
func (l *Ledger) RemoveFromGroup(clientID string) bool {
	idx := indexByClientID(l.content.Elements, clientID)
	if idx < 0 {
		return false
	}
	l.content.Elements[idx].Group = model.UngroupedID
	l.recomputeTaxes()
	return true
}

// Move applies one move gesture (see Move and DropTarget).
func (l *Ledger) Move(activeID string, target DropTarget) {
	l.content.Elements = Move(l.content.Elements, activeID, target)
	l.recomputeTaxes()
}

// AddGroup creates a new group with the lowest unused positive id and
// a default name and color, and returns it.
func (l *Ledger) AddGroup() model.Group {
	id := 1
	for l.groupExists(id) {
		id++
	}
	g := model.Group{ID: id, Name: groupName(id), Color: "#e5e7eb"}
	l.content.Groups = append(l.content.Groups, g)
	return g
}

// RenameGroup commits an inline name edit. A blank name discards the
// edit rather than storing an empty label.
func (l *Ledger) RenameGroup(id int, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for i := range l.content.Groups {
		if l.content.Groups[i].ID == id {
			l.content.Groups[i].Name = name
			return true
		}
	}
	return false
}

// SetGroupColor updates a group's display color.
func (l *Ledger) SetGroupColor(id int, color string) bool {
	for i := range l.content.Groups {
		if l.content.Groups[i].ID == id {
			l.content.Groups[i].Color = color
			return true
		}
	}
	return false
}

// DeleteGroup removes a group and reassigns its members to the
// ungrouped bucket. Deleting group 0 is a no-op, unconditionally.
func (l *Ledger) DeleteGroup(id int) bool {
	if id == model.UngroupedID || !l.groupExists(id) {
		return false
	}
	for i := range l.content.Elements {
		if l.content.Elements[i].Group == id {
			l.content.Elements[i].Group = model.UngroupedID
		}
	}
	groups := l.content.Groups[:0]
	for _, g := range l.content.Groups {
		if g.ID != id {
			groups = append(groups, g)
		}
	}
	l.content.Groups = groups
	l.recomputeTaxes()
	return true
}

// recomputeTaxes re-derives tax line values when (and only when) the
// tax fingerprint moved since the last pass.
func (l *Ledger) recomputeTaxes() {
	fp := TaxFingerprint(l.content.Elements)
	if fp == l.lastTaxFP {
		return
	}
	l.lastTaxFP = fp
	if out, changed := RecomputeTaxes(l.content.Elements); changed {
		l.content.Elements = out
	}
}

func (l *Ledger) groupExists(id int) bool {
	for _, g := range l.content.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

func groupName(id int) string {
	return "Podgrupa " + strconv.Itoa(id)
}
