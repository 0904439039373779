package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosztorapp/kosztor/internal/keys"
	"github.com/kosztorapp/kosztor/internal/ledger"
	"github.com/kosztorapp/kosztor/internal/model"
)

func TestCursorTargetExcludesTaxRows(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetContent(model.Content{
		Groups: []model.Group{{ID: 0, Name: "Brak podgrupy"}},
		Elements: []model.Element{
			{ClientID: "a", Name: "a", Unit: "szt", Quantity: 1},
			{ClientID: "b", Name: "b", Unit: "szt", Quantity: 1},
			{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23},
		},
	}, ledger.TotalOptions{})
	m.moving = true
	m.moveID = "a"

	for i, r := range m.rows {
		if r.kind != rowElement {
			continue
		}
		m.cursor = i
		switch r.element.ClientID {
		case "a", "vat":
			// Neither the moved row itself nor a tax row is a position.
			assert.Equal(t, ledger.NoTarget(), m.cursorTarget(), r.element.ClientID)
		case "b":
			assert.Equal(t, ledger.ElementTarget("b"), m.cursorTarget())
		}
	}
}

func TestCursorTargetOnGroupHeader(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 80, 24)
	m.SetContent(model.Content{
		Groups: []model.Group{
			{ID: 0, Name: "Brak podgrupy"},
			{ID: 1, Name: "Podgrupa 1"},
		},
		Elements: []model.Element{
			{ClientID: "a", Name: "a", Unit: "szt", Quantity: 1},
		},
	}, ledger.TotalOptions{})
	m.moving = true
	m.moveID = "a"

	for i, r := range m.rows {
		if r.kind == rowGroupHeader && r.group.ID == 1 {
			m.cursor = i
			assert.Equal(t, ledger.GroupTarget(1), m.cursorTarget())
		}
		if r.kind == rowGroupTotal || r.kind == rowProjectTotal {
			m.cursor = i
			assert.Equal(t, ledger.NoTarget(), m.cursorTarget())
		}
	}
}
