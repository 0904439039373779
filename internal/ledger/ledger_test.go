package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosztorapp/kosztor/internal/model"
)

func newTestLedger() *Ledger {
	return New(model.DefaultContent())
}

func TestAddElementDerivesValue(t *testing.T) {
	l := newTestLedger()

	el := l.AddElement(model.Element{Name: "wykop", Quantity: 3, Price: 10.005})
	assert.NotEmpty(t, el.ClientID)
	assert.Equal(t, "szt", el.Unit)
	assert.Equal(t, 10.01, el.Price)
	assert.Equal(t, 30.03, el.Value)
}

func TestAddElementDefaultsQuantity(t *testing.T) {
	l := newTestLedger()

	el := l.AddElement(model.Element{Name: "beton", Price: 5})
	assert.Equal(t, 1.0, el.Quantity)
	assert.Equal(t, 5.0, el.Value)
}

func TestAddTaxRecomputesValue(t *testing.T) {
	l := newTestLedger()
	l.AddElement(model.Element{Name: "a", Quantity: 1, Price: 300})
	l.AddElement(model.Element{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23})

	els := l.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, 69.0, els[indexByClientID(els, "vat")].Value)
}

func TestUpdateElementRederivesValueAndTaxes(t *testing.T) {
	l := newTestLedger()
	a := l.AddElement(model.Element{Name: "a", Quantity: 1, Price: 100})
	l.AddElement(model.Element{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23})

	qty := 2.0
	require.True(t, l.UpdateElement(a.ClientID, ElementUpdate{Quantity: &qty}))

	els := l.Elements()
	assert.Equal(t, 200.0, els[indexByClientID(els, a.ClientID)].Value)
	assert.Equal(t, 46.0, els[indexByClientID(els, "vat")].Value)
}

func TestUpdateElementIgnoresBlankNameAndUnknownGroup(t *testing.T) {
	l := newTestLedger()
	a := l.AddElement(model.Element{Name: "a", Quantity: 1, Price: 1})

	blank := "   "
	badGroup := 42
	require.True(t, l.UpdateElement(a.ClientID, ElementUpdate{Name: &blank, Group: &badGroup}))

	els := l.Elements()
	got := els[indexByClientID(els, a.ClientID)]
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, model.UngroupedID, got.Group)
}

func TestUpdateElementMissing(t *testing.T) {
	l := newTestLedger()
	assert.False(t, l.UpdateElement("missing", ElementUpdate{}))
}

func TestUpdateTaxTarget(t *testing.T) {
	l := newTestLedger()
	l.AddElement(model.Element{Name: "a", Group: 1, Quantity: 1, Price: 100})
	tax := l.AddElement(model.Element{Name: "narzut", IsTax: true, TaxPercentage: 10})

	group1 := 1
	target := &group1
	require.True(t, l.UpdateElement(tax.ClientID, ElementUpdate{TaxTarget: &target}))

	els := l.Elements()
	got := els[indexByClientID(els, tax.ClientID)]
	require.NotNil(t, got.TaxTarget)
	assert.Equal(t, 1, *got.TaxTarget)
	assert.Equal(t, 10.0, got.Value)
}

func TestDeleteElementRecomputesTaxes(t *testing.T) {
	l := newTestLedger()
	a := l.AddElement(model.Element{Name: "a", Quantity: 1, Price: 100})
	l.AddElement(model.Element{Name: "b", Quantity: 1, Price: 200})
	l.AddElement(model.Element{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23})

	require.True(t, l.DeleteElement(a.ClientID))

	els := l.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, 46.0, els[indexByClientID(els, "vat")].Value)
}

func TestAddGroupPicksLowestUnusedID(t *testing.T) {
	l := newTestLedger()

	// Defaults occupy 1 and 2.
	g := l.AddGroup()
	assert.Equal(t, 3, g.ID)
	assert.Equal(t, "Podgrupa 3", g.Name)
	assert.Equal(t, "#e5e7eb", g.Color)

	require.True(t, l.DeleteGroup(1))
	g = l.AddGroup()
	assert.Equal(t, 1, g.ID)
	assert.Equal(t, "Podgrupa 1", g.Name)
}

func TestRenameGroupDiscardsBlank(t *testing.T) {
	l := newTestLedger()

	assert.False(t, l.RenameGroup(1, "  "))
	assert.True(t, l.RenameGroup(1, "Roboty ziemne"))
	assert.Equal(t, "Roboty ziemne", l.Groups()[1].Name)
	assert.False(t, l.RenameGroup(99, "nope"))
}

func TestSetGroupColor(t *testing.T) {
	l := newTestLedger()

	assert.True(t, l.SetGroupColor(2, "#123456"))
	assert.Equal(t, "#123456", l.Groups()[2].Color)
	assert.False(t, l.SetGroupColor(99, "#000000"))
}

func TestDeleteGroupReassignsMembers(t *testing.T) {
	l := newTestLedger()
	a := l.AddElement(model.Element{Name: "a", Group: 1, Quantity: 1, Price: 10})

	require.True(t, l.DeleteGroup(1))

	els := l.Elements()
	assert.Equal(t, model.UngroupedID, els[indexByClientID(els, a.ClientID)].Group)
	for _, g := range l.Groups() {
		assert.NotEqual(t, 1, g.ID)
	}
}

func TestDeleteGroupZeroIsNoOp(t *testing.T) {
	l := newTestLedger()
	assert.False(t, l.DeleteGroup(model.UngroupedID))
	assert.False(t, l.DeleteGroup(42))
}

func TestRemoveFromGroup(t *testing.T) {
	l := newTestLedger()
	a := l.AddElement(model.Element{Name: "a", Group: 2, Quantity: 1, Price: 10})

	require.True(t, l.RemoveFromGroup(a.ClientID))
	els := l.Elements()
	assert.Equal(t, model.UngroupedID, els[indexByClientID(els, a.ClientID)].Group)
	assert.False(t, l.RemoveFromGroup("missing"))
}

func TestApplyRemoteReplacesStateAndRecomputes(t *testing.T) {
	l := newTestLedger()
	l.AddElement(model.Element{Name: "old", Quantity: 1, Price: 1})

	l.ApplyRemote(model.Content{
		Elements: []model.Element{
			{ClientID: "n", Name: "new", Quantity: 1, Price: 100, Value: 100},
			{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23},
		},
	})

	els := l.Elements()
	require.Len(t, els, 2)
	assert.Equal(t, 23.0, els[indexByClientID(els, "vat")].Value)
	assert.Less(t, indexByClientID(els, "old"), 0)
}

func TestContentSnapshotIsNormalized(t *testing.T) {
	l := newTestLedger()
	l.AddElement(model.Element{Name: "b", Group: 1, Quantity: 1, Price: 1})
	l.AddElement(model.Element{Name: "a", Quantity: 1, Price: 1})

	c := l.Content()
	require.Len(t, c.Elements, 2)
	// Ungrouped elements come first in the snapshot.
	assert.Equal(t, model.UngroupedID, c.Elements[0].Group)
	assert.Equal(t, 1, c.Elements[1].Group)
	assert.Equal(t, model.ContentVersion, c.Version)
}

func TestLedgerMoveRecomputesGroupTaxes(t *testing.T) {
	group1 := 1
	l := New(model.Content{
		Groups: []model.Group{{ID: 1, Name: "g1"}},
		Elements: []model.Element{
			{ClientID: "a", Name: "a", Group: 0, Quantity: 1, Price: 100, Value: 100},
			{ClientID: "t", Name: "narzut", Group: 1, IsTax: true, TaxPercentage: 10, TaxTarget: &group1},
		},
	})

	l.Move("a", GroupTarget(1))

	els := l.Elements()
	assert.Equal(t, 1, els[indexByClientID(els, "a")].Group)
	assert.Equal(t, 10.0, els[indexByClientID(els, "t")].Value)
}
