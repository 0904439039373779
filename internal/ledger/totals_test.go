package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kosztorapp/kosztor/internal/model"
)

func testElements() []model.Element {
	group1 := 1
	return []model.Element{
		{ClientID: "a", Name: "wykop", Group: 0, Quantity: 2, Price: 50, Value: 100},
		{ClientID: "b", Name: "beton", Group: 1, Quantity: 1, Price: 200, Value: 200},
		{ClientID: "c", Name: "VAT", Group: 0, IsTax: true, TaxPercentage: 23, Value: 69},
		{ClientID: "d", Name: "narzut", Group: 1, IsTax: true, TaxPercentage: 10, TaxTarget: &group1, Value: 20},
	}
}

func TestGroupTotals(t *testing.T) {
	totals := GroupTotals(testElements(), TotalOptions{})
	assert.Equal(t, 169.0, totals[0])
	assert.Equal(t, 220.0, totals[1])
}

func TestGroupTotalsExcludeTax(t *testing.T) {
	totals := GroupTotals(testElements(), TotalOptions{ExcludeTax: true})
	assert.Equal(t, 100.0, totals[0])
	assert.Equal(t, 200.0, totals[1])
}

func TestProjectTotal(t *testing.T) {
	assert.Equal(t, 389.0, ProjectTotal(testElements(), TotalOptions{}))
	assert.Equal(t, 300.0, ProjectTotal(testElements(), TotalOptions{ExcludeTax: true}))
}

func TestWspregScalesOnlyNonTax(t *testing.T) {
	els := testElements()
	totals := GroupTotals(els, TotalOptions{Wspreg: 1.1})

	// Non-tax values scale; tax values do not.
	assert.Equal(t, 110.0+69.0, totals[0])
	assert.Equal(t, 220.0+20.0, totals[1])
}

func TestWspregUnsetIsIdentity(t *testing.T) {
	base := ProjectTotal(testElements(), TotalOptions{})
	assert.Equal(t, base, ProjectTotal(testElements(), TotalOptions{Wspreg: 0}))
	assert.Equal(t, base, ProjectTotal(testElements(), TotalOptions{Wspreg: 1}))
}

func TestScaledDoesNotMutateInput(t *testing.T) {
	els := testElements()
	out := Scaled(els, 1.5)

	assert.Equal(t, 50.0, els[0].Price)
	assert.Equal(t, 100.0, els[0].Value)
	assert.Equal(t, 75.0, out[0].Price)
	assert.Equal(t, 150.0, out[0].Value)

	// Tax rows are passed through untouched.
	assert.Equal(t, 69.0, out[2].Value)
}
