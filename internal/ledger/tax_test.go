package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kosztorapp/kosztor/internal/model"
)

func TestRecomputeTaxesProjectScope(t *testing.T) {
	els := []model.Element{
		{ClientID: "a", Name: "a", Value: 100},
		{ClientID: "b", Name: "b", Value: 200},
		{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23, Value: 0},
	}

	out, changed := RecomputeTaxes(els)
	require.True(t, changed)
	assert.Equal(t, 69.0, out[2].Value)

	// Input slice must stay untouched when a copy was made.
	assert.Equal(t, 0.0, els[2].Value)
}

func TestRecomputeTaxesGroupScope(t *testing.T) {
	group1 := 1
	els := []model.Element{
		{ClientID: "a", Name: "a", Group: 0, Value: 100},
		{ClientID: "b", Name: "b", Group: 1, Value: 100},
		{ClientID: "t", Name: "narzut", Group: 1, IsTax: true, TaxPercentage: 10, TaxTarget: &group1, Value: 0},
	}

	out, changed := RecomputeTaxes(els)
	require.True(t, changed)
	assert.Equal(t, 10.0, out[2].Value)
}

func TestRecomputeTaxesFollowsBaseChange(t *testing.T) {
	group1 := 1
	els := []model.Element{
		{ClientID: "b", Name: "b", Group: 1, Value: 100},
		{ClientID: "t", Name: "narzut", Group: 1, IsTax: true, TaxPercentage: 10, TaxTarget: &group1, Value: 10},
	}

	// Base grows from 100 to 150; the tax follows to 15.
	els[0].Value = 150
	out, changed := RecomputeTaxes(els)
	require.True(t, changed)
	assert.Equal(t, 15.0, out[1].Value)
}

func TestRecomputeTaxesToleranceSuppressesNoise(t *testing.T) {
	els := []model.Element{
		{ClientID: "a", Name: "a", Value: 300},
		{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23, Value: 69.01},
	}

	out, changed := RecomputeTaxes(els)
	assert.False(t, changed)
	assert.Equal(t, 69.01, out[1].Value)
}

func TestRecomputeTaxesStableLedgerRoundTrips(t *testing.T) {
	els := []model.Element{
		{ClientID: "a", Name: "a", Value: 300},
		{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23, Value: 69},
	}

	out, changed := RecomputeTaxes(els)
	assert.False(t, changed)
	assert.Equal(t, els, out)
}

func TestTaxFingerprintIgnoresDerivedTaxValues(t *testing.T) {
	els := []model.Element{
		{ClientID: "a", Name: "a", Value: 100},
		{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23, Value: 23},
	}
	fp1 := TaxFingerprint(els)

	// The derived value is an output of the recompute, not an input.
	els[1].Value = 999
	assert.Equal(t, fp1, TaxFingerprint(els))

	els[0].Value = 200
	assert.NotEqual(t, fp1, TaxFingerprint(els))
}

func TestTaxFingerprintSensitiveToTaxConfig(t *testing.T) {
	els := []model.Element{
		{ClientID: "a", Name: "a", Value: 100},
		{ClientID: "vat", Name: "VAT", IsTax: true, TaxPercentage: 23},
	}
	fp1 := TaxFingerprint(els)

	els[1].TaxPercentage = 8
	fp2 := TaxFingerprint(els)
	assert.NotEqual(t, fp1, fp2)

	group1 := 1
	els[1].TaxTarget = &group1
	assert.NotEqual(t, fp2, TaxFingerprint(els))

	// A newly added tax row changes the fingerprint too.
	els = append(els, model.Element{ClientID: "t2", IsTax: true, TaxPercentage: 10})
	assert.NotEqual(t, fp2, TaxFingerprint(els))
}

func TestTaxFingerprintSensitiveToGroup(t *testing.T) {
	els := []model.Element{{ClientID: "a", Name: "a", Value: 100, Group: 0}}
	fp1 := TaxFingerprint(els)

	els[0].Group = 1
	assert.NotEqual(t, fp1, TaxFingerprint(els))
}
