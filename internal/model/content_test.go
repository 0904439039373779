package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSynthesizesUngroupedFirst(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{{ID: 2, Name: "Roboty ziemne"}},
	})

	require.Len(t, c.Groups, 2)
	assert.Equal(t, UngroupedID, c.Groups[0].ID)
	assert.Equal(t, "Brak podgrupy", c.Groups[0].Name)
	assert.Equal(t, 2, c.Groups[1].ID)
	assert.Equal(t, ContentVersion, c.Version)
}

func TestNormalizeKeepsStoredUngroupedLabel(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{
			{ID: 1, Name: "Podgrupa 1"},
			{ID: 0, Name: "Bez podziału", Color: "#eeeeee"},
		},
	})

	assert.Equal(t, "Bez podziału", c.Groups[0].Name)
	assert.Equal(t, "#eeeeee", c.Groups[0].Color)
}

func TestNormalizeDeduplicatesGroups(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{
			{ID: 1, Name: "first"},
			{ID: 1, Name: "duplicate"},
		},
	})

	require.Len(t, c.Groups, 2)
	assert.Equal(t, "first", c.Groups[1].Name)
}

func TestNormalizeCoercesElements(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{{ID: 1, Name: "Podgrupa 1"}},
		Elements: []Element{
			{Name: "dangling", Group: 99, Quantity: 2, Price: 10.005, Value: 20.011},
			{Name: "no unit", Group: 1, Quantity: 0},
		},
	})

	require.Len(t, c.Elements, 2)

	dangling := c.Elements[0]
	assert.Equal(t, UngroupedID, dangling.Group)
	assert.Equal(t, "szt", dangling.Unit)
	assert.NotEmpty(t, dangling.ClientID)
	assert.Equal(t, 10.01, dangling.Price)
	assert.Equal(t, 20.01, dangling.Value)

	noUnit := c.Elements[1]
	assert.Equal(t, 1.0, noUnit.Quantity)
}

func TestNormalizeClustersByGroupAndReassignsOrder(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{{ID: 1, Name: "g1"}},
		Elements: []Element{
			{ClientID: "a", Name: "a", Group: 1, Order: 1},
			{ClientID: "b", Name: "b", Group: 0, Order: 0},
			{ClientID: "c", Name: "c", Group: 1, Order: 0},
		},
	})

	// Group 0 first, then group 1; inside group 1, persisted order wins.
	require.Len(t, c.Elements, 3)
	assert.Equal(t, "b", c.Elements[0].ClientID)
	assert.Equal(t, "c", c.Elements[1].ClientID)
	assert.Equal(t, "a", c.Elements[2].ClientID)
	assert.Equal(t, 0, c.Elements[0].Order)
	assert.Equal(t, 0, c.Elements[1].Order)
	assert.Equal(t, 1, c.Elements[2].Order)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	c := Normalize(Content{
		Groups: []Group{{ID: 3, Name: "x"}, {ID: 1, Name: "y"}},
		Elements: []Element{
			{ClientID: "a", Name: "a", Group: 3, Order: 5},
			{ClientID: "b", Name: "b", Group: 1, Order: 2},
			{ClientID: "c", Name: "c", Group: 7, Order: 0},
		},
	})

	again := Normalize(c)
	assert.Equal(t, c, again)
}

func TestElementWireGroupConvention(t *testing.T) {
	ungrouped := Element{ClientID: "a", Name: "a", Unit: "szt", Quantity: 1}
	data, err := json.Marshal(ungrouped)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "null", string(raw["group"]))

	grouped := Element{ClientID: "b", Name: "b", Unit: "szt", Quantity: 1, Group: 3}
	data, err = json.Marshal(grouped)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "3", string(raw["group"]))
}

func TestElementUnmarshalNullGroup(t *testing.T) {
	var el Element
	require.NoError(t, json.Unmarshal(
		[]byte(`{"clientId":"a","name":"a","group":null}`), &el,
	))
	assert.Equal(t, UngroupedID, el.Group)

	require.NoError(t, json.Unmarshal(
		[]byte(`{"clientId":"a","name":"a"}`), &el,
	))
	assert.Equal(t, UngroupedID, el.Group)

	require.NoError(t, json.Unmarshal(
		[]byte(`{"clientId":"a","name":"a","group":2}`), &el,
	))
	assert.Equal(t, 2, el.Group)
}

func TestDefaultContent(t *testing.T) {
	c := DefaultContent()
	require.Len(t, c.Groups, 3)
	assert.Equal(t, UngroupedID, c.Groups[0].ID)
	assert.Equal(t, "Podgrupa 1", c.Groups[1].Name)
	assert.Equal(t, "#fef08a", c.Groups[1].Color)
	assert.Equal(t, "Podgrupa 2", c.Groups[2].Name)
	assert.Equal(t, "#bfdbfe", c.Groups[2].Color)
	assert.Empty(t, c.Elements)
}
