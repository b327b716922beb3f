package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qmenus-system/internal/catalog"
)

var pizza = catalog.MenuItem{
	ID:    "m1",
	Name:  "Margherita",
	Price: 100,
	Extras: []catalog.ExtraGroup{{
		ID:   "size",
		Name: "Size",
		Options: []catalog.ExtraOption{
			{ID: "S", Name: "Small", Price: 0},
			{ID: "L", Name: "Large", Price: 20},
		},
	}},
}

func TestAddSelection_SameExtrasMerge(t *testing.T) {
	d := AddSelection(Draft{}, pizza, 1, "", map[string][]string{"size": {"L"}}, "USD")
	d = AddSelection(d, pizza, 2, "", map[string][]string{"size": {"L"}}, "USD")

	require.Len(t, d.Items, 1)
	assert.Equal(t, 3, d.Items[0].Quantity)
}

func TestAddSelection_DifferentExtrasStaySeparate(t *testing.T) {
	d := AddSelection(Draft{}, pizza, 1, "", map[string][]string{"size": {"L"}}, "USD")
	d = AddSelection(d, pizza, 1, "", map[string][]string{"size": {"S"}}, "USD")

	require.Len(t, d.Items, 2)
	assert.Equal(t, 1, d.Items[0].Quantity)
	assert.Equal(t, 1, d.Items[1].Quantity)
}

func TestAddSelection_MergeOverwritesNotesWhenSupplied(t *testing.T) {
	d := AddSelection(Draft{}, pizza, 1, "no basil", nil, "USD")
	d = AddSelection(d, pizza, 1, "extra basil", nil, "USD")

	require.Len(t, d.Items, 1)
	assert.Equal(t, "extra basil", d.Items[0].Notes)

	d = AddSelection(d, pizza, 1, "", nil, "USD")
	assert.Equal(t, "extra basil", d.Items[0].Notes, "empty notes keep the existing notes")
}

func TestAddSelection_UnitPriceIncludesDiscountAndExtras(t *testing.T) {
	discounted := pizza
	discounted.DiscountPercent = 10

	d := AddSelection(Draft{}, discounted, 1, "", map[string][]string{"size": {"L"}}, "USD")

	require.Len(t, d.Items, 1)
	// 100 * 0.90 + 20 for the large option.
	assert.InDelta(t, 110.0, d.Items[0].UnitPrice, 1e-9)
	assert.Equal(t, 100.0, d.Items[0].OriginalPrice, "pre-discount price kept for strikethrough")
}

func TestAddSelection_DoesNotMutateInput(t *testing.T) {
	original := AddSelection(Draft{}, pizza, 1, "", nil, "USD")

	_ = AddSelection(original, pizza, 5, "", nil, "USD")

	assert.Equal(t, 1, original.Items[0].Quantity)
}

func TestFingerprint_CanonicalizesOrder(t *testing.T) {
	a := map[string][]string{"size": {"L"}, "toppings": {"olives", "cheese"}}
	b := map[string][]string{"toppings": {"cheese", "olives"}, "size": {"L"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(map[string][]string{"size": {"S"}}))
	assert.Equal(t, "", Fingerprint(nil))
}

func TestAddCustomLine_NeverMerges(t *testing.T) {
	d := AddCustomLine(Draft{}, "Birthday cake", 45, 1, "", "USD")
	d = AddCustomLine(d, "Birthday cake", 45, 1, "", "USD")

	require.Len(t, d.Items, 2)
	assert.True(t, d.Items[0].IsCustom)
}

func TestRemoveLine(t *testing.T) {
	d := AddSelection(Draft{}, pizza, 1, "", map[string][]string{"size": {"L"}}, "USD")
	d = AddSelection(d, pizza, 1, "", map[string][]string{"size": {"S"}}, "USD")
	require.Len(t, d.Items, 2)

	d = RemoveLine(d, d.Items[0].ID)
	require.Len(t, d.Items, 1)
	assert.True(t, d.HasItems())

	d = RemoveLine(d, d.Items[0].ID)
	assert.False(t, d.HasItems(), "empty draft clears the show-draft signal")
}

func TestEffectiveUnitPrice_IgnoresUnknownOptionIDs(t *testing.T) {
	price := EffectiveUnitPrice(pizza, map[string][]string{"size": {"XXL"}, "bogus": {"x"}})

	assert.InDelta(t, 100.0, price, 1e-9)
}
