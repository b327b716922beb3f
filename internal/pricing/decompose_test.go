package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompose_SingleItemSingleTax(t *testing.T) {
	// 118.00 inclusive at 18% decomposes to 100 + 18.
	breakdown, err := Decompose(
		118.00,
		[]Line{{PriceInclusive: 118.00, Quantity: 1}},
		[]Tax{{Name: "GST", Percentage: 18}},
	)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, breakdown.Subtotal, ReconcileTolerance)
	require.Len(t, breakdown.PerTax, 1)
	assert.InDelta(t, 18.0, breakdown.PerTax[0], ReconcileTolerance)
	assert.InDelta(t, 118.00, breakdown.Total(), ReconcileTolerance)
}

func TestDecompose_TwoItemsTwoTaxes_RemainderFillsTaxLines(t *testing.T) {
	// Per-item rounding at the combined 15% rate: 50/1.15 = 43.478 -> 43
	// per item, subtotal 86. The 1.10 remainder must land in the tax lines
	// so the parts still sum to exactly 100.
	breakdown, err := Decompose(
		100,
		[]Line{
			{PriceInclusive: 50, Quantity: 1},
			{PriceInclusive: 50, Quantity: 1},
		},
		[]Tax{
			{Name: "VAT", Percentage: 10},
			{Name: "Service", Percentage: 5},
		},
	)
	require.NoError(t, err)

	assert.InDelta(t, 86.0, breakdown.Subtotal, ReconcileTolerance)
	require.Len(t, breakdown.PerTax, 2)
	assert.InDelta(t, 100.0, breakdown.Total(), ReconcileTolerance)

	// Remainder is distributed proportionally to each tax's raw share.
	assert.Greater(t, breakdown.PerTax[0], 8.6)
	assert.Greater(t, breakdown.PerTax[1], 4.3)
	assert.InDelta(t, 2.0, breakdown.PerTax[0]/breakdown.PerTax[1], 1e-9)
}

func TestDecompose_ZeroTaxes(t *testing.T) {
	breakdown, err := Decompose(
		118.50,
		[]Line{{PriceInclusive: 118.50, Quantity: 1}},
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, 118.50, breakdown.Subtotal)
	assert.Empty(t, breakdown.PerTax)
}

func TestDecompose_ZeroPercentTaxList(t *testing.T) {
	// Taxes present but all at 0%: subtotal equals the total and the
	// per-tax slice stays aligned with the tax list.
	breakdown, err := Decompose(
		42.75,
		[]Line{{PriceInclusive: 42.75, Quantity: 1}},
		[]Tax{{Name: "Exempt", Percentage: 0}},
	)
	require.NoError(t, err)

	assert.Equal(t, 42.75, breakdown.Subtotal)
	require.Len(t, breakdown.PerTax, 1)
	assert.Zero(t, breakdown.PerTax[0])
}

func TestDecompose_SingleItemAbsorbsRemainder(t *testing.T) {
	// 99.99 at 18%: 99.99/1.18 = 84.737 -> 85. The negative remainder is
	// absorbed entirely by the single tax line.
	breakdown, err := Decompose(
		99.99,
		[]Line{{PriceInclusive: 99.99, Quantity: 1}},
		[]Tax{{Name: "GST", Percentage: 18}},
	)
	require.NoError(t, err)

	assert.InDelta(t, 85.0, breakdown.Subtotal, ReconcileTolerance)
	assert.InDelta(t, 99.99, breakdown.Total(), ReconcileTolerance)
}

func TestDecompose_ZeroSubtotalFoldsIntoSubtotal(t *testing.T) {
	// All lines round to zero, so there is no raw tax mass; the whole
	// total shows as subtotal rather than a broken breakdown.
	breakdown, err := Decompose(
		0.40,
		[]Line{{PriceInclusive: 0.40, Quantity: 1}},
		[]Tax{{Name: "VAT", Percentage: 10}},
	)
	require.NoError(t, err)

	assert.Equal(t, 0.40, breakdown.Subtotal)
	require.Len(t, breakdown.PerTax, 1)
	assert.Zero(t, breakdown.PerTax[0])
}

func TestDecompose_ReconcilesAcrossManyShapes(t *testing.T) {
	taxSets := [][]Tax{
		{},
		{{Name: "GST", Percentage: 18}},
		{{Name: "VAT", Percentage: 10}, {Name: "Service", Percentage: 5}},
		{{Name: "A", Percentage: 7.5}, {Name: "B", Percentage: 2.5}, {Name: "C", Percentage: 1}},
	}

	for _, taxes := range taxSets {
		for _, prices := range [][]float64{
			{118},
			{50, 50},
			{33.33, 19.99, 240},
			{1234.56},
			{0.99, 0.99, 0.99, 0.99},
		} {
			var items []Line
			var total float64
			for _, p := range prices {
				items = append(items, Line{PriceInclusive: p, Quantity: 1})
				total += p
			}

			breakdown, err := Decompose(total, items, taxes)
			require.NoError(t, err)
			assert.InDelta(t, total, breakdown.Total(), ReconcileTolerance,
				"total %v taxes %v", total, taxes)
		}
	}
}

func TestTotalTaxPercent(t *testing.T) {
	assert.Zero(t, TotalTaxPercent(nil))
	assert.Equal(t, 15.0, TotalTaxPercent([]Tax{{Percentage: 10}, {Percentage: 5}}))
}

func TestDecompose_SubtotalIsPerItemRounded(t *testing.T) {
	// Three items at 118 each under 18%: each rounds to 100 on its own.
	breakdown, err := Decompose(
		354,
		[]Line{
			{PriceInclusive: 118, Quantity: 1},
			{PriceInclusive: 118, Quantity: 1},
			{PriceInclusive: 118, Quantity: 1},
		},
		[]Tax{{Name: "GST", Percentage: 18}},
	)
	require.NoError(t, err)

	assert.InDelta(t, 300, breakdown.Subtotal, ReconcileTolerance)
	assert.True(t, breakdown.Subtotal == math.Trunc(breakdown.Subtotal))
}
