package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qmenus-system/internal/catalog"
	"qmenus-system/internal/currency"
	"qmenus-system/internal/pricing"
)

func testRestaurant() catalog.Restaurant {
	return catalog.Restaurant{
		ID:       "r1",
		Name:     "Test Kitchen",
		Currency: "USD",
		Taxes: []pricing.Tax{
			{Name: "VAT", LocalizedName: "ض.ق.م", Percentage: 18},
		},
		Rates: []currency.ExchangeRate{
			{Currency: "EUR", ExchangeRate: 2, IsActive: true},
		},
	}
}

func TestBuildReceipt_DecomposesInclusiveTotal(t *testing.T) {
	lines := []pricing.Line{{PriceInclusive: 118, Quantity: 1}}

	receipt := buildReceipt(testRestaurant(), 118, lines, "")

	assert.Equal(t, "100.00", receipt.Subtotal)
	require.Len(t, receipt.Taxes, 1)
	assert.Equal(t, "VAT", receipt.Taxes[0].Name)
	assert.Equal(t, "18.00", receipt.Taxes[0].Amount)
	assert.Equal(t, "118.00", receipt.Total)
	assert.Equal(t, "USD", receipt.Currency)
}

func TestBuildReceipt_ConvertsToDisplayCurrency(t *testing.T) {
	lines := []pricing.Line{{PriceInclusive: 118, Quantity: 1}}

	receipt := buildReceipt(testRestaurant(), 118, lines, "EUR")

	assert.Equal(t, "EUR", receipt.Currency)
	assert.Equal(t, "59.00", receipt.Total)
	assert.Equal(t, "50.00", receipt.Subtotal)
	require.Len(t, receipt.Taxes, 1)
	assert.Equal(t, "9.00", receipt.Taxes[0].Amount)
}

func TestBuildReceipt_UnknownDisplayCurrencyFallsBackToBase(t *testing.T) {
	lines := []pricing.Line{{PriceInclusive: 118, Quantity: 1}}

	receipt := buildReceipt(testRestaurant(), 118, lines, "JPY")

	assert.Equal(t, "USD", receipt.Currency)
	assert.Equal(t, "118.00", receipt.Total)
}

func TestBuildReceipt_NoTaxes(t *testing.T) {
	restaurant := testRestaurant()
	restaurant.Taxes = nil
	lines := []pricing.Line{{PriceInclusive: 42.5, Quantity: 1}}

	receipt := buildReceipt(restaurant, 42.5, lines, "")

	assert.Equal(t, "42.50", receipt.Subtotal)
	assert.Empty(t, receipt.Taxes)
	assert.Equal(t, "42.50", receipt.Total)
}
