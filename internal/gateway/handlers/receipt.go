package handlers

import (
	"log"

	"github.com/shopspring/decimal"

	"qmenus-system/internal/catalog"
	"qmenus-system/internal/currency"
	"qmenus-system/internal/pricing"
)

type ReceiptTaxLine struct {
	Name          string `json:"name"`
	LocalizedName string `json:"localized_name,omitempty"`
	Amount        string `json:"amount"`
}

type Receipt struct {
	Subtotal string           `json:"subtotal"`
	Taxes    []ReceiptTaxLine `json:"taxes"`
	Total    string           `json:"total"`
	Currency string           `json:"currency"`
}

// buildReceipt decomposes an authoritative total into display lines. A
// breakdown that fails to reconcile is never shown: the receipt degrades
// to subtotal = total with no tax lines.
func buildReceipt(restaurant catalog.Restaurant, total float64, lines []pricing.Line, displayCurrency string) Receipt {
	breakdown, err := pricing.Decompose(total, lines, restaurant.Taxes)
	showTaxes := err == nil
	if err != nil {
		log.Printf("receipt: breakdown does not reconcile for total %.4f: %v", total, err)
		breakdown = pricing.Breakdown{Subtotal: total}
	}

	display := func(amount float64) (string, string) {
		converted := currency.Convert(amount, restaurant.Currency, displayCurrency, restaurant.Rates)
		return decimal.NewFromFloat(converted.Amount).StringFixed(2), converted.Currency
	}

	subtotal, code := display(breakdown.Subtotal)
	receipt := Receipt{
		Subtotal: subtotal,
		Taxes:    []ReceiptTaxLine{},
		Currency: code,
	}
	if showTaxes {
		for i, tax := range restaurant.Taxes {
			amount, _ := display(breakdown.PerTax[i])
			receipt.Taxes = append(receipt.Taxes, ReceiptTaxLine{
				Name:          tax.Name,
				LocalizedName: tax.LocalizedName,
				Amount:        amount,
			})
		}
	}
	receipt.Total, _ = display(total)
	return receipt
}
