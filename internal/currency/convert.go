// Package currency converts display amounts between a restaurant's base
// currency and any quoted currency it holds an exchange rate for.
package currency

import "strings"

// ExchangeRate is one operator-entered rate for a quoted currency.
// Operators enter rates in whichever direction they think in, so the rate
// carries no declared direction; see Convert for the heuristic.
type ExchangeRate struct {
	Currency     string  `json:"currency"`
	ExchangeRate float64 `json:"exchangeRate"`
	IsActive     bool    `json:"isActive"`
}

// Amount is a converted amount tagged with the currency it is quoted in.
type Amount struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Convert converts amountInBase from the base currency to targetCurrency.
//
// An empty or equal target returns the amount unchanged. A missing or
// inactive rate is not an error: the base-currency amount is returned so
// the display never blocks on rate data.
//
// Rate direction is inferred from magnitude: a rate >= 1 is read as units
// of base per one unit of target (divide), a rate < 1 as units of target
// per one unit of base (multiply). At exactly 1 both readings agree.
func Convert(amountInBase float64, baseCurrency, targetCurrency string, rates []ExchangeRate) Amount {
	if targetCurrency == "" || strings.EqualFold(targetCurrency, baseCurrency) {
		return Amount{Amount: amountInBase, Currency: baseCurrency}
	}

	for _, rate := range rates {
		if !rate.IsActive || !strings.EqualFold(rate.Currency, targetCurrency) {
			continue
		}
		if rate.ExchangeRate >= 1 {
			return Amount{Amount: amountInBase / rate.ExchangeRate, Currency: rate.Currency}
		}
		return Amount{Amount: amountInBase * rate.ExchangeRate, Currency: rate.Currency}
	}

	return Amount{Amount: amountInBase, Currency: baseCurrency}
}
