// Package catalog is the terminal's read model of the restaurant:
// menu items with discounts and extras, the ordered tax list, exchange
// rates, and the closed-order archive.
package catalog

import (
	"qmenus-system/internal/currency"
	"qmenus-system/internal/pricing"
)

// ExtraOption is one selectable option inside an extras group, optionally
// priced on top of the item price.
type ExtraOption struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ExtraGroup is a named group of options (size, toppings, ...).
type ExtraGroup struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Options []ExtraOption `json:"options"`
}

// MenuItem is a menu entry as the ordering UI sees it. Price is the
// tax-inclusive base price before discount.
type MenuItem struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Price           float64      `json:"price"`
	DiscountPercent float64      `json:"discountPercent,omitempty"`
	Extras          []ExtraGroup `json:"extras,omitempty"`
}

// Restaurant carries the pricing context the display math needs: the base
// currency, the ordered tax list baked into every price, and the
// operator-entered exchange rates.
type Restaurant struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Currency string                  `json:"currency"`
	Taxes    []pricing.Tax           `json:"taxes"`
	Rates    []currency.ExchangeRate `json:"rates"`
}
