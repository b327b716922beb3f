// Package pricing decomposes an authoritative tax-inclusive order total
// into a subtotal and itemized tax amounts that sum back to it exactly.
//
// The total itself is server-computed and never recomputed here; every
// number this package produces is display-only.
package pricing

import (
	"errors"
	"math"
)

// ReconcileTolerance is the maximum reconciliation error, in currency
// units, allowed between the decomposed parts and the original total.
const ReconcileTolerance = 1e-6

// ErrUnreconciled is returned when the decomposed subtotal and tax lines
// fail to sum back to the total within ReconcileTolerance. Callers must
// not display such a breakdown; show "subtotal = total, no taxes" instead.
var ErrUnreconciled = errors.New("pricing: breakdown does not reconcile to total")

// Line is one order line as it arrives from the server: a tax-inclusive
// price that already reflects quantity and any discount.
type Line struct {
	PriceInclusive float64
	Quantity       int
}

// Tax is one named tax rate from the restaurant's ordered tax list.
type Tax struct {
	Name          string
	LocalizedName string
	Percentage    float64
}

// Breakdown is the display decomposition of a tax-inclusive total.
// PerTax is index-aligned with the tax list passed to Decompose.
type Breakdown struct {
	Subtotal float64
	PerTax   []float64
}

// Total returns the reconciled sum of the breakdown parts.
func (b Breakdown) Total() float64 {
	total := b.Subtotal
	for _, t := range b.PerTax {
		total += t
	}
	return total
}

// TotalTaxPercent sums the effective inclusive tax rate baked into every
// item price.
func TotalTaxPercent(taxes []Tax) float64 {
	var pct float64
	for _, t := range taxes {
		pct += t.Percentage
	}
	return pct
}

// Decompose splits totalPrice into a subtotal and per-tax amounts.
//
// Each item's tax-exclusive value is rounded to the nearest integer
// currency unit before summing; the rounding happens per item, not on the
// aggregate, to match the per-item provenance of the server's total. The
// rounding remainder is then distributed across the tax lines
// proportionally to each tax's raw share, so that
// subtotal + sum(perTax) == totalPrice within ReconcileTolerance.
func Decompose(totalPrice float64, items []Line, taxes []Tax) (Breakdown, error) {
	totalTaxPct := TotalTaxPercent(taxes)

	if totalTaxPct == 0 {
		return Breakdown{Subtotal: totalPrice, PerTax: make([]float64, len(taxes))}, nil
	}

	var subtotal float64
	for _, item := range items {
		exclusive := item.PriceInclusive / (1 + totalTaxPct/100)
		subtotal += math.Round(exclusive)
	}

	raw := make([]float64, len(taxes))
	var rawSum float64
	for i, tax := range taxes {
		raw[i] = subtotal * tax.Percentage / 100
		rawSum += raw[i]
	}

	difference := totalPrice - subtotal - rawSum

	if rawSum == 0 {
		// No tax mass to absorb the remainder; fold it into the subtotal.
		return Breakdown{Subtotal: totalPrice, PerTax: raw}, nil
	}

	adjusted := make([]float64, len(taxes))
	for i := range raw {
		adjusted[i] = raw[i] + difference*raw[i]/rawSum
	}

	breakdown := Breakdown{Subtotal: subtotal, PerTax: adjusted}
	if math.Abs(breakdown.Total()-totalPrice) > ReconcileTolerance {
		return Breakdown{}, ErrUnreconciled
	}
	return breakdown, nil
}
