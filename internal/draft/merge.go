package draft

import (
	"encoding/json"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"qmenus-system/internal/catalog"
)

// Fingerprint canonically serializes an extras selection so that two
// logically identical selections always compare equal, regardless of map
// insertion order or option order within a group.
func Fingerprint(extras map[string][]string) string {
	if len(extras) == 0 {
		return ""
	}

	canonical := make(map[string][]string, len(extras))
	for group, options := range extras {
		sorted := append([]string(nil), options...)
		sort.Strings(sorted)
		canonical[group] = sorted
	}

	// json.Marshal emits map keys in sorted order, which pins the group
	// order down as well.
	data, err := json.Marshal(canonical)
	if err != nil {
		return ""
	}
	return string(data)
}

// EffectiveUnitPrice is the per-unit price of a selection: the menu price
// with the item discount applied, plus every priced extra option selected.
func EffectiveUnitPrice(item catalog.MenuItem, extras map[string][]string) float64 {
	price := decimal.NewFromFloat(item.Price)
	if item.DiscountPercent > 0 {
		factor := decimal.NewFromFloat(1).Sub(
			decimal.NewFromFloat(item.DiscountPercent).Div(decimal.NewFromInt(100)))
		price = price.Mul(factor)
	}

	for _, group := range item.Extras {
		selected, ok := extras[group.ID]
		if !ok {
			continue
		}
		for _, option := range group.Options {
			for _, id := range selected {
				if id == option.ID {
					price = price.Add(decimal.NewFromFloat(option.Price))
				}
			}
		}
	}

	return price.Round(2).InexactFloat64()
}

// AddSelection adds a menu selection to the draft. A line with the same
// menu item and the same extras fingerprint absorbs the quantity (and
// takes new notes, if any); any other configuration becomes its own line,
// so differently-configured selections of one item never silently merge.
func AddSelection(d Draft, item catalog.MenuItem, quantity int, notes string, extras map[string][]string, currencyCode string) Draft {
	out := d.Clone()
	fingerprint := Fingerprint(extras)

	for i, line := range out.Items {
		if line.IsCustom || line.MenuItemID != item.ID {
			continue
		}
		if Fingerprint(line.Extras) != fingerprint {
			continue
		}
		out.Items[i].Quantity += quantity
		if notes != "" {
			out.Items[i].Notes = notes
		}
		return out
	}

	line := Line{
		ID:         uuid.NewString(),
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  EffectiveUnitPrice(item, extras),
		Quantity:   quantity,
		Notes:      notes,
		Extras:     extras,
		Currency:   currencyCode,
	}
	if item.DiscountPercent > 0 {
		line.OriginalPrice = item.Price
	}
	out.Items = append(out.Items, line)
	return out
}

// AddCustomLine appends a freeform non-menu item at an operator-entered
// price. Custom lines never merge.
func AddCustomLine(d Draft, name string, unitPrice float64, quantity int, notes, currencyCode string) Draft {
	out := d.Clone()
	out.Items = append(out.Items, Line{
		ID:        uuid.NewString(),
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Notes:     notes,
		Currency:  currencyCode,
		IsCustom:  true,
	})
	return out
}

// RemoveLine drops one line by id. Callers check HasItems afterwards to
// keep the "show draft" signal consistent.
func RemoveLine(d Draft, lineID string) Draft {
	out := d.Clone()
	items := out.Items[:0]
	for _, line := range out.Items {
		if line.ID != lineID {
			items = append(items, line)
		}
	}
	out.Items = items
	return out
}
