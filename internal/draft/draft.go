// Package draft holds the client-side order-in-progress: a durable,
// recoverable draft keyed per table session, and the merge logic applied
// while a human composes the order.
package draft

import "fmt"

// QuickOrderTable is the reserved table sentinel for counter ("quick")
// orders that are not bound to a physical table.
const QuickOrderTable = "0"

// Key identifies one draft: a restaurant plus a table or session.
type Key struct {
	RestaurantID string
	TableID      string
}

func (k Key) String() string {
	return fmt.Sprintf("draft:%s:%s", k.RestaurantID, k.TableID)
}

// Line is one composed draft line. UnitPrice already includes the menu
// discount and the selected extras; OriginalPrice carries the pre-discount
// reference for strikethrough display only.
type Line struct {
	ID            string              `json:"id"`
	MenuItemID    string              `json:"menuItemId"`
	Name          string              `json:"name"`
	UnitPrice     float64             `json:"unitPrice"`
	OriginalPrice float64             `json:"originalPrice,omitempty"`
	Quantity      int                 `json:"quantity"`
	Notes         string              `json:"notes,omitempty"`
	Extras        map[string][]string `json:"extras,omitempty"`
	Currency      string              `json:"currency,omitempty"`
	IsCustom      bool                `json:"isCustom,omitempty"`
}

// Draft is the not-yet-submitted representation of an order being
// composed. Plain serializable data, no live references.
type Draft struct {
	Items           []Line `json:"items"`
	CustomerName    string `json:"customerName,omitempty"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	CustomerAddress string `json:"customerAddress,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// HasItems reports whether the draft still has anything to show; an empty
// draft clears the "show draft" UI signal.
func (d Draft) HasItems() bool {
	return len(d.Items) > 0
}

// Clone returns a deep copy suitable for a submission backup: mutating
// the live draft afterwards must not touch the snapshot.
func (d Draft) Clone() Draft {
	out := d
	out.Items = make([]Line, len(d.Items))
	for i, line := range d.Items {
		out.Items[i] = line
		if line.Extras != nil {
			extras := make(map[string][]string, len(line.Extras))
			for group, options := range line.Extras {
				extras[group] = append([]string(nil), options...)
			}
			out.Items[i].Extras = extras
		}
	}
	return out
}
