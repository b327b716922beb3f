// Package sync keeps the terminal's working set of in-flight orders
// consistent with the server of record under an asynchronous event
// stream, and runs the optimistic-submit protocol for new orders.
package sync

import "time"

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeDelivery OrderType = "DELIVERY"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether the status closes the order: it leaves the
// active working set but is kept in history.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Active reports whether an order with this status belongs in the active
// working set.
func (s Status) Active() bool {
	return !s.Terminal()
}

// Next returns the statuses reachable from s for the given order type.
// CANCELLED is reachable from every non-terminal status.
func (s Status) Next(orderType OrderType) []Status {
	switch s {
	case StatusPending:
		return []Status{StatusPreparing, StatusCancelled}
	case StatusPreparing:
		return []Status{StatusReady, StatusCancelled}
	case StatusReady:
		if orderType == OrderTypeDelivery {
			return []Status{StatusDelivered, StatusCancelled}
		}
		return []Status{StatusCompleted, StatusCancelled}
	case StatusDelivered:
		return []Status{StatusCompleted, StatusCancelled}
	default:
		return nil
	}
}

// CanTransitionTo reports whether next is a legal transition from s.
func (s Status) CanTransitionTo(next Status, orderType OrderType) bool {
	for _, candidate := range s.Next(orderType) {
		if candidate == next {
			return true
		}
	}
	return false
}

// Actors carried on update events.
const (
	UpdatedByCustomer   = "customer"
	UpdatedByRestaurant = "restaurant"
	UpdatedByKitchen    = "kitchen"
)

// QuickOrderTableNumber is the reserved sentinel denoting a counter
// ("quick") order with no physical table.
const QuickOrderTableNumber = 0

// OrderItem is one server-held order line. Price is the tax-inclusive
// line price, already reflecting quantity and any discount.
type OrderItem struct {
	ID           string              `json:"id"`
	Name         string              `json:"name,omitempty"`
	Quantity     int                 `json:"quantity"`
	Price        float64             `json:"price"`
	Discount     float64             `json:"discount,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	Extras       map[string][]string `json:"extras,omitempty"`
	IsCustomItem bool                `json:"isCustomItem,omitempty"`
	IsNew        bool                `json:"isNew,omitempty"`
	IsModified   bool                `json:"isModified,omitempty"`
}

// Order is the server-of-record order snapshot. TotalPrice is
// authoritative and server-computed; the terminal never recomputes or
// overrides it.
type Order struct {
	ID              string      `json:"id"`
	OrderType       OrderType   `json:"orderType"`
	TableNumber     *int        `json:"tableNumber,omitempty"`
	Status          Status      `json:"status"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"`
	Currency        string      `json:"currency"`
	CustomerName    string      `json:"customerName,omitempty"`
	CustomerPhone   string      `json:"customerPhone,omitempty"`
	CustomerAddress string      `json:"customerAddress,omitempty"`
	Notes           string      `json:"notes,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       *time.Time  `json:"updatedAt,omitempty"`
}

// IsQuick reports whether the order is a counter order.
func (o Order) IsQuick() bool {
	return o.TableNumber != nil && *o.TableNumber == QuickOrderTableNumber
}

// item returns the item with the given id, if present.
func (o Order) item(id string) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ID == id {
			return it, true
		}
	}
	return OrderItem{}, false
}
