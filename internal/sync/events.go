package sync

// Event channels shared with the backend order service. Payloads are
// plain JSON; the transport below them is not this package's concern.
const (
	ChannelNewOrder          = "orders:events:new_order"
	ChannelOrderUpdated      = "orders:events:order_updated"
	ChannelOrderStatusUpdate = "orders:events:order_status_update"
	ChannelCreateSuccess     = "orders:events:order_create_success"
	ChannelCreateFailed      = "orders:events:order_create_failed"

	ChannelCreateRequest = "orders:requests:create"
)

// OrderEvent is the inbound payload for new_order, order_updated and
// order_status_update. UpdatedBy is one of the actor constants and is
// empty on new_order.
type OrderEvent struct {
	Order     Order  `json:"order"`
	UpdatedBy string `json:"updatedBy,omitempty"`
}

// CreateOrderItem is one line of an outbound order creation.
type CreateOrderItem struct {
	MenuItemID   string              `json:"menuItemId,omitempty"`
	Name         string              `json:"name,omitempty"`
	Quantity     int                 `json:"quantity"`
	Price        float64             `json:"price"`
	Notes        string              `json:"notes,omitempty"`
	Extras       map[string][]string `json:"extras,omitempty"`
	IsCustomItem bool                `json:"isCustomItem,omitempty"`
}

// CreateOrderRequest is the one outbound emission of the optimistic
// submit protocol. ClientRequestID correlates the eventual ack.
type CreateOrderRequest struct {
	ClientRequestID string            `json:"clientRequestId"`
	RestaurantID    string            `json:"restaurantId"`
	OrderType       OrderType         `json:"orderType"`
	TableNumber     *int              `json:"tableNumber,omitempty"`
	Items           []CreateOrderItem `json:"items"`
	CustomerName    string            `json:"customerName,omitempty"`
	CustomerPhone   string            `json:"customerPhone,omitempty"`
	CustomerAddress string            `json:"customerAddress,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// SubmitAck is the success or failure acknowledgment correlated to one
// submission. Order is set on success, Reason on failure.
type SubmitAck struct {
	ClientRequestID string `json:"clientRequestId"`
	Order           *Order `json:"order,omitempty"`
	Reason          string `json:"reason,omitempty"`
}
