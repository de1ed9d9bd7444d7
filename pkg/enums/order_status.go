package enums

import "fmt"

// OrderStatus tracks where an order sits in its lifecycle.
type OrderStatus string

const (
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusShipped         OrderStatus = "Shipped"
	OrderStatusDelivered       OrderStatus = "Delivered"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusReturnRequested OrderStatus = "Return Requested"
	OrderStatusReturned        OrderStatus = "Returned"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
	OrderStatusReturned,
}

// orderTransitions is the single source of truth for legal status moves.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing:      {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:         {OrderStatusDelivered},
	OrderStatusDelivered:       {OrderStatusReturnRequested},
	OrderStatusReturnRequested: {OrderStatusReturned},
}

// adminTargets are the statuses an admin may set directly.
var adminTargets = []OrderStatus{
	OrderStatusShipped,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// IsAdminTarget reports whether admins may set the status via the status endpoint.
func (s OrderStatus) IsAdminTarget() bool {
	for _, candidate := range adminTargets {
		if candidate == s {
			return true
		}
	}
	return false
}

// NotifiesCustomer reports whether reaching the status triggers a customer update.
func (s OrderStatus) NotifiesCustomer() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
