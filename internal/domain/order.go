package domain

import "time"

// ─── Order Types ────────────────────────────────────────────────────────────

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivery  OrderStatus = "delivery"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderDelivery, OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to another.
//
//	pending → {confirmed, cancelled}
//	confirmed → {delivery, cancelled}
//	delivery → delivered
//	any non-refunded → refunded (including already-cancelled)
//
// cancelled, delivered and refunded are terminal for forward progress.
func CanTransition(from, to OrderStatus) bool {
	if to == OrderRefunded {
		return from != OrderRefunded
	}
	switch from {
	case OrderPending:
		return to == OrderConfirmed || to == OrderCancelled
	case OrderConfirmed:
		return to == OrderDelivery || to == OrderCancelled
	case OrderDelivery:
		return to == OrderDelivered
	}
	return false
}

// DaySelection records whether a weekday was selected and, optionally,
// the concrete delivery date it resolves to.
type DaySelection struct {
	Selected bool      `json:"selected"`
	Date     time.Time `json:"date,omitzero"`
}

// Selections maps weekday → selection flag for one order.
type Selections map[Weekday]DaySelection

// Count returns how many days are marked selected.
func (s Selections) Count() int {
	n := 0
	for _, sel := range s {
		if sel.Selected {
			n++
		}
	}
	return n
}

// Order is a weekly meal order. Created atomically with a debit ledger
// entry and the account balance decrement; status transitions only mutate
// the status and timestamp fields, never recreate the row.
type Order struct {
	ID                  string      `json:"id"`
	AccountID           string      `json:"account_id"`
	Selections          Selections  `json:"selected_meals"`
	CreditCost          int64       `json:"credit_cost"`
	DeliveryAddress     Address     `json:"delivery_address"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	Phone               string      `json:"phone_number,omitempty"`
	Status              OrderStatus `json:"status"`
	ConfirmedAt         time.Time   `json:"confirmed_at,omitzero"`
	DeliveredAt         time.Time   `json:"delivered_at,omitzero"`
	CancelledAt         time.Time   `json:"cancelled_at,omitzero"`
	RefundedAt          time.Time   `json:"refunded_at,omitzero"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// ─── Notification Events ────────────────────────────────────────────────────

// Event names fired on order-lifecycle transitions. Dispatch is
// best-effort and never fails the owning operation.
type OrderEvent string

const (
	EventOrderPlaced    OrderEvent = "ORDER_PLACED"
	EventOrderConfirmed OrderEvent = "ORDER_CONFIRMED"
	EventOrderDelivery  OrderEvent = "ORDER_DELIVERY"
	EventOrderDelivered OrderEvent = "ORDER_DELIVERED"
	EventOrderCancelled OrderEvent = "ORDER_CANCELLED"
	EventOrderRefunded  OrderEvent = "ORDER_REFUNDED"
)

// EventForStatus maps a post-transition status to its notification event.
func EventForStatus(s OrderStatus) (OrderEvent, bool) {
	switch s {
	case OrderConfirmed:
		return EventOrderConfirmed, true
	case OrderDelivery:
		return EventOrderDelivery, true
	case OrderDelivered:
		return EventOrderDelivered, true
	case OrderCancelled:
		return EventOrderCancelled, true
	case OrderRefunded:
		return EventOrderRefunded, true
	}
	return "", false
}
