package prescription

import "time"

// DefaultOrderReason is used when the caller supplies no reason for an
// unavailable item.
const DefaultOrderReason = "out of stock"

// ComposeOrder builds one procurement order covering every unavailable
// item, so a prescription causes at most one order however many items it
// misses. Quantities default to 1 and reasons to DefaultOrderReason.
// Returns nil when there is nothing to order.
func ComposeOrder(unavailable []LineItem, now time.Time) *Order {
	if len(unavailable) == 0 {
		return nil
	}

	items := make([]OrderItem, 0, len(unavailable))
	for _, item := range unavailable {
		items = append(items, OrderItem{
			Name:     item.Name,
			Quantity: requestedQuantity(item),
			Reason:   DefaultOrderReason,
		})
	}

	return &Order{
		Items:     items,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
