package fulfillment

import "github.com/angelmondragon/craftmarket-backend/pkg/enums"

// allowedTransitions is the physical line lifecycle. Terminal states have no entry.
// Shipping only leaves from preparing: an accepted line must be prepared first.
var allowedTransitions = map[enums.FulfillmentStatus][]enums.FulfillmentStatus{
	enums.FulfillmentStatusPending: {
		enums.FulfillmentStatusAccepted,
		enums.FulfillmentStatusRejected,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusAccepted: {
		enums.FulfillmentStatusPreparing,
		enums.FulfillmentStatusRejected,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusPreparing: {
		enums.FulfillmentStatusShipped,
		enums.FulfillmentStatusCancelled,
	},
	enums.FulfillmentStatusShipped: {
		enums.FulfillmentStatusDelivered,
	},
}

// CanTransition reports whether a line may move from one status to another.
func CanTransition(from, to enums.FulfillmentStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// timestampColumn names the per-state timestamp stamped on entry.
func timestampColumn(to enums.FulfillmentStatus) string {
	switch to {
	case enums.FulfillmentStatusAccepted:
		return "accepted_at"
	case enums.FulfillmentStatusPreparing:
		return "preparing_at"
	case enums.FulfillmentStatusShipped:
		return "shipped_at"
	case enums.FulfillmentStatusDelivered:
		return "delivered_at"
	case enums.FulfillmentStatusRejected:
		return "rejected_at"
	case enums.FulfillmentStatusCancelled:
		return "cancelled_at"
	default:
		return ""
	}
}
