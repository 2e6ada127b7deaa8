package enums

import "fmt"

// OutboxAggregateType names the entity an outbox event is about.
type OutboxAggregateType string

const (
	AggregateOrder         OutboxAggregateType = "order"
	AggregateOrderLine     OutboxAggregateType = "order_line"
	AggregateCheckoutGroup OutboxAggregateType = "checkout_group"
	AggregatePayout        OutboxAggregateType = "payout"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderLine,
	AggregateCheckoutGroup,
	AggregatePayout,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType names a domain event relayed to Pub/Sub.
type OutboxEventType string

const (
	EventOrderCreated          OutboxEventType = "order.created"
	EventOrderPaid             OutboxEventType = "order.paid"
	EventOrderPaymentRejected  OutboxEventType = "order.payment_rejected"
	EventOrderPaymentReminder  OutboxEventType = "order.payment_reminder"
	EventOrderLineStateChanged OutboxEventType = "order_line.status_changed"
	EventPayoutRequested       OutboxEventType = "payout.requested"
	EventPayoutProcessed       OutboxEventType = "payout.processed"
	EventPayoutRejected        OutboxEventType = "payout.rejected"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderCreated,
	EventOrderPaid,
	EventOrderPaymentRejected,
	EventOrderPaymentReminder,
	EventOrderLineStateChanged,
	EventPayoutRequested,
	EventPayoutProcessed,
	EventPayoutRejected,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
