package enums

import "fmt"

// FulfillmentClass separates lines that ship from lines delivered instantly.
type FulfillmentClass string

const (
	FulfillmentClassPhysical FulfillmentClass = "physical"
	FulfillmentClassDigital  FulfillmentClass = "digital"
)

var validFulfillmentClasses = []FulfillmentClass{
	FulfillmentClassPhysical,
	FulfillmentClassDigital,
}

// String implements fmt.Stringer.
func (f FulfillmentClass) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentClass.
func (f FulfillmentClass) IsValid() bool {
	for _, candidate := range validFulfillmentClasses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFulfillmentClass converts raw input into a FulfillmentClass.
func ParseFulfillmentClass(value string) (FulfillmentClass, error) {
	for _, candidate := range validFulfillmentClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment class %q", value)
}

// FulfillmentStatus tracks a physical order line from acceptance to delivery.
type FulfillmentStatus string

const (
	FulfillmentStatusPending   FulfillmentStatus = "pending"
	FulfillmentStatusAccepted  FulfillmentStatus = "accepted"
	FulfillmentStatusPreparing FulfillmentStatus = "preparing"
	FulfillmentStatusShipped   FulfillmentStatus = "shipped"
	FulfillmentStatusDelivered FulfillmentStatus = "delivered"
	FulfillmentStatusRejected  FulfillmentStatus = "rejected"
	FulfillmentStatusCancelled FulfillmentStatus = "cancelled"
)

var validFulfillmentStatuses = []FulfillmentStatus{
	FulfillmentStatusPending,
	FulfillmentStatusAccepted,
	FulfillmentStatusPreparing,
	FulfillmentStatusShipped,
	FulfillmentStatusDelivered,
	FulfillmentStatusRejected,
	FulfillmentStatusCancelled,
}

// String implements fmt.Stringer.
func (f FulfillmentStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FulfillmentStatus.
func (f FulfillmentStatus) IsValid() bool {
	for _, candidate := range validFulfillmentStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (f FulfillmentStatus) IsTerminal() bool {
	switch f {
	case FulfillmentStatusDelivered, FulfillmentStatusRejected, FulfillmentStatusCancelled:
		return true
	default:
		return false
	}
}

// ParseFulfillmentStatus converts raw input into a FulfillmentStatus.
func ParseFulfillmentStatus(value string) (FulfillmentStatus, error) {
	for _, candidate := range validFulfillmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment status %q", value)
}
