package enums

import "fmt"

// EarningStatus tracks whether a realized earning has been covered by a processed payout.
type EarningStatus string

const (
	EarningStatusPending EarningStatus = "pending"
	EarningStatusPaidOut EarningStatus = "paid_out"
)

// IsValid reports whether the value is a known EarningStatus.
func (e EarningStatus) IsValid() bool {
	return e == EarningStatusPending || e == EarningStatusPaidOut
}

// PayoutStatus is the lifecycle of a seller withdrawal request.
type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "pending"
	PayoutStatusProcessed PayoutStatus = "processed"
	PayoutStatusRejected  PayoutStatus = "rejected"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusPending,
	PayoutStatusProcessed,
	PayoutStatusRejected,
}

// String implements fmt.Stringer.
func (p PayoutStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PayoutStatus.
func (p PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsTerminal reports whether an admin decision has been recorded.
func (p PayoutStatus) IsTerminal() bool {
	return p == PayoutStatusProcessed || p == PayoutStatusRejected
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}

// PayoutMethod is where a seller wants their balance sent. Payouts only go
// through the manual rails.
type PayoutMethod = PaymentMethod

// IsPayoutMethod reports whether the method can receive payouts.
func IsPayoutMethod(method PaymentMethod) bool {
	return method.IsManual()
}
