package enums

import "fmt"

// SettlementStatus is the payment state of an order.
type SettlementStatus string

const (
	SettlementStatusPending  SettlementStatus = "pending"
	SettlementStatusPaid     SettlementStatus = "paid"
	SettlementStatusRejected SettlementStatus = "rejected"
)

var validSettlementStatuses = []SettlementStatus{
	SettlementStatusPending,
	SettlementStatusPaid,
	SettlementStatusRejected,
}

// String implements fmt.Stringer.
func (s SettlementStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SettlementStatus.
func (s SettlementStatus) IsValid() bool {
	for _, candidate := range validSettlementStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSettlementStatus converts raw input into a SettlementStatus.
func ParseSettlementStatus(value string) (SettlementStatus, error) {
	for _, candidate := range validSettlementStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid settlement status %q", value)
}

// PaymentMethod is how the buyer settles an order.
type PaymentMethod string

const (
	PaymentMethodInstapay     PaymentMethod = "instapay"
	PaymentMethodVodafoneCash PaymentMethod = "vodafone_cash"
	PaymentMethodOrangeCash   PaymentMethod = "orange_cash"
	PaymentMethodEtisalatCash PaymentMethod = "etisalat_cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodWallet       PaymentMethod = "wallet"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodInstapay,
	PaymentMethodVodafoneCash,
	PaymentMethodOrangeCash,
	PaymentMethodEtisalatCash,
	PaymentMethodBankTransfer,
	PaymentMethodCard,
	PaymentMethodWallet,
}

// manual methods settle outside the platform and need an admin to confirm the proof.
var manualPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodInstapay:     {},
	PaymentMethodVodafoneCash: {},
	PaymentMethodOrangeCash:   {},
	PaymentMethodEtisalatCash: {},
	PaymentMethodBankTransfer: {},
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsManual reports whether settlement waits on admin verification.
func (p PaymentMethod) IsManual() bool {
	_, ok := manualPaymentMethods[p]
	return ok
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
