package types

import "github.com/google/uuid"

// ShippingAllocation is one seller's share of an order's shipping charge.
type ShippingAllocation struct {
	SellerID      uuid.UUID `json:"seller_id"`
	AmountCents   int64     `json:"amount_cents"`
	MatchedRegion string    `json:"matched_region,omitempty"`
	MinDays       *int      `json:"min_days,omitempty"`
	MaxDays       *int      `json:"max_days,omitempty"`
	Unresolved    bool      `json:"unresolved"`
}

// ShippingBreakdown freezes the per-seller allocation used when an order was placed.
type ShippingBreakdown []ShippingAllocation

// Total sums the allocated amounts.
func (b ShippingBreakdown) Total() int64 {
	var total int64
	for _, line := range b {
		total += line.AmountCents
	}
	return total
}

// ForSeller returns the seller's allocation, if any.
func (b ShippingBreakdown) ForSeller(sellerID uuid.UUID) (ShippingAllocation, bool) {
	for _, line := range b {
		if line.SellerID == sellerID {
			return line, true
		}
	}
	return ShippingAllocation{}, false
}

// HasUnresolved reports whether any seller had no rate for the destination.
func (b ShippingBreakdown) HasUnresolved() bool {
	for _, line := range b {
		if line.Unresolved {
			return true
		}
	}
	return false
}
