package types

import "strings"

// Address is the buyer's shipping destination, stored as JSONB on the order.
type Address struct {
	RecipientName string  `json:"recipient_name" validate:"required,max=200"`
	Phone         string  `json:"phone" validate:"required,max=40"`
	Line1         string  `json:"line1" validate:"required,max=300"`
	Line2         *string `json:"line2,omitempty" validate:"omitempty,max=300"`
	City          string  `json:"city" validate:"required,max=120"`
	Region        string  `json:"region,omitempty" validate:"omitempty,max=120"`
	PostalCode    string  `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country       string  `json:"country,omitempty" validate:"omitempty,max=2"`
}

// ShippingRegion returns the destination used for rate lookup: the region
// (governorate) when present, otherwise the city.
func (a *Address) ShippingRegion() string {
	if a == nil {
		return ""
	}
	if region := strings.TrimSpace(a.Region); region != "" {
		return region
	}
	return strings.TrimSpace(a.City)
}
