package orders

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

// SellerLineFilters narrow the seller's order line queue.
type SellerLineFilters struct {
	// SellerID is nil when an admin lists every seller's lines.
	SellerID         *uuid.UUID
	Status           *enums.FulfillmentStatus
	FulfillmentClass *enums.FulfillmentClass
}
