package pricing

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// MaxLineQuantity bounds a single line; order_lines.quantity is a 32-bit column.
const MaxLineQuantity = 1000

// CartLine is a buyer's request for one item. It never carries a price.
type CartLine struct {
	ProductID       *uuid.UUID    `json:"product_id,omitempty"`
	VariantID       *uuid.UUID    `json:"variant_id,omitempty"`
	CollectionID    *uuid.UUID    `json:"collection_id,omitempty"`
	Quantity        int           `json:"quantity" validate:"min=1,max=1000"`
	Customization   types.JSONMap `json:"customization,omitempty"`
	SelectedVariant *string       `json:"selected_variant,omitempty"`
}

// Validate enforces the line shape: exactly one of product or collection,
// a variant only alongside a product, and a quantity within 1..MaxLineQuantity.
func (l CartLine) Validate() error {
	hasProduct := l.ProductID != nil && *l.ProductID != uuid.Nil
	hasCollection := l.CollectionID != nil && *l.CollectionID != uuid.Nil
	switch {
	case hasProduct && hasCollection:
		return pkgerrors.InvalidCart("line references both a product and a collection")
	case !hasProduct && !hasCollection:
		return pkgerrors.InvalidCart("line must reference a product or a collection")
	case l.VariantID != nil && !hasProduct:
		return pkgerrors.InvalidCart("variant requires a product")
	case l.Quantity < 1:
		return pkgerrors.InvalidCart("quantity must be at least 1")
	case l.Quantity > MaxLineQuantity:
		return pkgerrors.InvalidCart(fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
	}
	return nil
}

// IsCollection reports whether the line is a collection bundle.
func (l CartLine) IsCollection() bool {
	return l.CollectionID != nil && *l.CollectionID != uuid.Nil
}

// ResolvedLine is a cart line priced from authoritative catalog data.
type ResolvedLine struct {
	CartLine
	UnitPriceCents   int64
	SellerID         uuid.UUID
	Title            string
	FulfillmentClass enums.FulfillmentClass
	StockTracked     bool
}

// LineTotalCents is unit price times quantity. Resolve rejects lines whose
// total does not fit, so callers past the resolver can use it unchecked.
func (l ResolvedLine) LineTotalCents() int64 {
	total, _ := MulCents(l.UnitPriceCents, int64(l.Quantity))
	return total
}

// MulCents multiplies two non-negative amounts, reporting false on int64 overflow.
func MulCents(amount, qty int64) (int64, bool) {
	if amount < 0 || qty < 0 {
		return 0, false
	}
	if amount != 0 && qty > math.MaxInt64/amount {
		return 0, false
	}
	return amount * qty, true
}

// IsPhysical reports whether the line ships.
func (l ResolvedLine) IsPhysical() bool {
	return l.FulfillmentClass == enums.FulfillmentClassPhysical
}

// GroupBySeller collects lines per seller, preserving input order within each group.
func GroupBySeller(lines []ResolvedLine) map[uuid.UUID][]ResolvedLine {
	grouped := make(map[uuid.UUID][]ResolvedLine, len(lines))
	for _, line := range lines {
		grouped[line.SellerID] = append(grouped[line.SellerID], line)
	}
	return grouped
}

// PhysicalOnly filters lines to those that ship.
func PhysicalOnly(lines []ResolvedLine) []ResolvedLine {
	out := make([]ResolvedLine, 0, len(lines))
	for _, line := range lines {
		if line.IsPhysical() {
			out = append(out, line)
		}
	}
	return out
}
