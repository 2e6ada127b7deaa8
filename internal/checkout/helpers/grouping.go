package helpers

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/craftmarket-backend/internal/commission"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// RateSource resolves commission rates for a seller's line.
type RateSource interface {
	RateFor(ctx context.Context, sellerID uuid.UUID, class enums.FulfillmentClass) (decimal.Decimal, error)
}

// SplitLine is a resolved line with its fee and earning computed.
type SplitLine struct {
	pricing.ResolvedLine
	PlatformFeeCents   int64
	SellerEarningCents int64
}

// SellerSplit aggregates what one seller earns inside a sub-order.
type SellerSplit struct {
	SellerID      uuid.UUID
	SubtotalCents int64
	FeeCents      int64
	EarningCents  int64
	ShippingCents int64
}

// SubOrder is one settlement-independent slice of a checkout.
type SubOrder struct {
	FulfillmentClass    enums.FulfillmentClass
	Lines               []SplitLine
	Sellers             []SellerSplit
	Shipping            types.ShippingBreakdown
	SubtotalCents       int64
	ShippingCents       int64
	TotalCents          int64
	PlatformFeeCents    int64
	SellerEarningsCents int64
}

// HasStockTrackedLines reports whether any line needs a stock decrement.
func (s SubOrder) HasStockTrackedLines() bool {
	for _, line := range s.Lines {
		if line.StockTracked && line.ProductID != nil {
			return true
		}
	}
	return false
}

// Partition splits resolved lines into at most two sub-orders, physical first.
// Shipping from the quote is charged on the physical sub-order only and
// credited to the sellers that ship.
func Partition(ctx context.Context, lines []pricing.ResolvedLine, quote types.ShippingBreakdown, rates RateSource) ([]SubOrder, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.InvalidCart("cart is empty")
	}
	if rates == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "commission rates unavailable")
	}

	var physical, digital []pricing.ResolvedLine
	for _, line := range lines {
		if line.IsPhysical() {
			physical = append(physical, line)
		} else {
			digital = append(digital, line)
		}
	}

	cache := rateCache{source: rates, rates: map[rateKey]decimal.Decimal{}}
	out := make([]SubOrder, 0, 2)
	if len(physical) > 0 {
		order, err := buildSubOrder(ctx, enums.FulfillmentClassPhysical, physical, quote, &cache)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	if len(digital) > 0 {
		order, err := buildSubOrder(ctx, enums.FulfillmentClassDigital, digital, nil, &cache)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func buildSubOrder(ctx context.Context, class enums.FulfillmentClass, lines []pricing.ResolvedLine, quote types.ShippingBreakdown, cache *rateCache) (SubOrder, error) {
	order := SubOrder{FulfillmentClass: class, Lines: make([]SplitLine, 0, len(lines))}
	sellers := map[uuid.UUID]*SellerSplit{}

	for _, line := range lines {
		rate, err := cache.rateFor(ctx, line.SellerID, line.FulfillmentClass)
		if err != nil {
			return SubOrder{}, err
		}
		amount := line.LineTotalCents()
		fee, earning := commission.Split(amount, rate)
		order.Lines = append(order.Lines, SplitLine{ResolvedLine: line, PlatformFeeCents: fee, SellerEarningCents: earning})

		split := sellers[line.SellerID]
		if split == nil {
			split = &SellerSplit{SellerID: line.SellerID}
			sellers[line.SellerID] = split
		}
		split.SubtotalCents += amount
		split.FeeCents += fee
		split.EarningCents += earning

		order.SubtotalCents += amount
		order.PlatformFeeCents += fee
		order.SellerEarningsCents += earning
	}

	if class == enums.FulfillmentClassPhysical {
		for _, allocation := range quote {
			split, ok := sellers[allocation.SellerID]
			if !ok {
				continue
			}
			split.ShippingCents += allocation.AmountCents
			split.EarningCents += allocation.AmountCents
			order.ShippingCents += allocation.AmountCents
			order.SellerEarningsCents += allocation.AmountCents
			order.Shipping = append(order.Shipping, allocation)
		}
	}
	order.TotalCents = order.SubtotalCents + order.ShippingCents

	ids := make([]uuid.UUID, 0, len(sellers))
	for id := range sellers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	order.Sellers = make([]SellerSplit, 0, len(ids))
	for _, id := range ids {
		order.Sellers = append(order.Sellers, *sellers[id])
	}
	return order, nil
}

type rateKey struct {
	seller uuid.UUID
	class  enums.FulfillmentClass
}

type rateCache struct {
	source RateSource
	rates  map[rateKey]decimal.Decimal
}

func (c *rateCache) rateFor(ctx context.Context, sellerID uuid.UUID, class enums.FulfillmentClass) (decimal.Decimal, error) {
	key := rateKey{seller: sellerID, class: class}
	if rate, ok := c.rates[key]; ok {
		return rate, nil
	}
	rate, err := c.source.RateFor(ctx, sellerID, class)
	if err != nil {
		return decimal.Zero, err
	}
	c.rates[key] = rate
	return rate, nil
}

// PhysicalSellers returns the physical lines grouped by seller, the shape the
// shipping allocator consumes.
func PhysicalSellers(lines []pricing.ResolvedLine) map[uuid.UUID][]pricing.ResolvedLine {
	return pricing.GroupBySeller(pricing.PhysicalOnly(lines))
}
