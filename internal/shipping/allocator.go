package shipping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// fallbackRegions are seller-entered catch-all labels, checked in rate order.
var fallbackRegions = map[string]struct{}{
	"default":    {},
	"all":        {},
	"nationwide": {},
}

// RateLister loads shipping rates for a set of sellers, each list ordered by creation.
type RateLister interface {
	WithTx(tx *gorm.DB) RateLister
	ListBySellers(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID][]models.ShippingRate, error)
}

// Allocator computes per-seller shipping for a destination.
type Allocator interface {
	WithTx(tx *gorm.DB) Allocator
	Allocate(ctx context.Context, region string, sellers map[uuid.UUID][]pricing.ResolvedLine) (types.ShippingBreakdown, error)
}

type allocator struct {
	rates RateLister
}

// NewAllocator builds an allocator reading rates from the provided lister.
func NewAllocator(rates RateLister) (Allocator, error) {
	if rates == nil {
		return nil, fmt.Errorf("rate lister required")
	}
	return &allocator{rates: rates}, nil
}

func (a *allocator) WithTx(tx *gorm.DB) Allocator {
	if tx == nil {
		return a
	}
	return &allocator{rates: a.rates.WithTx(tx)}
}

// Allocate returns one allocation per seller, in seller id order. A seller
// without a matching or fallback rate gets zero and is flagged unresolved.
func (a *allocator) Allocate(ctx context.Context, region string, sellers map[uuid.UUID][]pricing.ResolvedLine) (types.ShippingBreakdown, error) {
	if len(sellers) == 0 {
		return types.ShippingBreakdown{}, nil
	}
	ids := make([]uuid.UUID, 0, len(sellers))
	for id := range sellers {
		ids = append(ids, id)
	}
	SortSellerIDs(ids)

	rates, err := a.rates.ListBySellers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping rates")
	}

	breakdown := make(types.ShippingBreakdown, 0, len(ids))
	for _, id := range ids {
		allocation := MatchRate(rates[id], region)
		allocation.SellerID = id
		breakdown = append(breakdown, allocation)
	}
	return breakdown, nil
}

// MatchRate picks the rate for destination: an exact region match first,
// then the first fallback rate. Rates must already be in creation order.
func MatchRate(rates []models.ShippingRate, destination string) types.ShippingAllocation {
	dest := NormalizeRegion(destination)
	if dest != "" {
		for _, rate := range rates {
			if NormalizeRegion(rate.Region) == dest {
				return allocationFrom(rate)
			}
		}
	}
	for _, rate := range rates {
		if _, ok := fallbackRegions[NormalizeRegion(rate.Region)]; ok {
			return allocationFrom(rate)
		}
	}
	return types.ShippingAllocation{Unresolved: true}
}

// NormalizeRegion trims and lowercases a region label for comparison.
func NormalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

// SortSellerIDs orders ids by their string form.
func SortSellerIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
}

func allocationFrom(rate models.ShippingRate) types.ShippingAllocation {
	return types.ShippingAllocation{
		SellerID:      rate.SellerID,
		AmountCents:   rate.AmountCents,
		MatchedRegion: rate.Region,
		MinDays:       rate.MinDays,
		MaxDays:       rate.MaxDays,
	}
}
