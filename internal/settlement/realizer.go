package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/commission"
	"github.com/angelmondragon/craftmarket-backend/internal/ledger"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/internal/products"
	"github.com/angelmondragon/craftmarket-backend/internal/shipping"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// Realization summarizes the earnings written for one paid order.
type Realization struct {
	Earnings       []models.Earning
	Inserted       int64
	TotalCents     int64
	FrozenShipping bool
}

// Realizer turns a paid order into seller earnings. It runs inside the
// caller's transaction and is safe to repeat: earnings are unique per
// (order, seller), and a repeat writes nothing else.
type Realizer interface {
	Realize(ctx context.Context, tx *gorm.DB, actor types.Actor, order *models.Order) (*Realization, error)
}

// RealizerParams wires the realizer.
type RealizerParams struct {
	Commission commission.Calculator
	Shipping   shipping.Allocator
	Ledger     ledger.Repository
	Products   *products.Repository
	Outbox     outboxPublisher
	Logger     *logger.Logger
}

type realizer struct {
	calc     commission.Calculator
	alloc    shipping.Allocator
	ledger   ledger.Repository
	products *products.Repository
	outbox   outboxPublisher
	logg     *logger.Logger
	now      func() time.Time
}

// NewRealizer builds the earnings realizer shared by checkout and payment verification.
func NewRealizer(params RealizerParams) (Realizer, error) {
	if params.Commission == nil {
		return nil, fmt.Errorf("commission calculator required")
	}
	if params.Shipping == nil {
		return nil, fmt.Errorf("shipping allocator required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &realizer{
		calc:     params.Commission,
		alloc:    params.Shipping,
		ledger:   params.Ledger,
		products: params.Products,
		outbox:   params.Outbox,
		logg:     params.Logger,
		now:      time.Now,
	}, nil
}

type rateKey struct {
	seller uuid.UUID
	class  enums.FulfillmentClass
}

func (r *realizer) Realize(ctx context.Context, tx *gorm.DB, actor types.Actor, order *models.Order) (*Realization, error) {
	if order == nil {
		return nil, fmt.Errorf("order required")
	}
	calc := r.calc.WithTx(tx)

	rates := map[rateKey]decimal.Decimal{}
	perSeller := map[uuid.UUID]int64{}
	physicalSellers := map[uuid.UUID][]pricing.ResolvedLine{}
	salesCounts := map[uuid.UUID]int{}
	for _, line := range order.Lines {
		key := rateKey{seller: line.SellerID, class: line.FulfillmentClass}
		rate, ok := rates[key]
		if !ok {
			var err error
			rate, err = calc.RateFor(ctx, line.SellerID, line.FulfillmentClass)
			if err != nil {
				return nil, err
			}
			rates[key] = rate
		}
		_, earning := commission.Split(line.LineTotalCents, rate)
		perSeller[line.SellerID] += earning

		if line.FulfillmentClass == enums.FulfillmentClassPhysical {
			physicalSellers[line.SellerID] = append(physicalSellers[line.SellerID], pricing.ResolvedLine{
				SellerID:         line.SellerID,
				UnitPriceCents:   line.UnitPriceCents,
				FulfillmentClass: line.FulfillmentClass,
			})
		}
		if line.ProductID != nil {
			salesCounts[*line.ProductID]++
		}
	}

	breakdown, frozen, err := r.shippingFor(ctx, tx, order, physicalSellers)
	if err != nil {
		return nil, err
	}
	for _, allocation := range breakdown {
		if _, ok := physicalSellers[allocation.SellerID]; !ok {
			continue
		}
		perSeller[allocation.SellerID] += allocation.AmountCents
	}

	sellerIDs := make([]uuid.UUID, 0, len(perSeller))
	for id := range perSeller {
		sellerIDs = append(sellerIDs, id)
	}
	shipping.SortSellerIDs(sellerIDs)

	now := r.now().UTC()
	result := &Realization{FrozenShipping: frozen}
	for _, id := range sellerIDs {
		result.Earnings = append(result.Earnings, models.Earning{
			ID:          uuid.New(),
			CreatorID:   id,
			OrderID:     order.ID,
			AmountCents: perSeller[id],
			Status:      enums.EarningStatusPending,
			CreatedAt:   now,
		})
		result.TotalCents += perSeller[id]
	}

	inserted, err := r.ledger.WithTx(tx).InsertEarnings(ctx, result.Earnings)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert earnings")
	}
	result.Inserted = inserted
	if inserted == 0 && len(result.Earnings) > 0 {
		// Already realized; the first run counted sales and emitted the event.
		result.TotalCents = 0
		return result, nil
	}

	if err := r.products.WithTx(tx).IncrementSalesCount(ctx, salesCounts); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment sales count")
	}

	earnings := make([]SellerEarning, 0, len(result.Earnings))
	for _, e := range result.Earnings {
		earnings = append(earnings, SellerEarning{SellerID: e.CreatorID, AmountCents: e.AmountCents})
	}
	err = r.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPaid,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         outbox.ActorFrom(actor),
		OccurredAt:    now,
		Data: OrderPaidEvent{
			OrderID:          order.ID,
			CheckoutGroupID:  order.CheckoutGroupID,
			BuyerID:          order.BuyerID,
			TotalCents:       order.TotalCents,
			PlatformFeeCents: order.TotalCents - result.TotalCents,
			Earnings:         earnings,
			FrozenShipping:   frozen,
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order paid event")
	}
	return result, nil
}

// shippingFor re-allocates shipping for the order's physical sellers. When
// rates changed since checkout the frozen breakdown is what the buyer paid,
// so it wins.
func (r *realizer) shippingFor(ctx context.Context, tx *gorm.DB, order *models.Order, sellers map[uuid.UUID][]pricing.ResolvedLine) (types.ShippingBreakdown, bool, error) {
	if len(sellers) == 0 {
		return nil, false, nil
	}
	current, err := r.alloc.WithTx(tx).Allocate(ctx, order.ShippingRegion, sellers)
	if err != nil {
		return nil, false, err
	}
	if current.Total() == order.ShippingCents {
		return current, false, nil
	}
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"order_id":             order.ID.String(),
		"charged_shipping":     order.ShippingCents,
		"reallocated_shipping": current.Total(),
	})
	r.logg.Warn(logCtx, "shipping rates changed since checkout; using frozen breakdown")
	return order.ShippingBreakdown, true, nil
}
