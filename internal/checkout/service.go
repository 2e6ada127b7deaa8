package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/internal/cart"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout/helpers"
	"github.com/angelmondragon/craftmarket-backend/internal/commission"
	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/internal/products"
	"github.com/angelmondragon/craftmarket-backend/internal/settlement"
	"github.com/angelmondragon/craftmarket-backend/internal/shipping"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type checkoutMetrics interface {
	IncOrdersCreated(paymentMethod string, n int)
	IncStockRace()
	AddEarnings(cents int64)
}

// Service executes checkout orchestration.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

// ServiceParams wires the checkout orchestrator.
type ServiceParams struct {
	Tx         txRunner
	Cart       cart.CartRepository
	Orders     orders.Repository
	Products   *products.Repository
	Commission commission.Calculator
	Shipping   shipping.Allocator
	Realizer   settlement.Realizer
	Stock      StockDecrementer
	Outbox     outboxPublisher
	Notifier   notifications.Notifier
	Metrics    checkoutMetrics
	Logger     *logger.Logger
	Config     config.CheckoutConfig
}

type service struct {
	tx           txRunner
	cart         cart.CartRepository
	orders       orders.Repository
	products     *products.Repository
	calc         commission.Calculator
	alloc        shipping.Allocator
	realizer     settlement.Realizer
	stock        StockDecrementer
	outbox       outboxPublisher
	notifier     notifications.Notifier
	metrics      checkoutMetrics
	logg         *logger.Logger
	requireProof bool
	now          func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Commission == nil {
		return nil, fmt.Errorf("commission calculator required")
	}
	if params.Shipping == nil {
		return nil, fmt.Errorf("shipping allocator required")
	}
	if params.Realizer == nil {
		return nil, fmt.Errorf("earnings realizer required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	stock := params.Stock
	if stock == nil {
		var err error
		if stock, err = NewStockDecrementer(params.Products); err != nil {
			return nil, err
		}
	}
	return &service{
		tx:           params.Tx,
		cart:         params.Cart,
		orders:       params.Orders,
		products:     params.Products,
		calc:         params.Commission,
		alloc:        params.Shipping,
		realizer:     params.Realizer,
		stock:        stock,
		outbox:       params.Outbox,
		notifier:     params.Notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		requireProof: params.Config.RequireManualProof,
		now:          time.Now,
	}, nil
}

// deps is the set of readers a checkout step uses, bound to a transaction or not.
type deps struct {
	cart     cart.CartRepository
	resolver pricing.Resolver
	calc     commission.Calculator
	alloc    shipping.Allocator
}

func (s *service) bind(tx *gorm.DB) (deps, error) {
	resolver, err := pricing.NewResolver(s.products.WithTx(tx))
	if err != nil {
		return deps{}, err
	}
	return deps{
		cart:     s.cart.WithTx(tx),
		resolver: resolver,
		calc:     s.calc.WithTx(tx),
		alloc:    s.alloc.WithTx(tx),
	}, nil
}

// priced is the outcome of resolve + allocate + partition.
type priced struct {
	resolved  []pricing.ResolvedLine
	shipping  types.ShippingBreakdown
	subOrders []helpers.SubOrder
}

func (s *service) price(ctx context.Context, d deps, actor types.Actor, lines []pricing.CartLine, address *types.Address) (priced, string, error) {
	if len(lines) == 0 {
		items, err := d.cart.ListByBuyer(ctx, actor.UserID)
		if err != nil {
			return priced{}, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		lines = cart.ToCartLines(items)
	}
	if len(lines) == 0 {
		return priced{}, "", pkgerrors.InvalidCart("cart is empty")
	}

	resolved, err := d.resolver.Resolve(ctx, lines)
	if err != nil {
		return priced{}, "", err
	}

	physical := helpers.PhysicalSellers(resolved)
	region, err := helpers.ValidateShippingAddress(address, len(physical) > 0)
	if err != nil {
		return priced{}, "", err
	}

	breakdown := types.ShippingBreakdown{}
	if len(physical) > 0 {
		breakdown, err = d.alloc.Allocate(ctx, region, physical)
		if err != nil {
			return priced{}, "", err
		}
	}

	subOrders, err := helpers.Partition(ctx, resolved, breakdown, d.calc)
	if err != nil {
		return priced{}, "", err
	}
	return priced{resolved: resolved, shipping: breakdown, subOrders: subOrders}, region, nil
}

// Quote prices the cart against the destination. Nothing is written.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if err := requireBuyer(input.Actor); err != nil {
		return nil, err
	}
	d, err := s.bind(nil)
	if err != nil {
		return nil, err
	}
	var address *types.Address
	if input.Region != "" {
		address = &types.Address{Region: input.Region}
	}
	p, _, err := s.price(ctx, d, input.Actor, input.Lines, address)
	if err != nil {
		return nil, err
	}

	result := &QuoteResult{
		SubOrders:  p.subOrders,
		Shipping:   p.shipping,
		Unresolved: p.shipping.HasUnresolved(),
	}
	for _, sub := range p.subOrders {
		result.SubtotalCents += sub.SubtotalCents
		result.ShippingCents += sub.ShippingCents
		result.TotalCents += sub.TotalCents
	}
	return result, nil
}

// Execute places the orders for a cart. Pricing, order rows, earnings for
// auto-paid orders, cart clearing and outbox events share one transaction;
// stock decrement and notifications follow the commit.
func (s *service) Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	actor := input.Actor
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	payment, err := helpers.ValidatePayment(input.PaymentMethod, input.PaymentProof, s.requireProof)
	if err != nil {
		return nil, err
	}

	groupID := uuid.New()
	result := &CheckoutResult{CheckoutGroupID: groupID}
	tracked := map[uuid.UUID]struct{}{}
	var earned int64

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		d, err := s.bind(tx)
		if err != nil {
			return err
		}
		p, region, err := s.price(ctx, d, actor, input.Lines, input.ShippingAddress)
		if err != nil {
			return err
		}
		if input.QuotedShippingCents != nil && *input.QuotedShippingCents != p.shipping.Total() {
			return pkgerrors.New(pkgerrors.CodeConflict, "shipping quote changed").
				WithDetails(map[string]int64{
					"quoted_shipping_cents":  *input.QuotedShippingCents,
					"current_shipping_cents": p.shipping.Total(),
				})
		}
		for _, line := range p.resolved {
			if line.StockTracked && line.ProductID != nil {
				tracked[*line.ProductID] = struct{}{}
			}
		}

		repo := s.orders.WithTx(tx)
		now := s.now().UTC()
		for _, sub := range p.subOrders {
			order := buildOrder(groupID, actor.UserID, sub, payment, input.ShippingAddress, region, now)
			if err := repo.CreateOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
			lines := buildLines(order.ID, sub, now)
			if err := repo.CreateLines(ctx, lines); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
			}
			order.Lines = lines

			if order.Status == enums.SettlementStatusPaid {
				realization, err := s.realizer.Realize(ctx, tx, actor, order)
				if err != nil {
					return err
				}
				earned += realization.TotalCents
			}
			if err := s.emitOrderCreated(ctx, tx, actor, order, sub); err != nil {
				return err
			}
			result.Orders = append(result.Orders, *order)
		}

		if _, err := d.cart.ClearForBuyer(ctx, actor.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed == nil || typed.Code() == pkgerrors.CodeDependency {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"buyer_id":          actor.UserID.String(),
				"checkout_group_id": groupID.String(),
			})
			s.logg.Error(logCtx, "checkout failed", err)
		}
		return nil, err
	}

	result.Warnings = s.decrementStock(ctx, result.Orders, tracked)
	if s.metrics != nil {
		s.metrics.IncOrdersCreated(string(payment.Method), len(result.Orders))
		s.metrics.AddEarnings(earned)
	}
	for _, order := range result.Orders {
		s.notifier.Notify(ctx, notifications.OrderPlaced(order))
	}
	return result, nil
}

// decrementStock runs after commit. A failed guard leaves the order in place
// and comes back as a warning.
func (s *service) decrementStock(ctx context.Context, created []models.Order, tracked map[uuid.UUID]struct{}) []StockRaceWarning {
	warnings := []StockRaceWarning{}
	for _, order := range created {
		for _, line := range order.Lines {
			if line.FulfillmentClass != enums.FulfillmentClassPhysical || line.ProductID == nil {
				continue
			}
			if _, ok := tracked[*line.ProductID]; !ok {
				continue
			}
			ok, err := s.stock.Decrement(ctx, *line.ProductID, line.Quantity)
			if err == nil && ok {
				continue
			}
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"product_id": line.ProductID.String(),
				"order_id":   order.ID.String(),
				"quantity":   line.Quantity,
			})
			if err != nil {
				s.logg.Error(logCtx, "stock decrement failed", err)
			} else {
				s.logg.Warn(logCtx, "stock ran out after checkout")
			}
			if s.metrics != nil {
				s.metrics.IncStockRace()
			}
			warnings = append(warnings, StockRaceWarning{
				ProductID: *line.ProductID,
				OrderID:   order.ID,
				Quantity:  line.Quantity,
				Message:   fmt.Sprintf("%s may be oversold; the seller has been left to confirm availability", line.Title),
			})
		}
	}
	return warnings
}

func (s *service) emitOrderCreated(ctx context.Context, tx *gorm.DB, actor types.Actor, order *models.Order, sub helpers.SubOrder) error {
	sellerIDs := make([]uuid.UUID, 0, len(sub.Sellers))
	for _, seller := range sub.Sellers {
		sellerIDs = append(sellerIDs, seller.SellerID)
	}
	err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         outbox.ActorFrom(actor),
		OccurredAt:    order.CreatedAt,
		Data: OrderCreatedEvent{
			OrderID:          order.ID,
			CheckoutGroupID:  order.CheckoutGroupID,
			BuyerID:          order.BuyerID,
			FulfillmentClass: order.FulfillmentClass,
			Status:           order.Status,
			PaymentMethod:    order.PaymentMethod,
			TotalCents:       order.TotalCents,
			SellerIDs:        sellerIDs,
		},
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit order created event")
	}
	return nil
}

func buildOrder(groupID, buyerID uuid.UUID, sub helpers.SubOrder, payment helpers.PaymentDecision, address *types.Address, region string, now time.Time) *models.Order {
	order := &models.Order{
		ID:                  uuid.New(),
		CheckoutGroupID:     groupID,
		BuyerID:             buyerID,
		FulfillmentClass:    sub.FulfillmentClass,
		SubtotalCents:       sub.SubtotalCents,
		ShippingCents:       sub.ShippingCents,
		TotalCents:          sub.TotalCents,
		PlatformFeeCents:    sub.PlatformFeeCents,
		SellerEarningsCents: sub.SellerEarningsCents,
		PaymentMethod:       payment.Method,
		PaymentProof:        payment.Proof,
		Status:              payment.Status,
		IsVerified:          payment.Verified,
		ShippingBreakdown:   sub.Shipping,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if payment.Verified {
		order.VerifiedAt = &now
	}
	if sub.FulfillmentClass == enums.FulfillmentClassPhysical {
		order.ShippingAddress = address
		order.ShippingRegion = region
	}
	return order
}

func buildLines(orderID uuid.UUID, sub helpers.SubOrder, now time.Time) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(sub.Lines))
	for _, line := range sub.Lines {
		row := models.OrderLine{
			ID:                 uuid.New(),
			OrderID:            orderID,
			ProductID:          line.ProductID,
			VariantID:          line.VariantID,
			CollectionID:       line.CollectionID,
			SellerID:           line.SellerID,
			Title:              line.Title,
			FulfillmentClass:   line.FulfillmentClass,
			UnitPriceCents:     line.UnitPriceCents,
			Quantity:           line.Quantity,
			LineTotalCents:     line.LineTotalCents(),
			PlatformFeeCents:   line.PlatformFeeCents,
			SellerEarningCents: line.SellerEarningCents,
			Customization:      line.Customization,
			SelectedVariant:    line.SelectedVariant,
			FulfillmentStatus:  enums.FulfillmentStatusPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if !line.IsPhysical() {
			delivered := now
			row.FulfillmentStatus = enums.FulfillmentStatusDelivered
			row.DeliveredAt = &delivered
		}
		lines = append(lines, row)
	}
	return lines
}

func requireBuyer(actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.IsSystem() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "system actor cannot check out")
	}
	return nil
}
