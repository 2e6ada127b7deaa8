package main

import (
	"fmt"

	"github.com/angelmondragon/craftmarket-backend/api/routes"
	"github.com/angelmondragon/craftmarket-backend/internal/cart"
	"github.com/angelmondragon/craftmarket-backend/internal/checkout"
	"github.com/angelmondragon/craftmarket-backend/internal/commission"
	"github.com/angelmondragon/craftmarket-backend/internal/fulfillment"
	"github.com/angelmondragon/craftmarket-backend/internal/ledger"
	"github.com/angelmondragon/craftmarket-backend/internal/notifications"
	"github.com/angelmondragon/craftmarket-backend/internal/orders"
	"github.com/angelmondragon/craftmarket-backend/internal/products"
	"github.com/angelmondragon/craftmarket-backend/internal/settlement"
	"github.com/angelmondragon/craftmarket-backend/internal/shipping"
	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db"
	"github.com/angelmondragon/craftmarket-backend/pkg/logger"
	"github.com/angelmondragon/craftmarket-backend/pkg/metrics"
	"github.com/angelmondragon/craftmarket-backend/pkg/outbox"
)

// wire builds the service graph over one database client. Redis-backed
// middleware dependencies are filled in by the caller.
func wire(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, orderMetrics *metrics.OrderMetrics) (routes.Deps, error) {
	conn := dbClient.DB()

	productRepo := products.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	historyRepo := fulfillment.NewHistoryRepository(conn)
	shippingRepo := shipping.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)

	notificationSvc, err := notifications.NewService(notifications.NewRepository(conn), logg)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("notifications service: %w", err)
	}
	cartSvc, err := cart.NewService(cart.NewRepository(conn), productRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("cart service: %w", err)
	}
	orderSvc, err := orders.NewService(orderRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("orders service: %w", err)
	}
	shippingSvc, err := shipping.NewService(shippingRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("shipping service: %w", err)
	}
	allocator, err := shipping.NewAllocator(shippingRepo)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("shipping allocator: %w", err)
	}
	calculator, err := commission.NewCalculator(commission.NewProfileRepository(conn), cfg.Commission)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("commission calculator: %w", err)
	}
	ledgerRepo := ledger.NewRepository(conn)

	realizer, err := settlement.NewRealizer(settlement.RealizerParams{
		Commission: calculator,
		Shipping:   allocator,
		Ledger:     ledgerRepo,
		Products:   productRepo,
		Outbox:     outboxSvc,
		Logger:     logg,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("realizer: %w", err)
	}
	settlementSvc, err := settlement.NewService(settlement.ServiceParams{
		Orders:   orderRepo,
		History:  historyRepo,
		Realizer: realizer,
		Tx:       dbClient,
		Outbox:   outboxSvc,
		Notifier: notificationSvc,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("settlement service: %w", err)
	}
	fulfillmentSvc, err := fulfillment.NewService(fulfillment.ServiceParams{
		Orders:   orderRepo,
		History:  historyRepo,
		Tx:       dbClient,
		Outbox:   outboxSvc,
		Notifier: notificationSvc,
		Metrics:  orderMetrics,
		Logger:   logg,
		Config:   cfg.Fulfillment,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("fulfillment service: %w", err)
	}
	ledgerSvc, err := ledger.NewService(ledger.ServiceParams{
		Repo:     ledgerRepo,
		Tx:       dbClient,
		Outbox:   outboxSvc,
		Notifier: notificationSvc,
		Metrics:  orderMetrics,
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("ledger service: %w", err)
	}
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Tx:         dbClient,
		Cart:       cart.NewRepository(conn),
		Orders:     orderRepo,
		Products:   productRepo,
		Commission: calculator,
		Shipping:   allocator,
		Realizer:   realizer,
		Outbox:     outboxSvc,
		Notifier:   notificationSvc,
		Metrics:    orderMetrics,
		Logger:     logg,
		Config:     cfg.Checkout,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("checkout service: %w", err)
	}

	return routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Cart:          cartSvc,
		Checkout:      checkoutSvc,
		Orders:        orderSvc,
		Fulfillment:   fulfillmentSvc,
		Settlement:    settlementSvc,
		Shipping:      shippingSvc,
		Ledger:        ledgerSvc,
		Notifications: notificationSvc,
	}, nil
}
