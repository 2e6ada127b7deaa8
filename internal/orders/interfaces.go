package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and order lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrdersByCheckoutGroup(ctx context.Context, checkoutGroupID uuid.UUID) ([]models.Order, error)
	FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error)
	FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (pagination.Page[models.Order], error)
	ListSellerLines(ctx context.Context, filters SellerLineFilters, params pagination.Params) (pagination.Page[models.OrderLine], error)
	FindPendingManualBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, verifiedBy *uuid.UUID, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, orderID uuid.UUID, reason string, decidedBy uuid.UUID, at time.Time) (bool, error)
	TransitionLine(ctx context.Context, lineID uuid.UUID, from enums.FulfillmentStatus, updates map[string]any) (bool, error)
}
