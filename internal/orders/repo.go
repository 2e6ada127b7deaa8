package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (r *repository) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrdersByCheckoutGroup(ctx context.Context, checkoutGroupID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLines).
		Where("checkout_group_id = ?", checkoutGroupID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).First(&line, "id = ?", lineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := orderLines(r.db.WithContext(ctx).Where("order_id = ?", orderID)).Find(&lines).Error
	return lines, err
}

func (r *repository) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (pagination.Page[models.Order], error) {
	query, err := pagination.Apply(r.db.WithContext(ctx).Model(&models.Order{}).Where("buyer_id = ?", buyerID), params)
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}
	var rows []models.Order
	if err := query.Preload("Lines", orderLines).Find(&rows).Error; err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.BuildPage(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

func (r *repository) ListSellerLines(ctx context.Context, filters SellerLineFilters, params pagination.Params) (pagination.Page[models.OrderLine], error) {
	base := r.db.WithContext(ctx).Model(&models.OrderLine{})
	if filters.SellerID != nil {
		base = base.Where("seller_id = ?", *filters.SellerID)
	}
	if filters.Status != nil {
		base = base.Where("fulfillment_status = ?", *filters.Status)
	}
	if filters.FulfillmentClass != nil {
		base = base.Where("fulfillment_class = ?", *filters.FulfillmentClass)
	}
	query, err := pagination.Apply(base, params)
	if err != nil {
		return pagination.Page[models.OrderLine]{}, err
	}
	var rows []models.OrderLine
	if err := query.Find(&rows).Error; err != nil {
		return pagination.Page[models.OrderLine]{}, err
	}
	return pagination.BuildPage(rows, params.Limit, func(l models.OrderLine) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	}), nil
}

// FindPendingManualBefore returns unverified orders created before cutoff, oldest first.
func (r *repository) FindPendingManualBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.SettlementStatusPending, cutoff).
		Order("created_at ASC").
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

// MarkPaid moves a pending order to paid. It reports false when the order was
// not pending, leaving the row untouched.
func (r *repository) MarkPaid(ctx context.Context, orderID uuid.UUID, verifiedBy *uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.SettlementStatusPending).
		Updates(map[string]any{
			"status":      enums.SettlementStatusPaid,
			"is_verified": true,
			"verified_at": at,
			"verified_by": verifiedBy,
			"updated_at":  at,
		})
	return res.RowsAffected == 1, res.Error
}

// MarkRejected moves a pending order to rejected with the admin's reason.
func (r *repository) MarkRejected(ctx context.Context, orderID uuid.UUID, reason string, decidedBy uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, enums.SettlementStatusPending).
		Updates(map[string]any{
			"status":           enums.SettlementStatusRejected,
			"rejection_reason": reason,
			"verified_by":      decidedBy,
			"updated_at":       at,
		})
	return res.RowsAffected == 1, res.Error
}

// TransitionLine applies updates only while the line is still in from.
func (r *repository) TransitionLine(ctx context.Context, lineID uuid.UUID, from enums.FulfillmentStatus, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("id = ? AND fulfillment_status = ?", lineID, from).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
