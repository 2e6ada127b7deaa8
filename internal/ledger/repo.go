package ledger

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

// Repository persists earnings and payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertEarnings(ctx context.Context, rows []models.Earning) (int64, error)
	SumEarnings(ctx context.Context, sellerID uuid.UUID) (int64, error)
	SumPayouts(ctx context.Context, sellerID uuid.UUID, statuses ...enums.PayoutStatus) (int64, error)
	LockSeller(ctx context.Context, sellerID uuid.UUID) error
	CreatePayout(ctx context.Context, payout *models.Payout) error
	FindPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	DecidePayout(ctx context.Context, id uuid.UUID, decision PayoutDecision) (bool, error)
	ListPendingEarnings(ctx context.Context, sellerID uuid.UUID) ([]models.Earning, error)
	MarkEarningsPaidOut(ctx context.Context, ids []uuid.UUID) (int64, error)
	ListEarnings(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (pagination.Page[models.Earning], error)
	ListPayouts(ctx context.Context, filters PayoutFilters, params pagination.Params) (pagination.Page[models.Payout], error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the ledger repository to the provided DB handle.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// InsertEarnings writes earnings, skipping any (order, creator) pair already present.
// It returns how many rows were actually inserted.
func (r *repository) InsertEarnings(ctx context.Context, rows []models.Earning) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "creator_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *repository) SumEarnings(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Earning{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("creator_id = ?", sellerID).
		Scan(&total).Error
	return total, err
}

func (r *repository) SumPayouts(ctx context.Context, sellerID uuid.UUID, statuses ...enums.PayoutStatus) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("user_id = ?", sellerID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	err := query.Scan(&total).Error
	return total, err
}

// LockSeller serializes balance-changing work per seller by locking the
// seller profile row, creating it when the seller has none yet.
func (r *repository) LockSeller(ctx context.Context, sellerID uuid.UUID) error {
	profile := models.SellerProfile{UserID: sellerID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&profile).Error; err != nil {
		return err
	}
	query := r.db.WithContext(ctx)
	// SQLite has no row locks; its single writer already serializes the transaction.
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return query.First(&profile, "user_id = ?", sellerID).Error
}

func (r *repository) CreatePayout(ctx context.Context, payout *models.Payout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) FindPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var payout models.Payout
	err := r.db.WithContext(ctx).First(&payout, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

// DecidePayout moves a pending payout to its final status.
func (r *repository) DecidePayout(ctx context.Context, id uuid.UUID, decision PayoutDecision) (bool, error) {
	updates := map[string]any{
		"status":     decision.Status,
		"admin_note": decision.Note,
		"decided_by": decision.DecidedBy,
	}
	if decision.Status == enums.PayoutStatusProcessed {
		updates["processed_at"] = decision.At
	}
	res := r.db.WithContext(ctx).
		Model(&models.Payout{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusPending).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

// ListPendingEarnings returns the seller's unpaid earnings, oldest first.
func (r *repository) ListPendingEarnings(ctx context.Context, sellerID uuid.UUID) ([]models.Earning, error) {
	var rows []models.Earning
	err := r.db.WithContext(ctx).
		Where("creator_id = ? AND status = ?", sellerID, enums.EarningStatusPending).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkEarningsPaidOut(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.Earning{}).
		Where("id IN ? AND status = ?", ids, enums.EarningStatusPending).
		Update("status", enums.EarningStatusPaidOut)
	return res.RowsAffected, res.Error
}

func (r *repository) ListEarnings(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (pagination.Page[models.Earning], error) {
	query, err := pagination.Apply(r.db.WithContext(ctx).Model(&models.Earning{}).Where("creator_id = ?", sellerID), params)
	if err != nil {
		return pagination.Page[models.Earning]{}, err
	}
	var rows []models.Earning
	if err := query.Find(&rows).Error; err != nil {
		return pagination.Page[models.Earning]{}, err
	}
	return pagination.BuildPage(rows, params.Limit, func(e models.Earning) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	}), nil
}

func (r *repository) ListPayouts(ctx context.Context, filters PayoutFilters, params pagination.Params) (pagination.Page[models.Payout], error) {
	base := r.db.WithContext(ctx).Model(&models.Payout{})
	if filters.SellerID != nil {
		base = base.Where("user_id = ?", *filters.SellerID)
	}
	if filters.Status != nil {
		base = base.Where("status = ?", *filters.Status)
	}
	query, err := pagination.ApplyOn(base, params, "requested_at")
	if err != nil {
		return pagination.Page[models.Payout]{}, err
	}
	var rows []models.Payout
	if err := query.Find(&rows).Error; err != nil {
		return pagination.Page[models.Payout]{}, err
	}
	return pagination.BuildPage(rows, params.Limit, func(p models.Payout) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.RequestedAt, ID: p.ID}
	}), nil
}

// PayoutDecision is the admin's verdict on a pending payout.
type PayoutDecision struct {
	Status    enums.PayoutStatus
	Note      *string
	DecidedBy uuid.UUID
	At        time.Time
}
