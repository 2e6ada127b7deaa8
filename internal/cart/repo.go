package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

// Repository manages persisted cart lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *Repository) FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).First(&item, "id = ? AND buyer_id = ?", id, buyerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes a single line owned by the buyer and reports rows removed.
func (r *Repository) Delete(ctx context.Context, id, buyerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND buyer_id = ?", id, buyerID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// ClearForBuyer empties the buyer's cart.
func (r *Repository) ClearForBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
