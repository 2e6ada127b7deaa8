package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

// Repository persists seller shipping rate tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) RateLister {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) ListBySellers(ctx context.Context, sellerIDs []uuid.UUID) (map[uuid.UUID][]models.ShippingRate, error) {
	out := make(map[uuid.UUID][]models.ShippingRate, len(sellerIDs))
	if len(sellerIDs) == 0 {
		return out, nil
	}
	var rows []models.ShippingRate
	err := r.db.WithContext(ctx).
		Where("seller_id IN ?", sellerIDs).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SellerID] = append(out[row.SellerID], row)
	}
	return out, nil
}

func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.ShippingRate, error) {
	rates, err := r.ListBySellers(ctx, []uuid.UUID{sellerID})
	if err != nil {
		return nil, err
	}
	if rows := rates[sellerID]; rows != nil {
		return rows, nil
	}
	return []models.ShippingRate{}, nil
}

func (r *Repository) Create(ctx context.Context, rate *models.ShippingRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

// FindByID returns (nil, nil) when the rate does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error) {
	var rate models.ShippingRate
	err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShippingRate{}).Error
}
