package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

// Repository reads catalog rows and applies the counters that checkout and
// settlement maintain on them. Soft-deleted rows are never returned.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindProduct loads a live product. A missing row yields (nil, nil).
func (r *Repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariant loads a live product variant. A missing row yields (nil, nil).
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindCollection loads a live collection. A missing row yields (nil, nil).
func (r *Repository) FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.WithContext(ctx).First(&collection, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// DecrementStock removes qty units when enough stock remains. It reports false
// when the guard failed (untracked stock or not enough units left).
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock IS NOT NULL AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// IncrementSalesCount bumps sales_count for each product by the given amount.
// Deleted products are still counted so historical sales stay accurate.
func (r *Repository) IncrementSalesCount(ctx context.Context, counts map[uuid.UUID]int) error {
	for productID, n := range counts {
		if n <= 0 {
			continue
		}
		err := r.db.WithContext(ctx).
			Unscoped().
			Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("sales_count", gorm.Expr("sales_count + ?", n)).Error
		if err != nil {
			return err
		}
	}
	return nil
}
