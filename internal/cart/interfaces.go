package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartItem, error)
	FindByIDAndBuyer(ctx context.Context, id, buyerID uuid.UUID) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id, buyerID uuid.UUID) (int64, error)
	ClearForBuyer(ctx context.Context, buyerID uuid.UUID) (int64, error)
}
