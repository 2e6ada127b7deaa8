package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/internal/products"
)

// StockDecrementer removes sold units from tracked inventory. It reports
// false when the product no longer has qty units left.
type StockDecrementer interface {
	Decrement(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
}

type productStock struct {
	products *products.Repository
}

// NewStockDecrementer decrements through the products repository.
func NewStockDecrementer(repo *products.Repository) (StockDecrementer, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &productStock{products: repo}, nil
}

func (p *productStock) Decrement(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	return p.products.DecrementStock(ctx, productID, qty)
}
