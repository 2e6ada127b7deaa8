package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// Service exposes the buyer's stored cart.
type Service interface {
	List(ctx context.Context, actor types.Actor) ([]models.CartItem, error)
	AddItem(ctx context.Context, actor types.Actor, line pricing.CartLine) (*models.CartItem, error)
	RemoveItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) error
	Clear(ctx context.Context, actor types.Actor) error
}

type service struct {
	repo    CartRepository
	catalog pricing.Catalog
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, catalog pricing.Catalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &service{repo: repo, catalog: catalog}, nil
}

func (s *service) List(ctx context.Context, actor types.Actor) ([]models.CartItem, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return items, nil
}

// AddItem stores a line after checking it references live catalog rows.
// A plain line for the same item merges into the existing quantity.
func (s *service) AddItem(ctx context.Context, actor types.Actor, line pricing.CartLine) (*models.CartItem, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	if err := line.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, line); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByBuyer(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	if isPlain(line) {
		for i := range existing {
			item := existing[i]
			if !sameItem(item, line) || len(item.Customization) > 0 || item.SelectedVariant != nil {
				continue
			}
			if item.Quantity+line.Quantity > pricing.MaxLineQuantity {
				return nil, pkgerrors.InvalidCart(fmt.Sprintf("quantity must be at most %d", pricing.MaxLineQuantity))
			}
			item.Quantity += line.Quantity
			if err := s.repo.UpdateQuantity(ctx, item.ID, item.Quantity); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
			return &item, nil
		}
	}

	item := &models.CartItem{
		ID:              uuid.New(),
		BuyerID:         actor.UserID,
		ProductID:       line.ProductID,
		VariantID:       line.VariantID,
		CollectionID:    line.CollectionID,
		Quantity:        line.Quantity,
		Customization:   line.Customization,
		SelectedVariant: line.SelectedVariant,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, actor types.Actor, itemID uuid.UUID) error {
	if err := requireBuyer(actor); err != nil {
		return err
	}
	removed, err := s.repo.Delete(ctx, itemID, actor.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if removed == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, actor types.Actor) error {
	if err := requireBuyer(actor); err != nil {
		return err
	}
	if _, err := s.repo.ClearForBuyer(ctx, actor.UserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) ensureExists(ctx context.Context, line pricing.CartLine) error {
	if line.IsCollection() {
		collection, err := s.catalog.FindCollection(ctx, *line.CollectionID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
		}
		if collection == nil {
			return pkgerrors.StaleReference("collection", line.CollectionID.String())
		}
		return nil
	}
	product, err := s.catalog.FindProduct(ctx, *line.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return pkgerrors.StaleReference("product", line.ProductID.String())
	}
	return nil
}

// ToCartLines converts stored items into checkout input lines.
func ToCartLines(items []models.CartItem) []pricing.CartLine {
	lines := make([]pricing.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.CartLine{
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			CollectionID:    item.CollectionID,
			Quantity:        item.Quantity,
			Customization:   item.Customization,
			SelectedVariant: item.SelectedVariant,
		})
	}
	return lines
}

func requireBuyer(actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.IsSystem() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "system actor cannot own a cart")
	}
	return nil
}

func isPlain(line pricing.CartLine) bool {
	return len(line.Customization) == 0 && line.SelectedVariant == nil
}

func sameItem(item models.CartItem, line pricing.CartLine) bool {
	return equalID(item.ProductID, line.ProductID) &&
		equalID(item.VariantID, line.VariantID) &&
		equalID(item.CollectionID, line.CollectionID)
}

func equalID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
