package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/pagination"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// Service exposes order reads for buyers, sellers and admins.
type Service interface {
	ListBuyerOrders(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Order], error)
	GetOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error)
	ListSellerLines(ctx context.Context, actor types.Actor, filters SellerLineFilters, params pagination.Params) (pagination.Page[models.OrderLine], error)
}

type service struct {
	repo Repository
}

// NewService builds the order read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListBuyerOrders(ctx context.Context, actor types.Actor, params pagination.Params) (pagination.Page[models.Order], error) {
	if actor.UserID == uuid.Nil {
		return pagination.Page[models.Order]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if err := validateCursor(params); err != nil {
		return pagination.Page[models.Order]{}, err
	}
	page, err := s.repo.ListBuyerOrders(ctx, actor.UserID, params)
	if err != nil {
		return pagination.Page[models.Order]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return page, nil
}

// GetOrder returns the order to its buyer, an admin, or a seller with a line in it.
func (s *service) GetOrder(ctx context.Context, actor types.Actor, orderID uuid.UUID) (*models.Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if !CanView(actor, order) {
		return nil, pkgerrors.NotOwner("order")
	}
	return order, nil
}

func (s *service) ListSellerLines(ctx context.Context, actor types.Actor, filters SellerLineFilters, params pagination.Params) (pagination.Page[models.OrderLine], error) {
	switch {
	case actor.UserID == uuid.Nil:
		return pagination.Page[models.OrderLine]{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	case actor.Role == enums.ActorRoleSeller:
		sellerID := actor.UserID
		filters.SellerID = &sellerID
	case actor.IsAdmin():
	default:
		return pagination.Page[models.OrderLine]{}, pkgerrors.New(pkgerrors.CodeForbidden, "seller role required")
	}
	if err := validateCursor(params); err != nil {
		return pagination.Page[models.OrderLine]{}, err
	}
	page, err := s.repo.ListSellerLines(ctx, filters, params)
	if err != nil {
		return pagination.Page[models.OrderLine]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller order lines")
	}
	return page, nil
}

// CanView reports whether actor may read order.
func CanView(actor types.Actor, order *models.Order) bool {
	if order == nil {
		return false
	}
	if actor.IsAdmin() || actor.Owns(order.BuyerID) {
		return true
	}
	for _, line := range order.Lines {
		if actor.Owns(line.SellerID) {
			return true
		}
	}
	return false
}

func validateCursor(params pagination.Params) error {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination cursor")
	}
	return nil
}
