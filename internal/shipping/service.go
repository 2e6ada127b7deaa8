package shipping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type rateStore interface {
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.ShippingRate, error)
	Create(ctx context.Context, rate *models.ShippingRate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service manages a seller's own shipping rate table.
type Service interface {
	ListRates(ctx context.Context, actor types.Actor) ([]models.ShippingRate, error)
	CreateRate(ctx context.Context, actor types.Actor, input CreateRateInput) (*models.ShippingRate, error)
	DeleteRate(ctx context.Context, actor types.Actor, rateID uuid.UUID) error
}

// CreateRateInput describes one regional flat rate.
type CreateRateInput struct {
	Region      string
	AmountCents int64
	MinDays     *int
	MaxDays     *int
}

type service struct {
	store rateStore
	now   func() time.Time
}

func NewService(store rateStore) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("shipping rate store required")
	}
	return &service{store: store, now: time.Now}, nil
}

func (s *service) ListRates(ctx context.Context, actor types.Actor) ([]models.ShippingRate, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	rates, err := s.store.ListBySeller(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping rates")
	}
	return rates, nil
}

func (s *service) CreateRate(ctx context.Context, actor types.Actor, input CreateRateInput) (*models.ShippingRate, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}
	region := strings.TrimSpace(input.Region)
	if region == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region is required")
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	if (input.MinDays != nil && *input.MinDays < 0) || (input.MaxDays != nil && *input.MaxDays < 0) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery days must not be negative")
	}
	if input.MinDays != nil && input.MaxDays != nil && *input.MinDays > *input.MaxDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_days must not exceed max_days")
	}

	rate := &models.ShippingRate{
		ID:          uuid.New(),
		SellerID:    actor.UserID,
		Region:      region,
		AmountCents: input.AmountCents,
		MinDays:     input.MinDays,
		MaxDays:     input.MaxDays,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.Create(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping rate")
	}
	return rate, nil
}

func (s *service) DeleteRate(ctx context.Context, actor types.Actor, rateID uuid.UUID) error {
	if err := requireSeller(actor); err != nil {
		return err
	}
	rate, err := s.store.FindByID(ctx, rateID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping rate")
	}
	if rate == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "shipping rate not found")
	}
	if !actor.Owns(rate.SellerID) {
		return pkgerrors.NotOwner("shipping rate")
	}
	if err := s.store.Delete(ctx, rateID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipping rate")
	}
	return nil
}

func requireSeller(actor types.Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if actor.Role != enums.ActorRoleSeller && actor.Role != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "seller role required")
	}
	return nil
}
