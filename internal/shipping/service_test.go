package shipping

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

type memoryRateStore struct {
	rates map[uuid.UUID]models.ShippingRate
}

func newMemoryRateStore() *memoryRateStore {
	return &memoryRateStore{rates: map[uuid.UUID]models.ShippingRate{}}
}

func (m *memoryRateStore) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.ShippingRate, error) {
	var out []models.ShippingRate
	for _, rate := range m.rates {
		if rate.SellerID == sellerID {
			out = append(out, rate)
		}
	}
	return out, nil
}

func (m *memoryRateStore) Create(ctx context.Context, rate *models.ShippingRate) error {
	m.rates[rate.ID] = *rate
	return nil
}

func (m *memoryRateStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingRate, error) {
	rate, ok := m.rates[id]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (m *memoryRateStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.rates, id)
	return nil
}

func TestCreateRateValidation(t *testing.T) {
	svc, err := NewService(newMemoryRateStore())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	seller := types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}
	cases := []struct {
		name  string
		actor types.Actor
		input CreateRateInput
		code  pkgerrors.Code
	}{
		{"buyer", types.Actor{UserID: uuid.New(), Role: enums.ActorRoleBuyer}, CreateRateInput{Region: "Cairo"}, pkgerrors.CodeForbidden},
		{"anonymous", types.Actor{}, CreateRateInput{Region: "Cairo"}, pkgerrors.CodeUnauthorized},
		{"blank region", seller, CreateRateInput{Region: "  "}, pkgerrors.CodeValidation},
		{"negative amount", seller, CreateRateInput{Region: "Cairo", AmountCents: -1}, pkgerrors.CodeValidation},
		{"inverted days", seller, CreateRateInput{Region: "Cairo", MinDays: intPtr(5), MaxDays: intPtr(2)}, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRate(context.Background(), tc.actor, tc.input)
			if !pkgerrors.IsCode(err, tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRateLifecycle(t *testing.T) {
	store := newMemoryRateStore()
	svc, _ := NewService(store)
	ctx := context.Background()
	owner := types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}
	other := types.Actor{UserID: uuid.New(), Role: enums.ActorRoleSeller}

	rate, err := svc.CreateRate(ctx, owner, CreateRateInput{Region: " Alexandria ", AmountCents: 45, MinDays: intPtr(2), MaxDays: intPtr(4)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rate.Region != "Alexandria" || rate.SellerID != owner.UserID {
		t.Fatalf("unexpected rate %+v", rate)
	}

	if err := svc.DeleteRate(ctx, other, rate.ID); !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	listed, err := svc.ListRates(ctx, owner)
	if err != nil || len(listed) != 1 {
		t.Fatalf("expected one rate, got %d err=%v", len(listed), err)
	}
	if err := svc.DeleteRate(ctx, owner, rate.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteRate(ctx, owner, rate.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
