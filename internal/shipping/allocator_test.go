package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/craftmarket-backend/internal/pricing"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
)

func intPtr(v int) *int { return &v }

func TestMatchRate(t *testing.T) {
	seller := uuid.New()
	rates := []models.ShippingRate{
		{SellerID: seller, Region: "Nationwide", AmountCents: 80},
		{SellerID: seller, Region: " Cairo ", AmountCents: 30, MinDays: intPtr(1), MaxDays: intPtr(3)},
		{SellerID: seller, Region: "default", AmountCents: 99},
	}

	exact := MatchRate(rates, "cairo")
	assert.Equal(t, int64(30), exact.AmountCents)
	assert.Equal(t, " Cairo ", exact.MatchedRegion)
	assert.False(t, exact.Unresolved)
	require.NotNil(t, exact.MaxDays)
	assert.Equal(t, 3, *exact.MaxDays)

	fallback := MatchRate(rates, "Aswan")
	assert.Equal(t, int64(80), fallback.AmountCents)
	assert.False(t, fallback.Unresolved)

	none := MatchRate(rates[1:2], "Aswan")
	assert.Zero(t, none.AmountCents)
	assert.True(t, none.Unresolved)

	empty := MatchRate(nil, "")
	assert.True(t, empty.Unresolved)
}

func TestAllocateAgainstDatabase(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	ctx := context.Background()
	withRate := uuid.New()
	withoutRate := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, repo.Create(ctx, &models.ShippingRate{ID: uuid.New(), SellerID: withRate, Region: "all", AmountCents: 50, CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.ShippingRate{ID: uuid.New(), SellerID: withRate, Region: "CAIRO", AmountCents: 30, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.ShippingRate{ID: uuid.New(), SellerID: withoutRate, Region: "Giza", AmountCents: 10, CreatedAt: base}))

	alloc, err := NewAllocator(repo)
	require.NoError(t, err)
	breakdown, err := alloc.Allocate(ctx, " Cairo", map[uuid.UUID][]pricing.ResolvedLine{
		withRate:    {{SellerID: withRate}},
		withoutRate: {{SellerID: withoutRate}},
	})
	require.NoError(t, err)
	require.Len(t, breakdown, 2)

	first, second := withRate, withoutRate
	if second.String() < first.String() {
		first, second = second, first
	}
	assert.Equal(t, first, breakdown[0].SellerID)
	assert.Equal(t, second, breakdown[1].SellerID)

	got, ok := breakdown.ForSeller(withRate)
	require.True(t, ok)
	assert.Equal(t, int64(30), got.AmountCents)

	missing, ok := breakdown.ForSeller(withoutRate)
	require.True(t, ok)
	assert.Zero(t, missing.AmountCents)
	assert.True(t, missing.Unresolved)
	assert.True(t, breakdown.HasUnresolved())
	assert.Equal(t, int64(30), breakdown.Total())
}

func TestAllocateNoSellers(t *testing.T) {
	alloc, err := NewAllocator(NewRepository(nil))
	require.NoError(t, err)
	breakdown, err := alloc.Allocate(context.Background(), "Cairo", nil)
	require.NoError(t, err)
	assert.Empty(t, breakdown)
}
