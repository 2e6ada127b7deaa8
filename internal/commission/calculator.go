package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/craftmarket-backend/pkg/config"
	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
)

// ProfileReader loads a seller profile; a missing profile yields (nil, nil).
type ProfileReader interface {
	WithTx(tx *gorm.DB) ProfileReader
	FindSellerProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error)
}

// Calculator resolves the commission rate that applies to a seller's line.
type Calculator interface {
	WithTx(tx *gorm.DB) Calculator
	RateFor(ctx context.Context, sellerID uuid.UUID, class enums.FulfillmentClass) (decimal.Decimal, error)
}

type calculator struct {
	profiles     ProfileReader
	physicalRate decimal.Decimal
	digitalRate  decimal.Decimal
}

// NewCalculator builds a calculator using the configured platform rates.
func NewCalculator(profiles ProfileReader, cfg config.CommissionConfig) (Calculator, error) {
	if profiles == nil {
		return nil, fmt.Errorf("seller profile reader required")
	}
	return &calculator{
		profiles:     profiles,
		physicalRate: ClampRate(decimal.NewFromFloat(cfg.PhysicalRatePercent)),
		digitalRate:  ClampRate(decimal.NewFromFloat(cfg.DefaultDigitalRatePercent)),
	}, nil
}

func (c *calculator) WithTx(tx *gorm.DB) Calculator {
	if tx == nil {
		return c
	}
	clone := *c
	clone.profiles = c.profiles.WithTx(tx)
	return &clone
}

// RateFor pins physical lines to the platform rate; digital lines use the
// seller's own rate, falling back to the default digital rate.
func (c *calculator) RateFor(ctx context.Context, sellerID uuid.UUID, class enums.FulfillmentClass) (decimal.Decimal, error) {
	if class == enums.FulfillmentClassPhysical {
		return c.physicalRate, nil
	}
	profile, err := c.profiles.FindSellerProfile(ctx, sellerID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller profile")
	}
	if profile == nil || !profile.CommissionRate.Valid {
		return c.digitalRate, nil
	}
	return ClampRate(profile.CommissionRate.Decimal), nil
}

// ProfileRepository reads seller_profiles.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) WithTx(tx *gorm.DB) ProfileReader {
	if tx == nil {
		return r
	}
	return &ProfileRepository{db: tx}
}

func (r *ProfileRepository) FindSellerProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	var profile models.SellerProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", sellerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
