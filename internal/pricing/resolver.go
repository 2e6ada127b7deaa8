package pricing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
)

// Catalog loads live catalog rows; missing or soft-deleted rows yield (nil, nil).
type Catalog interface {
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error)
	FindCollection(ctx context.Context, id uuid.UUID) (*models.Collection, error)
}

// Resolver prices cart lines from the catalog.
type Resolver interface {
	Resolve(ctx context.Context, lines []CartLine) ([]ResolvedLine, error)
}

type resolver struct {
	catalog Catalog
}

// NewResolver builds a resolver backed by the provided catalog.
func NewResolver(catalog Catalog) (Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &resolver{catalog: catalog}, nil
}

// Resolve prices every line or fails on the first invalid or stale one.
func (r *resolver) Resolve(ctx context.Context, lines []CartLine) ([]ResolvedLine, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.InvalidCart("cart is empty")
	}
	resolved := make([]ResolvedLine, 0, len(lines))
	var running int64
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
		var (
			out ResolvedLine
			err error
		)
		if line.IsCollection() {
			out, err = r.resolveCollection(ctx, line)
		} else {
			out, err = r.resolveProduct(ctx, line)
		}
		if err != nil {
			return nil, err
		}
		total, ok := MulCents(out.UnitPriceCents, int64(out.Quantity))
		if !ok || total > math.MaxInt64-running {
			return nil, pkgerrors.InvalidCart("cart total is too large")
		}
		running += total
		resolved = append(resolved, out)
	}
	return resolved, nil
}

func (r *resolver) resolveProduct(ctx context.Context, line CartLine) (ResolvedLine, error) {
	product, err := r.catalog.FindProduct(ctx, *line.ProductID)
	if err != nil {
		return ResolvedLine{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return ResolvedLine{}, pkgerrors.StaleReference("product", line.ProductID.String())
	}

	price := product.PriceCents
	if line.VariantID != nil {
		variant, err := r.catalog.FindVariant(ctx, *line.VariantID)
		if err != nil {
			return ResolvedLine{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
		}
		// A variant from another product, or one that no longer exists, is ignored.
		if variant != nil && variant.ProductID == product.ID {
			price = variant.PriceCents
		} else {
			line.VariantID = nil
		}
	}

	return ResolvedLine{
		CartLine:         line,
		UnitPriceCents:   price,
		SellerID:         product.SellerID,
		Title:            product.Title,
		FulfillmentClass: product.FulfillmentClass(),
		StockTracked:     product.Stock != nil,
	}, nil
}

func (r *resolver) resolveCollection(ctx context.Context, line CartLine) (ResolvedLine, error) {
	collection, err := r.catalog.FindCollection(ctx, *line.CollectionID)
	if err != nil {
		return ResolvedLine{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load collection")
	}
	if collection == nil {
		return ResolvedLine{}, pkgerrors.StaleReference("collection", line.CollectionID.String())
	}
	return ResolvedLine{
		CartLine:         line,
		UnitPriceCents:   CoerceBundlePrice(collection.BundlePrice),
		SellerID:         collection.SellerID,
		Title:            collection.Title,
		FulfillmentClass: enums.FulfillmentClassDigital,
	}, nil
}

// CoerceBundlePrice turns the free-form bundle price into minor units, rounding
// half away from zero. Unparseable, negative or out-of-range input prices the
// bundle at zero.
func CoerceBundlePrice(raw string) int64 {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || value.IsNegative() {
		return 0
	}
	rounded := value.Round(0)
	if rounded.GreaterThan(maxCents) {
		return 0
	}
	return rounded.IntPart()
}

var maxCents = decimal.NewFromInt(math.MaxInt64)
