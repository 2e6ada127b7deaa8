package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestShippingBreakdownHelpers(t *testing.T) {
	s1 := uuid.New()
	s2 := uuid.New()
	breakdown := ShippingBreakdown{
		{SellerID: s1, AmountCents: 30, MatchedRegion: "cairo"},
		{SellerID: s2, AmountCents: 0, Unresolved: true},
	}

	if got := breakdown.Total(); got != 30 {
		t.Fatalf("expected total 30, got %d", got)
	}
	if !breakdown.HasUnresolved() {
		t.Fatal("expected unresolved allocation to be reported")
	}
	line, ok := breakdown.ForSeller(s1)
	if !ok || line.MatchedRegion != "cairo" {
		t.Fatalf("unexpected allocation %+v", line)
	}
	if _, ok := breakdown.ForSeller(uuid.New()); ok {
		t.Fatal("expected no allocation for unknown seller")
	}
}

func TestAddressShippingRegion(t *testing.T) {
	var nilAddr *Address
	if nilAddr.ShippingRegion() != "" {
		t.Fatal("nil address should have empty region")
	}
	addr := &Address{City: " Giza ", Region: ""}
	if got := addr.ShippingRegion(); got != "Giza" {
		t.Fatalf("expected city fallback, got %q", got)
	}
	addr.Region = "Cairo"
	if got := addr.ShippingRegion(); got != "Cairo" {
		t.Fatalf("expected region, got %q", got)
	}
}
