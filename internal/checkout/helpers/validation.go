package helpers

import (
	"strings"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// PaymentDecision is the validated payment method and the status new orders start in.
type PaymentDecision struct {
	Method   enums.PaymentMethod
	Status   enums.SettlementStatus
	Verified bool
	Proof    *string
}

// ValidatePayment parses the method and decides the initial settlement status.
// Manual methods start pending and, when requireProof is set, need a proof reference.
func ValidatePayment(method string, proof *string, requireProof bool) (PaymentDecision, error) {
	parsed, err := enums.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(method)))
	if err != nil {
		return PaymentDecision{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
			WithDetails(map[string]string{"payment_method": method})
	}

	var normalizedProof *string
	if proof != nil {
		if trimmed := strings.TrimSpace(*proof); trimmed != "" {
			normalizedProof = &trimmed
		}
	}

	if !parsed.IsManual() {
		return PaymentDecision{Method: parsed, Status: enums.SettlementStatusPaid, Verified: true, Proof: normalizedProof}, nil
	}
	if requireProof && normalizedProof == nil {
		return PaymentDecision{}, pkgerrors.New(pkgerrors.CodeValidation, "payment proof is required for manual payment methods").
			WithDetails(map[string]string{"payment_proof": "is required"})
	}
	return PaymentDecision{Method: parsed, Status: enums.SettlementStatusPending, Proof: normalizedProof}, nil
}

// ValidateShippingAddress requires a destination whenever something ships.
func ValidateShippingAddress(address *types.Address, hasPhysical bool) (string, error) {
	if !hasPhysical {
		return address.ShippingRegion(), nil
	}
	region := address.ShippingRegion()
	if region == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "shipping address with a region or city is required").
			WithDetails(map[string]string{"shipping_address": "is required"})
	}
	return region, nil
}
