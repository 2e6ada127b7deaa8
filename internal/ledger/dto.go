package ledger

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
	"github.com/angelmondragon/craftmarket-backend/pkg/types"
)

// PayoutFilters narrows payout listings.
type PayoutFilters struct {
	SellerID *uuid.UUID
	Status   *enums.PayoutStatus
}

// Summary is a seller's balance overview.
type Summary struct {
	TotalEarnedCents    int64 `json:"total_earned_cents"`
	PaidOutCents        int64 `json:"paid_out_cents"`
	PendingPayoutsCents int64 `json:"pending_payouts_cents"`
	AvailableCents      int64 `json:"available_cents"`
}

// RequestPayoutInput is a seller's withdrawal request.
type RequestPayoutInput struct {
	AmountCents int64
	Method      string
	Details     types.JSONMap
}

// ApprovePayoutInput carries the admin decision for a pending payout.
type ApprovePayoutInput struct {
	Status string
	Note   *string
}

// PayoutEvent is the outbox payload for payout lifecycle events.
type PayoutEvent struct {
	PayoutID    uuid.UUID          `json:"payout_id"`
	SellerID    uuid.UUID          `json:"seller_id"`
	AmountCents int64              `json:"amount_cents"`
	Method      enums.PayoutMethod `json:"method"`
	Status      enums.PayoutStatus `json:"status"`
	Note        *string            `json:"note,omitempty"`
}
