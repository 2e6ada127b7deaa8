package errors

import "fmt"

// TransitionDetails is attached to illegal state transitions so callers can show both states.
type TransitionDetails struct {
	Entity    string `json:"entity"`
	Current   string `json:"current"`
	Attempted string `json:"attempted"`
}

// BalanceDetails is attached to rejected payout requests.
type BalanceDetails struct {
	AvailableCents int64 `json:"available_cents"`
	RequestedCents int64 `json:"requested_cents"`
}

// ReferenceDetails identifies the entity that vanished mid-checkout.
type ReferenceDetails struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// IllegalTransition reports a state machine violation on entity.
func IllegalTransition(entity, current, attempted string) *Error {
	msg := fmt.Sprintf("%s cannot move from %s to %s", entity, current, attempted)
	return New(CodeStateConflict, msg).WithDetails(TransitionDetails{
		Entity:    entity,
		Current:   current,
		Attempted: attempted,
	})
}

// StaleReference reports a product, variant or collection that no longer exists.
func StaleReference(kind, id string) *Error {
	return New(CodeStaleReference, fmt.Sprintf("%s %s is no longer available", kind, id)).
		WithDetails(ReferenceDetails{Kind: kind, ID: id})
}

// InvalidCart reports an empty cart or a line with an unrecognized shape.
func InvalidCart(reason string) *Error {
	return New(CodeInvalidCart, reason)
}

// InsufficientBalance reports a payout request that exceeds the available balance.
func InsufficientBalance(available, requested int64) *Error {
	msg := fmt.Sprintf("requested %d exceeds available balance %d", requested, available)
	return New(CodeInsufficientBalance, msg).WithDetails(BalanceDetails{
		AvailableCents: available,
		RequestedCents: requested,
	})
}

// NotOwner reports an actor acting on a resource owned by someone else.
func NotOwner(resource string) *Error {
	return New(CodeForbidden, fmt.Sprintf("actor does not own %s", resource))
}
