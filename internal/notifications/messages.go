package notifications

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/craftmarket-backend/pkg/db/models"
	"github.com/angelmondragon/craftmarket-backend/pkg/enums"
)

func orderLink(orderID uuid.UUID) *string {
	link := fmt.Sprintf("/orders/%s", orderID)
	return &link
}

// OrderPlaced tells the buyer what happens next with a freshly created order.
func OrderPlaced(order models.Order) Message {
	msg := Message{
		UserID: order.BuyerID,
		Type:   enums.NotificationTypeOrderPlaced,
		Link:   orderLink(order.ID),
	}
	if order.Status == enums.SettlementStatusPaid {
		msg.Title = "Order confirmed"
		msg.Message = fmt.Sprintf("Your %s order is paid and confirmed.", order.FulfillmentClass)
		return msg
	}
	msg.Title = "Order received"
	msg.Message = fmt.Sprintf("Your %s order is awaiting payment verification.", order.FulfillmentClass)
	return msg
}

// PaymentVerified tells the buyer an admin confirmed their manual payment.
func PaymentVerified(order models.Order) Message {
	return Message{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypePaymentVerified,
		Title:   "Payment verified",
		Message: "Your payment was verified and your order is confirmed.",
		Link:    orderLink(order.ID),
	}
}

// PaymentRejected tells the buyer their payment proof was declined.
func PaymentRejected(order models.Order, reason string) Message {
	return Message{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypePaymentRejected,
		Title:   "Payment rejected",
		Message: fmt.Sprintf("Your payment could not be verified: %s", reason),
		Link:    orderLink(order.ID),
	}
}

// PaymentReminder nudges a buyer whose manual payment is still unverified.
func PaymentReminder(order models.Order) Message {
	return Message{
		UserID:  order.BuyerID,
		Type:    enums.NotificationTypePaymentReminder,
		Title:   "Payment pending",
		Message: "We have not verified your payment yet. Check that your transfer reference is correct.",
		Link:    orderLink(order.ID),
	}
}

var fulfillmentCopy = map[enums.FulfillmentStatus]string{
	enums.FulfillmentStatusAccepted:  "The seller accepted %q.",
	enums.FulfillmentStatusPreparing: "The seller is preparing %q.",
	enums.FulfillmentStatusShipped:   "%q has shipped.",
	enums.FulfillmentStatusDelivered: "%q was delivered.",
	enums.FulfillmentStatusRejected:  "The seller declined %q.",
	enums.FulfillmentStatusCancelled: "%q was cancelled.",
}

// FulfillmentUpdate describes a line's new fulfillment state to the buyer.
func FulfillmentUpdate(buyerID uuid.UUID, line models.OrderLine) Message {
	text, ok := fulfillmentCopy[line.FulfillmentStatus]
	if !ok {
		text = "%q was updated."
	}
	body := fmt.Sprintf(text, line.Title)
	if line.FulfillmentStatus == enums.FulfillmentStatusShipped && line.TrackingNumber != nil {
		body = fmt.Sprintf("%s Tracking: %s", body, *line.TrackingNumber)
	}
	if line.FulfillmentStatus == enums.FulfillmentStatusRejected && line.RejectionReason != nil {
		body = fmt.Sprintf("%s Reason: %s", body, *line.RejectionReason)
	}
	return Message{
		UserID:  buyerID,
		Type:    enums.NotificationTypeFulfillmentUpdate,
		Title:   "Order update",
		Message: body,
		Link:    orderLink(line.OrderID),
	}
}

// PayoutDecision tells the seller an admin processed or rejected their payout.
func PayoutDecision(payout models.Payout) Message {
	title := "Payout processed"
	body := fmt.Sprintf("Your payout of %d was sent.", payout.AmountCents)
	if payout.Status == enums.PayoutStatusRejected {
		title = "Payout rejected"
		body = fmt.Sprintf("Your payout of %d was rejected.", payout.AmountCents)
		if payout.AdminNote != nil && *payout.AdminNote != "" {
			body = fmt.Sprintf("%s Note: %s", body, *payout.AdminNote)
		}
	}
	return Message{
		UserID:  payout.UserID,
		Type:    enums.NotificationTypePayoutUpdate,
		Title:   title,
		Message: body,
	}
}
