package enums

import "fmt"

// NotificationType groups inbox entries for the client.
type NotificationType string

const (
	NotificationTypeOrderPlaced       NotificationType = "order_placed"
	NotificationTypePaymentVerified   NotificationType = "payment_verified"
	NotificationTypePaymentRejected   NotificationType = "payment_rejected"
	NotificationTypePaymentReminder   NotificationType = "payment_reminder"
	NotificationTypeFulfillmentUpdate NotificationType = "fulfillment_update"
	NotificationTypePayoutUpdate      NotificationType = "payout_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderPlaced,
	NotificationTypePaymentVerified,
	NotificationTypePaymentRejected,
	NotificationTypePaymentReminder,
	NotificationTypeFulfillmentUpdate,
	NotificationTypePayoutUpdate,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
