package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	TypeWelcome         = "notification:welcome"
	TypePaymentReceived = "notification:payment_received"
	TypeRenewalReminder = "notification:renewal_reminder"
)

// NotificationPayload is the common payload for all notification tasks
type NotificationPayload struct {
	UserID    string `json:"user_id"`
	PaymentID string `json:"payment_id,omitempty"`
}

// NewWelcomeTask creates a task to send the post-registration welcome message
func NewWelcomeTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotificationPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeWelcome, payload), nil
}

// NewPaymentReceivedTask creates a task to acknowledge a submitted payment
func NewPaymentReceivedTask(userID, paymentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotificationPayload{UserID: userID, PaymentID: paymentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypePaymentReceived, payload), nil
}

// NewRenewalReminderTask creates a task to remind a member of upcoming expiry
func NewRenewalReminderTask(userID string) (*asynq.Task, error) {
	payload, err := json.Marshal(NotificationPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRenewalReminder, payload), nil
}

// ParseNotificationPayload parses task payload from an Asynq task
func ParseNotificationPayload(task *asynq.Task) (NotificationPayload, error) {
	var payload NotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
