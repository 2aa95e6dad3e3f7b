package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alumnihub-dev/alumnihub/internal/models"
	"github.com/alumnihub-dev/alumnihub/internal/tasks"
)

// HandleWelcome records the welcome notification for a freshly registered member
func HandleWelcome(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseNotificationPayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", payload.UserID).First(&user).Error; err != nil {
		return fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	subject := "Welcome to the alumni association"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour membership account has been created. Your member number is %s.\n"+
			"Submit your membership dues to activate your membership.",
		user.Name, user.MemberNumber,
	)

	return record(ctx, db, logger, &user, models.NotificationWelcome, subject, body)
}

// HandlePaymentReceived records the acknowledgement for a submitted payment
func HandlePaymentReceived(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseNotificationPayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", payload.UserID).First(&user).Error; err != nil {
		return fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	var payment models.Payment
	if err := db.WithContext(ctx).Where("id = ?", payload.PaymentID).First(&payment).Error; err != nil {
		return fmt.Errorf("failed to load payment %s: %w", payload.PaymentID, err)
	}

	subject := "We received your payment"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour payment %s of %.2f has been received and is awaiting confirmation.",
		user.Name, payment.Reference, float64(payment.AmountCents)/100,
	)

	return record(ctx, db, logger, &user, models.NotificationPaymentReceived, subject, body)
}

// HandleRenewalReminder records a membership renewal reminder
func HandleRenewalReminder(ctx context.Context, t *asynq.Task, db *gorm.DB, logger zerolog.Logger) error {
	payload, err := tasks.ParseNotificationPayload(t)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", payload.UserID).First(&user).Error; err != nil {
		return fmt.Errorf("failed to load user %s: %w", payload.UserID, err)
	}

	if user.MembershipExpiry == nil {
		logger.Warn().Str("user_id", user.ID).Msg("Renewal reminder for member without expiry date, skipping")
		return nil
	}

	subject := "Your membership is expiring soon"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour membership expires on %s. Renew now to keep your benefits.",
		user.Name, user.MembershipExpiry.Format("2 January 2006"),
	)

	return record(ctx, db, logger, &user, models.NotificationRenewalReminder, subject, body)
}

// record writes the notification outbox row. Delivery is handled by a
// separate mail relay that drains this table.
func record(ctx context.Context, db *gorm.DB, logger zerolog.Logger, user *models.User, notifType, subject, body string) error {
	now := time.Now()
	notification := &models.Notification{
		UserID:  user.ID,
		Type:    notifType,
		Subject: subject,
		Body:    body,
		SentAt:  &now,
	}

	if err := db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	logger.Info().
		Str("user_id", user.ID).
		Str("type", notifType).
		Str("email", user.Email).
		Msg("Notification recorded")

	return nil
}
