package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/alumnihub-dev/alumnihub/internal/config"
	"github.com/alumnihub-dev/alumnihub/internal/models"
	"github.com/alumnihub-dev/alumnihub/internal/tasks"
)

// StartRenewalScheduler runs the periodic sweep that enqueues renewal
// reminder tasks for members whose membership lapses within the configured
// window. Returns the cron runner so callers can Stop() it on shutdown.
func StartRenewalScheduler(client *asynq.Client, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) (*cron.Cron, error) {
	if cfg.Worker.RenewalSchedule == "" {
		logger.Info().Msg("No renewal schedule configured, scheduler disabled")
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(cfg.Worker.RenewalSchedule, func() {
		enqueueRenewalReminders(client, db, cfg, logger)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Info().Str("schedule", cfg.Worker.RenewalSchedule).Msg("Renewal reminder scheduler started")
	return c, nil
}

func enqueueRenewalReminders(client *asynq.Client, db *gorm.DB, cfg *config.Config, logger zerolog.Logger) {
	window := cfg.Worker.RenewalWindowDays
	if window <= 0 {
		window = 30
	}
	cutoff := time.Now().AddDate(0, 0, window)

	var users []models.User
	err := db.
		Where("membership_status = ?", models.MembershipActive).
		Where("membership_expiry IS NOT NULL AND membership_expiry <= ? AND membership_expiry > ?", cutoff, time.Now()).
		Find(&users).Error
	if err != nil {
		logger.Error().Err(err).Msg("Failed to query expiring memberships")
		return
	}

	for i := range users {
		user := &users[i]

		// One reminder per week at most
		var recent int64
		err := db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ?", user.ID, models.NotificationRenewalReminder).
			Where("created_at > ?", time.Now().AddDate(0, 0, -7)).
			Count(&recent).Error
		if err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to check recent reminders")
			continue
		}
		if recent > 0 {
			continue
		}

		task, err := tasks.NewRenewalReminderTask(user.ID)
		if err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to build reminder task")
			continue
		}

		if _, err := client.Enqueue(task, asynq.Queue("low")); err != nil {
			logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to enqueue reminder task")
			continue
		}

		logger.Info().
			Str("user_id", user.ID).
			Time("membership_expiry", *user.MembershipExpiry).
			Msg("Renewal reminder enqueued")
	}
}
