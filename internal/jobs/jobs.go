package jobs

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/pilotage/micro/internal/models"
	"github.com/pilotage/micro/internal/services"
)

// Runner executes the recurring compliance jobs for every onboarded user.
// The same job bodies back the /mock/* endpoints; the runner only decides
// WHEN they fire, the services decide WHAT they do, and the selection
// predicates keep both idempotent.
type Runner struct {
	db          *gorm.DB
	invoices    *services.InvoiceService
	obligations *services.ObligationService
	logger      zerolog.Logger
}

func NewRunner(db *gorm.DB, logger zerolog.Logger) *Runner {
	return &Runner{
		db:          db,
		invoices:    services.NewInvoiceService(db),
		obligations: services.NewObligationService(db),
		logger:      logger,
	}
}

// onboardedUserIDs lists users that went through onboarding (have a profile).
func (r *Runner) onboardedUserIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.TaxProfile{}).Pluck("user_id", &ids).Error
	return ids, err
}

// RunAutoReminders sweeps every user's invoices once.
func (r *Runner) RunAutoReminders() {
	ids, err := r.onboardedUserIDs()
	if err != nil {
		r.logger.Error().Err(err).Msg("auto-reminders: listing users failed")
		return
	}
	total := 0
	for _, uid := range ids {
		n, err := r.invoices.ProcessAutoReminders(uid)
		if err != nil {
			r.logger.Error().Err(err).Uint("user_id", uid).Msg("auto-reminders failed for user")
			continue
		}
		total += n
	}
	r.logger.Info().Int("sent", total).Msg("auto-reminders pass done")
}

// RunScheduleNotifications refreshes deadline notifications for every user.
func (r *Runner) RunScheduleNotifications() {
	ids, err := r.onboardedUserIDs()
	if err != nil {
		r.logger.Error().Err(err).Msg("schedule-notifications: listing users failed")
		return
	}
	total := 0
	for _, uid := range ids {
		n, err := r.obligations.ScheduleNotifications(uid)
		if err != nil {
			r.logger.Error().Err(err).Uint("user_id", uid).Msg("schedule-notifications failed for user")
			continue
		}
		total += n
	}
	r.logger.Info().Int("scheduled", total).Msg("notification scheduling pass done")
}

// Start registers the jobs on a cron scheduler and starts it. Reminders run
// daily at 08:00, notification scheduling on the 1st of each month.
func (r *Runner) Start() (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc("0 8 * * *", r.RunAutoReminders); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc("0 7 1 * *", r.RunScheduleNotifications); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
