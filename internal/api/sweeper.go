package api

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
)

// StartNotificationSweeper schedules a job that deactivates notifications
// whose show_until window has elapsed, so expired announcements stop being
// served to the app without an admin having to clean them up. The returned
// cron should be stopped on shutdown.
func StartNotificationSweeper(db *sqlx.DB, spec string) (*cron.Cron, error) {
	sched := cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)))
	if _, err := sched.AddFunc(spec, func() { sweepExpiredNotifications(db) }); err != nil {
		return nil, err
	}
	sched.Start()
	return sched, nil
}

func sweepExpiredNotifications(db *sqlx.DB) {
	res, err := db.Exec(`
		UPDATE user_notifications
		SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND show_until IS NOT NULL AND show_until < NOW()`)
	if err != nil {
		log.Printf("notification sweep failed: %v", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		sweptNotificationsTotal.Add(float64(n))
		log.Printf("notification sweep deactivated %d expired notification(s)", n)
	}
}
