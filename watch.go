package main

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

// CheckBacklog fetches the pending-review total and compares it with the
// last recorded value. It reports the new total and whether it changed.
func CheckBacklog(backend *Backend, db *sql.DB) (total int, changed bool, err error) {
	_, total, err = backend.FetchReports(ReportNeeded, 1, 0)
	if err != nil {
		return 0, false, fmt.Errorf("checking backlog: %w", err)
	}

	last, known, err := GetWatchTotal(db, ReportNeeded)
	if err != nil {
		return total, false, fmt.Errorf("reading watch state: %w", err)
	}
	if err := SetWatchTotal(db, ReportNeeded, total); err != nil {
		return total, false, fmt.Errorf("storing watch state: %w", err)
	}

	return total, !known || total != last, nil
}

// FormatBacklogNotice renders the channel message for a backlog change.
func FormatBacklogNotice(total int) string {
	if total == 0 {
		return "Moderation backlog cleared: no reports awaiting validation."
	}
	if total == 1 {
		return "1 report is awaiting manual validation. Use `/reports needed` to review."
	}
	return fmt.Sprintf("%d reports are awaiting manual validation. Use `/reports needed` to review.", total)
}

// StartBacklogWatch starts a cron-based scheduler that periodically checks
// the pending-validation backlog and posts to the moderation channel when
// the count changed since the last check.
// The schedule is a standard 5-field cron expression (minute hour day-of-month month day-of-week).
func StartBacklogWatch(cfg Config, backend *Backend, db *sql.DB, api *slack.Client) {
	if cfg.WatchSchedule == "" {
		log.Println("Backlog watch disabled (watch_schedule not set)")
		return
	}
	if cfg.ModChannelID == "" {
		log.Println("Backlog watch disabled: mod_channel_id not set")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(cfg.WatchSchedule)
	if err != nil {
		log.Printf("Invalid watch_schedule '%s': %v — backlog watch disabled", cfg.WatchSchedule, err)
		return
	}

	log.Printf("Backlog watch scheduled (cron: %s)", cfg.WatchSchedule)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next backlog check at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			total, changed, err := CheckBacklog(backend, db)
			if err != nil {
				log.Printf("Backlog check error: %v", err)
				continue
			}
			log.Printf("Backlog check total=%d changed=%t", total, changed)
			if !changed {
				continue
			}

			_, _, postErr := api.PostMessage(cfg.ModChannelID,
				slack.MsgOptionText(FormatBacklogNotice(total), false))
			if postErr != nil {
				log.Printf("Backlog notice post error: %v", postErr)
			}
		}
	}()
}
