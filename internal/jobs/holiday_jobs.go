package jobs

import (
	"context"
	"log"
	"time"

	"backend/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the background cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	calendar service.CalendarService
}

// NewScheduler registers all scheduled jobs. Call Start to begin running them.
func NewScheduler(calendar service.CalendarService) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC))

	s := &Scheduler{cron: c, calendar: calendar}

	// Refresh the holiday cache nightly so the calendar never waits on the
	// external feed during the day.
	if _, err := c.AddFunc("30 2 * * *", s.RefreshHolidayCache); err != nil {
		log.Printf("Failed to register holiday refresh job: %v", err)
	}

	return s
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RefreshHolidayCache re-fetches the default holiday feed. Also run once at
// startup to warm the cache.
func (s *Scheduler) RefreshHolidayCache() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.calendar.RefreshHolidays(ctx); err != nil {
		log.Printf("Holiday cache refresh failed: %v", err)
		return
	}
	log.Println("Holiday cache refreshed")
}
