package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"devocional-backend/config"
	"devocional-backend/internal/notification"
	"devocional-backend/internal/store"
)

// Daily checks once per minute whether today's devotional audio has been
// published and, within the first minutes past local midnight, notifies
// every device exactly once per calendar date.
//
// The dedupe key lives in process memory: a restart inside the window can
// notify twice. Accepted for now.
type Daily struct {
	cfg        config.SchedulerConfig
	store      store.Store
	dispatcher *notification.Dispatcher
	cron       *cron.Cron
	now        func() time.Time

	notifiedDate string
}

// NewDaily creates the scheduler. The clock is injectable for tests.
func NewDaily(cfg config.SchedulerConfig, s store.Store, d *notification.Dispatcher) *Daily {
	return &Daily{
		cfg:        cfg,
		store:      s,
		dispatcher: d,
		cron:       cron.New(),
		now:        time.Now,
	}
}

// Start launches the minutely tick.
func (s *Daily) Start() {
	s.cron.AddFunc("@every 1m", func() { s.Tick(context.Background()) })
	s.cron.Start()
	log.Printf("Daily notification scheduler started (GMT%+d, %dmin window)",
		s.cfg.GMTOffsetHours, s.cfg.WindowMinutes)
}

// Stop halts the tick loop.
func (s *Daily) Stop() {
	s.cron.Stop()
}

// Tick runs one scheduler check. Fires at most once per local calendar
// date, and only when a devotional with audio exists for that date.
func (s *Daily) Tick(ctx context.Context) bool {
	local := s.localNow()
	date := local.Format("2006-01-02")

	if !s.inWindow(local) {
		return false
	}
	if date == s.notifiedDate {
		return false
	}

	dev, err := s.store.DevotionalForDate(ctx, date)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("Scheduler devotional lookup failed: %v", err)
		}
		return false
	}
	if dev.AudioPath == "" {
		return false
	}

	// Mark before dispatching so a slow send can't double-fire on the
	// next tick.
	s.notifiedDate = date

	title := dev.Title
	if title == "" {
		title = s.cfg.FallbackTitle
	}

	result, err := s.dispatcher.Send(ctx, notification.Target{Type: notification.TargetAll}, notification.Payload{
		Title: title,
		Body:  dev.Verse,
		URL:   "/",
	})
	if err != nil {
		log.Printf("Scheduler dispatch for %s failed: %v", date, err)
		return false
	}
	log.Printf("Daily devotional %s notified: %d sent, %d failed", date, result.Sent, result.Failed)
	return true
}

// localNow applies the configured GMT offset instead of the system zone.
func (s *Daily) localNow() time.Time {
	offset := time.FixedZone("local", s.cfg.GMTOffsetHours*3600)
	return s.now().In(offset)
}

func (s *Daily) inWindow(local time.Time) bool {
	return local.Hour() == 0 && local.Minute() < s.cfg.WindowMinutes
}
