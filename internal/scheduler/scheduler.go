package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weatherlink-poller/internal/weather"
)

// Poller runs one poll cycle.
type Poller interface {
	Poll(ctx context.Context) (weather.Record, error)
}

// Scheduler periodically polls the configured devices.
type Scheduler struct {
	scheduler *gocron.Scheduler
	poller    Poller
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, poller Poller) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		poller:    poller,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// Cycles never overlap; a slow cycle delays the next one.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(s.runCycle, interval)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) runCycle(interval time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), interval)
	defer cancel()

	rec, err := s.poller.Poll(ctx)
	if err != nil {
		log.Printf("scheduler: poll cycle failed: %v", err)
		return
	}
	log.Printf("scheduler: poll cycle produced %d metrics at %s", len(rec.Values), rec.Timestamp.Format(time.RFC3339))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
