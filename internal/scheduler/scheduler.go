package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Ticker is advanced by a fixed step on every run.
type Ticker interface {
	Tick(d time.Duration)
}

// Scheduler periodically advances a Ticker, such as the chess clock.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Ticker
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. Intervals under one second are raised to one
// second.
func New(target Ticker, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval < time.Second {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		s.target.Tick(s.interval)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval)
	return nil
}

// Interval returns the effective tick interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
