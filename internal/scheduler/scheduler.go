package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-card/internal/location"
)

// FixSource produces the coordinate reported on each tick.
type FixSource func() (location.Fix, error)

// StaticSource always reports the same coordinate with a fresh fix ID.
func StaticSource(lat, lon float64) FixSource {
	return func() (location.Fix, error) {
		return location.NewFix(lat, lon), nil
	}
}

// Scheduler periodically pushes fixes into a location feed, standing in
// for the device's continuous location updates.
type Scheduler struct {
	scheduler *gocron.Scheduler
	feed      *location.Feed
	source    FixSource
	interval  time.Duration
}

// New creates a new Scheduler.
func New(feed *location.Feed, source FixSource, req location.Request) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		feed:      feed,
		source:    source,
		interval:  req.EffectiveInterval(),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.source == nil {
		log.Println("scheduler: no fix source configured; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.tick)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler: reporting location every %s", s.interval)
	return nil
}

func (s *Scheduler) tick() {
	fix, err := s.source()
	if err != nil {
		log.Printf("scheduler: fix source failed: %v", err)
		return
	}
	s.feed.Push(fix)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
