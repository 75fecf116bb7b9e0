// Package janitor prunes old run-journal rows on a cron schedule.
package janitor

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// PruneStore is the slice of the journal the janitor needs.
type PruneStore interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// Janitor periodically deletes journal rows older than the retention window.
type Janitor struct {
	store     PruneStore
	schedule  cron.Schedule
	retention time.Duration
	stop      chan struct{}
}

// ParseCron parses a standard five-field cron expression.
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// New creates a Janitor sweeping on the given cron expression.
func New(store PruneStore, cronExpr string, retention time.Duration) (*Janitor, error) {
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive, got %v", retention)
	}
	schedule, err := ParseCron(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("parse sweep cron %q: %w", cronExpr, err)
	}
	return &Janitor{
		store:     store,
		schedule:  schedule,
		retention: retention,
		stop:      make(chan struct{}),
	}, nil
}

// NextRun returns the next scheduled sweep time.
func (j *Janitor) NextRun() time.Time {
	return j.schedule.Next(time.Now())
}

// Sweep deletes rows older than the retention window once and returns the
// number removed.
func (j *Janitor) Sweep() (int64, error) {
	return j.store.PruneBefore(time.Now().Add(-j.retention))
}

// Start runs the sweep loop until Stop is called.
func (j *Janitor) Start() {
	go func() {
		for {
			next := j.schedule.Next(time.Now())
			timer := time.NewTimer(time.Until(next))

			select {
			case <-timer.C:
				n, err := j.Sweep()
				if err != nil {
					log.Printf("journal sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("journal sweep removed %d runs", n)
				}
			case <-j.stop:
				timer.Stop()
				return
			}
		}
	}()
}

// Stop terminates the sweep loop.
func (j *Janitor) Stop() {
	close(j.stop)
}
