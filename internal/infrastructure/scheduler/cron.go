// Package scheduler triggers jobs at fixed wall-clock times each day.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"JurisMonitor/internal/ports"
)

// Clock is a time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClocks parses "HH:MM" entries and returns them sorted and deduplicated.
func ParseClocks(specs []string) ([]Clock, error) {
	seen := make(map[Clock]bool, len(specs))
	out := make([]Clock, 0, len(specs))
	for _, spec := range specs {
		t, err := time.Parse("15:04", spec)
		if err != nil {
			return nil, fmt.Errorf("parse schedule time %q: %w", spec, err)
		}
		c := Clock{Hour: t.Hour(), Minute: t.Minute()}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hour != out[j].Hour {
			return out[i].Hour < out[j].Hour
		}
		return out[i].Minute < out[j].Minute
	})
	return out, nil
}

// DailyScheduler runs the job at each configured time in its location. Jobs
// run on the scheduler goroutine, so scheduled runs never overlap each other.
type DailyScheduler struct {
	clocks     []Clock
	loc        *time.Location
	runOnStart bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler builds a scheduler for "HH:MM" times in loc.
func NewDailyScheduler(times []string, loc *time.Location, runOnStart bool) (*DailyScheduler, error) {
	clocks, err := ParseClocks(times)
	if err != nil {
		return nil, err
	}
	if len(clocks) == 0 {
		return nil, fmt.Errorf("scheduler needs at least one time")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DailyScheduler{clocks: clocks, loc: loc, runOnStart: runOnStart}, nil
}

// Next returns the first scheduled instant strictly after the given time.
func (d *DailyScheduler) Next(after time.Time) time.Time {
	local := after.In(d.loc)
	for offset := 0; offset <= 1; offset++ {
		for _, c := range d.clocks {
			candidate := time.Date(local.Year(), local.Month(), local.Day()+offset, c.Hour, c.Minute, 0, 0, d.loc)
			if candidate.After(after) {
				return candidate
			}
		}
	}
	// Unreachable with at least one clock.
	return time.Time{}
}

// Start launches the scheduling goroutine; calling it twice is a no-op.
func (d *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	d.mu.Lock()
	if d.stop != nil {
		d.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done
	d.mu.Unlock()

	go func() {
		defer close(done)
		if d.runOnStart {
			job(time.Now().In(d.loc))
		}
		for {
			next := d.Next(time.Now())
			timer := time.NewTimer(time.Until(next))
			select {
			case <-timer.C:
				job(next)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the goroutine and waits for a running job to return.
func (d *DailyScheduler) Stop(ctx context.Context) error {
	d.mu.Lock()
	stop, done := d.stop, d.done
	d.stop, d.done = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
