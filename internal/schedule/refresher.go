// Package schedule runs the periodic recomputation of cached next
// occurrences.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Refreshable recomputes derived task state and reports how many tasks
// changed.
type Refreshable interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Refresher wraps cron-based refresh jobs.
type Refresher struct {
	cron    *cron.Cron
	target  Refreshable
	logger  *log.Logger
	timeout time.Duration
}

// NewRefresher returns a stopped refresher evaluating schedules in loc.
func NewRefresher(target Refreshable, loc *time.Location, logger *log.Logger) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	return &Refresher{
		cron:    cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		target:  target,
		logger:  logger,
		timeout: time.Minute,
	}
}

// ScheduleDaily registers a refresh at the given HH:MM time string.
func (r *Refresher) ScheduleDaily(timeStr string) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return r.cron.AddFunc(spec, r.run)
}

// RunNow refreshes synchronously.
func (r *Refresher) RunNow(ctx context.Context) (int, error) {
	n, err := r.target.RefreshAll(ctx)
	if err != nil {
		return n, fmt.Errorf("refreshing tasks: %w", err)
	}
	return n, nil
}

// Next returns the next scheduled run, or the zero time when nothing is
// scheduled or the refresher is not running.
func (r *Refresher) Next() time.Time {
	var next time.Time
	for _, e := range r.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Start runs the scheduler in the background.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	n, err := r.RunNow(ctx)
	if err != nil {
		r.logger.Error("scheduled refresh failed", "err", err)
		return
	}
	r.logger.Info("scheduled refresh done", "changed", n)
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(strings.TrimSpace(timeStr), ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
