// Package scheduler triggers the daily counter reset on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/pkg/clock"
)

// DefaultSpec fires at midnight in the scheduler's location
const DefaultSpec = "@daily"

// TriggerFunc is invoked on every scheduled run
type TriggerFunc func(ctx context.Context) error

// ParseSpec parses a standard five-field cron spec or a descriptor such as
// @daily or @every 1h
func ParseSpec(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid schedule "+spec)
	}
	return sched, nil
}

// DailyConfig configures a Daily scheduler
type DailyConfig struct {
	Trigger TriggerFunc
	Clock   clock.Clock
	// Location decides where midnight falls; nil means UTC
	Location *time.Location
	// Spec defaults to DefaultSpec
	Spec string
	// RunOnStart fires once when Run starts, before the first scheduled run
	RunOnStart bool
}

// Validate validates the DailyConfig
func (c *DailyConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.Trigger == nil {
		vb.RequiredField("Trigger")
	}
	if c.Spec != "" {
		if _, err := ParseSpec(c.Spec); err != nil {
			vb.Fieldf("Spec", "invalid cron spec %q", c.Spec)
		}
	}
	return vb.Build()
}

// Daily runs its trigger on a cron schedule, by default once per calendar day
type Daily struct {
	trigger    TriggerFunc
	clock      clock.Clock
	location   *time.Location
	spec       string
	schedule   cron.Schedule
	runOnStart bool
}

// NewDaily creates a Daily scheduler
func NewDaily(cfg *DailyConfig) (*Daily, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Daily{
		trigger:    cfg.Trigger,
		clock:      cfg.Clock,
		location:   cfg.Location,
		spec:       cfg.Spec,
		runOnStart: cfg.RunOnStart,
	}
	if d.clock == nil {
		d.clock = clock.New()
	}
	if d.location == nil {
		d.location = time.UTC
	}
	if d.spec == "" {
		d.spec = DefaultSpec
	}

	sched, err := ParseSpec(d.spec)
	if err != nil {
		return nil, err
	}
	d.schedule = sched
	return d, nil
}

// NextRun reports when the trigger fires next, seen from the clock's now
func (d *Daily) NextRun() time.Time {
	return d.schedule.Next(d.clock.Now().In(d.location))
}

// Fire runs the trigger once
func (d *Daily) Fire(ctx context.Context) error {
	if err := d.trigger(ctx); err != nil {
		return errors.Wrapf(err, "daily trigger failed at %s", d.clock.Now().In(d.location).Format(time.RFC3339))
	}
	return nil
}

// Run fires the trigger on schedule until ctx is cancelled. A run still in
// progress when the next one is due is not doubled up, and a failed run is
// not retried before the next scheduled time.
func (d *Daily) Run(ctx context.Context) error {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(d.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	c.Schedule(d.schedule, cron.FuncJob(func() { d.run(ctx) }))

	if d.runOnStart {
		d.run(ctx)
	}

	c.Start()
	slog.Info("daily scheduler started",
		"location", d.location.String(),
		"spec", d.spec,
		"next", d.NextRun())

	<-ctx.Done()
	<-c.Stop().Done()
	slog.Info("daily scheduler stopped")
	return nil
}

func (d *Daily) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := d.Fire(ctx); err != nil {
		slog.Error("daily trigger failed", "error", err)
		return
	}
	slog.Info("daily trigger fired", "next", d.NextRun())
}

// cronLogger sends cron's own messages to slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
