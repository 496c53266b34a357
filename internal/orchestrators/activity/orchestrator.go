// Package activity implements the daily activity counter orchestrator
package activity

import (
	"context"
	"log/slog"
	"time"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/metrics"
	"github.com/KirkDiggler/guild-progression/internal/pkg/clock"
	"github.com/KirkDiggler/guild-progression/internal/pkg/idgen"
	"github.com/KirkDiggler/guild-progression/internal/pkg/keylock"
	dailycounter "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter"
)

// Activity channels reported to metrics
const (
	ChannelText  = "text"
	ChannelVoice = "voice"
)

// Service defines the daily activity operations
type Service interface {
	RecordText(ctx context.Context, input *RecordInput) (*RecordOutput, error)
	RecordVoice(ctx context.Context, input *RecordInput) (*RecordOutput, error)
	RetractText(ctx context.Context, input *RetractTextInput) (*RetractTextOutput, error)
	GetCounter(ctx context.Context, input *GetCounterInput) (*GetCounterOutput, error)

	// ResetDaily zeroes every stored counter with one shared timestamp.
	// Records that fail are reported in the output; the run continues.
	ResetDaily(ctx context.Context, input *ResetDailyInput) (*ResetDailyOutput, error)
}

// Config holds the dependencies for the activity orchestrator
type Config struct {
	CounterRepo dailycounter.Repository
	Clock       clock.Clock
	IDGenerator idgen.Generator

	// Optional
	Metrics *metrics.Metrics
	Locker  *keylock.Locker
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.CounterRepo == nil {
		vb.RequiredField("CounterRepo")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	return vb.Build()
}

type orchestrator struct {
	counterRepo dailycounter.Repository
	clock       clock.Clock
	idGen       idgen.Generator
	metrics     *metrics.Metrics
	locker      *keylock.Locker
}

// NewOrchestrator creates an activity orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		counterRepo: cfg.CounterRepo,
		clock:       cfg.Clock,
		idGen:       cfg.IDGenerator,
		metrics:     cfg.Metrics,
		locker:      cfg.Locker,
	}
	if o.locker == nil {
		o.locker = keylock.New()
	}
	return o, nil
}

// load reads the counters, creating zeroed ones stamped now when none exist
func (o *orchestrator) load(ctx context.Context, dcID string) (*entities.DailyCounter, bool, error) {
	out, err := o.counterRepo.Get(ctx, dailycounter.GetInput{DcID: dcID})
	if err != nil {
		if errors.IsNotFound(err) {
			c := entities.NewDailyCounter(o.clock.Now())
			c.SetDcID(dcID)
			return c, true, nil
		}
		return nil, false, errors.Wrap(err, "failed to load daily counter")
	}

	c, err := entities.DailyCounterFromRecord(out.Record)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to load daily counter")
	}
	c.SetDcID(dcID)
	return c, false, nil
}

func (o *orchestrator) mutate(ctx context.Context, dcID, dcTag string, fn func(c *entities.DailyCounter)) (*entities.DailyCounter, bool, error) {
	if dcID == "" {
		return nil, false, errors.InvalidArgument("dc_id is required")
	}

	unlock := o.locker.Lock(dcID)
	defer unlock()

	c, created, err := o.load(ctx, dcID)
	if err != nil {
		return nil, false, err
	}
	if dcTag != "" {
		c.SetDcTag(dcTag)
	}
	fn(c)

	if _, err := o.counterRepo.Save(ctx, dailycounter.SaveInput{Record: c.Snapshot()}); err != nil {
		return nil, false, errors.Wrap(err, "failed to save daily counter")
	}
	return c, created, nil
}

func (o *orchestrator) RecordText(ctx context.Context, input *RecordInput) (*RecordOutput, error) {
	return o.record(ctx, input, ChannelText)
}

func (o *orchestrator) RecordVoice(ctx context.Context, input *RecordInput) (*RecordOutput, error) {
	return o.record(ctx, input, ChannelVoice)
}

func (o *orchestrator) record(ctx context.Context, input *RecordInput, channel string) (*RecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Amount <= 0 {
		return nil, errors.InvalidArgumentf("%s amount must be positive, got %d", channel, input.Amount)
	}

	c, created, err := o.mutate(ctx, input.DcID, input.DcTag, func(c *entities.DailyCounter) {
		if channel == ChannelVoice {
			c.IncrementVoice(input.Amount)
			return
		}
		c.IncrementText(input.Amount)
	})
	if err != nil {
		return nil, err
	}

	o.metrics.ObserveActivity(channel, input.Amount)
	return &RecordOutput{Counter: c, Created: created}, nil
}

func (o *orchestrator) RetractText(ctx context.Context, input *RetractTextInput) (*RetractTextOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	c, _, err := o.mutate(ctx, input.DcID, "", func(c *entities.DailyCounter) {
		c.DecrementText()
	})
	if err != nil {
		return nil, err
	}
	return &RetractTextOutput{Counter: c}, nil
}

func (o *orchestrator) GetCounter(ctx context.Context, input *GetCounterInput) (*GetCounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.DcID == "" {
		return nil, errors.InvalidArgument("dc_id is required")
	}

	out, err := o.counterRepo.Get(ctx, dailycounter.GetInput{DcID: input.DcID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load daily counter")
	}
	c, err := entities.DailyCounterFromRecord(out.Record)
	if err != nil {
		return nil, err
	}
	c.SetDcID(input.DcID)

	return &GetCounterOutput{Counter: c}, nil
}

func (o *orchestrator) ResetDaily(ctx context.Context, _ *ResetDailyInput) (*ResetDailyOutput, error) {
	output := &ResetDailyOutput{
		RunID:   o.idGen.Generate(),
		ResetAt: o.clock.Now(),
		Failed:  map[string]error{},
	}

	list, err := o.counterRepo.ListAll(ctx, dailycounter.ListAllInput{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list daily counters")
	}
	for dcID, failure := range list.Failed {
		output.Failed[dcID] = failure
	}

	for _, rec := range list.Records {
		if err := ctx.Err(); err != nil {
			o.finishReset(output, o.clock.Now().Sub(output.ResetAt))
			return output, errors.WrapWithCode(err, errors.CodeUnavailable, "daily reset interrupted")
		}

		dcID := ""
		if rec.DcID != nil {
			dcID = *rec.DcID
		}
		if err := o.resetOne(ctx, dcID, output.ResetAt); err != nil {
			output.Failed[dcID] = err
			continue
		}
		output.Reset++
	}

	o.finishReset(output, o.clock.Now().Sub(output.ResetAt))
	return output, nil
}

// resetOne re-reads the record under its lock before stamping it
func (o *orchestrator) resetOne(ctx context.Context, dcID string, at time.Time) error {
	if dcID == "" {
		return errors.InvalidArgument("stored daily counter has no dc_id")
	}

	unlock := o.locker.Lock(dcID)
	defer unlock()

	c, _, err := o.load(ctx, dcID)
	if err != nil {
		return err
	}
	c.ResetDaily(at)

	if _, err := o.counterRepo.Save(ctx, dailycounter.SaveInput{Record: c.Snapshot()}); err != nil {
		return errors.Wrap(err, "failed to save daily counter")
	}
	return nil
}

func (o *orchestrator) finishReset(output *ResetDailyOutput, took time.Duration) {
	for dcID, failure := range output.Failed {
		slog.Warn("daily counter reset failed",
			"run_id", output.RunID,
			"dc_id", dcID,
			"error", failure)
	}

	slog.Info("daily counters reset",
		"run_id", output.RunID,
		"reset", output.Reset,
		"failed", len(output.Failed),
		"duration", took)

	o.metrics.ObserveDailyReset(output.Reset, len(output.Failed))
}
