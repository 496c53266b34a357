// Package progression implements the player progression orchestrator: every
// change to a player is loaded, applied and saved under a per-player lock.
package progression

import (
	"context"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/metrics"
	"github.com/KirkDiggler/guild-progression/internal/pkg/keylock"
	"github.com/KirkDiggler/guild-progression/internal/presentation"
	dailycounter "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter"
	"github.com/KirkDiggler/guild-progression/internal/repositories/player"
)

const (
	// EventLevelUp is published after a save that raised a player's level
	EventLevelUp = "progression.level_up"

	// Keys set on the level up event context
	EventKeyGuildID      = "guild_id"
	EventKeyLevel        = "level"
	EventKeyLevelsGained = "levels_gained"

	DefaultRewardBaseExp    int64 = 20
	DefaultRewardCoinDie          = 10
	DefaultLeaderboardLimit int32 = 10
)

// Service defines the player progression operations
type Service interface {
	GetOrCreatePlayer(ctx context.Context, input *GetOrCreatePlayerInput) (*GetOrCreatePlayerOutput, error)
	GrantExperience(ctx context.Context, input *GrantExperienceInput) (*GrantExperienceOutput, error)
	UpdateCurrency(ctx context.Context, input *UpdateCurrencyInput) (*UpdateCurrencyOutput, error)

	AcceptTask(ctx context.Context, input *AcceptTaskInput) (*AcceptTaskOutput, error)
	CompleteTask(ctx context.Context, input *CompleteTaskInput) (*CompleteTaskOutput, error)
	AbandonTask(ctx context.Context, input *AbandonTaskInput) (*AbandonTaskOutput, error)

	UpdateRole(ctx context.Context, input *UpdateRoleInput) (*UpdateRoleOutput, error)

	GetProfile(ctx context.Context, input *GetProfileInput) (*GetProfileOutput, error)
	Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error)
}

// Config holds the dependencies for the progression orchestrator
type Config struct {
	PlayerRepo player.Repository
	EventBus   events.EventBus
	DiceRoller dice.Roller

	// Optional
	CounterRepo   dailycounter.Repository
	Metrics       *metrics.Metrics
	Locker        *keylock.Locker
	Ranks         presentation.RankTable

	// Zero selects DefaultRewardBaseExp and DefaultRewardCoinDie
	RewardBaseExp int64
	RewardCoinDie int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	if c.PlayerRepo == nil {
		vb.RequiredField("PlayerRepo")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.DiceRoller == nil {
		vb.RequiredField("DiceRoller")
	}
	if c.RewardBaseExp < 0 {
		vb.Field("RewardBaseExp", "must not be negative")
	}
	if c.RewardCoinDie < 0 {
		vb.Field("RewardCoinDie", "must not be negative")
	}
	return vb.Build()
}

type orchestrator struct {
	playerRepo  player.Repository
	counterRepo dailycounter.Repository
	eventBus    events.EventBus
	diceRoller  dice.Roller
	metrics     *metrics.Metrics
	locker      *keylock.Locker
	ranks       presentation.RankTable

	rewardBaseExp int64
	rewardCoinDie int
}

// NewOrchestrator creates a progression orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		playerRepo:    cfg.PlayerRepo,
		counterRepo:   cfg.CounterRepo,
		eventBus:      cfg.EventBus,
		diceRoller:    cfg.DiceRoller,
		metrics:       cfg.Metrics,
		locker:        cfg.Locker,
		ranks:         cfg.Ranks,
		rewardBaseExp: cfg.RewardBaseExp,
		rewardCoinDie: cfg.RewardCoinDie,
	}
	if o.locker == nil {
		o.locker = keylock.New()
	}
	if o.rewardBaseExp == 0 {
		o.rewardBaseExp = DefaultRewardBaseExp
	}
	if o.rewardCoinDie == 0 {
		o.rewardCoinDie = DefaultRewardCoinDie
	}
	return o, nil
}

func validateIdentity(guildID, dcID string) error {
	vb := errors.NewValidationBuilder()
	entities.ValidateIdentity("guild_id", guildID, "dc_id", dcID, vb)
	return vb.Build()
}

// load reads the player, creating a fresh one when none is stored
func (o *orchestrator) load(ctx context.Context, guildID, dcID, dcTag string, opts ...entities.PlayerOption) (*entities.Player, bool, error) {
	out, err := o.playerRepo.Get(ctx, player.GetInput{GuildID: guildID, DcID: dcID})
	if err != nil {
		if errors.IsNotFound(err) {
			return entities.NewPlayer(dcID, dcTag, guildID, opts...), true, nil
		}
		if errors.IsInvalidArgument(err) {
			slog.Warn("stored player is malformed",
				"guild_id", guildID,
				"dc_id", dcID,
				"error", err)
		}
		return nil, false, errors.Wrap(err, "failed to load player")
	}

	p, err := entities.PlayerFromRecord(out.Record)
	if err != nil {
		slog.Warn("stored player is malformed",
			"guild_id", guildID,
			"dc_id", dcID,
			"error", err)
		return nil, false, errors.Wrap(err, "failed to load player")
	}

	return p, false, nil
}

// refreshTag reports whether the display tag changed
func refreshTag(p *entities.Player, dcTag string) bool {
	if dcTag == "" || p.DcTag == dcTag {
		return false
	}
	p.DcTag = dcTag
	return true
}

func (o *orchestrator) save(ctx context.Context, p *entities.Player) error {
	if _, err := o.playerRepo.Save(ctx, player.SaveInput{Record: p.Snapshot()}); err != nil {
		return errors.Wrap(err, "failed to save player")
	}
	return nil
}

// mutate runs fn against the player under its lock and saves the result.
// Nothing is saved when fn fails.
func (o *orchestrator) mutate(ctx context.Context, guildID, dcID, dcTag string, fn func(p *entities.Player) error) (*entities.Player, error) {
	if err := validateIdentity(guildID, dcID); err != nil {
		return nil, err
	}

	unlock := o.locker.Lock(entities.PlayerKey(guildID, dcID))
	defer unlock()

	p, _, err := o.load(ctx, guildID, dcID, dcTag)
	if err != nil {
		return nil, err
	}
	refreshTag(p, dcTag)
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := o.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (o *orchestrator) GetOrCreatePlayer(ctx context.Context, input *GetOrCreatePlayerInput) (*GetOrCreatePlayerOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	var opts []entities.PlayerOption
	if input.Role != nil {
		opts = append(opts, entities.WithRole(*input.Role))
	}

	unlock := o.locker.Lock(entities.PlayerKey(input.GuildID, input.DcID))
	defer unlock()

	p, created, err := o.load(ctx, input.GuildID, input.DcID, input.DcTag, opts...)
	if err != nil {
		return nil, err
	}

	if tagChanged := refreshTag(p, input.DcTag); created || tagChanged {
		if err := o.save(ctx, p); err != nil {
			return nil, err
		}
	}
	if created {
		slog.Info("player created",
			"guild_id", input.GuildID,
			"dc_id", input.DcID)
	}

	return &GetOrCreatePlayerOutput{Player: p, Created: created}, nil
}

func (o *orchestrator) GrantExperience(ctx context.Context, input *GrantExperienceInput) (*GrantExperienceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var gained int32
	p, err := o.mutate(ctx, input.GuildID, input.DcID, input.DcTag, func(p *entities.Player) error {
		gained = p.UpdateExp(input.Amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.metrics.ObserveExperience(input.GuildID, input.Amount, gained)
	if gained > 0 {
		o.publishLevelUp(ctx, p, gained)
	}

	return &GrantExperienceOutput{Player: p, LevelsGained: gained}, nil
}

func (o *orchestrator) UpdateCurrency(ctx context.Context, input *UpdateCurrencyInput) (*UpdateCurrencyOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	p, err := o.mutate(ctx, input.GuildID, input.DcID, "", func(p *entities.Player) error {
		return p.UpdateCurrency(input.Currency, input.Amount)
	})
	if err != nil {
		if errors.IsRejection(err) {
			o.metrics.ObserveCurrencyRejection(string(input.Currency), errors.GetReason(err))
		}
		return nil, err
	}

	return &UpdateCurrencyOutput{Player: p, Balance: p.Balance(input.Currency)}, nil
}

func (o *orchestrator) AcceptTask(ctx context.Context, input *AcceptTaskInput) (*AcceptTaskOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	p, err := o.mutate(ctx, input.GuildID, input.DcID, "", func(p *entities.Player) error {
		return p.AcceptTask(input.TaskID)
	})
	if err != nil {
		o.observeTaskRejection(err)
		return nil, err
	}

	return &AcceptTaskOutput{Player: p}, nil
}

func (o *orchestrator) CompleteTask(ctx context.Context, input *CompleteTaskInput) (*CompleteTaskOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	exp, err := input.Tier.Scale(o.rewardBaseExp)
	if err != nil {
		return nil, err
	}

	output := &CompleteTaskOutput{ExpAwarded: exp}
	p, err := o.mutate(ctx, input.GuildID, input.DcID, "", func(p *entities.Player) error {
		taskID, err := p.ReleaseTask()
		if err != nil {
			return err
		}

		roll, err := o.diceRoller.Roll(o.rewardCoinDie)
		if err != nil {
			return errors.Wrap(err, "failed to roll coin reward")
		}
		coins, err := input.Tier.Scale(int64(roll))
		if err != nil {
			return err
		}
		if err := p.UpdateCurrency(entities.CurrencySilverCoin, coins); err != nil {
			return err
		}

		output.TaskID = taskID
		output.CoinsAwarded = coins
		output.LevelsGained = p.UpdateExp(exp)
		return nil
	})
	if err != nil {
		o.observeTaskRejection(err)
		return nil, err
	}
	output.Player = p

	slog.Info("task completed",
		"guild_id", input.GuildID,
		"dc_id", input.DcID,
		"task_id", output.TaskID,
		"tier", string(input.Tier),
		"exp", output.ExpAwarded,
		"coins", output.CoinsAwarded)

	o.metrics.ObserveTaskCompleted(string(input.Tier))
	o.metrics.ObserveExperience(input.GuildID, exp, output.LevelsGained)
	if output.LevelsGained > 0 {
		o.publishLevelUp(ctx, p, output.LevelsGained)
	}

	return output, nil
}

func (o *orchestrator) AbandonTask(ctx context.Context, input *AbandonTaskInput) (*AbandonTaskOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	var taskID string
	p, err := o.mutate(ctx, input.GuildID, input.DcID, "", func(p *entities.Player) error {
		var err error
		taskID, err = p.ReleaseTask()
		return err
	})
	if err != nil {
		o.observeTaskRejection(err)
		return nil, err
	}

	return &AbandonTaskOutput{Player: p, TaskID: taskID}, nil
}

func (o *orchestrator) UpdateRole(ctx context.Context, input *UpdateRoleInput) (*UpdateRoleOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Role.IsKnown() {
		return nil, errors.InvalidArgumentf("unknown role %d", int32(input.Role))
	}

	p, err := o.mutate(ctx, input.GuildID, input.DcID, "", func(p *entities.Player) error {
		p.UpdateRole(input.Role)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpdateRoleOutput{Player: p}, nil
}

func (o *orchestrator) GetProfile(ctx context.Context, input *GetProfileInput) (*GetProfileOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	out, err := o.playerRepo.Get(ctx, player.GetInput{GuildID: input.GuildID, DcID: input.DcID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load player")
	}
	p, err := entities.PlayerFromRecord(out.Record)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load player")
	}

	var counter *entities.DailyCounter
	if o.counterRepo != nil {
		counter, err = o.loadCounter(ctx, input.DcID)
		if err != nil {
			return nil, err
		}
	}

	return &GetProfileOutput{Profile: presentation.NewProfileView(p, counter, o.ranks)}, nil
}

// loadCounter returns nil when the participant has no counters yet
func (o *orchestrator) loadCounter(ctx context.Context, dcID string) (*entities.DailyCounter, error) {
	out, err := o.counterRepo.Get(ctx, dailycounter.GetInput{DcID: dcID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load daily counter")
	}
	return entities.DailyCounterFromRecord(out.Record)
}

func (o *orchestrator) Leaderboard(ctx context.Context, input *LeaderboardInput) (*LeaderboardOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.GuildID == "" {
		return nil, errors.InvalidArgument("guild_id is required")
	}
	if input.Limit < 0 {
		return nil, errors.InvalidArgument("limit must not be negative")
	}

	limit := input.Limit
	if limit == 0 {
		limit = DefaultLeaderboardLimit
	}

	out, err := o.playerRepo.ListByGuild(ctx, player.ListByGuildInput{GuildID: input.GuildID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list players")
	}
	for dcID, failure := range out.Failed {
		slog.Warn("skipping malformed player",
			"guild_id", input.GuildID,
			"dc_id", dcID,
			"error", failure)
	}

	records := out.Records
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Exp != records[j].Exp {
			return records[i].Exp > records[j].Exp
		}
		return records[i].DcID < records[j].DcID
	})
	if int(limit) < len(records) {
		records = records[:limit]
	}

	entries := make([]*LeaderboardEntry, 0, len(records))
	for i, rec := range records {
		level, _ := entities.LevelForExperience(rec.Exp)
		entries = append(entries, &LeaderboardEntry{
			Position: int32(i + 1),
			DcID:     rec.DcID,
			DcTag:    rec.DcTag,
			Level:    level,
			Exp:      rec.Exp,
		})
	}

	return &LeaderboardOutput{Entries: entries, Skipped: int32(len(out.Failed))}, nil
}

func (o *orchestrator) observeTaskRejection(err error) {
	if errors.IsRejection(err) {
		if reason := errors.GetReason(err); reason != "" {
			o.metrics.ObserveTaskRejection(reason)
		}
	}
}

// publishLevelUp announces a level change that has already been saved.
// A failing subscriber does not undo the save.
func (o *orchestrator) publishLevelUp(ctx context.Context, p *entities.Player, gained int32) {
	slog.Info("player leveled up",
		"guild_id", p.GuildID(),
		"dc_id", p.DcID(),
		"level", p.Level(),
		"levels_gained", gained)

	evt := events.NewGameEvent(EventLevelUp, p, nil)
	evt.Context().Set(EventKeyGuildID, p.GuildID())
	evt.Context().Set(EventKeyLevel, p.Level())
	evt.Context().Set(EventKeyLevelsGained, gained)

	if err := o.eventBus.Publish(ctx, evt); err != nil {
		slog.Warn("level up subscriber failed",
			"guild_id", p.GuildID(),
			"dc_id", p.DcID(),
			"error", err)
	}
}
