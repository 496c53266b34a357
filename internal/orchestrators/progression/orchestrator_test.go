package progression_test

import (
	"context"
	"sync"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/events"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	entities "github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/metrics"
	"github.com/KirkDiggler/guild-progression/internal/orchestrators/progression"
	"github.com/KirkDiggler/guild-progression/internal/presentation"
	dailycountermock "github.com/KirkDiggler/guild-progression/internal/repositories/daily_counter/mock"
	"github.com/KirkDiggler/guild-progression/internal/repositories/player"
	playermock "github.com/KirkDiggler/guild-progression/internal/repositories/player/mock"
	"github.com/KirkDiggler/guild-progression/internal/testutils"
	"github.com/KirkDiggler/guild-progression/internal/testutils/builders"
	"github.com/KirkDiggler/guild-progression/internal/testutils/mocks"
)

const (
	testGuildID = "guild-1"
	testDcID    = "dc-1"
	testDcTag   = "tester#0001"
)

// recordingBus keeps every published event
type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
	err       error
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return b.err
}
func (b *recordingBus) Subscribe(_ string, _ events.Handler) string { return "sub-id" }
func (b *recordingBus) SubscribeFunc(_ string, _ int, _ events.HandlerFunc) string {
	return "sub-id"
}
func (b *recordingBus) Unsubscribe(_ string) error { return nil }
func (b *recordingBus) Clear(_ string)             {}
func (b *recordingBus) ClearAll()                  {}

func (b *recordingBus) all() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}

// fixedRoller always rolls the same value and remembers the die sizes
type fixedRoller struct {
	value int
	sizes []int
}

func (r *fixedRoller) Roll(size int) (int, error) {
	r.sizes = append(r.sizes, size)
	return r.value, nil
}

func (r *fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, _ := r.Roll(size)
		out[i] = v
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	playerRepo  *playermock.MockRepository
	counterRepo *dailycountermock.MockRepository
	bus         *recordingBus
	roller      *fixedRoller
	metrics     *metrics.Metrics
	svc         progression.Service
	ctx         context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.playerRepo = playermock.NewMockRepository(s.ctrl)
	s.counterRepo = dailycountermock.NewMockRepository(s.ctrl)
	s.bus = &recordingBus{}
	s.roller = &fixedRoller{value: 7}
	s.metrics = metrics.New()
	s.ctx = context.Background()

	svc, err := progression.NewOrchestrator(&progression.Config{
		PlayerRepo:    s.playerRepo,
		CounterRepo:   s.counterRepo,
		EventBus:      s.bus,
		DiceRoller:    s.roller,
		Metrics:       s.metrics,
		Ranks:         presentation.NewRankTable([]presentation.Rank{{Start: 1, End: 10, Name: "Bronze"}}, ""),
		RewardBaseExp: 20,
		RewardCoinDie: 12,
	})
	s.Require().NoError(err)
	s.svc = svc
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorTestSuite) record() *builders.PlayerRecordBuilder {
	return builders.NewPlayerRecordBuilder().WithIdentity(testGuildID, testDcID).WithDcTag(testDcTag)
}

func (s *OrchestratorTestSuite) TestNewOrchestrator_Validation() {
	_, err := progression.NewOrchestrator(nil)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = progression.NewOrchestrator(&progression.Config{PlayerRepo: s.playerRepo})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().Contains(err.Error(), "EventBus")
	s.Assert().Contains(err.Error(), "DiceRoller")
}

func (s *OrchestratorTestSuite) TestGetOrCreatePlayer_Creates() {
	admin := entities.RoleAdmin
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, nil)
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.GetOrCreatePlayer(s.ctx, &progression.GetOrCreatePlayerInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		DcTag:   testDcTag,
		Role:    &admin,
	})
	s.Require().NoError(err)

	s.Assert().True(out.Created)
	s.Assert().Equal(int32(1), out.Player.Level())
	s.Require().NotNil(saved)
	s.Assert().Equal(entities.RoleAdmin, saved.Role)
	s.Assert().Equal(testDcTag, saved.DcTag)
	s.Assert().Nil(saved.CurrentTaskID)
}

func (s *OrchestratorTestSuite) TestGetOrCreatePlayer_ExistingUnchanged() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithExp(40).Build())

	out, err := s.svc.GetOrCreatePlayer(s.ctx, &progression.GetOrCreatePlayerInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		DcTag:   testDcTag,
	})
	s.Require().NoError(err)
	s.Assert().False(out.Created)
	s.Assert().Equal(int32(4), out.Player.Level())
}

func (s *OrchestratorTestSuite) TestGetOrCreatePlayer_RefreshesTag() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	_, err := s.svc.GetOrCreatePlayer(s.ctx, &progression.GetOrCreatePlayerInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		DcTag:   "renamed#0002",
	})
	s.Require().NoError(err)
	s.Assert().Equal("renamed#0002", saved.DcTag)
}

func (s *OrchestratorTestSuite) TestGetOrCreatePlayer_MalformedRecord() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID,
		s.record().WithBalance("gold", 3).Build())

	_, err := s.svc.GetOrCreatePlayer(s.ctx, &progression.GetOrCreatePlayerInput{
		GuildID: testGuildID,
		DcID:    testDcID,
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGrantExperience_LevelUp() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithExp(5).Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Amount:  20,
	})
	s.Require().NoError(err)

	s.Assert().Equal(int32(2), out.LevelsGained)
	s.Assert().Equal(int32(3), out.Player.Level())
	s.Assert().Equal(int64(25), saved.Exp)
	s.Assert().Equal(int32(3), saved.Level)

	published := s.bus.all()
	s.Require().Len(published, 1)
	s.Assert().Equal(progression.EventLevelUp, published[0].Type())
	s.Assert().Equal(entities.PlayerKey(testGuildID, testDcID), published[0].Source().GetID())

	s.Assert().Equal(float64(20), promtestutil.ToFloat64(s.metrics.ExperienceGranted.WithLabelValues(testGuildID)))
	s.Assert().Equal(float64(2), promtestutil.ToFloat64(s.metrics.LevelUps.WithLabelValues(testGuildID)))
}

func (s *OrchestratorTestSuite) TestGrantExperience_NoLevelChange() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithExp(10).Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, nil)

	out, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Amount:  1,
	})
	s.Require().NoError(err)
	s.Assert().Equal(int32(0), out.LevelsGained)
	s.Assert().Empty(s.bus.all())
}

func (s *OrchestratorTestSuite) TestGrantExperience_NegativeClampsAtZero() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithExp(30).Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Amount:  -100,
	})
	s.Require().NoError(err)
	s.Assert().Equal(int32(-2), out.LevelsGained)
	s.Assert().Equal(int64(0), saved.Exp)
	s.Assert().Empty(s.bus.all())
}

func (s *OrchestratorTestSuite) TestGrantExperience_PublishFailureKeepsSave() {
	s.bus.err = errors.Internal("subscriber exploded")
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, nil)
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, nil)

	out, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		DcTag:   testDcTag,
		Amount:  10,
	})
	s.Require().NoError(err)
	s.Assert().Equal(int32(1), out.LevelsGained)
	s.Assert().Len(s.bus.all(), 1)
}

func (s *OrchestratorTestSuite) TestGrantExperience_RequiresIdentity() {
	_, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{DcID: testDcID, Amount: 1})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.svc.GrantExperience(s.ctx, nil)
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGrantExperience_RejectsSeparatorInIDs() {
	_, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: "guild:1",
		DcID:    testDcID,
		Amount:  1,
	})
	s.Require().True(errors.IsInvalidArgument(err), "got %v", err)
	s.Assert().Contains(err.Error(), "guild_id")

	_, err = s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    "dc:1",
		Amount:  1,
	})
	s.Require().True(errors.IsInvalidArgument(err), "got %v", err)
	s.Assert().Contains(err.Error(), "dc_id")
}

func (s *OrchestratorTestSuite) TestGrantExperience_SaveFailure() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())
	s.playerRepo.EXPECT().Save(s.ctx, gomock.Any()).Return(nil, errors.Internal("redis down"))

	_, err := s.svc.GrantExperience(s.ctx, &progression.GrantExperienceInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Amount:  100,
	})
	s.Assert().True(errors.IsInternal(err))
	s.Assert().Empty(s.bus.all())
}

func (s *OrchestratorTestSuite) TestUpdateCurrency() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID,
		s.record().WithBalance(entities.CurrencySilverCoin, 10).Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.UpdateCurrency(s.ctx, &progression.UpdateCurrencyInput{
		GuildID:  testGuildID,
		DcID:     testDcID,
		Currency: entities.CurrencySilverCoin,
		Amount:   -10,
	})
	s.Require().NoError(err)
	s.Assert().Equal(int64(0), out.Balance)
	s.Assert().Equal(int64(0), saved.Currencies[entities.CurrencySilverCoin])
}

func (s *OrchestratorTestSuite) TestUpdateCurrency_Rejections() {
	testCases := []struct {
		name     string
		currency entities.Currency
		amount   int64
		reason   string
	}{
		{"insufficient balance", entities.CurrencySilverCoin, -11, entities.ReasonInsufficientBalance},
		{"unknown currency", "gold", 5, entities.ReasonUnknownCurrency},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID,
				s.record().WithBalance(entities.CurrencySilverCoin, 10).Build())

			_, err := s.svc.UpdateCurrency(s.ctx, &progression.UpdateCurrencyInput{
				GuildID:  testGuildID,
				DcID:     testDcID,
				Currency: tc.currency,
				Amount:   tc.amount,
			})
			s.Require().Error(err)
			s.Assert().True(errors.IsRejection(err))
			s.Assert().True(errors.HasReason(err, tc.reason))
			s.Assert().Equal(float64(1), promtestutil.ToFloat64(
				s.metrics.CurrencyRejections.WithLabelValues(string(tc.currency), tc.reason)))
		})
	}
}

func (s *OrchestratorTestSuite) TestAcceptTask() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.AcceptTask(s.ctx, &progression.AcceptTaskInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		TaskID:  "task-1",
	})
	s.Require().NoError(err)
	s.Assert().True(out.Player.HasTask())
	s.Require().NotNil(saved.CurrentTaskID)
	s.Assert().Equal("task-1", *saved.CurrentTaskID)
}

func (s *OrchestratorTestSuite) TestAcceptTask_AlreadyAssigned() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithTask("task-1").Build())

	_, err := s.svc.AcceptTask(s.ctx, &progression.AcceptTaskInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		TaskID:  "task-2",
	})
	s.Assert().True(errors.IsFailedPrecondition(err))
	s.Assert().True(errors.HasReason(err, entities.ReasonTaskAlreadyAssigned))
	s.Assert().Equal(float64(1), promtestutil.ToFloat64(
		s.metrics.TaskRejections.WithLabelValues(entities.ReasonTaskAlreadyAssigned)))
}

func (s *OrchestratorTestSuite) TestCompleteTask() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().WithTask("task-1").Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.CompleteTask(s.ctx, &progression.CompleteTaskInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Tier:    entities.RewardHigh,
	})
	s.Require().NoError(err)

	s.Assert().Equal("task-1", out.TaskID)
	s.Assert().Equal(int64(30), out.ExpAwarded)
	s.Assert().Equal(int64(11), out.CoinsAwarded)
	s.Assert().Equal(int32(2), out.LevelsGained)
	s.Assert().Equal([]int{12}, s.roller.sizes)

	s.Assert().Nil(saved.CurrentTaskID)
	s.Assert().Equal(int64(30), saved.Exp)
	s.Assert().Equal(int64(11), saved.Currencies[entities.CurrencySilverCoin])
	s.Assert().Len(s.bus.all(), 1)
	s.Assert().Equal(float64(1), promtestutil.ToFloat64(
		s.metrics.TasksCompleted.WithLabelValues(string(entities.RewardHigh))))
}

func (s *OrchestratorTestSuite) TestCompleteTask_NoActiveTask() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())

	_, err := s.svc.CompleteTask(s.ctx, &progression.CompleteTaskInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Tier:    entities.RewardNormal,
	})
	s.Assert().True(errors.HasReason(err, entities.ReasonNoActiveTask))
	s.Assert().Empty(s.roller.sizes)
}

func (s *OrchestratorTestSuite) TestCompleteTask_UnknownTier() {
	_, err := s.svc.CompleteTask(s.ctx, &progression.CompleteTaskInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Tier:    "REWARD_COSMIC",
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestAbandonTask() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID,
		s.record().WithExp(7).WithTask("task-1").Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	out, err := s.svc.AbandonTask(s.ctx, &progression.AbandonTaskInput{GuildID: testGuildID, DcID: testDcID})
	s.Require().NoError(err)

	s.Assert().Equal("task-1", out.TaskID)
	s.Assert().Nil(saved.CurrentTaskID)
	s.Assert().Equal(int64(7), saved.Exp)
	s.Assert().Equal(int64(0), saved.Currencies[entities.CurrencySilverCoin])
}

func (s *OrchestratorTestSuite) TestUpdateRole() {
	var saved *entities.PlayerRecord
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())
	mocks.ExpectPlayerSave(s.ctx, s.playerRepo, &saved)

	_, err := s.svc.UpdateRole(s.ctx, &progression.UpdateRoleInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Role:    entities.RolePremiumMember,
	})
	s.Require().NoError(err)
	s.Assert().Equal(entities.RolePremiumMember, saved.Role)

	_, err = s.svc.UpdateRole(s.ctx, &progression.UpdateRoleInput{
		GuildID: testGuildID,
		DcID:    testDcID,
		Role:    entities.Role(42),
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestGetProfile() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID,
		s.record().WithExp(30).WithBalance(entities.CurrencyRoyalPoint, 3).Build())

	counter := testutils.CreateTestDailyCounterRecord(testDcID)
	counter.TextChatDailyCounter = 12
	mocks.ExpectCounterGet(s.ctx, s.counterRepo, testDcID, counter)

	out, err := s.svc.GetProfile(s.ctx, &progression.GetProfileInput{GuildID: testGuildID, DcID: testDcID})
	s.Require().NoError(err)

	view := out.Profile
	s.Assert().Equal(testDcTag, view.DcTag)
	s.Assert().Equal("Bronze", view.Rank)
	s.Assert().Equal(int32(3), view.Level)
	s.Assert().Equal(int64(7), view.ExpCurrentLevel)
	s.Assert().Equal(int64(17), view.ExpToNextLevel)
	s.Assert().Equal(int64(3), view.Currencies[entities.CurrencyRoyalPoint])
	s.Assert().Equal(int64(12), view.TextChatDailyCounter)
}

func (s *OrchestratorTestSuite) TestGetProfile_NoCounters() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, s.record().Build())
	mocks.ExpectCounterGet(s.ctx, s.counterRepo, testDcID, nil)

	out, err := s.svc.GetProfile(s.ctx, &progression.GetProfileInput{GuildID: testGuildID, DcID: testDcID})
	s.Require().NoError(err)
	s.Assert().Equal(int64(0), out.Profile.TextChatDailyCounter)
}

func (s *OrchestratorTestSuite) TestGetProfile_NotFound() {
	mocks.ExpectPlayerGet(s.ctx, s.playerRepo, testGuildID, testDcID, nil)

	_, err := s.svc.GetProfile(s.ctx, &progression.GetProfileInput{GuildID: testGuildID, DcID: testDcID})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestLeaderboard() {
	s.playerRepo.EXPECT().
		ListByGuild(s.ctx, player.ListByGuildInput{GuildID: testGuildID}).
		Return(&player.ListByGuildOutput{
			Records: []*entities.PlayerRecord{
				s.record().WithIdentity(testGuildID, "dc-low").WithExp(5).Build(),
				s.record().WithIdentity(testGuildID, "dc-high").WithExp(200).Build(),
				s.record().WithIdentity(testGuildID, "dc-b").WithExp(40).Build(),
				s.record().WithIdentity(testGuildID, "dc-a").WithExp(40).Build(),
			},
			Failed: map[string]error{"dc-bad": errors.InvalidArgument("bad json")},
		}, nil)

	out, err := s.svc.Leaderboard(s.ctx, &progression.LeaderboardInput{GuildID: testGuildID, Limit: 3})
	s.Require().NoError(err)

	s.Require().Len(out.Entries, 3)
	s.Assert().Equal("dc-high", out.Entries[0].DcID)
	s.Assert().Equal("dc-a", out.Entries[1].DcID)
	s.Assert().Equal("dc-b", out.Entries[2].DcID)
	s.Assert().Equal(int32(3), out.Entries[2].Position)
	s.Assert().Equal(int32(4), out.Entries[1].Level)
	s.Assert().Equal(int32(1), out.Skipped)
}

func (s *OrchestratorTestSuite) TestLeaderboard_Validation() {
	_, err := s.svc.Leaderboard(s.ctx, &progression.LeaderboardInput{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = s.svc.Leaderboard(s.ctx, &progression.LeaderboardInput{GuildID: testGuildID, Limit: -1})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func TestGrantExperience_ConcurrentGrantsAreSerialized(t *testing.T) {
	client, _ := testutils.CreateTestRedisClient(t)
	repo, err := player.NewRedis(&player.RedisConfig{Client: client})
	if err != nil {
		t.Fatal(err)
	}

	svc, err := progression.NewOrchestrator(&progression.Config{
		PlayerRepo: repo,
		EventBus:   &recordingBus{},
		DiceRoller: &fixedRoller{value: 1},
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	const grants = 40

	var wg sync.WaitGroup
	for i := 0; i < grants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GrantExperience(ctx, &progression.GrantExperienceInput{
				GuildID: testGuildID,
				DcID:    testDcID,
				Amount:  1,
			})
			if err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	out, err := repo.Get(ctx, player.GetInput{GuildID: testGuildID, DcID: testDcID})
	if err != nil {
		t.Fatal(err)
	}
	if out.Record.Exp != grants {
		t.Fatalf("expected %d exp, got %d", grants, out.Record.Exp)
	}
}
