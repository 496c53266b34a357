package player_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/repositories/player"
	"github.com/KirkDiggler/guild-progression/internal/testutils"
	"github.com/KirkDiggler/guild-progression/internal/testutils/builders"
)

var (
	getPlayerQuery   = regexp.QuoteMeta("FROM players WHERE guild_id = $1 AND dc_id = $2")
	listPlayersQuery = regexp.QuoteMeta("FROM players WHERE guild_id = $1 ORDER BY exp DESC, dc_id")
	upsertPlayerStmt = regexp.QuoteMeta("INSERT INTO players") + `(?s).*` + regexp.QuoteMeta("ON CONFLICT (guild_id, dc_id)")
	deletePlayerStmt = regexp.QuoteMeta("DELETE FROM players WHERE guild_id = $1 AND dc_id = $2")
	listGuildsQuery  = regexp.QuoteMeta("SELECT DISTINCT guild_id FROM players")

	playerColumns = []string{"dc_id", "dc_tag", "guild_id", "role", "level", "exp", "current_task_id", "currencies"}
)

type PostgresPlayerTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo player.Repository
	ctx  context.Context
}

func (s *PostgresPlayerTestSuite) SetupTest() {
	s.mock = testutils.CreateTestPostgresMock(s.T())
	s.ctx = context.Background()

	repo, err := player.NewPostgres(&player.PostgresConfig{DB: s.mock})
	s.Require().NoError(err)
	s.repo = repo
}

func playerRow(dcID string, exp int64, task *string, currencies string) []any {
	level, _ := progression.LevelForExperience(exp)
	return []any{dcID, "tag-" + dcID, testGuildID, int32(progression.RoleMember), level, exp, task, []byte(currencies)}
}

func taskID(id string) *string {
	return &id
}

func (s *PostgresPlayerTestSuite) TestNewPostgres() {
	_, err := player.NewPostgres(&player.PostgresConfig{})
	s.Assert().Contains(err.Error(), "db cannot be nil")
}

func (s *PostgresPlayerTestSuite) TestGet() {
	s.mock.ExpectQuery(getPlayerQuery).
		WithArgs(testGuildID, testDcID).
		WillReturnRows(pgxmock.NewRows(playerColumns).
			AddRow(playerRow(testDcID, 40, taskID("task-1"), `{"silverCoin":7}`)...))

	out, err := s.repo.Get(s.ctx, player.GetInput{GuildID: testGuildID, DcID: testDcID})
	s.Require().NoError(err)

	s.Assert().Equal(testDcID, out.Record.DcID)
	s.Assert().Equal(int64(40), out.Record.Exp)
	s.Require().NotNil(out.Record.CurrentTaskID)
	s.Assert().Equal("task-1", *out.Record.CurrentTaskID)
	s.Assert().Equal(int64(7), out.Record.Currencies[progression.CurrencySilverCoin])
}

func (s *PostgresPlayerTestSuite) TestGetNotFound() {
	s.mock.ExpectQuery(getPlayerQuery).
		WithArgs(testGuildID, testDcID).
		WillReturnRows(pgxmock.NewRows(playerColumns))

	_, err := s.repo.Get(s.ctx, player.GetInput{GuildID: testGuildID, DcID: testDcID})
	s.Assert().True(errors.IsNotFound(err), "got %v", err)
}

func (s *PostgresPlayerTestSuite) TestGetMalformedCurrencies() {
	s.mock.ExpectQuery(getPlayerQuery).
		WithArgs(testGuildID, testDcID).
		WillReturnRows(pgxmock.NewRows(playerColumns).
			AddRow(playerRow(testDcID, 0, nil, `{"gold":1}`)...))

	_, err := s.repo.Get(s.ctx, player.GetInput{GuildID: testGuildID, DcID: testDcID})
	s.Assert().True(errors.IsInvalidArgument(err), "got %v", err)
}

func (s *PostgresPlayerTestSuite) TestGetRejectsSeparatorInIDs() {
	_, err := s.repo.Get(s.ctx, player.GetInput{GuildID: "guild:1", DcID: testDcID})
	s.Assert().True(errors.IsInvalidArgument(err), "got %v", err)
}

func (s *PostgresPlayerTestSuite) TestSave() {
	rec := builders.NewPlayerRecordBuilder().
		WithIdentity(testGuildID, testDcID).
		WithExp(23).
		WithBalance(progression.CurrencyRoyalPoint, 4).
		Build()

	s.mock.ExpectExec(upsertPlayerStmt).
		WithArgs(testDcID, rec.DcTag, testGuildID, int32(rec.Role), int32(3), int64(23),
			pgxmock.AnyArg(), testutils.JSONArg{Want: `{"silverCoin":0,"royalPoint":4}`}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := s.repo.Save(s.ctx, player.SaveInput{Record: rec})
	s.Require().NoError(err)
}

func (s *PostgresPlayerTestSuite) TestSaveStorageFailure() {
	s.mock.ExpectExec(upsertPlayerStmt).
		WillReturnError(context.DeadlineExceeded)

	rec := builders.NewPlayerRecordBuilder().Build()
	_, err := s.repo.Save(s.ctx, player.SaveInput{Record: rec})
	s.Assert().True(errors.IsInternal(err), "got %v", err)
}

func (s *PostgresPlayerTestSuite) TestDelete() {
	s.mock.ExpectExec(deletePlayerStmt).
		WithArgs(testGuildID, testDcID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	_, err := s.repo.Delete(s.ctx, player.DeleteInput{GuildID: testGuildID, DcID: testDcID})
	s.Require().NoError(err)

	s.mock.ExpectExec(deletePlayerStmt).
		WithArgs(testGuildID, testDcID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	_, err = s.repo.Delete(s.ctx, player.DeleteInput{GuildID: testGuildID, DcID: testDcID})
	s.Assert().True(errors.IsNotFound(err), "got %v", err)
}

func (s *PostgresPlayerTestSuite) TestListByGuild() {
	s.mock.ExpectQuery(listPlayersQuery).
		WithArgs(testGuildID).
		WillReturnRows(pgxmock.NewRows(playerColumns).
			AddRow(playerRow("dc-a", 93, nil, `{}`)...).
			AddRow(playerRow("dc-bad", 0, nil, `{"silverCoin":"lots"}`)...).
			AddRow(playerRow("dc-b", 10, nil, `{"royalPoint":2}`)...)).
		RowsWillBeClosed()

	out, err := s.repo.ListByGuild(s.ctx, player.ListByGuildInput{GuildID: testGuildID})
	s.Require().NoError(err)

	s.Require().Len(out.Records, 2)
	s.Assert().Equal("dc-a", out.Records[0].DcID)
	s.Assert().Equal("dc-b", out.Records[1].DcID)
	s.Assert().Contains(out.Failed, "dc-bad")
}

func (s *PostgresPlayerTestSuite) TestListGuilds() {
	s.mock.ExpectQuery(listGuildsQuery).
		WillReturnRows(pgxmock.NewRows([]string{"guild_id"}).
			AddRow("guild-a").
			AddRow("guild-b")).
		RowsWillBeClosed()

	out, err := s.repo.ListGuilds(s.ctx, player.ListGuildsInput{})
	s.Require().NoError(err)
	s.Assert().Equal([]string{"guild-a", "guild-b"}, out.GuildIDs)
}

func (s *PostgresPlayerTestSuite) TestListGuildsQueryFailure() {
	s.mock.ExpectQuery(listGuildsQuery).
		WillReturnError(context.Canceled)

	_, err := s.repo.ListGuilds(s.ctx, player.ListGuildsInput{})
	s.Assert().Error(err)
}

func TestPostgresPlayerTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresPlayerTestSuite))
}
