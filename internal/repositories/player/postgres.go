package player

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jackc/pgx/v5"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/postgres"
)

const (
	selectPlayerColumns = `SELECT dc_id, dc_tag, guild_id, role, level, exp, current_task_id, currencies FROM players`

	getPlayerSQL = selectPlayerColumns + ` WHERE guild_id = $1 AND dc_id = $2`

	listPlayersSQL = selectPlayerColumns + ` WHERE guild_id = $1 ORDER BY exp DESC, dc_id`

	upsertPlayerSQL = `INSERT INTO players (dc_id, dc_tag, guild_id, role, level, exp, current_task_id, currencies, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, now())
ON CONFLICT (guild_id, dc_id) DO UPDATE SET
	dc_tag = EXCLUDED.dc_tag,
	role = EXCLUDED.role,
	level = EXCLUDED.level,
	exp = EXCLUDED.exp,
	current_task_id = EXCLUDED.current_task_id,
	currencies = EXCLUDED.currencies,
	updated_at = now()`

	deletePlayerSQL = `DELETE FROM players WHERE guild_id = $1 AND dc_id = $2`

	listGuildsSQL = `SELECT DISTINCT guild_id FROM players ORDER BY guild_id`
)

type postgresRepository struct {
	db postgres.DB
}

// PostgresConfig contains configuration for the Postgres player repository
type PostgresConfig struct {
	DB postgres.DB
}

// Validate validates the PostgresConfig
func (cfg *PostgresConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// NewPostgres creates a Postgres-backed player repository
func NewPostgres(cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	rec, err := scanRecord(r.db.QueryRow(ctx, getPlayerSQL, input.GuildID, input.DcID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFoundf("player %s not found", progression.PlayerKey(input.GuildID, input.DcID))
		}
		return nil, errors.Wrap(err, "failed to get player")
	}

	return &GetOutput{Record: rec}, nil
}

func (r *postgresRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	if err := input.Record.Validate(); err != nil {
		return nil, err
	}

	currencies, err := json.Marshal(input.Record.Currencies)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal currencies")
	}

	rec := input.Record
	_, err = r.db.Exec(ctx, upsertPlayerSQL,
		rec.DcID, rec.DcTag, rec.GuildID, int32(rec.Role), rec.Level, rec.Exp, rec.CurrentTaskID, string(currencies))
	if err != nil {
		return nil, errors.Wrap(err, "failed to save player")
	}

	return &SaveOutput{Record: rec}, nil
}

func (r *postgresRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if err := validateIdentity(input.GuildID, input.DcID); err != nil {
		return nil, err
	}

	tag, err := r.db.Exec(ctx, deletePlayerSQL, input.GuildID, input.DcID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to delete player")
	}
	if tag.RowsAffected() == 0 {
		return nil, errors.NotFoundf("player %s not found", progression.PlayerKey(input.GuildID, input.DcID))
	}

	return &DeleteOutput{}, nil
}

func (r *postgresRepository) ListByGuild(ctx context.Context, input ListByGuildInput) (*ListByGuildOutput, error) {
	if input.GuildID == "" {
		return nil, errors.InvalidArgument(errGuildIDEmpty)
	}

	rows, err := r.db.Query(ctx, listPlayersSQL, input.GuildID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list players")
	}
	defer rows.Close()

	output := &ListByGuildOutput{
		Records: []*progression.PlayerRecord{},
		Failed:  map[string]error{},
	}
	for rows.Next() {
		raw, err := scanRow(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan player")
		}
		rec, err := raw.decode()
		if err != nil {
			output.Failed[raw.dcID] = err
			continue
		}
		output.Records = append(output.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list players")
	}

	return output, nil
}

func (r *postgresRepository) ListGuilds(ctx context.Context, _ ListGuildsInput) (*ListGuildsOutput, error) {
	rows, err := r.db.Query(ctx, listGuildsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list guilds")
	}
	defer rows.Close()

	output := &ListGuildsOutput{GuildIDs: []string{}}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "failed to scan guild id")
		}
		output.GuildIDs = append(output.GuildIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list guilds")
	}

	return output, nil
}

type playerRow struct {
	dcID          string
	dcTag         string
	guildID       string
	role          int32
	level         int32
	exp           int64
	currentTaskID *string
	currencies    []byte
}

func scanRow(row pgx.Row) (*playerRow, error) {
	var raw playerRow
	err := row.Scan(&raw.dcID, &raw.dcTag, &raw.guildID, &raw.role, &raw.level, &raw.exp,
		&raw.currentTaskID, &raw.currencies)
	if err != nil {
		return nil, err
	}
	return &raw, nil
}

func scanRecord(row pgx.Row) (*progression.PlayerRecord, error) {
	raw, err := scanRow(row)
	if err != nil {
		return nil, err
	}
	return raw.decode()
}

func (p *playerRow) decode() (*progression.PlayerRecord, error) {
	rec := &progression.PlayerRecord{
		DcID:          p.dcID,
		DcTag:         p.dcTag,
		GuildID:       p.guildID,
		Role:          progression.Role(p.role),
		Level:         p.level,
		Exp:           p.exp,
		CurrentTaskID: p.currentTaskID,
		Currencies:    map[progression.Currency]int64{},
	}
	if len(p.currencies) > 0 {
		if err := json.Unmarshal(p.currencies, &rec.Currencies); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid currencies json")
		}
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
