package dailycounter

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/KirkDiggler/guild-progression/internal/entities/progression"
	"github.com/KirkDiggler/guild-progression/internal/errors"
	"github.com/KirkDiggler/guild-progression/internal/postgres"
)

const (
	selectCounterColumns = `SELECT dc_id, dc_tag, text_chat_daily_counter, voice_chat_daily_counter, last_reset_time FROM daily_counters`

	getCounterSQL = selectCounterColumns + ` WHERE dc_id = $1`

	listCountersSQL = selectCounterColumns + ` ORDER BY dc_id`

	upsertCounterSQL = `INSERT INTO daily_counters (dc_id, dc_tag, text_chat_daily_counter, voice_chat_daily_counter, last_reset_time, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (dc_id) DO UPDATE SET
	dc_tag = EXCLUDED.dc_tag,
	text_chat_daily_counter = EXCLUDED.text_chat_daily_counter,
	voice_chat_daily_counter = EXCLUDED.voice_chat_daily_counter,
	last_reset_time = EXCLUDED.last_reset_time,
	updated_at = now()`
)

type postgresRepository struct {
	db postgres.DB
}

// PostgresConfig contains configuration for the Postgres daily counter repository
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

// NewPostgres creates a Postgres-backed daily counter repository
func NewPostgres(cfg *PostgresConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &postgresRepository{db: cfg.DB}, nil
}

func (r *postgresRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.DcID == "" {
		return nil, errors.InvalidArgument(errDcIDEmpty)
	}

	rec, err := scanRecord(r.db.QueryRow(ctx, getCounterSQL, input.DcID))
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.NotFoundf("daily counter for %s not found", input.DcID)
		}
		return nil, errors.Wrap(err, "failed to get daily counter")
	}

	return &GetOutput{Record: rec}, nil
}

func (r *postgresRepository) Save(ctx context.Context, input SaveInput) (*SaveOutput, error) {
	if input.Record == nil {
		return nil, errors.InvalidArgument(errRecordNil)
	}
	dcID := recordDcID(input.Record)
	if dcID == "" {
		return nil, errors.InvalidArgument(errDcIDEmpty)
	}

	rec := input.Record
	var lastReset *time.Time
	if t := rec.LastResetTime.Ptr(); t != nil {
		utc := t.UTC()
		lastReset = &utc
	}

	_, err := r.db.Exec(ctx, upsertCounterSQL,
		dcID, rec.DcTag, rec.TextChatDailyCounter, rec.VoiceChatDailyCounter, lastReset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save daily counter")
	}

	return &SaveOutput{Record: rec}, nil
}

func (r *postgresRepository) ListAll(ctx context.Context, _ ListAllInput) (*ListAllOutput, error) {
	rows, err := r.db.Query(ctx, listCountersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list daily counters")
	}
	defer rows.Close()

	output := &ListAllOutput{
		Records: []*progression.DailyCounterRecord{},
		Failed:  map[string]error{},
	}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan daily counter")
		}
		output.Records = append(output.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list daily counters")
	}

	return output, nil
}

func scanRecord(row pgx.Row) (*progression.DailyCounterRecord, error) {
	var (
		dcID      string
		dcTag     *string
		text      int64
		voice     int64
		lastReset *time.Time
	)
	if err := row.Scan(&dcID, &dcTag, &text, &voice, &lastReset); err != nil {
		return nil, err
	}

	rec := &progression.DailyCounterRecord{
		DcID:                  &dcID,
		DcTag:                 dcTag,
		TextChatDailyCounter:  text,
		VoiceChatDailyCounter: voice,
	}
	if lastReset != nil {
		rec.LastResetTime = progression.NewTimestamp(lastReset.UTC())
	}
	return rec, nil
}
