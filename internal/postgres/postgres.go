// Package postgres connects the Postgres store backend.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KirkDiggler/guild-progression/internal/errors"
)

// DB is the query surface the repositories use. *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Connect opens a pool and pings it
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.InvalidArgument("postgres: dsn is required")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create postgres pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "postgres did not answer ping")
	}

	return pool, nil
}

// Migrate creates the tables the repositories use when they are missing
func Migrate(ctx context.Context, db DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema")
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		guild_id        TEXT        NOT NULL,
		dc_id           TEXT        NOT NULL,
		dc_tag          TEXT        NOT NULL DEFAULT '',
		role            INTEGER     NOT NULL DEFAULT 3,
		level           INTEGER     NOT NULL DEFAULT 1,
		exp             BIGINT      NOT NULL DEFAULT 0 CHECK (exp >= 0),
		current_task_id TEXT,
		currencies      JSONB       NOT NULL DEFAULT '{}'::jsonb,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (guild_id, dc_id)
	)`,
	`CREATE INDEX IF NOT EXISTS players_guild_exp_idx ON players (guild_id, exp DESC)`,
	`CREATE TABLE IF NOT EXISTS daily_counters (
		dc_id                    TEXT        PRIMARY KEY,
		dc_tag                   TEXT,
		text_chat_daily_counter  BIGINT      NOT NULL DEFAULT 0,
		voice_chat_daily_counter BIGINT      NOT NULL DEFAULT 0,
		last_reset_time          TIMESTAMPTZ,
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}
