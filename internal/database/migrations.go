package database

import (
	"context"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS races (
		id              TEXT PRIMARY KEY,
		name            TEXT NOT NULL,
		date            TIMESTAMPTZ NOT NULL,
		qualifying_date TIMESTAMPTZ NOT NULL,
		circuit         TEXT NOT NULL DEFAULT '',
		country         TEXT NOT NULL DEFAULT '',
		valid           BOOLEAN NOT NULL DEFAULT TRUE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS teams (
		id     TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		engine TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id      TEXT PRIMARY KEY,
		name    TEXT NOT NULL,
		number  INTEGER NOT NULL DEFAULT 0,
		team_id TEXT REFERENCES teams(id)
	)`,
	`CREATE TABLE IF NOT EXISTS roster_assignments (
		id             TEXT PRIMARY KEY,
		driver_id      TEXT NOT NULL REFERENCES drivers(id),
		team_id        TEXT NOT NULL REFERENCES teams(id),
		effective_from TIMESTAMPTZ NOT NULL,
		note           TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id    TEXT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		points     INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		race_id            TEXT NOT NULL REFERENCES races(id),
		pole_position      TEXT NOT NULL DEFAULT '',
		pole_time          TEXT NOT NULL DEFAULT '',
		qualifying_results TEXT[] NOT NULL DEFAULT '{}',
		top_10             TEXT[] NOT NULL DEFAULT '{}',
		fastest_lap        TEXT NOT NULL DEFAULT '',
		dnf_predictions    TEXT[] NOT NULL DEFAULT '{}',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT predictions_one_per_user UNIQUE (user_id, race_id)
	)`,
	`CREATE TABLE IF NOT EXISTS race_results (
		id                 TEXT PRIMARY KEY,
		race_id            TEXT NOT NULL UNIQUE REFERENCES races(id),
		qualifying_results TEXT[] NOT NULL DEFAULT '{}',
		race_results       TEXT[] NOT NULL DEFAULT '{}',
		pole_time          TEXT NOT NULL DEFAULT '',
		fastest_lap        TEXT NOT NULL DEFAULT '',
		dnf_drivers        TEXT[] NOT NULL DEFAULT '{}',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS driver_race_points (
		driver_id  TEXT NOT NULL,
		race_id    TEXT NOT NULL REFERENCES races(id),
		position   INTEGER NOT NULL,
		points     INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (driver_id, race_id)
	)`,
	`CREATE TABLE IF NOT EXISTS constructor_race_points (
		team_id    TEXT NOT NULL,
		race_id    TEXT NOT NULL REFERENCES races(id),
		points     INTEGER NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (team_id, race_id)
	)`,
	`CREATE TABLE IF NOT EXISTS race_points (
		id                 TEXT PRIMARY KEY,
		race_id            TEXT NOT NULL REFERENCES races(id),
		prediction_id      TEXT NOT NULL,
		user_id            TEXT NOT NULL,
		qualifying_points  INTEGER NOT NULL,
		race_points        INTEGER NOT NULL,
		pole_time_points   INTEGER NOT NULL,
		fastest_lap_points INTEGER NOT NULL,
		dnf_points         INTEGER NOT NULL,
		total_points       INTEGER NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT race_points_one_per_prediction UNIQUE (race_id, prediction_id)
	)`,
	`CREATE INDEX IF NOT EXISTS race_points_user_idx ON race_points (user_id)`,
	`CREATE INDEX IF NOT EXISTS roster_assignments_driver_idx ON roster_assignments (driver_id, effective_from)`,
}

// Migrate creates all tables in dependency order.
func Migrate(ctx context.Context, db *DB) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
