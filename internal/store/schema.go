// Package store persists rankings, signals and quota snapshots. Postgres
// repositories back production runs; the memory stores back tests and
// database-less CLI runs.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS quant;

CREATE TABLE IF NOT EXISTS quant.signals (
	id              UUID PRIMARY KEY,
	ticker          TEXT NOT NULL,
	signal_type     TEXT NOT NULL,
	profile         TEXT NOT NULL,
	sector          TEXT NOT NULL DEFAULT '',
	value           DOUBLE PRECISION NOT NULL,
	message         TEXT NOT NULL DEFAULT '',
	price_at_signal DOUBLE PRECISION NOT NULL,
	status          TEXT NOT NULL DEFAULT 'ACTIVE',
	final_price     DOUBLE PRECISION,
	change_pct      DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL,
	audited_at      TIMESTAMPTZ,
	window_bucket   BIGINT NOT NULL,
	UNIQUE (ticker, signal_type, window_bucket)
);

CREATE INDEX IF NOT EXISTS signals_active_created_idx
	ON quant.signals (created_at) WHERE status = 'ACTIVE';

CREATE TABLE IF NOT EXISTS quant.rankings (
	run_id       UUID PRIMARY KEY,
	ranking_date DATE NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS quant.ranking_items (
	run_id       UUID NOT NULL REFERENCES quant.rankings (run_id) ON DELETE CASCADE,
	position     INT NOT NULL,
	ticker       TEXT NOT NULL,
	sector       TEXT NOT NULL DEFAULT '',
	asset_class  TEXT NOT NULL,
	profile      TEXT NOT NULL,
	score        DOUBLE PRECISION NOT NULL,
	penalty      DOUBLE PRECISION NOT NULL DEFAULT 0,
	action       TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL,
	target_price DOUBLE PRECISION NOT NULL,
	thesis       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, position),
	UNIQUE (run_id, ticker)
);

CREATE TABLE IF NOT EXISTS quant.performance_snapshots (
	portfolio_id  TEXT NOT NULL,
	snapshot_date DATE NOT NULL,
	equity        DOUBLE PRECISION NOT NULL,
	invested      DOUBLE PRECISION NOT NULL,
	net_flow      DOUBLE PRECISION NOT NULL,
	daily_return  DOUBLE PRECISION NOT NULL,
	quota_price   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (portfolio_id, snapshot_date)
);
`

// EnsureSchema creates the quant schema objects when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
