package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables this layer writes to. Setup stays inside
// the service (no external migration tool); every statement is
// re-runnable.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists scan_runs (
			id uuid primary key,
			as_of text not null,
			source text not null default '',
			interval text not null default '',
			history_years int not null default 0,
			auto_thresholds jsonb null,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists scan_runs_created_at_idx on scan_runs(created_at desc);`,
		`create table if not exists signals (
			id uuid primary key,
			scan_run_id uuid null references scan_runs(id),
			as_of text not null default '',
			ticker text not null,
			label text not null,
			plan_type text not null default 'unknown',
			entry jsonb not null default '{}'::jsonb,
			stop jsonb null,
			targets jsonb not null default '[]'::jsonb,
			probability double precision null,
			confidence double precision null,
			rr double precision null,
			vol_z double precision null,
			rs_vs_spy double precision null,
			learned_top_rules jsonb null,
			source text not null default '',
			interval text not null default '',
			extras jsonb not null default '{}'::jsonb,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists signals_created_at_idx on signals(created_at desc);`,
		`create index if not exists signals_label_idx on signals(label);`,
		`create index if not exists signals_scan_run_idx on signals(scan_run_id);`,
		`create table if not exists review_labels (
			id uuid primary key,
			ticker text not null,
			mode text not null,
			idea_source text not null,
			timeframe text not null,
			entry_reasons jsonb not null default '[]'::jsonb,
			exit_intent text not null,
			confidence int not null,
			notes text not null default '',
			scan_run_id uuid null,
			signal_id uuid null,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists review_labels_ticker_idx on review_labels(ticker);`,
		`create index if not exists review_labels_created_at_idx on review_labels(created_at desc);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
