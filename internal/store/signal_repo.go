// Package store holds the PostgreSQL repositories for the durable side
// of the vault: scan runs, signal rows, and review labels.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// SignalRepository reads and appends signal rows.
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a signal repository.
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

const signalColumns = `
	id, scan_run_id, as_of, ticker, label, plan_type,
	entry, stop, targets,
	probability, confidence, rr, vol_z, rs_vs_spy,
	learned_top_rules, source, interval, extras, created_at`

// RecentSignals returns up to limit most-recent signals, optionally
// filtered to one label.
func (r *SignalRepository) RecentSignals(ctx context.Context, limit int, label string) ([]contracts.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals`
	args := []interface{}{}
	if label != "" {
		query += ` WHERE label = $1`
		args = append(args, label)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// ByScanRun returns every signal belonging to one scan run, in insert
// order.
func (r *SignalRepository) ByScanRun(ctx context.Context, runID string) ([]contracts.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals
		WHERE scan_run_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals for run %s: %w", runID, err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// InsertBatch appends one row per signal under the given scan run, all
// in one transaction, and returns the inserted count.
func (r *SignalRepository) InsertBatch(ctx context.Context, runID string, signals []contracts.Signal) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO signals (
			id, scan_run_id, as_of, ticker, label, plan_type,
			entry, stop, targets,
			probability, confidence, rr, vol_z, rs_vs_spy,
			learned_top_rules, source, interval, extras
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`

	inserted := 0
	for _, s := range signals {
		entry, err := json.Marshal(s.Entry)
		if err != nil {
			return inserted, fmt.Errorf("failed to encode entry for %s: %w", s.Ticker, err)
		}
		var stop []byte
		if s.Stop != nil {
			stop, _ = json.Marshal(s.Stop)
		}
		targets, _ := json.Marshal(s.Targets)
		extras := []byte(`{}`)
		if len(s.Extensions) > 0 {
			extras, _ = json.Marshal(s.Extensions)
		}

		var rules []byte
		if len(s.LearnedTopRules) > 0 {
			rules = s.LearnedTopRules
		}

		_, err = tx.Exec(ctx, query,
			uuid.NewString(), runID, s.AsOf, s.Ticker, s.Label, string(s.PlanType),
			entry, stop, targets,
			s.Probability, s.Confidence, s.RR, s.VolZ, s.RSVsSPY,
			rules, s.Source, s.Interval, extras,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert signal %s: %w", s.Ticker, err)
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit signals: %w", err)
	}
	return inserted, nil
}

// rowScanner matches both pgx.Rows and pgx.Row.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

type signalRows interface {
	Next() bool
	Err() error
	Scan(dest ...interface{}) error
}

func scanSignals(rows signalRows) ([]contracts.Signal, error) {
	var out []contracts.Signal
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signal rows: %w", err)
	}
	return out, nil
}

func scanSignal(row rowScanner) (contracts.Signal, error) {
	var (
		s                    contracts.Signal
		scanRunID            *string
		planType             string
		entry, stop, targets []byte
		rules, extras        []byte
		createdAt            time.Time
	)

	err := row.Scan(
		&s.ID, &scanRunID, &s.AsOf, &s.Ticker, &s.Label, &planType,
		&entry, &stop, &targets,
		&s.Probability, &s.Confidence, &s.RR, &s.VolZ, &s.RSVsSPY,
		&rules, &s.Source, &s.Interval, &extras, &createdAt,
	)
	if err != nil {
		return s, fmt.Errorf("failed to scan signal row: %w", err)
	}

	if scanRunID != nil {
		s.ScanRunID = *scanRunID
	}
	switch contracts.PlanType(planType) {
	case contracts.PlanBreakoutConfirmation, contracts.PlanValueZone:
		s.PlanType = contracts.PlanType(planType)
	default:
		s.PlanType = contracts.PlanUnknown
	}
	s.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	if len(entry) > 0 {
		_ = json.Unmarshal(entry, &s.Entry)
	}
	if len(stop) > 0 {
		lvl := &contracts.StopLevel{}
		if json.Unmarshal(stop, lvl) == nil {
			s.Stop = lvl
		}
	}
	if len(targets) > 0 {
		_ = json.Unmarshal(targets, &s.Targets)
	}
	if len(rules) > 0 {
		s.LearnedTopRules = json.RawMessage(rules)
	}
	if len(extras) > 0 && string(extras) != "{}" {
		_ = json.Unmarshal(extras, &s.Extensions)
	}
	return s, nil
}
