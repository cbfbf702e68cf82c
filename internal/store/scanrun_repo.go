package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// ErrNoScanRuns is returned by Latest when nothing has been ingested.
var ErrNoScanRuns = errors.New("store: no scan runs recorded")

// ScanRunRepository persists scan-run metadata.
type ScanRunRepository struct {
	pool *pgxpool.Pool
}

// NewScanRunRepository creates a scan-run repository.
func NewScanRunRepository(pool *pgxpool.Pool) *ScanRunRepository {
	return &ScanRunRepository{pool: pool}
}

// Insert records one scanner execution and returns its id.
func (r *ScanRunRepository) Insert(ctx context.Context, run contracts.ScanRun) (string, error) {
	id := uuid.NewString()

	var thresholds []byte
	if len(run.AutoThresholds) > 0 {
		thresholds = run.AutoThresholds
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO scan_runs (id, as_of, source, interval, history_years, auto_thresholds)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, run.AsOf, run.Source, run.Interval, run.HistoryYears, thresholds,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert scan run: %w", err)
	}
	return id, nil
}

// Latest returns the most recently recorded scan run.
func (r *ScanRunRepository) Latest(ctx context.Context) (*contracts.ScanRun, error) {
	var run contracts.ScanRun
	var thresholds []byte

	err := r.pool.QueryRow(ctx, `
		SELECT id, as_of, source, interval, history_years, auto_thresholds, created_at
		FROM scan_runs ORDER BY created_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.AsOf, &run.Source, &run.Interval, &run.HistoryYears, &thresholds, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoScanRuns
		}
		return nil, fmt.Errorf("failed to query latest scan run: %w", err)
	}

	if len(thresholds) > 0 {
		run.AutoThresholds = thresholds
	}
	return &run, nil
}
