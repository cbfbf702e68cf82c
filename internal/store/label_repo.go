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

// LabelRepository appends review labels. The table is an append-only
// log: no update or delete path exists in this layer.
type LabelRepository struct {
	pool *pgxpool.Pool
}

// NewLabelRepository creates a label repository.
func NewLabelRepository(pool *pgxpool.Pool) *LabelRepository {
	return &LabelRepository{pool: pool}
}

// Insert writes one label record and returns its id. Repeated calls
// for the same ticker create independent records.
func (r *LabelRepository) Insert(ctx context.Context, rec contracts.LabelRecord) (string, error) {
	id := uuid.NewString()

	reasons, _ := json.Marshal(rec.EntryReasons)
	if rec.EntryReasons == nil {
		reasons = []byte(`[]`)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_labels (
			id, ticker, mode, idea_source, timeframe,
			entry_reasons, exit_intent, confidence, notes,
			scan_run_id, signal_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		id, rec.Ticker, rec.Mode, rec.IdeaSource, rec.Timeframe,
		reasons, rec.ExitIntent, rec.Confidence, rec.Notes,
		nullable(rec.ScanRunID), nullable(rec.SignalID),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert review label: %w", err)
	}
	return id, nil
}

// TickersLabeledOn returns the set of tickers that already received a
// label on the given day (UTC).
func (r *LabelRepository) TickersLabeledOn(ctx context.Context, day time.Time) (map[string]bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT ticker FROM review_labels
		WHERE created_at >= $1 AND created_at < $2`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query labeled tickers: %w", err)
	}
	defer rows.Close()

	labeled := map[string]bool{}
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan labeled ticker: %w", err)
		}
		labeled[ticker] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating labeled tickers: %w", err)
	}
	return labeled, nil
}

// nullable maps empty strings to SQL NULL for optional uuid columns.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
