// Package retrieve serves signal collections through the three-tier
// data-source strategy: primary store, snapshot fallback after a store
// error, and snapshot fallback when no store is configured at all.
// Tiers are tried strictly in order, never raced.
package retrieve

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/internal/normalize"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// Tier identifies which data source actually served a response.
type Tier string

const (
	TierPrimary            Tier = "primary"
	TierFallbackAfterError Tier = "fallback_after_error"
	TierFallback           Tier = "fallback"
)

// Limit bounds for a single retrieval.
const (
	DefaultLimit = 200
	MinLimit     = 1
	MaxLimit     = 1000
)

// Result is one retrieval response, tagged with its provenance tier.
// Error carries the primary-store failure when a fallback tier served.
type Result struct {
	Source  Tier               `json:"source"`
	AsOf    string             `json:"as_of"`
	Signals []contracts.Signal `json:"signals"`
	Error   string             `json:"error,omitempty"`
}

// Store is the primary-store read surface.
type Store interface {
	RecentSignals(ctx context.Context, limit int, label string) ([]contracts.Signal, error)
}

// Snapshots supplies the static-file fallback signals.
type Snapshots interface {
	LoadAll(ctx context.Context) []contracts.Signal
}

// Orchestrator runs the tier state machine. A nil store means the
// primary was never configured and every read serves from snapshots.
type Orchestrator struct {
	store     Store
	snapshots Snapshots
	logger    *logger.Logger
}

// New creates an orchestrator. store may be nil.
func New(store Store, snapshots Snapshots, log *logger.Logger) *Orchestrator {
	return &Orchestrator{store: store, snapshots: snapshots, logger: log}
}

// GetSignals serves up to limit signals, optionally filtered to one
// label, from the highest tier that works.
func (o *Orchestrator) GetSignals(ctx context.Context, limit int, label string) Result {
	limit = clampLimit(limit)

	if o.store == nil {
		signals := o.fromSnapshots(ctx, label, limit)
		return Result{Source: TierFallback, AsOf: asOf(signals), Signals: signals}
	}

	rows, err := o.store.RecentSignals(ctx, limit, label)
	if err != nil {
		o.logger.WithError(err).Warn("Primary store query failed, serving snapshot fallback")
		signals := o.fromSnapshots(ctx, label, limit)
		return Result{
			Source:  TierFallbackAfterError,
			AsOf:    asOf(signals),
			Signals: signals,
			Error:   err.Error(),
		}
	}

	rows = normalize.Signals(rows)
	return Result{Source: TierPrimary, AsOf: asOf(rows), Signals: rows}
}

// fromSnapshots is the shared fallback path: load every tier file,
// coerce entries, order newest first, filter, slice.
func (o *Orchestrator) fromSnapshots(ctx context.Context, label string, limit int) []contracts.Signal {
	signals := normalize.Signals(o.snapshots.LoadAll(ctx))

	sort.SliceStable(signals, func(i, j int) bool {
		return strings.Compare(signals[i].OrderKey(), signals[j].OrderKey()) > 0
	})

	if label != "" {
		filtered := signals[:0]
		for _, s := range signals {
			if s.Label == label {
				filtered = append(filtered, s)
			}
		}
		signals = filtered
	}

	if len(signals) > limit {
		signals = signals[:limit]
	}
	if signals == nil {
		signals = []contracts.Signal{}
	}
	return signals
}

func clampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// asOf reports the newest timestamp in the batch, or now for an empty
// one.
func asOf(signals []contracts.Signal) string {
	newest := ""
	for i := range signals {
		if k := signals[i].OrderKey(); k > newest {
			newest = k
		}
	}
	if newest == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return newest
}
