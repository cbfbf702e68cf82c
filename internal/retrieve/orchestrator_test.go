package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

type fakeStore struct {
	rows []contracts.Signal
	err  error
}

func (f *fakeStore) RecentSignals(_ context.Context, limit int, label string) ([]contracts.Signal, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := f.rows
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeSnapshots struct {
	signals []contracts.Signal
}

func (f *fakeSnapshots) LoadAll(context.Context) []contracts.Signal {
	return f.signals
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func f64(v float64) *float64 { return &v }

func snapSignals() []contracts.Signal {
	return []contracts.Signal{
		{Ticker: "OLD", Label: "WATCH", AsOf: "2026-08-01T00:00:00Z"},
		{Ticker: "NEW", Label: "READY_CONFIRMED", AsOf: "2026-08-03T00:00:00Z"},
		{Ticker: "MID", Label: "WATCH", AsOf: "2026-08-02T00:00:00Z"},
	}
}

func TestGetSignals_PrimaryTier(t *testing.T) {
	store := &fakeStore{rows: []contracts.Signal{{
		Ticker: "NVDA",
		Label:  "READY_CONFIRMED",
		AsOf:   "2026-08-03T00:00:00Z",
		Entry: contracts.EntryPlan{
			Type:    contracts.PlanBreakoutConfirmation,
			Trigger: f64(505),
		},
	}}}
	o := New(store, &fakeSnapshots{}, testLogger())

	res := o.GetSignals(context.Background(), 10, "")

	assert.Equal(t, TierPrimary, res.Source)
	assert.Empty(t, res.Error)
	require.Len(t, res.Signals, 1)
	require.NotNil(t, res.Signals[0].Entry.Price, "primary rows get entry coercion")
	assert.Equal(t, 505.0, *res.Signals[0].Entry.Price)
}

func TestGetSignals_FallbackAfterError(t *testing.T) {
	store := &fakeStore{err: errors.New(`relation "signals" does not exist`)}
	o := New(store, &fakeSnapshots{signals: snapSignals()}, testLogger())

	res := o.GetSignals(context.Background(), 10, "")

	assert.Equal(t, TierFallbackAfterError, res.Source)
	assert.Contains(t, res.Error, "does not exist", "store error preserved for observability")
	require.Len(t, res.Signals, 3)
	assert.Equal(t, "NEW", res.Signals[0].Ticker, "newest as_of first")
	assert.Equal(t, "2026-08-03T00:00:00Z", res.AsOf)
}

func TestGetSignals_FallbackWhenUnconfigured(t *testing.T) {
	o := New(nil, &fakeSnapshots{signals: snapSignals()}, testLogger())

	res := o.GetSignals(context.Background(), 10, "")

	assert.Equal(t, TierFallback, res.Source)
	assert.Empty(t, res.Error)
	assert.Len(t, res.Signals, 3)
}

func TestGetSignals_FallbackLabelFilterAndLimit(t *testing.T) {
	o := New(nil, &fakeSnapshots{signals: snapSignals()}, testLogger())

	res := o.GetSignals(context.Background(), 1, "WATCH")

	require.Len(t, res.Signals, 1)
	assert.Equal(t, "MID", res.Signals[0].Ticker, "newest WATCH signal")
}

func TestGetSignals_EmptySnapshotsTolerated(t *testing.T) {
	o := New(nil, &fakeSnapshots{}, testLogger())

	res := o.GetSignals(context.Background(), 10, "")

	assert.Equal(t, TierFallback, res.Source)
	assert.NotNil(t, res.Signals)
	assert.Empty(t, res.Signals)
	assert.NotEmpty(t, res.AsOf)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, MinLimit, clampLimit(0))
	assert.Equal(t, MinLimit, clampLimit(-5))
	assert.Equal(t, 200, clampLimit(200))
	assert.Equal(t, MaxLimit, clampLimit(99999))
}

func TestGetSignals_CreatedAtPreferredForOrdering(t *testing.T) {
	signals := []contracts.Signal{
		{Ticker: "A", AsOf: "2026-08-05T00:00:00Z", CreatedAt: "2026-08-01T00:00:00Z"},
		{Ticker: "B", AsOf: "2026-08-01T00:00:00Z", CreatedAt: "2026-08-06T00:00:00Z"},
	}
	o := New(nil, &fakeSnapshots{signals: signals}, testLogger())

	res := o.GetSignals(context.Background(), 10, "")
	assert.Equal(t, "B", res.Signals[0].Ticker)
}
