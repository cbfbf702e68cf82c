package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// fakeRow feeds scanSignal a prepared column tuple.
type fakeRow struct {
	vals []interface{}
}

func (f *fakeRow) Scan(dest ...interface{}) error {
	for i, d := range dest {
		val := f.vals[i]
		if val == nil {
			continue
		}
		switch p := d.(type) {
		case *string:
			*p = val.(string)
		case **string:
			*p = val.(*string)
		case *[]byte:
			*p = val.([]byte)
		case **float64:
			*p = val.(*float64)
		case *time.Time:
			*p = val.(time.Time)
		}
	}
	return nil
}

func sptr(s string) *string   { return &s }
func fptr(f float64) *float64 { return &f }

func row(overrides map[int]interface{}) *fakeRow {
	created, _ := time.Parse(time.RFC3339, "2026-08-26T21:35:00Z")
	vals := []interface{}{
		"id-1",                     // id
		sptr("run-1"),              // scan_run_id
		"2026-08-26T21:30:00Z",     // as_of
		"ABC",                      // ticker
		"WATCH",                    // label
		"breakout_confirmation",    // plan_type
		[]byte(`{"type": "breakout_confirmation", "trigger": 101.5}`), // entry
		nil,                        // stop
		[]byte(`[{"price": 110}]`), // targets
		fptr(0.62),                 // probability
		nil,                        // confidence
		nil,                        // rr
		fptr(1.2),                  // vol_z
		fptr(0.3),                  // rs_vs_spy
		nil,                        // learned_top_rules
		"alpha_scan",               // source
		"1d",                       // interval
		[]byte(`{"price": 100.5}`), // extras
		created,                    // created_at
	}
	for i, v := range overrides {
		vals[i] = v
	}
	return &fakeRow{vals: vals}
}

func TestScanSignalDecodesRow(t *testing.T) {
	s, err := scanSignal(row(nil))
	require.NoError(t, err)

	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "run-1", s.ScanRunID)
	assert.Equal(t, "ABC", s.Ticker)
	assert.Equal(t, contracts.PlanBreakoutConfirmation, s.PlanType)
	require.NotNil(t, s.Entry.Trigger)
	assert.Equal(t, 101.5, *s.Entry.Trigger)
	require.Len(t, s.Targets, 1)
	assert.Equal(t, 110.0, s.Targets[0].Price)
	require.NotNil(t, s.Probability)
	assert.Equal(t, 0.62, *s.Probability)
	assert.Equal(t, "2026-08-26T21:35:00Z", s.CreatedAt)
	assert.Contains(t, s.Extensions, "price")
}

func TestScanSignalNullScanRun(t *testing.T) {
	s, err := scanSignal(row(map[int]interface{}{1: nil}))
	require.NoError(t, err)
	assert.Empty(t, s.ScanRunID)
}

func TestScanSignalUnknownPlanType(t *testing.T) {
	s, err := scanSignal(row(map[int]interface{}{5: "momentum_v2"}))
	require.NoError(t, err)
	assert.Equal(t, contracts.PlanUnknown, s.PlanType)
}
