package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

func f64(v float64) *float64 { return &v }

func TestReview_LabelTierOrder(t *testing.T) {
	cands := []contracts.Candidate{
		{Ticker: "W", Label: "WATCH"},
		{Ticker: "R", Label: "READY_CONFIRMED"},
		{Ticker: "E", Label: "EARLY_BREAKOUT"},
	}

	out := Review(cands)

	got := []string{out[0].Ticker, out[1].Ticker, out[2].Ticker}
	assert.Equal(t, []string{"R", "E", "W"}, got)
}

func TestReview_TieBreaksOnRSThenVolZ(t *testing.T) {
	cands := []contracts.Candidate{
		{Ticker: "A", Label: "WATCH", RSVsSPY: 0.10, VolZ: 1.0},
		{Ticker: "B", Label: "WATCH", RSVsSPY: 0.20, VolZ: 0.5},
		{Ticker: "C", Label: "WATCH", RSVsSPY: 0.20, VolZ: 2.0},
	}

	out := Review(cands)

	got := []string{out[0].Ticker, out[1].Ticker, out[2].Ticker}
	assert.Equal(t, []string{"C", "B", "A"}, got)
}

func TestReview_UnknownLabelSortsLast(t *testing.T) {
	cands := []contracts.Candidate{
		{Ticker: "X", Label: "CHINA_HIGH_HEADLINE_RISK"},
		{Ticker: "W", Label: "WATCH"},
	}

	out := Review(cands)
	assert.Equal(t, "W", out[0].Ticker)
}

func TestReview_TruncatesToTen(t *testing.T) {
	cands := make([]contracts.Candidate, 25)
	for i := range cands {
		cands[i] = contracts.Candidate{Ticker: "T", Label: "WATCH"}
	}
	assert.Len(t, Review(cands), ReviewLimit)
}

func TestReview_StableForEqualKeys(t *testing.T) {
	cands := []contracts.Candidate{
		{Ticker: "FIRST", Label: "WATCH", RSVsSPY: 0.1, VolZ: 1.0},
		{Ticker: "SECOND", Label: "WATCH", RSVsSPY: 0.1, VolZ: 1.0},
	}

	out := Review(cands)
	assert.Equal(t, "FIRST", out[0].Ticker)
	assert.Equal(t, "SECOND", out[1].Ticker)
}

func TestDisplay_ByEV(t *testing.T) {
	signals := []contracts.DerivedSignal{
		{Signal: contracts.Signal{Ticker: "LOW"}, EV: -0.2},
		{Signal: contracts.Signal{Ticker: "HIGH"}, EV: 1.4},
		{Signal: contracts.Signal{Ticker: "MID"}, EV: 0.3},
	}

	out := Display(signals, ByEV)

	got := []string{out[0].Ticker, out[1].Ticker, out[2].Ticker}
	assert.Equal(t, []string{"HIGH", "MID", "LOW"}, got)
}

func TestDisplay_MissingMetricSortsLast(t *testing.T) {
	signals := []contracts.DerivedSignal{
		{Signal: contracts.Signal{Ticker: "NONE"}},
		{Signal: contracts.Signal{Ticker: "SOME"}, Probability: f64(0.1)},
	}

	out := Display(signals, ByProbability)
	assert.Equal(t, "SOME", out[0].Ticker)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, ByRR, ParseSortKey("rr"))
	assert.Equal(t, ByProbability, ParseSortKey("probability"))
	assert.Equal(t, ByEV, ParseSortKey(""))
	assert.Equal(t, ByEV, ParseSortKey("bogus"))
}
