// Package rank orders signals for human review and for display. Both
// orderings are pure and recomputed per request; equal keys keep their
// original order.
package rank

import (
	"sort"
	"strings"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// ReviewLimit caps how many candidates a reviewer is shown at once.
const ReviewLimit = 10

// missingMetric sorts signals without a requested metric last.
const missingMetric = -999

// SortKey selects the display-ranking metric.
type SortKey string

const (
	ByEV          SortKey = "ev"
	ByProbability SortKey = "probability"
	ByConfidence  SortKey = "confidence"
	ByRR          SortKey = "rr"
)

// ParseSortKey maps a query-string value to a sort key, defaulting to
// expected value.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case ByProbability, ByConfidence, ByRR:
		return SortKey(s)
	default:
		return ByEV
	}
}

// Review orders candidates by review priority: label tier first, then
// relative strength descending, then volatility-z descending, and
// truncates to the top ReviewLimit.
func Review(cands []contracts.Candidate) []contracts.Candidate {
	out := make([]contracts.Candidate, len(cands))
	copy(out, cands)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := labelRank(out[i].Label), labelRank(out[j].Label)
		if ri != rj {
			return ri < rj
		}
		if out[i].RSVsSPY != out[j].RSVsSPY {
			return out[i].RSVsSPY > out[j].RSVsSPY
		}
		return out[i].VolZ > out[j].VolZ
	})

	if len(out) > ReviewLimit {
		out = out[:ReviewLimit]
	}
	return out
}

// Display orders derived signals descending by the selected metric.
// Signals missing the metric sort last.
func Display(signals []contracts.DerivedSignal, key SortKey) []contracts.DerivedSignal {
	out := make([]contracts.DerivedSignal, len(signals))
	copy(out, signals)

	sort.SliceStable(out, func(i, j int) bool {
		return metric(out[i], key) > metric(out[j], key)
	})
	return out
}

// labelRank maps a label tier to its review priority; lower ranks
// first. Anything unrecognized goes to the back.
func labelRank(label string) int {
	switch {
	case label == "READY_CONFIRMED":
		return 0
	case strings.Contains(label, "EARLY"):
		return 1
	case label == "WATCH":
		return 2
	default:
		return 3
	}
}

func metric(d contracts.DerivedSignal, key SortKey) float64 {
	switch key {
	case ByProbability:
		if d.Probability == nil {
			return missingMetric
		}
		return *d.Probability
	case ByConfidence:
		if d.Confidence == nil {
			return missingMetric
		}
		return *d.Confidence
	case ByRR:
		return d.RR
	default:
		return d.EV
	}
}
