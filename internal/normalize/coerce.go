package normalize

import (
	"math"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// Entry is the harmonization pass applied to signals coming back out of
// the store or the snapshot files. Trigger and zone bounds are already
// numeric after decoding; this pass synthesizes entry.price where it is
// missing — the trigger for breakout plans, the zone midpoint for value
// plans — so display and ranking code can always assume it exists.
//
// The pass is idempotent: applying it to an already-coerced entry
// changes nothing.
func Entry(e contracts.EntryPlan) contracts.EntryPlan {
	e.Trigger = finite(e.Trigger)
	e.Price = finite(e.Price)
	if e.Zone != nil {
		z := contracts.Zone{Low: finiteF(e.Zone.Low), High: finiteF(e.Zone.High)}
		e.Zone = &z
	}

	if e.Price == nil {
		switch {
		case e.Trigger != nil:
			p := *e.Trigger
			e.Price = &p
		case e.Zone != nil:
			p := e.Zone.Mid()
			e.Price = &p
		}
	}
	return e
}

// Signals applies the entry pass to every signal in a batch.
func Signals(signals []contracts.Signal) []contracts.Signal {
	out := make([]contracts.Signal, len(signals))
	for i, s := range signals {
		s.Entry = Entry(s.Entry)
		out[i] = s
	}
	return out
}

// finite drops NaN/Inf pointers; malformed numerics never propagate.
func finite(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}

func finiteF(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
