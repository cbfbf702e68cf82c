// Package derive computes risk/reward metrics for canonical signals.
// Every numeric input is untrusted: non-finite values fall back to a
// safe default and the calculator never errors.
package derive

import (
	"math"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// Metrics resolves the AI fields and computes entryRef, tp1, stop,
// reward/risk and expected value for one signal.
//
// AI fields are taken from the top-level signal first, then from
// entry.ai, then left nil. Reward/risk is 0 unless both risk
// (entryRef - stop) and reward (tp1 - entryRef) are strictly positive;
// EV degenerates to -1 when no probability is supplied and rr is 0.
func Metrics(s contracts.Signal) contracts.DerivedSignal {
	d := contracts.DerivedSignal{Signal: s}

	ai := s.Entry.AI
	if ai == nil {
		ai = &contracts.AIMeta{}
	}

	d.Probability = firstFloat(s.Probability, ai.Probability)
	d.Confidence = firstFloat(s.Confidence, ai.Confidence)
	d.Why = s.Why
	if len(d.Why) == 0 {
		d.Why = ai.Why
	}
	d.StopLadder = s.StopLadder
	if len(d.StopLadder) == 0 {
		d.StopLadder = ai.StopLadder
	}
	d.ChosenStop = s.ChosenStop
	if d.ChosenStop == nil {
		d.ChosenStop = ai.ChosenStop
	}

	d.EntryRef = entryRef(s.Entry)
	d.TP1 = tp1(s.Targets)
	d.StopPrice = stopPrice(s.Stop, d.ChosenStop)

	risk := d.EntryRef - d.StopPrice
	reward := d.TP1 - d.EntryRef
	if risk > 0 && reward > 0 {
		d.RR = reward / risk
	}

	p := 0.0
	if d.Probability != nil {
		p = num(*d.Probability, 0)
	}
	d.EV = p*d.RR - (1 - p)
	return d
}

// Batch derives metrics for a slice of signals, preserving order.
func Batch(signals []contracts.Signal) []contracts.DerivedSignal {
	out := make([]contracts.DerivedSignal, 0, len(signals))
	for _, s := range signals {
		out = append(out, Metrics(s))
	}
	return out
}

// entryRef picks the reference entry price: trigger, then explicit
// price, then the zone low, else 0.
func entryRef(e contracts.EntryPlan) float64 {
	switch {
	case e.Trigger != nil:
		return num(*e.Trigger, 0)
	case e.Price != nil:
		return num(*e.Price, 0)
	case e.Zone != nil:
		return num(e.Zone.Low, 0)
	}
	return 0
}

func tp1(targets []contracts.Target) float64 {
	if len(targets) == 0 {
		return 0
	}
	return num(targets[0].Price, 0)
}

func stopPrice(stop *contracts.StopLevel, chosen *contracts.StopRung) float64 {
	if stop != nil {
		return num(stop.Price, 0)
	}
	if chosen != nil {
		return num(chosen.StopPrice, 0)
	}
	return 0
}

// num coerces an untrusted float: NaN and Inf collapse to def.
func num(f, def float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func firstFloat(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
