package contracts

import "encoding/json"

// DerivedSignal is a Signal plus the computed risk/reward fields. The
// AI fields here are the resolved values (top level preferred, then
// entry.ai), not the raw inputs.
type DerivedSignal struct {
	Signal

	Probability *float64
	Confidence  *float64
	Why         []string
	StopLadder  []StopRung
	ChosenStop  *StopRung

	EntryRef  float64
	TP1       float64
	StopPrice float64
	RR        float64
	EV        float64
}

// MarshalJSON emits the underlying signal with the resolved AI fields
// and the derived numerics layered on top.
func (d DerivedSignal) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(d.Signal)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}

	if d.Probability != nil {
		m["probability"] = *d.Probability
	}
	if d.Confidence != nil {
		m["confidence"] = *d.Confidence
	}
	if len(d.Why) > 0 {
		m["why"] = d.Why
	}
	if len(d.StopLadder) > 0 {
		m["stop_ladder"] = d.StopLadder
	}
	if d.ChosenStop != nil {
		m["chosen_stop"] = d.ChosenStop
	}

	m["entry_ref"] = d.EntryRef
	m["tp1"] = d.TP1
	m["stop_price"] = d.StopPrice
	m["rr"] = d.RR
	m["ev"] = d.EV
	return json.Marshal(m)
}
