package contracts

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// PlanType discriminates the entry variant of a trade plan.
type PlanType string

const (
	PlanBreakoutConfirmation PlanType = "breakout_confirmation"
	PlanValueZone            PlanType = "value_zone"
	PlanUnknown              PlanType = "unknown"
)

// Zone is a value-zone entry range.
type Zone struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Mid returns the midpoint of the zone.
func (z Zone) Mid() float64 {
	return (z.Low + z.High) / 2.0
}

// StopRung is one row of an AI-supplied stop ladder: an alternative
// stop level with its probability / reward-risk / expected value.
type StopRung struct {
	Name       string   `json:"name"`
	StopPrice  float64  `json:"stop_price"`
	P          float64  `json:"p"`
	Confidence float64  `json:"confidence"`
	RR         float64  `json:"rr"`
	EV         float64  `json:"ev"`
	Why        []string `json:"why,omitempty"`
}

// AIMeta is the optional `entry.ai` sub-object attached by the
// probability engine upstream.
type AIMeta struct {
	Probability *float64   `json:"probability,omitempty"`
	Confidence  *float64   `json:"confidence,omitempty"`
	Why         []string   `json:"why,omitempty"`
	StopLadder  []StopRung `json:"stop_ladder,omitempty"`
	ChosenStop  *StopRung  `json:"chosen_stop,omitempty"`
}

// EntryPlan is the tagged entry variant of a signal. Exactly one of the
// three shapes is meaningful per Type:
//
//	PlanBreakoutConfirmation: Trigger
//	PlanValueZone:            Zone
//	PlanUnknown:              Price (legacy untagged shape)
//
// Price may additionally be synthesized onto the tagged variants by the
// coercion pass so display code can always read it.
type EntryPlan struct {
	Type    PlanType
	Trigger *float64
	Zone    *Zone
	Price   *float64
	Why     []string
	AI      *AIMeta
}

// UnmarshalJSON decodes an entry object tolerantly: numeric fields may
// arrive as JSON numbers or numeric strings, and an unrecognized or
// absent type tag yields PlanUnknown rather than an error.
func (e *EntryPlan) UnmarshalJSON(data []byte) error {
	doc := gjson.ParseBytes(data)

	switch doc.Get("type").String() {
	case string(PlanBreakoutConfirmation):
		e.Type = PlanBreakoutConfirmation
	case string(PlanValueZone):
		e.Type = PlanValueZone
	default:
		e.Type = PlanUnknown
	}

	if v := doc.Get("trigger"); v.Exists() && v.Type != gjson.Null {
		f := v.Float()
		e.Trigger = &f
	}
	if z := doc.Get("zone"); z.IsObject() {
		e.Zone = &Zone{Low: z.Get("low").Float(), High: z.Get("high").Float()}
	}
	if v := doc.Get("price"); v.Exists() && v.Type != gjson.Null {
		f := v.Float()
		e.Price = &f
	}
	e.Why = nil
	for _, w := range doc.Get("why").Array() {
		e.Why = append(e.Why, w.String())
	}
	if ai := doc.Get("ai"); ai.IsObject() {
		meta := &AIMeta{}
		if err := json.Unmarshal([]byte(ai.Raw), meta); err == nil {
			e.AI = meta
		}
	}
	return nil
}

// MarshalJSON writes only the fields the variant carries. The legacy
// PlanUnknown shape stays untagged, matching what the scanner emits.
func (e EntryPlan) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	if e.Type != PlanUnknown {
		m["type"] = e.Type
	}
	if e.Trigger != nil {
		m["trigger"] = *e.Trigger
	}
	if e.Zone != nil {
		m["zone"] = *e.Zone
	}
	if e.Price != nil {
		m["price"] = *e.Price
	}
	if len(e.Why) > 0 {
		m["why"] = e.Why
	}
	if e.AI != nil {
		m["ai"] = e.AI
	}
	return json.Marshal(m)
}
