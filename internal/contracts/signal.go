package contracts

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Signal is the canonical normalized representation of a Card. It is
// what the store persists, the fallback snapshots normalize into, and
// the API serves.
type Signal struct {
	ID        string
	ScanRunID string
	AsOf      string
	CreatedAt string
	Ticker    string
	Label     string
	PlanType  PlanType
	Entry     EntryPlan
	Stop      *StopLevel
	Targets   []Target

	// Optional AI-supplied fields. Present either here at top level or
	// inside Entry.AI; the derive stage resolves the precedence.
	Probability *float64
	Confidence  *float64
	Why         []string
	StopLadder  []StopRung
	ChosenStop  *StopRung

	RR              *float64
	VolZ            *float64
	RSVsSPY         *float64
	LearnedTopRules json.RawMessage
	Source          string
	Interval        string

	// Scanner-specific pass-through fields. Explicit fields above win
	// over same-named extension keys on marshal.
	Extensions map[string]json.RawMessage
}

var signalKnownKeys = map[string]bool{
	"id": true, "scan_run_id": true, "as_of": true, "created_at": true,
	"ticker": true, "label": true, "plan_type": true, "entry": true,
	"stop": true, "targets": true, "probability": true, "confidence": true,
	"why": true, "stop_ladder": true, "chosen_stop": true, "rr": true,
	"vol_z": true, "rs_vs_spy": true, "learned_top_rules": true,
	"source": true, "interval": true,
}

// UnmarshalJSON decodes a signal row tolerantly, keeping unknown keys
// as extensions.
func (s *Signal) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	doc := gjson.ParseBytes(data)
	s.ID = doc.Get("id").String()
	s.ScanRunID = doc.Get("scan_run_id").String()
	s.AsOf = doc.Get("as_of").String()
	s.CreatedAt = doc.Get("created_at").String()
	s.Ticker = doc.Get("ticker").String()
	s.Label = doc.Get("label").String()
	s.Source = doc.Get("source").String()
	s.Interval = doc.Get("interval").String()

	switch doc.Get("plan_type").String() {
	case string(PlanBreakoutConfirmation):
		s.PlanType = PlanBreakoutConfirmation
	case string(PlanValueZone):
		s.PlanType = PlanValueZone
	default:
		s.PlanType = PlanUnknown
	}

	if e, ok := raw["entry"]; ok {
		if err := json.Unmarshal(e, &s.Entry); err != nil {
			return err
		}
	}
	if v, ok := raw["stop"]; ok {
		stop := &StopLevel{}
		if err := json.Unmarshal(v, stop); err == nil {
			s.Stop = stop
		}
	}
	if v, ok := raw["targets"]; ok {
		_ = json.Unmarshal(v, &s.Targets)
	}
	if v, ok := raw["stop_ladder"]; ok {
		_ = json.Unmarshal(v, &s.StopLadder)
	}
	if v, ok := raw["chosen_stop"]; ok {
		rung := &StopRung{}
		if err := json.Unmarshal(v, rung); err == nil {
			s.ChosenStop = rung
		}
	}
	if v, ok := raw["learned_top_rules"]; ok {
		s.LearnedTopRules = v
	}

	s.Probability = optFloat(doc, "probability")
	s.Confidence = optFloat(doc, "confidence")
	s.RR = optFloat(doc, "rr")
	s.VolZ = optFloat(doc, "vol_z")
	s.RSVsSPY = optFloat(doc, "rs_vs_spy")

	s.Why = nil
	for _, w := range doc.Get("why").Array() {
		s.Why = append(s.Why, w.String())
	}

	s.Extensions = nil
	for k, v := range raw {
		if signalKnownKeys[k] {
			continue
		}
		if s.Extensions == nil {
			s.Extensions = map[string]json.RawMessage{}
		}
		s.Extensions[k] = v
	}
	return nil
}

// MarshalJSON flattens extensions back into the object. Explicit fields
// take precedence over extension keys of the same name.
func (s Signal) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{}
	for k, v := range s.Extensions {
		m[k] = v
	}

	m["ticker"] = s.Ticker
	m["label"] = s.Label
	m["plan_type"] = s.PlanType
	m["entry"] = s.Entry
	m["as_of"] = s.AsOf
	if s.Stop != nil {
		m["stop"] = s.Stop
	}
	m["targets"] = s.Targets
	if s.Targets == nil {
		m["targets"] = []Target{}
	}

	setIf(m, "id", s.ID)
	setIf(m, "scan_run_id", s.ScanRunID)
	setIf(m, "created_at", s.CreatedAt)
	setIf(m, "source", s.Source)
	setIf(m, "interval", s.Interval)
	setIfF(m, "probability", s.Probability)
	setIfF(m, "confidence", s.Confidence)
	setIfF(m, "rr", s.RR)
	setIfF(m, "vol_z", s.VolZ)
	setIfF(m, "rs_vs_spy", s.RSVsSPY)
	if len(s.Why) > 0 {
		m["why"] = s.Why
	}
	if len(s.StopLadder) > 0 {
		m["stop_ladder"] = s.StopLadder
	}
	if s.ChosenStop != nil {
		m["chosen_stop"] = s.ChosenStop
	}
	if len(s.LearnedTopRules) > 0 {
		m["learned_top_rules"] = s.LearnedTopRules
	}
	return json.Marshal(m)
}

// OrderKey is the timestamp the fallback path sorts on: created_at when
// present, else as_of. Lexicographic comparison is valid because both
// are fixed-width ISO-8601.
func (s *Signal) OrderKey() string {
	if s.CreatedAt != "" {
		return s.CreatedAt
	}
	return s.AsOf
}

func optFloat(doc gjson.Result, key string) *float64 {
	v := doc.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	f := v.Float()
	return &f
}

func setIf(m map[string]interface{}, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func setIfF(m map[string]interface{}, key string, val *float64) {
	if val != nil {
		m[key] = *val
	}
}
