package contracts

import (
	"encoding/json"
	"testing"
)

func TestEntryPlan_UnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PlanType
	}{
		{"breakout", `{"type":"breakout_confirmation","trigger":101.5}`, PlanBreakoutConfirmation},
		{"value zone", `{"type":"value_zone","zone":{"low":95,"high":98}}`, PlanValueZone},
		{"legacy price", `{"price":100}`, PlanUnknown},
		{"unrecognized tag", `{"type":"momentum_pullback","price":50}`, PlanUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e EntryPlan
			if err := json.Unmarshal([]byte(tt.in), &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if e.Type != tt.want {
				t.Errorf("Type = %q, want %q", e.Type, tt.want)
			}
		})
	}
}

func TestEntryPlan_NullFieldsTreatedAsAbsent(t *testing.T) {
	var e EntryPlan
	err := json.Unmarshal([]byte(`{"type":"breakout_confirmation","trigger":null,"price":100}`), &e)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Trigger != nil {
		t.Errorf("trigger = %v, want nil for JSON null", *e.Trigger)
	}
	if e.Price == nil || *e.Price != 100 {
		t.Errorf("price = %v, want 100", e.Price)
	}
}

func TestEntryPlan_StringNumbersCoerced(t *testing.T) {
	var e EntryPlan
	err := json.Unmarshal([]byte(`{"type":"value_zone","zone":{"low":"95.5","high":"98"}}`), &e)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Zone == nil || e.Zone.Low != 95.5 || e.Zone.High != 98 {
		t.Errorf("zone = %+v, want low=95.5 high=98", e.Zone)
	}
}

func TestCard_ExtensionsCaptured(t *testing.T) {
	in := `{
		"ticker": "NVDA",
		"price": 500.25,
		"labels": ["READY_CONFIRMED"],
		"vol_z": 2.1,
		"rs_60d_vs_spy": 0.12,
		"fv": {"vwap_20": 495.0, "low": 480.0, "high": 510.0},
		"pivots": {"p": 498.0},
		"plan": {
			"entry": {"type": "breakout_confirmation", "trigger": 505.0},
			"exit_if_wrong": {"stop": 470.0},
			"targets": [{"price": 540.0}, {"price": 560.0}]
		}
	}`

	var c Card
	if err := json.Unmarshal([]byte(in), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Ticker != "NVDA" || c.Price != 500.25 {
		t.Errorf("ticker/price = %q/%v", c.Ticker, c.Price)
	}
	if c.Plan == nil || c.Plan.ExitIfWrong == nil || *c.Plan.ExitIfWrong.Stop != 470.0 {
		t.Fatalf("plan stop not decoded: %+v", c.Plan)
	}
	if len(c.Plan.Targets) != 2 || c.Plan.Targets[0].Price != 540.0 {
		t.Errorf("targets = %+v", c.Plan.Targets)
	}
	if _, ok := c.Extensions["fv"]; !ok {
		t.Error("fv should be an extension")
	}
	if _, ok := c.Extensions["pivots"]; !ok {
		t.Error("pivots should be an extension")
	}
	if _, ok := c.Extensions["ticker"]; ok {
		t.Error("ticker must not leak into extensions")
	}
}

func TestSignal_MarshalExplicitWinsOverExtension(t *testing.T) {
	s := Signal{
		Ticker:   "ABC",
		Label:    "WATCH",
		PlanType: PlanValueZone,
		AsOf:     "2026-08-01T00:00:00Z",
		Extensions: map[string]json.RawMessage{
			"label": json.RawMessage(`"SHOULD_NOT_WIN"`),
			"fib":   json.RawMessage(`{"levels":{}}`),
		},
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if m["label"] != "WATCH" {
		t.Errorf("label = %v, want WATCH (explicit field must win)", m["label"])
	}
	if _, ok := m["fib"]; !ok {
		t.Error("extension fib should be flattened into output")
	}
}

func TestParseScanPayload_BothShapes(t *testing.T) {
	nested := `{"scan_runs":{"as_of":"2026-08-01T00:00:00Z","source":"yahoo"},"signals":[{"ticker":"AAA","label":"WATCH"}]}`
	flat := `{"as_of":"2026-08-01T00:00:00Z","source":"yahoo","interval":"1d","signals":[{"ticker":"AAA","label":"WATCH"}]}`

	for _, in := range []string{nested, flat} {
		p, err := ParseScanPayload([]byte(in))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if p.Run.Source != "yahoo" || len(p.Signals) != 1 {
			t.Errorf("payload = %+v", p)
		}
	}

	if _, err := ParseScanPayload([]byte(`{"as_of":"x"}`)); err == nil {
		t.Error("payload without signals must be rejected")
	}
}

func TestLabelRecord_ClampEntryReasons(t *testing.T) {
	l := LabelRecord{EntryReasons: []string{"a", "b", "c", "d"}}
	l.ClampEntryReasons()
	if len(l.EntryReasons) != 2 {
		t.Errorf("len = %d, want 2", len(l.EntryReasons))
	}
}
