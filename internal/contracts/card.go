package contracts

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Card is one upstream analytic record as the scanner produces it.
// Known fields are typed; everything else the scanner attaches
// (fv, pivots, fib, range, ...) lands in Extensions and is carried
// through normalization untouched.
type Card struct {
	Ticker          string
	Price           float64
	Plan            *TradePlan
	Labels          []string
	VolZ            *float64
	RS60DVsSPY      *float64
	AvgDollarVolume *float64
	LearnedTopRules json.RawMessage
	AsOf            string

	// Legacy card-level fallbacks, used only when the plan omits them.
	Stop    *StopLevel
	Targets []Target

	Extensions map[string]json.RawMessage
}

// CardsFile is one scanner output document, one file per label tier.
type CardsFile struct {
	AsOf  string `json:"as_of"`
	Cards []Card `json:"cards"`
}

// TradePlan is the entry / exit / target block of a card.
type TradePlan struct {
	Entry       EntryPlan `json:"entry"`
	ExitIfWrong *ExitRule `json:"exit_if_wrong"`
	Targets     []Target  `json:"targets"`
}

// ExitRule is the invalidation side of a plan.
type ExitRule struct {
	Stop *float64 `json:"stop"`
	Why  []string `json:"why,omitempty"`
}

// Target is one price target. The scanner attaches a free-text reason.
type Target struct {
	Price float64 `json:"price"`
	Why   string  `json:"why,omitempty"`
}

// StopLevel is a stop-loss price.
type StopLevel struct {
	Price float64 `json:"price"`
}

// cardKnownKeys are consumed into typed Card fields; everything else is
// an extension.
var cardKnownKeys = map[string]bool{
	"ticker": true, "price": true, "plan": true, "labels": true,
	"vol_z": true, "rs_60d_vs_spy": true, "avg_dollar_volume": true,
	"learned_top_rules": true, "as_of": true, "stop": true, "targets": true,
}

// UnmarshalJSON splits a card into typed fields plus pass-through
// extensions. Numeric fields are coerced tolerantly.
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	doc := gjson.ParseBytes(data)
	c.Ticker = doc.Get("ticker").String()
	c.Price = doc.Get("price").Float()
	c.AsOf = doc.Get("as_of").String()

	if v := doc.Get("vol_z"); v.Exists() {
		f := v.Float()
		c.VolZ = &f
	}
	if v := doc.Get("rs_60d_vs_spy"); v.Exists() {
		f := v.Float()
		c.RS60DVsSPY = &f
	}
	if v := doc.Get("avg_dollar_volume"); v.Exists() {
		f := v.Float()
		c.AvgDollarVolume = &f
	}

	c.Labels = nil
	for _, l := range doc.Get("labels").Array() {
		c.Labels = append(c.Labels, l.String())
	}

	if p, ok := raw["plan"]; ok {
		plan := &TradePlan{}
		if err := json.Unmarshal(p, plan); err == nil {
			c.Plan = plan
		}
	}
	if s, ok := raw["stop"]; ok {
		stop := &StopLevel{}
		if err := json.Unmarshal(s, stop); err == nil {
			c.Stop = stop
		}
	}
	if t, ok := raw["targets"]; ok {
		_ = json.Unmarshal(t, &c.Targets)
	}
	if r, ok := raw["learned_top_rules"]; ok {
		c.LearnedTopRules = r
	}

	c.Extensions = nil
	for k, v := range raw {
		if cardKnownKeys[k] {
			continue
		}
		if c.Extensions == nil {
			c.Extensions = map[string]json.RawMessage{}
		}
		c.Extensions[k] = v
	}
	return nil
}
