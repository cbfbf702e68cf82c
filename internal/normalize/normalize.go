// Package normalize converts scanner cards into canonical signals and
// harmonizes signal entry shapes for downstream consumers. Both passes
// are pure: no I/O, no mutation of inputs.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
)

// Card converts one scanner card into a canonical signal.
//
// Label is the first entry of card.labels, else defaultLabel. The entry
// variant follows plan.entry.type; a plan with an unrecognized or
// missing entry shape degrades to the legacy price-only variant built
// from the card price. A missing stop is coerced to price 0 rather than
// rejected.
func Card(card contracts.Card, asOf string, defaultLabel string) contracts.Signal {
	s := contracts.Signal{
		AsOf:            asOf,
		Ticker:          card.Ticker,
		Label:           defaultLabel,
		VolZ:            card.VolZ,
		RSVsSPY:         card.RS60DVsSPY,
		LearnedTopRules: card.LearnedTopRules,
	}
	if len(card.Labels) > 0 {
		s.Label = card.Labels[0]
	}

	var plan contracts.TradePlan
	if card.Plan != nil {
		plan = *card.Plan
	}

	switch plan.Entry.Type {
	case contracts.PlanBreakoutConfirmation:
		s.PlanType = contracts.PlanBreakoutConfirmation
		s.Entry = contracts.EntryPlan{
			Type:    contracts.PlanBreakoutConfirmation,
			Trigger: plan.Entry.Trigger,
			Why:     plan.Entry.Why,
			AI:      plan.Entry.AI,
		}
	case contracts.PlanValueZone:
		s.PlanType = contracts.PlanValueZone
		s.Entry = contracts.EntryPlan{
			Type: contracts.PlanValueZone,
			Zone: plan.Entry.Zone,
			Why:  plan.Entry.Why,
			AI:   plan.Entry.AI,
		}
	default:
		price := card.Price
		s.PlanType = contracts.PlanUnknown
		s.Entry = contracts.EntryPlan{Type: contracts.PlanUnknown, Price: &price}
	}

	s.Stop = stopLevel(plan.ExitIfWrong, card.Stop)
	s.Targets = targets(plan.Targets, card.Targets)
	s.Extensions = passThrough(card)
	return s
}

// File converts a whole cards file, preserving card order. A file
// without as_of is stamped with the current time.
func File(file contracts.CardsFile, defaultLabel string) []contracts.Signal {
	asOf := file.AsOf
	if asOf == "" {
		asOf = time.Now().UTC().Format(time.RFC3339)
	}

	out := make([]contracts.Signal, 0, len(file.Cards))
	for _, c := range file.Cards {
		out = append(out, Card(c, asOf, defaultLabel))
	}
	return out
}

// stopLevel resolves the stop price: plan stop first, then the legacy
// card-level stop, then 0. Defaulting to 0 is a documented quirk of the
// scanner contract, kept as-is.
func stopLevel(exit *contracts.ExitRule, cardStop *contracts.StopLevel) *contracts.StopLevel {
	if exit != nil && exit.Stop != nil {
		return &contracts.StopLevel{Price: *exit.Stop}
	}
	if cardStop != nil {
		return &contracts.StopLevel{Price: cardStop.Price}
	}
	return &contracts.StopLevel{Price: 0}
}

// targets keeps only the target prices; the scanner's free-text reasons
// are dropped from the canonical record.
func targets(planTargets, cardTargets []contracts.Target) []contracts.Target {
	src := planTargets
	if len(src) == 0 {
		src = cardTargets
	}
	out := make([]contracts.Target, 0, len(src))
	for _, t := range src {
		out = append(out, contracts.Target{Price: t.Price})
	}
	return out
}

// passThrough collects the card fields that have no canonical slot on
// Signal, so nothing the scanner computed is lost.
func passThrough(card contracts.Card) map[string]json.RawMessage {
	ext := map[string]json.RawMessage{}
	for k, v := range card.Extensions {
		ext[k] = v
	}
	if raw, err := json.Marshal(card.Price); err == nil {
		ext["price"] = raw
	}
	if card.AvgDollarVolume != nil {
		if raw, err := json.Marshal(*card.AvgDollarVolume); err == nil {
			ext["avg_dollar_volume"] = raw
		}
	}
	return ext
}
