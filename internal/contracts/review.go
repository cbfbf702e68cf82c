package contracts

import "time"

// Candidate is the restricted projection of a Signal used by the
// human-review ranking path.
type Candidate struct {
	Ticker       string   `json:"ticker"`
	Label        string   `json:"label"`
	PlanType     PlanType `json:"plan_type"`
	RSVsSPY      float64  `json:"rs_vs_spy"`
	VolZ         float64  `json:"vol_z"`
	LabeledToday bool     `json:"labeled_today"`
}

// LabelRecord is one human review annotation. Records are append-only:
// written once, never updated or deleted by this layer.
type LabelRecord struct {
	ID           string    `json:"id,omitempty"`
	Ticker       string    `json:"ticker" validate:"required"`
	Mode         string    `json:"mode" validate:"required,oneof=conservative aggressive"`
	IdeaSource   string    `json:"idea_source" validate:"required"`
	Timeframe    string    `json:"timeframe" validate:"required"`
	EntryReasons []string  `json:"entry_reasons" validate:"max=2"`
	ExitIntent   string    `json:"exit_intent" validate:"required"`
	Confidence   int       `json:"confidence" validate:"required,min=1,max=10"`
	Notes        string    `json:"notes,omitempty"`
	ScanRunID    string    `json:"scan_run_id,omitempty"`
	SignalID     string    `json:"signal_id,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// MaxEntryReasons is the hard cap on entry_reasons; extra entries are
// dropped, not rejected.
const MaxEntryReasons = 2

// ClampEntryReasons truncates entry_reasons to the cap.
func (l *LabelRecord) ClampEntryReasons() {
	if len(l.EntryReasons) > MaxEntryReasons {
		l.EntryReasons = l.EntryReasons[:MaxEntryReasons]
	}
}

// ToCandidate projects a signal into its review-ranking view.
func (s *Signal) ToCandidate(labeledToday bool) Candidate {
	c := Candidate{
		Ticker:       s.Ticker,
		Label:        s.Label,
		PlanType:     s.PlanType,
		LabeledToday: labeledToday,
	}
	if s.RSVsSPY != nil {
		c.RSVsSPY = *s.RSVsSPY
	}
	if s.VolZ != nil {
		c.VolZ = *s.VolZ
	}
	return c
}
