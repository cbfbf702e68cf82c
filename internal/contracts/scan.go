package contracts

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScanRun is one execution of the external scanner. Signals hang off a
// run via ScanRunID.
type ScanRun struct {
	ID             string          `json:"id,omitempty"`
	AsOf           string          `json:"as_of"`
	Source         string          `json:"source,omitempty"`
	Interval       string          `json:"interval,omitempty"`
	HistoryYears   int             `json:"history_years,omitempty"`
	AutoThresholds json.RawMessage `json:"auto_thresholds,omitempty"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// ScanPayload is the parsed ingest body: one run plus its signals.
type ScanPayload struct {
	Run     ScanRun
	Signals []Signal
}

// ingestBody accepts both wire shapes the scanner has used: the nested
// `{scan_runs: {...}, signals: [...]}` form and the flattened
// `{as_of, source, interval, history_years, auto_thresholds, signals}`
// form.
type ingestBody struct {
	ScanRuns       *ScanRun        `json:"scan_runs"`
	AsOf           string          `json:"as_of"`
	Source         string          `json:"source"`
	Interval       string          `json:"interval"`
	HistoryYears   int             `json:"history_years"`
	AutoThresholds json.RawMessage `json:"auto_thresholds"`
	Signals        []Signal        `json:"signals"`
}

// ParseScanPayload decodes an ingest body in either shape. It fails
// when neither run metadata nor signals can be extracted.
func ParseScanPayload(data []byte) (*ScanPayload, error) {
	var body ingestBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("malformed ingest payload: %w", err)
	}

	p := &ScanPayload{Signals: body.Signals}
	if body.ScanRuns != nil {
		p.Run = *body.ScanRuns
	} else {
		p.Run = ScanRun{
			AsOf:           body.AsOf,
			Source:         body.Source,
			Interval:       body.Interval,
			HistoryYears:   body.HistoryYears,
			AutoThresholds: body.AutoThresholds,
		}
	}

	if len(p.Signals) == 0 {
		return nil, fmt.Errorf("ingest payload has no signals")
	}
	if p.Run.AsOf == "" {
		p.Run.AsOf = time.Now().UTC().Format(time.RFC3339)
	}
	return p, nil
}
