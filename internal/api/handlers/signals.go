package handlers

import (
	"net/http"
	"strconv"

	"github.com/dropped95si/alpha-terminal/internal/derive"
	"github.com/dropped95si/alpha-terminal/internal/rank"
	"github.com/dropped95si/alpha-terminal/internal/retrieve"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// SignalsHandler serves signal collections through the tiered
// retrieval path.
type SignalsHandler struct {
	orchestrator *retrieve.Orchestrator
	logger       *logger.Logger
}

// NewSignalsHandler creates a signals handler.
func NewSignalsHandler(orchestrator *retrieve.Orchestrator, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{orchestrator: orchestrator, logger: log}
}

// rankedResponse mirrors retrieve.Result with derived signals in place
// of raw ones.
type rankedResponse struct {
	Source  retrieve.Tier `json:"source"`
	AsOf    string        `json:"as_of"`
	Signals interface{}   `json:"signals"`
	Error   string        `json:"error,omitempty"`
}

// GetSignals handles GET /api/signals.
//
// Query parameters: limit (default 200, clamped to [1,1000]), label
// (exact-match filter), sort (ev|probability|confidence|rr — when set,
// signals are returned with derived metrics, ranked descending).
func (h *SignalsHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := retrieve.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	label := q.Get("label")

	res := h.orchestrator.GetSignals(r.Context(), limit, label)

	if sortParam := q.Get("sort"); sortParam != "" {
		ranked := rank.Display(derive.Batch(res.Signals), rank.ParseSortKey(sortParam))
		respondJSON(w, http.StatusOK, rankedResponse{
			Source:  res.Source,
			AsOf:    res.AsOf,
			Signals: ranked,
			Error:   res.Error,
		})
		return
	}

	respondJSON(w, http.StatusOK, res)
}
