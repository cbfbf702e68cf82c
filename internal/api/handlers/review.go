package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dropped95si/alpha-terminal/internal/auth"
	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/internal/rank"
	"github.com/dropped95si/alpha-terminal/internal/store"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// ReviewHandler serves the human-review surface: ranked candidates and
// label writes. Both endpoints require the review secret.
type ReviewHandler struct {
	gate     *auth.Gatekeeper
	runs     *store.ScanRunRepository
	signals  *store.SignalRepository
	labels   *store.LabelRepository
	validate *validator.Validate
	logger   *logger.Logger
}

// NewReviewHandler creates a review handler. The repositories are nil
// when no primary store is configured.
func NewReviewHandler(
	gate *auth.Gatekeeper,
	runs *store.ScanRunRepository,
	signals *store.SignalRepository,
	labels *store.LabelRepository,
	log *logger.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		gate:     gate,
		runs:     runs,
		signals:  signals,
		labels:   labels,
		validate: validator.New(),
		logger:   log,
	}
}

// CandidatesResponse is the ranked review worklist for one scan run.
type CandidatesResponse struct {
	ScanRunID  string                `json:"scan_run_id,omitempty"`
	AsOf       string                `json:"as_of,omitempty"`
	Candidates []contracts.Candidate `json:"candidates"`
}

// GetCandidates handles GET /api/review/candidates: the top-10
// review-priority candidates of the latest scan run, each flagged if
// already labeled today.
func (h *ReviewHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.gate.AuthorizeReview(r); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing review secret")
		return
	}

	if h.runs == nil || h.signals == nil || h.labels == nil {
		respondError(w, http.StatusServiceUnavailable, "Primary store not configured; candidates unavailable")
		return
	}

	run, err := h.runs.Latest(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoScanRuns) {
			respondJSON(w, http.StatusOK, CandidatesResponse{Candidates: []contracts.Candidate{}})
			return
		}
		h.logger.WithError(err).Error("Failed to load latest scan run")
		respondError(w, http.StatusInternalServerError, "Failed to load latest scan run")
		return
	}

	signals, err := h.signals.ByScanRun(ctx, run.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load signals for scan run")
		respondError(w, http.StatusInternalServerError, "Failed to load signals")
		return
	}

	labeled, err := h.labels.TickersLabeledOn(ctx, time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load labeled tickers")
		respondError(w, http.StatusInternalServerError, "Failed to load labels")
		return
	}

	cands := make([]contracts.Candidate, 0, len(signals))
	for i := range signals {
		cands = append(cands, signals[i].ToCandidate(labeled[signals[i].Ticker]))
	}

	respondJSON(w, http.StatusOK, CandidatesResponse{
		ScanRunID:  run.ID,
		AsOf:       run.AsOf,
		Candidates: rank.Review(cands),
	})
}

// CreateLabel handles POST /api/review/labels. Validation failures are
// rejected before any persistence attempt, with the offending field
// named.
func (h *ReviewHandler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.gate.AuthorizeReview(r); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing review secret")
		return
	}

	var rec contracts.LabelRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Extra entry reasons are dropped, not rejected.
	rec.ClampEntryReasons()

	if err := h.validate.Struct(rec); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if h.labels == nil {
		respondError(w, http.StatusServiceUnavailable, "Primary store not configured; labels unavailable")
		return
	}

	id, err := h.labels.Insert(ctx, rec)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert review label")
		respondError(w, http.StatusInternalServerError, "Failed to persist label")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"ticker": rec.Ticker,
		"id":     id,
	}).Info("Review label recorded")

	respondJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// validationMessage names the first failing field so the reviewer knows
// what to fix.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("invalid label: field %q failed %q validation", strings.ToLower(fe.Field()), fe.Tag())
	}
	return "invalid label payload"
}
