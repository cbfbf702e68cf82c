package handlers

import (
	"io"
	"net/http"

	"github.com/dropped95si/alpha-terminal/internal/auth"
	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/internal/store"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// maxIngestBody caps the scanner payload size at 8 MiB.
const maxIngestBody = 8 << 20

// IngestHandler accepts scanner payloads and persists them as one scan
// run plus its signal rows. Writes never fall back: a store failure is
// surfaced, not silently dropped.
type IngestHandler struct {
	gate    *auth.Gatekeeper
	runs    *store.ScanRunRepository
	signals *store.SignalRepository
	hub     *Hub
	logger  *logger.Logger
}

// NewIngestHandler creates an ingest handler. runs/signals are nil when
// no primary store is configured; ingest then reports the store as
// unavailable. hub may be nil.
func NewIngestHandler(
	gate *auth.Gatekeeper,
	runs *store.ScanRunRepository,
	signals *store.SignalRepository,
	hub *Hub,
	log *logger.Logger,
) *IngestHandler {
	return &IngestHandler{gate: gate, runs: runs, signals: signals, hub: hub, logger: log}
}

// IngestResponse reports what one ingest call persisted.
type IngestResponse struct {
	Inserted  int    `json:"inserted"`
	ScanRunID string `json:"scan_run_id"`
}

// Ingest handles POST /api/ingest.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.gate.AuthorizeIngest(r); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or missing ingest secret")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIngestBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	payload, err := contracts.ParseScanPayload(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.runs == nil || h.signals == nil {
		respondError(w, http.StatusServiceUnavailable, "Primary store not configured; ingest unavailable")
		return
	}

	runID, err := h.runs.Insert(ctx, payload.Run)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert scan run")
		respondError(w, http.StatusInternalServerError, "Failed to record scan run")
		return
	}

	inserted, err := h.signals.InsertBatch(ctx, runID, payload.Signals)
	if err != nil {
		h.logger.WithError(err).Error("Failed to insert signals")
		respondError(w, http.StatusInternalServerError, "Failed to persist signals")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"scan_run_id": runID,
		"inserted":    inserted,
	}).Info("Scan run ingested")

	if h.hub != nil {
		h.hub.Broadcast(LiveEvent{
			Type:      "scan_run_ingested",
			ScanRunID: runID,
			AsOf:      payload.Run.AsOf,
			Signals:   inserted,
		})
	}

	respondJSON(w, http.StatusOK, IngestResponse{Inserted: inserted, ScanRunID: runID})
}
