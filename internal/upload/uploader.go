// Package upload pushes a scanner payload file into the vault's ingest
// endpoint. It is the write path the CLI and the scheduler share.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/dropped95si/alpha-terminal/internal/auth"
	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/httputil"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// Uploads share one ingest endpoint; repeated posts are spaced out
// client-side, and the nightly batch gets a patient retry policy.
const (
	uploadInterval   = 200 * time.Millisecond
	uploadBurst      = 1
	uploadMaxRetries = 5
	uploadRetryDelay = 2 * time.Second
)

// Result reports what the ingest endpoint persisted.
type Result struct {
	Inserted  int    `json:"inserted"`
	ScanRunID string `json:"scan_run_id"`
}

// Uploader sends scan payloads to a running vault API.
type Uploader struct {
	client      *httputil.Client
	baseURL     string
	secret      string
	payloadPath string
	logger      *logger.Logger
}

// New creates an uploader from config.
func New(cfg *config.Config, log *logger.Logger) *Uploader {
	return &Uploader{
		client: httputil.New(log).
			WithRateLimit(rate.Every(uploadInterval), uploadBurst).
			WithRetry(uploadMaxRetries, uploadRetryDelay),
		baseURL:     cfg.Ingest.APIBaseURL,
		secret:      cfg.Ingest.Secret,
		payloadPath: cfg.Ingest.PayloadPath,
		logger:      log,
	}
}

// UploadFile reads the configured payload file and posts it.
func (u *Uploader) UploadFile(ctx context.Context) (*Result, error) {
	return u.UploadPath(ctx, u.payloadPath)
}

// UploadPath reads a specific payload file and posts it. The payload is
// parsed locally first so a malformed file fails before it leaves the
// machine.
func (u *Uploader) UploadPath(ctx context.Context, path string) (*Result, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", path, err)
	}

	payload, err := contracts.ParseScanPayload(body)
	if err != nil {
		return nil, fmt.Errorf("payload %s: %w", path, err)
	}

	u.logger.WithFields(map[string]interface{}{
		"path":    path,
		"signals": len(payload.Signals),
	}).Info("Uploading scan payload")

	return u.post(ctx, body)
}

func (u *Uploader) post(ctx context.Context, body []byte) (*Result, error) {
	headers := map[string]string{}
	if u.secret != "" {
		headers[auth.IngestHeader] = u.secret
	}

	resp, err := u.client.Post(ctx, u.baseURL+"/api/ingest", "application/json", bytes.NewReader(body), headers)
	if err != nil {
		return nil, fmt.Errorf("post ingest: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read ingest response: %w", err)
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("ingest rejected: status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode ingest response: %w", err)
	}

	u.logger.WithFields(map[string]interface{}{
		"scan_run_id": result.ScanRunID,
		"inserted":    result.Inserted,
	}).Info("Scan payload accepted")

	return &result, nil
}
