// Package jobs holds the concrete scheduled jobs.
package jobs

import (
	"context"
	"fmt"

	"github.com/dropped95si/alpha-terminal/internal/upload"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// IngestJob uploads the scanner's payload file after each scan window
// closes.
type IngestJob struct {
	uploader *upload.Uploader
	schedule string
	logger   *logger.Logger
}

// NewIngestJob creates the scheduled ingest job.
func NewIngestJob(uploader *upload.Uploader, schedule string, log *logger.Logger) *IngestJob {
	return &IngestJob{uploader: uploader, schedule: schedule, logger: log}
}

// Name returns the job name.
func (j *IngestJob) Name() string {
	return "scan_payload_ingest"
}

// Schedule returns the cron expression, configured via INGEST_SCHEDULE.
func (j *IngestJob) Schedule() string {
	return j.schedule
}

// Run uploads the payload file once.
func (j *IngestJob) Run(ctx context.Context) error {
	res, err := j.uploader.UploadFile(ctx)
	if err != nil {
		return fmt.Errorf("scheduled ingest: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"scan_run_id": res.ScanRunID,
		"inserted":    res.Inserted,
	}).Info("Scheduled ingest completed")
	return nil
}
