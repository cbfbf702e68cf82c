package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropped95si/alpha-terminal/internal/upload"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// ingestCmd uploads a scanner payload file to a running API.
var ingestCmd = &cobra.Command{
	Use:   "ingest [payload.json]",
	Short: "Upload a scan payload to the vault",
	Long: `Reads a scanner payload file and posts it to the ingest endpoint.

Without an argument the configured INGEST_PAYLOAD path is used. The
target API and secret come from INGEST_API_URL and INGEST_SECRET.

Example:
  go run ./cmd/terminal ingest
  go run ./cmd/terminal ingest output/full_scan_payload.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	uploader := upload.New(cfg, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var res *upload.Result
	if len(args) == 1 {
		res, err = uploader.UploadPath(ctx, args[0])
	} else {
		res, err = uploader.UploadFile(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Ingested scan run %s (%d signals)\n", res.ScanRunID, res.Inserted)
	return nil
}
