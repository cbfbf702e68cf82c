package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/httputil"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// statusCmd reports the state of a running vault API.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running vault API",
	Long: `Queries a running API (INGEST_API_URL) and reports its health,
which retrieval tier is currently serving signals, and the local
snapshot file inventory.

Example:
  go run ./cmd/terminal status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)
	client := httputil.New(log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	base := cfg.Ingest.APIBaseURL
	fmt.Printf("Vault API: %s\n\n", base)

	health, err := fetchJSON(ctx, client, base+"/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	fmt.Printf("Health:  %v\n", health["status"])

	signals, err := fetchJSON(ctx, client, base+"/api/signals?limit=1")
	if err != nil {
		return fmt.Errorf("signals check failed: %w", err)
	}
	fmt.Printf("Source:  %v\n", signals["source"])
	fmt.Printf("As of:   %v\n", signals["as_of"])
	if e, ok := signals["error"]; ok {
		fmt.Printf("Error:   %v\n", e)
	}

	fmt.Printf("\nSnapshots (%s):\n", cfg.Snapshot.Dir)
	for _, file := range []string{"ready.json", "early.json", "watch.json"} {
		path := filepath.Join(cfg.Snapshot.Dir, file)
		if info, err := os.Stat(path); err == nil {
			fmt.Printf("  %-12s %8d bytes  %s\n", file, info.Size(), info.ModTime().UTC().Format(time.RFC3339))
		} else {
			fmt.Printf("  %-12s missing\n", file)
		}
	}
	return nil
}

func fetchJSON(ctx context.Context, client *httputil.Client, url string) (map[string]interface{}, error) {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
