// Package snapshot reads the scanner's static output files — one
// CardsFile per label tier — and normalizes them into signals. It backs
// the fallback retrieval tiers when the primary store is unavailable.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dropped95si/alpha-terminal/internal/contracts"
	"github.com/dropped95si/alpha-terminal/internal/normalize"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// tierFiles lists the known snapshot documents and the label applied to
// cards the scanner left unlabeled.
var tierFiles = []struct {
	File         string
	DefaultLabel string
}{
	{"ready.json", "READY_CONFIRMED"},
	{"early.json", "EARLY"},
	{"watch.json", "WATCH"},
}

// Loader reads snapshot files fresh on every call; there is no caching
// beyond the single request.
type Loader struct {
	dir    string
	logger *logger.Logger
}

// New creates a loader over the configured snapshot directory.
func New(cfg *config.Config, log *logger.Logger) *Loader {
	return &Loader{dir: cfg.Snapshot.Dir, logger: log}
}

// LoadAll reads every tier file concurrently and returns the
// concatenated normalized signals in tier order. A missing or malformed
// file contributes nothing; it never fails the whole load.
func (l *Loader) LoadAll(ctx context.Context) []contracts.Signal {
	perTier := make([][]contracts.Signal, len(tierFiles))

	var wg sync.WaitGroup
	for i, tf := range tierFiles {
		wg.Add(1)
		go func(i int, file, defaultLabel string) {
			defer wg.Done()
			perTier[i] = l.loadTier(file, defaultLabel)
		}(i, tf.File, tf.DefaultLabel)
	}
	wg.Wait()

	var out []contracts.Signal
	for _, sigs := range perTier {
		out = append(out, sigs...)
	}
	return out
}

func (l *Loader) loadTier(file, defaultLabel string) []contracts.Signal {
	path := filepath.Join(l.dir, file)

	data, err := os.ReadFile(path)
	if err != nil {
		l.logger.WithFields(map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		}).Debug("Snapshot tier unavailable")
		return nil
	}

	var cf contracts.CardsFile
	if err := json.Unmarshal(data, &cf); err != nil {
		l.logger.WithFields(map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		}).Warn("Snapshot tier malformed, skipping")
		return nil
	}

	return normalize.File(cf, defaultLabel)
}
