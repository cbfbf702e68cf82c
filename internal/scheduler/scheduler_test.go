package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

type noopJob struct {
	name     string
	schedule string
}

func (j *noopJob) Name() string                { return j.name }
func (j *noopJob) Schedule() string            { return j.schedule }
func (j *noopJob) Run(_ context.Context) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error"})
}

func TestAddJobRejectsDuplicates(t *testing.T) {
	s := New(testLogger())
	job := &noopJob{name: "ingest", schedule: "0 30 21 * * 1-5"}

	require.NoError(t, s.AddJob(job))
	err := s.AddJob(job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestAddJobRejectsBadCronExpression(t *testing.T) {
	s := New(testLogger())
	err := s.AddJob(&noopJob{name: "bad", schedule: "not a cron line"})
	require.Error(t, err)
}

func TestRunJobUnknownName(t *testing.T) {
	s := New(testLogger())
	require.Error(t, s.RunJob("missing"))
}

func TestStatsListsRegisteredJobs(t *testing.T) {
	s := New(testLogger())
	require.NoError(t, s.AddJob(&noopJob{name: "ingest", schedule: "0 30 21 * * 1-5"}))

	stats := s.Stats()
	require.Contains(t, stats, "ingest")
	assert.Equal(t, "0 30 21 * * 1-5", stats["ingest"].Schedule)
	assert.Equal(t, 0, stats["ingest"].TotalRuns)
}

func TestJobHistoryKeepsRecentResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%2 == 0, StartTime: time.Now()})
	}
	assert.Len(t, h.Results, historyLimit)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.05)
	require.NotNil(t, h.Last())
}
