package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropped95si/alpha-terminal/internal/scheduler"
	"github.com/dropped95si/alpha-terminal/internal/scheduler/jobs"
	"github.com/dropped95si/alpha-terminal/internal/upload"
	"github.com/dropped95si/alpha-terminal/pkg/config"
	"github.com/dropped95si/alpha-terminal/pkg/logger"
)

// schedulerCmd manages the recurring ingest schedule.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run and inspect scheduled jobs",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
  scan_payload_ingest - uploads the scanner payload (INGEST_SCHEDULE,
                        default weekdays 21:30 UTC)

Example:
  go run ./cmd/terminal scheduler start
  go run ./cmd/terminal scheduler run scan_payload_ingest`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func initScheduler() (*scheduler.Scheduler, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	sched := scheduler.New(log)
	uploader := upload.New(cfg, log)
	if err := sched.AddJob(jobs.NewIngestJob(uploader, cfg.Ingest.Schedule, log)); err != nil {
		return nil, fmt.Errorf("register ingest job: %w", err)
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return err
	}

	sched.Start()

	fmt.Println("Scheduler started")
	for name, st := range sched.Stats() {
		fmt.Printf("  - %s (%s)\n", name, st.Schedule)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	job := jobs.NewIngestJob(upload.New(cfg, log), cfg.Ingest.Schedule, log)
	if args[0] != job.Name() {
		return fmt.Errorf("unknown job %s", args[0])
	}

	if err := job.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Job %s completed\n", args[0])
	return nil
}
