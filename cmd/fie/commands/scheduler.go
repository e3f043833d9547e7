package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhaveri/fie/internal/scheduler"
	"github.com/jhaveri/fie/internal/scheduler/jobs"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/database"
	"github.com/jhaveri/fie/pkg/logger"
	"github.com/jhaveri/fie/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage scheduled jobs",
	Long: `Starts the scheduler daemon or manages its jobs.

Registered jobs:
  daily_advisory - weekdays 18:30 IST, full advisory pipeline

Subcommands:
  start   - start the scheduler daemon
  run     - run one job immediately
  status  - show job execution stats

Example:
  go run ./cmd/fie scheduler start
  go run ./cmd/fie scheduler run daily_advisory`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerDaemon,
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

func initScheduler() (*scheduler.Scheduler, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}

	provider := newPriceProvider(cfg, log, redisClient)
	orchestrator, err := newOrchestrator(cfg, log, db, provider)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("assemble pipeline: %w", err)
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewDailyAdvisoryJob(orchestrator, log)); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("register jobs: %w", err)
	}

	return sched, cleanup, nil
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FIE Scheduler ===")

	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.JobNames() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	printJobStats(sched)
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, cleanup, err := initScheduler()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Printf("Running job %s...\n", jobName)

	if err := sched.RunJob(jobName); err != nil {
		return err
	}

	// RunJob is asynchronous; poll the history until the run records.
	for {
		time.Sleep(time.Second)
		stats, ok := sched.JobStats()[jobName]
		if !ok || stats.TotalRuns == 0 {
			continue
		}

		if stats.LastError != "" {
			return fmt.Errorf("job %s failed: %s", jobName, stats.LastError)
		}
		fmt.Printf("✅ Job %s completed\n", jobName)
		return nil
	}
}

func printJobStats(sched *scheduler.Scheduler) {
	stats := sched.JobStats()
	if len(stats) == 0 {
		return
	}

	fmt.Println("\nJob stats:")
	for _, name := range sched.JobNames() {
		st := stats[name]
		fmt.Printf("  %-18s runs=%d success=%.0f%%\n", st.JobName, st.TotalRuns, st.SuccessRate*100)
	}
}
