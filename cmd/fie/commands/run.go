package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhaveri/fie/internal/pipeline"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/database"
	"github.com/jhaveri/fie/pkg/logger"
	"github.com/jhaveri/fie/pkg/redis"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the daily advisory pipeline once",
	Long: `Runs the complete advisory pipeline:

1. Load the book (clients, holdings, active directives)
2. Compute technical signals for every held instrument
3. Rank sector relative strength against the benchmark
4. Synthesize per-client recommendations
5. Persist results

Example:
  go run ./cmd/fie run
  go run ./cmd/fie run --date 2026-08-28 --dry-run
  go run ./cmd/fie run --instruments NSE:INFY,NSE:TCS
  go run ./cmd/fie run --client CL-001 --dry-run`,
	RunE: runPipeline,
}

var (
	runDate        string
	runDryRun      bool
	runInstruments []string
	runClients     []string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDate, "date", "", "analysis date (YYYY-MM-DD, default today)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "skip persistence")
	runCmd.Flags().StringSliceVar(&runInstruments, "instruments", nil, "restrict to these instrument codes")
	runCmd.Flags().StringSliceVar(&runClients, "client", nil, "restrict to these client IDs")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== FIE Advisory Pipeline ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Connect to Redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	// 5. Assemble the pipeline
	provider := newPriceProvider(cfg, log, redisClient)
	orchestrator, err := newOrchestrator(cfg, log, db, provider)
	if err != nil {
		return fmt.Errorf("assemble pipeline: %w", err)
	}

	// 6. Resolve run date
	date := time.Now()
	if runDate != "" {
		date, err = time.Parse("2006-01-02", runDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	runConfig := pipeline.RunConfig{
		Date:        date,
		RunID:       pipeline.GenerateRunID(time.Now()),
		Instruments: runInstruments,
		Clients:     runClients,
		DryRun:      runDryRun,
	}

	fmt.Printf("Run ID: %s\n", runConfig.RunID)

	// 7. Run
	result, err := orchestrator.Run(cmd.Context(), runConfig)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	printRunSummary(result)
	return nil
}

func printRunSummary(result *pipeline.RunResult) {
	fmt.Printf("\n✅ Run %s completed in %s\n", result.RunID, result.Duration.Round(time.Millisecond))
	fmt.Printf("  Stages:      %v\n", result.CompletedStages)
	fmt.Printf("  Signals:     %d\n", len(result.Signals))
	if len(result.Failed) > 0 {
		fmt.Printf("  Failed:      %v\n", result.Failed)
	}
	fmt.Printf("  Sectors:     %d\n", len(result.Sectors))
	fmt.Printf("  Clients:     %d\n", len(result.Advice))

	for _, advice := range result.Advice {
		fmt.Printf("\n  %s (%s): %d recommendations\n",
			advice.Client.Name, advice.Client.ClientID, len(advice.Recommendations))
		for _, rec := range advice.Recommendations {
			fmt.Printf("    %s [%s] %s %s (confidence %d)\n",
				rec.RecID, rec.Priority, rec.Action, rec.Instrument, rec.Confidence)
		}
	}
}
