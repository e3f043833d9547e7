package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/internal/sectors"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/logger"
)

// sectorsCmd represents the sectors command
var sectorsCmd = &cobra.Command{
	Use:   "sectors",
	Short: "Rank sector relative strength",
	Long: `Fetches every sector index plus the benchmark and prints the
relative strength ranking (sector return minus benchmark return over
1 week, 1 month and 3 months).

Runs against the live market data source; no database required.

Example:
  go run ./cmd/fie sectors`,
	RunE: runSectors,
}

func init() {
	rootCmd.AddCommand(sectorsCmd)
}

func runSectors(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Assemble the analyzer
	provider := newPriceProvider(cfg, log, nil)
	engine := indicators.NewEngine(indicators.DefaultConfig(), log)

	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), log)
	if err != nil {
		return err
	}

	analyzer := sectors.NewAnalyzer(provider, engine, scorer, cfg.Pipeline.Benchmark, nil, log)

	// 4. Analyze
	strengths, err := analyzer.Analyze(cmd.Context())
	if err != nil {
		return fmt.Errorf("sector analysis: %w", err)
	}

	if len(strengths) == 0 {
		fmt.Println("No sector data available")
		return nil
	}

	// 5. Print ranking
	fmt.Printf("\n=== Sector Relative Strength vs %s ===\n\n", cfg.Pipeline.Benchmark)
	fmt.Printf("%-4s %-14s %8s %8s %8s %8s %12s\n",
		"Rank", "Sector", "RS 1W", "RS 1M", "RS 3M", "Score", "Signal")
	for _, s := range strengths {
		fmt.Printf("%-4d %-14s %+8.2f %+8.2f %+8.2f %8.1f %12s\n",
			s.Rank, s.Sector, s.RS1W, s.RS1M, s.RS3M, s.Score.Composite, s.Score.Signal)
	}

	return nil
}
