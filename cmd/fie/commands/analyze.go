package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Compute technical signals for one instrument",
	Long: `Fetches price history for one instrument, computes the full
indicator snapshot and prints its composite technical score.

Runs against the live market data source; no database required.

Example:
  go run ./cmd/fie analyze NSE:INFY
  go run ./cmd/fie analyze ^NSEI`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	symbol := args[0]

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Fetch history (no cache for one-off lookups)
	provider := newPriceProvider(cfg, log, nil)

	prices, err := provider.History(cmd.Context(), symbol)
	if err != nil {
		return fmt.Errorf("fetch history for %s: %w", symbol, err)
	}

	// 4. Compute indicators and score
	engine := indicators.NewEngine(indicators.DefaultConfig(), log)

	snap, err := engine.Compute(prices)
	if err != nil {
		return fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}

	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), log)
	if err != nil {
		return err
	}
	score := scorer.Score(snap)

	// 5. Print
	fmt.Printf("\n=== %s (%d bars) ===\n", symbol, len(prices))
	fmt.Printf("Close:      %.2f\n", prices[len(prices)-1].Close)
	fmt.Printf("RSI(14):    %.2f\n", snap.RSI14)
	fmt.Printf("MACD:       %.2f (signal %.2f, hist %.2f) %s\n",
		snap.MACDLine, snap.MACDSignalLine, snap.MACDHistogram, snap.MACDCrossover)
	fmt.Printf("SMA 50/200: %.2f / %.2f (%s, %s)\n",
		snap.SMA50, snap.SMA200, snap.PriceVs200DMA, snap.DMACross)
	fmt.Printf("Bollinger:  %s (%.2f / %.2f / %.2f)\n", snap.BBPosition, snap.BBLower, snap.BBMiddle, snap.BBUpper)
	fmt.Printf("ADX(14):    %.2f (%s)\n", snap.ADX, snap.ADXTrend)
	fmt.Printf("Volume:     %.2fx avg (%s), OBV %s\n", snap.VolumeRatio, snap.VolumeSignal, snap.OBVTrend)
	fmt.Printf("52w:        %.2f%% from high, %.2f%% from low\n", snap.PctFrom52WHigh, snap.PctFrom52WLow)
	fmt.Printf("StochRSI:   %.2f\n", snap.StochRSI)

	fmt.Printf("\nScores: trend %.1f, momentum %.1f, volume %.1f, volatility %.1f, rel-strength %.1f\n",
		score.Trend, score.Momentum, score.Volume, score.Volatility, score.RelativeStrength)
	fmt.Printf("Composite: %.1f → %s\n", score.Composite, score.Signal)

	return nil
}
