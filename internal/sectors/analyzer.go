package sectors

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/pkg/logger"
)

// DefaultBenchmark is the broad-market index sectors are measured
// against.
const DefaultBenchmark = "^NSEI"

// DefaultSectorIndices maps sector names to their NSE index symbols.
func DefaultSectorIndices() map[string]string {
	return map[string]string{
		"BANK":         "^NSEBANK",
		"IT":           "^CNXIT",
		"PHARMA":       "^CNXPHARMA",
		"AUTO":         "NIFTY_AUTO.NS",
		"FMCG":         "^CNXFMCG",
		"METAL":        "^CNXMETAL",
		"REALTY":       "^CNXREALTY",
		"ENERGY":       "^CNXENERGY",
		"INFRA":        "^CNXINFRA",
		"PSE":          "^CNXPSE",
		"MIDCAP_150":   "NIFTY_MID_SELECT.NS",
		"SMALLCAP_250": "^CNXSC",
		"FINANCIAL":    "NIFTY_FIN_SERVICE.NS",
		"MEDIA":        "^CNXMEDIA",
	}
}

// Return windows in trading days.
const (
	windowWeek    = 5
	windowMonth   = 22
	windowQuarter = 66
)

// Analyzer ranks sector indices by technical strength relative to a
// benchmark index.
type Analyzer struct {
	provider  contracts.PriceProvider
	engine    *indicators.Engine
	scorer    *scoring.Scorer
	benchmark string
	indices   map[string]string
	logger    *logger.Logger
}

func NewAnalyzer(provider contracts.PriceProvider, engine *indicators.Engine, scorer *scoring.Scorer, benchmark string, indices map[string]string, log *logger.Logger) *Analyzer {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	if indices == nil {
		indices = DefaultSectorIndices()
	}
	return &Analyzer{
		provider:  provider,
		engine:    engine,
		scorer:    scorer,
		benchmark: benchmark,
		indices:   indices,
		logger:    log,
	}
}

// Analyze computes relative strength and a technical composite for each
// tracked sector index, ranked best first. Without benchmark data the
// relative metrics are undefined, so a benchmark fetch failure yields an
// empty result. A single sector's failure only skips that sector.
func (a *Analyzer) Analyze(ctx context.Context) ([]contracts.SectorStrength, error) {
	benchBars, err := a.provider.History(ctx, a.benchmark)
	if err != nil {
		a.logger.WithError(err).WithField("symbol", a.benchmark).
			Warn("Benchmark fetch failed, skipping sector analysis")
		return []contracts.SectorStrength{}, nil
	}

	benchWeek := periodReturn(benchBars, windowWeek)
	benchMonth := periodReturn(benchBars, windowMonth)
	benchQuarter := periodReturn(benchBars, windowQuarter)

	results := make([]contracts.SectorStrength, 0, len(a.indices))
	for sector, symbol := range a.indices {
		strength, err := a.analyzeSector(ctx, sector, symbol, benchWeek, benchMonth, benchQuarter)
		if err != nil {
			a.logger.WithError(err).WithFields(map[string]interface{}{
				"sector": sector,
				"symbol": symbol,
			}).Warn("Sector analysis failed, skipping")
			continue
		}
		results = append(results, *strength)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score.Composite != results[j].Score.Composite {
			return results[i].Score.Composite > results[j].Score.Composite
		}
		return results[i].Sector < results[j].Sector
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	return results, nil
}

func (a *Analyzer) analyzeSector(ctx context.Context, sector, symbol string, benchWeek, benchMonth, benchQuarter float64) (*contracts.SectorStrength, error) {
	bars, err := a.provider.History(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	snap, err := a.engine.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}
	score := a.scorer.Score(snap)

	return &contracts.SectorStrength{
		Sector: sector,
		Symbol: symbol,
		RS1W:   round2(periodReturn(bars, windowWeek) - benchWeek),
		RS1M:   round2(periodReturn(bars, windowMonth) - benchMonth),
		RS3M:   round2(periodReturn(bars, windowQuarter) - benchQuarter),
		RSI:    snap.RSI14,
		Trend:  snap.PriceVs200DMA,
		Score:  score,
	}, nil
}

// periodReturn is the percentage change over the last n bars, zero when
// the series is too short.
func periodReturn(bars []contracts.PricePoint, n int) float64 {
	if len(bars) < n+1 {
		return 0
	}
	current := bars[len(bars)-1].Close
	past := bars[len(bars)-1-n].Close
	if past == 0 {
		return 0
	}
	return (current - past) / past * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
