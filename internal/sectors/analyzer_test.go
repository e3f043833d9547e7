package sectors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/pkg/logger"
)

type fakeProvider struct {
	series map[string][]contracts.PricePoint
	errs   map[string]error
}

func (f *fakeProvider) History(_ context.Context, symbol string) ([]contracts.PricePoint, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	bars, ok := f.series[symbol]
	if !ok {
		return nil, fmt.Errorf("no data for %s", symbol)
	}
	return bars, nil
}

func seriesWithSlope(n int, start, slope float64) []contracts.PricePoint {
	bars := make([]contracts.PricePoint, n)
	for i := 0; i < n; i++ {
		c := start + slope*float64(i)
		bars[i] = contracts.PricePoint{
			Date:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.005,
			Low:    c * 0.995,
			Close:  c,
			Volume: 500000,
		}
	}
	return bars
}

func newTestAnalyzer(t *testing.T, provider contracts.PriceProvider, indices map[string]string) *Analyzer {
	t.Helper()
	log := logger.NewNop()
	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), log)
	require.NoError(t, err)
	engine := indicators.NewEngine(indicators.DefaultConfig(), log)
	return NewAnalyzer(provider, engine, scorer, DefaultBenchmark, indices, log)
}

func TestAnalyzeRanksByComposite(t *testing.T) {
	provider := &fakeProvider{series: map[string][]contracts.PricePoint{
		DefaultBenchmark: seriesWithSlope(80, 100, 0.2),
		"^CNXIT":         seriesWithSlope(80, 100, 1.0), // strongest uptrend
		"^CNXMETAL":      seriesWithSlope(80, 200, -1.0),
	}}
	indices := map[string]string{"IT": "^CNXIT", "METAL": "^CNXMETAL"}

	results, err := newTestAnalyzer(t, provider, indices).Analyze(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "IT", results[0].Sector)
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "METAL", results[1].Sector)
	assert.Equal(t, 2, results[1].Rank)
	assert.Greater(t, results[0].Score.Composite, results[1].Score.Composite)

	assert.Greater(t, results[0].RS1W, 0.0, "IT should outpace the benchmark")
	assert.Less(t, results[1].RS1M, 0.0, "METAL should lag the benchmark")
}

func TestAnalyzeBenchmarkFailureReturnsEmpty(t *testing.T) {
	provider := &fakeProvider{
		series: map[string][]contracts.PricePoint{"^CNXIT": seriesWithSlope(80, 100, 1.0)},
		errs:   map[string]error{DefaultBenchmark: errors.New("upstream down")},
	}

	results, err := newTestAnalyzer(t, provider, map[string]string{"IT": "^CNXIT"}).Analyze(context.Background())

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAnalyzeSkipsFailedSector(t *testing.T) {
	provider := &fakeProvider{
		series: map[string][]contracts.PricePoint{
			DefaultBenchmark: seriesWithSlope(80, 100, 0.2),
			"^CNXIT":         seriesWithSlope(80, 100, 1.0),
			"^CNXPHARMA":     seriesWithSlope(10, 100, 0.5), // too short to analyze
		},
		errs: map[string]error{"^CNXMETAL": errors.New("timeout")},
	}
	indices := map[string]string{"IT": "^CNXIT", "METAL": "^CNXMETAL", "PHARMA": "^CNXPHARMA"}

	results, err := newTestAnalyzer(t, provider, indices).Analyze(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "IT", results[0].Sector)
}

func TestAnalyzeDeterministicTieBreak(t *testing.T) {
	shared := seriesWithSlope(80, 100, 0.5)
	provider := &fakeProvider{series: map[string][]contracts.PricePoint{
		DefaultBenchmark: seriesWithSlope(80, 100, 0.2),
		"^CNXIT":         shared,
		"^NSEBANK":       shared,
	}}
	indices := map[string]string{"IT": "^CNXIT", "BANK": "^NSEBANK"}
	analyzer := newTestAnalyzer(t, provider, indices)

	first, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	// Equal composites fall back to lexical sector order, so repeated
	// runs over map-ordered inputs agree.
	require.Len(t, first, 2)
	assert.Equal(t, "BANK", first[0].Sector)
	assert.Equal(t, first, second)
}

func TestPeriodReturn(t *testing.T) {
	bars := seriesWithSlope(10, 100, 1)

	assert.InDelta(t, (109.0-104.0)/104.0*100, periodReturn(bars, 5), 1e-9)
	assert.Equal(t, 0.0, periodReturn(bars, 22), "short series reads as zero")
}
