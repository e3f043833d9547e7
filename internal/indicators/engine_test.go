package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

func testBars(n int, close func(i int) float64) []contracts.PricePoint {
	bars := make([]contracts.PricePoint, n)
	for i := 0; i < n; i++ {
		c := close(i)
		bars[i] = contracts.PricePoint{
			Date:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   c * 0.995,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100000,
		}
	}
	return bars
}

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), logger.NewNop())
}

func TestComputeRejectsShortHistory(t *testing.T) {
	bars := testBars(MinBars-1, func(i int) float64 { return 100 })

	_, err := newTestEngine().Compute(bars)

	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestComputeRisingSeries(t *testing.T) {
	bars := testBars(60, func(i int) float64 { return 100 + float64(i) })

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, 100.0, snap.RSI14, "uninterrupted gains read as RSI 100")
	assert.Greater(t, snap.MACDLine, 0.0)
	assert.Greater(t, snap.SMA50, 0.0)
	assert.Equal(t, contracts.VolumeRising, snap.OBVTrend)
	assert.InDelta(t, 0, snap.PctFrom52WHigh, 2.5, "close should sit near the period high")
	assert.Greater(t, snap.PctFrom52WLow, 0.0)
}

func TestComputeFallingSeries(t *testing.T) {
	bars := testBars(60, func(i int) float64 { return 200 - float64(i) })

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Less(t, snap.RSI14, 30.0)
	assert.Less(t, snap.MACDLine, 0.0)
	assert.Equal(t, contracts.VolumeFalling, snap.OBVTrend)
	assert.Less(t, snap.PctFrom52WHigh, 0.0)
}

func TestComputeShortHistoryFallsBackBelowLongSMA(t *testing.T) {
	// Under 200 bars the long SMA is unavailable, which must read as a
	// price below its 200-day average with no cross.
	bars := testBars(60, func(i int) float64 { return 100 + float64(i) })

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, contracts.PriceBelow, snap.PriceVs200DMA)
	assert.Equal(t, contracts.MACrossNone, snap.DMACross)
	assert.Equal(t, 0.0, snap.SMA200)
}

func TestComputeLongHistoryAboveLongSMA(t *testing.T) {
	bars := testBars(260, func(i int) float64 { return 100 + float64(i)*0.5 })

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, contracts.PriceAbove, snap.PriceVs200DMA)
	assert.Greater(t, snap.SMA200, 0.0)
	assert.Greater(t, snap.SMA50, snap.SMA200)
}

func TestComputeVolumeSurge(t *testing.T) {
	bars := testBars(60, func(i int) float64 { return 100 + float64(i%5) })
	bars[len(bars)-1].Volume = 300000

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, contracts.VolumeSurge, snap.VolumeSignal)
	assert.Greater(t, snap.VolumeRatio, 2.0)
}

func TestRSISeriesWilderSmoothing(t *testing.T) {
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64,
	}

	rsi := rsiSeries(closes, 14)

	for i := 0; i < 14; i++ {
		assert.True(t, math.IsNaN(rsi[i]), "warm-up bar %d should be NaN", i)
	}
	// Wilder's worked example.
	assert.InDelta(t, 70.46, rsi[14], 0.1)
	assert.InDelta(t, 66.25, rsi[15], 0.1)
}

func TestEMASeriesSeededFromFirstValue(t *testing.T) {
	ema := emaSeries([]float64{10, 20, 30}, 3)

	assert.Equal(t, 10.0, ema[0])
	assert.InDelta(t, 15.0, ema[1], 1e-9) // 0.5*20 + 0.5*10
	assert.InDelta(t, 22.5, ema[2], 1e-9)
}

func TestRollingStdIsSampleStd(t *testing.T) {
	std := rollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)

	assert.InDelta(t, 2.138, std[7], 0.001)
}

func TestStochRSIFlatWindowReadsMidScale(t *testing.T) {
	rsi := make([]float64, 20)
	for i := range rsi {
		rsi[i] = 55.0
	}

	assert.Equal(t, 50.0, stochRSIAt(rsi, 14))
}

func TestCrossoverLabel(t *testing.T) {
	tests := []struct {
		name string
		hist []float64
		want contracts.Crossover
	}{
		{"bullish flip", []float64{-0.5, 0.3}, contracts.CrossoverBullish},
		{"bearish flip", []float64{0.5, -0.3}, contracts.CrossoverBearish},
		{"no flip", []float64{0.5, 0.3}, contracts.CrossoverNeutral},
		{"warm-up", []float64{math.NaN(), 0.3}, contracts.CrossoverNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, crossoverLabel(tt.hist))
		})
	}
}

func TestMACrossLabel(t *testing.T) {
	tests := []struct {
		name        string
		short, long []float64
		want        contracts.MACross
	}{
		{"golden", []float64{99, 101}, []float64{100, 100}, contracts.MACrossGolden},
		{"death", []float64{101, 99}, []float64{100, 100}, contracts.MACrossDeath},
		{"steady above", []float64{101, 102}, []float64{100, 100}, contracts.MACrossNone},
		{"long unavailable", []float64{99, 101}, []float64{math.NaN(), math.NaN()}, contracts.MACrossNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maCrossLabel(tt.short, tt.long))
		})
	}
}

func TestOBVSeries(t *testing.T) {
	closes := []float64{10, 11, 11, 9}
	volumes := []float64{100, 200, 300, 400}

	obv := obvSeries(closes, volumes)

	assert.Equal(t, []float64{0, 200, 200, -200}, obv)
}

func TestADXFlatSeriesReadsNoTrend(t *testing.T) {
	bars := make([]contracts.PricePoint, 60)
	for i := range bars {
		bars[i] = contracts.PricePoint{
			Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open: 100, High: 100, Low: 100, Close: 100, Volume: 100000,
		}
	}

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, contracts.TrendNone, snap.ADXTrend)
	assert.Equal(t, 0.0, snap.ADX)
}

func TestADXTrendingSeriesReadsStrong(t *testing.T) {
	bars := testBars(60, func(i int) float64 { return 100 + float64(i)*2 })

	snap, err := newTestEngine().Compute(bars)
	require.NoError(t, err)

	assert.Equal(t, contracts.TrendStrong, snap.ADXTrend)
	assert.Greater(t, snap.ADX, 25.0)
}
