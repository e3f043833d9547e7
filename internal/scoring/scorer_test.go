package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights(), logger.NewNop())
	require.NoError(t, err)
	return s
}

// neutralSnapshot reads as zero on every sub-score.
func neutralSnapshot() *contracts.IndicatorSnapshot {
	return &contracts.IndicatorSnapshot{
		RSI14:          50,
		StochRSI:       50,
		MACDCrossover:  contracts.CrossoverNeutral,
		PriceVs200DMA:  contracts.PriceAbove,
		DMACross:       contracts.MACrossGolden, // +30+40 = +70, no ADX adjustment at 20
		ADX:            20,
		ADXTrend:       contracts.TrendNone,
		BBPosition:     contracts.BandMiddle,
		OBVTrend:       contracts.VolumeFlat,
		VolumeSignal:   contracts.VolumeNormal,
		PctFrom52WHigh: -15,
		PctFrom52WLow:  30,
	}
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := DefaultWeights()
	bad.Trend = 0.5
	assert.Error(t, bad.Validate())

	_, err := NewScorer(bad, logger.NewNop())
	assert.Error(t, err)
}

func TestTrendScore(t *testing.T) {
	tests := []struct {
		name  string
		mutate func(*contracts.IndicatorSnapshot)
		want  float64
	}{
		{"above with golden cross", func(s *contracts.IndicatorSnapshot) {}, 70},
		{"below with death cross", func(s *contracts.IndicatorSnapshot) {
			s.PriceVs200DMA = contracts.PriceBelow
			s.DMACross = contracts.MACrossDeath
		}, -70},
		{"strong adx amplifies positive", func(s *contracts.IndicatorSnapshot) {
			s.ADX = 35
		}, 90},
		{"strong adx amplifies negative", func(s *contracts.IndicatorSnapshot) {
			s.PriceVs200DMA = contracts.PriceBelow
			s.DMACross = contracts.MACrossDeath
			s.ADX = 35
		}, -90},
		{"weak adx halves", func(s *contracts.IndicatorSnapshot) {
			s.ADX = 10
		}, 35},
		{"no cross above", func(s *contracts.IndicatorSnapshot) {
			s.DMACross = contracts.MACrossNone
		}, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := neutralSnapshot()
			tt.mutate(snap)
			assert.Equal(t, tt.want, trendScore(snap))
		})
	}
}

func TestMomentumScoreSingleRSIZone(t *testing.T) {
	tests := []struct {
		rsi  float64
		want float64
	}{
		{25, 40},  // oversold
		{75, -40}, // overbought
		{40, 15},  // weak
		{60, -15}, // strong
		{50, 0},   // neutral band
	}

	for _, tt := range tests {
		snap := neutralSnapshot()
		snap.RSI14 = tt.rsi
		assert.Equal(t, tt.want, momentumScore(snap), "rsi=%v", tt.rsi)
	}
}

func TestMomentumScoreCombines(t *testing.T) {
	snap := neutralSnapshot()
	snap.RSI14 = 25
	snap.MACDCrossover = contracts.CrossoverBullish
	snap.StochRSI = 10

	assert.Equal(t, 100.0, momentumScore(snap)) // 40+35+25

	snap.RSI14 = 75
	snap.MACDCrossover = contracts.CrossoverBearish
	snap.StochRSI = 90

	assert.Equal(t, -100.0, momentumScore(snap))
}

func TestVolumeScore(t *testing.T) {
	tests := []struct {
		name   string
		signal contracts.VolumeLevel
		trend  contracts.VolumeTrend
		want   float64
	}{
		{"surge with rising obv", contracts.VolumeSurge, contracts.VolumeRising, 60},
		{"high with rising obv", contracts.VolumeHigh, contracts.VolumeRising, 60},
		{"surge with falling obv", contracts.VolumeSurge, contracts.VolumeFalling, -40},
		{"rising obv alone", contracts.VolumeNormal, contracts.VolumeRising, 25},
		{"falling obv alone", contracts.VolumeLow, contracts.VolumeFalling, -25},
		{"flat", contracts.VolumeNormal, contracts.VolumeFlat, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := neutralSnapshot()
			snap.VolumeSignal = tt.signal
			snap.OBVTrend = tt.trend
			assert.Equal(t, tt.want, volumeScore(snap))
		})
	}
}

func TestVolatilityScore(t *testing.T) {
	snap := neutralSnapshot()

	snap.BBPosition = contracts.BandLower
	assert.Equal(t, 40.0, volatilityScore(snap))

	snap.BBPosition = contracts.BandUpper
	assert.Equal(t, -40.0, volatilityScore(snap))

	snap.BBPosition = contracts.BandMiddle
	assert.Equal(t, 0.0, volatilityScore(snap))
}

func TestRelativeStrengthScoreSumsConditions(t *testing.T) {
	snap := neutralSnapshot()

	snap.PctFrom52WHigh = -2
	snap.PctFrom52WLow = 40
	assert.Equal(t, 40.0, relativeStrengthScore(snap), "near the high")

	snap.PctFrom52WHigh = -45
	snap.PctFrom52WLow = 3
	assert.Equal(t, -50.0, relativeStrengthScore(snap), "deep below high and near the low")

	snap.PctFrom52WHigh = -15
	snap.PctFrom52WLow = 30
	assert.Equal(t, 0.0, relativeStrengthScore(snap))
}

func TestScoreCompositeAndSignal(t *testing.T) {
	scorer := newTestScorer(t)

	bullish := neutralSnapshot()
	bullish.RSI14 = 25
	bullish.MACDCrossover = contracts.CrossoverBullish
	bullish.StochRSI = 10
	bullish.ADX = 35
	bullish.VolumeSignal = contracts.VolumeSurge
	bullish.OBVTrend = contracts.VolumeRising
	bullish.BBPosition = contracts.BandLower
	bullish.PctFrom52WHigh = -2

	score := scorer.Score(bullish)

	// 0.3*90 + 0.3*100 + 0.2*60 + 0.1*40 + 0.1*40 = 77.0
	assert.Equal(t, 77.0, score.Composite)
	assert.Equal(t, contracts.SignalStrongBuy, score.Signal)
}

func TestSignalThresholdBoundaries(t *testing.T) {
	tests := []struct {
		composite float64
		want      contracts.Signal
	}{
		{60, contracts.SignalStrongBuy},
		{59.9, contracts.SignalBuy},
		{20, contracts.SignalBuy},
		{19.9, contracts.SignalHold},
		{-20, contracts.SignalHold},
		{-20.1, contracts.SignalSell},
		{-60, contracts.SignalSell},
		{-60.1, contracts.SignalStrongSell},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, contracts.SignalFor(tt.composite), "composite=%v", tt.composite)
	}
}
