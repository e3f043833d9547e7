package scoring

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

func genSnapshot() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 100),   // RSI
		gen.Float64Range(0, 100),   // StochRSI
		gen.Float64Range(0, 80),    // ADX
		gen.Float64Range(-80, 10),  // pct from 52w high
		gen.Float64Range(-10, 200), // pct from 52w low
		gen.OneConstOf(contracts.CrossoverBullish, contracts.CrossoverBearish, contracts.CrossoverNeutral),
		gen.OneConstOf(contracts.PriceAbove, contracts.PriceBelow),
		gen.OneConstOf(contracts.MACrossGolden, contracts.MACrossDeath, contracts.MACrossNone),
		gen.OneConstOf(contracts.BandUpper, contracts.BandMiddle, contracts.BandLower),
		gen.OneConstOf(contracts.VolumeRising, contracts.VolumeFalling, contracts.VolumeFlat),
		gen.OneConstOf(contracts.VolumeSurge, contracts.VolumeHigh, contracts.VolumeLow, contracts.VolumeNormal),
	).Map(func(vals []interface{}) *contracts.IndicatorSnapshot {
		return &contracts.IndicatorSnapshot{
			RSI14:          vals[0].(float64),
			StochRSI:       vals[1].(float64),
			ADX:            vals[2].(float64),
			PctFrom52WHigh: vals[3].(float64),
			PctFrom52WLow:  vals[4].(float64),
			MACDCrossover:  vals[5].(contracts.Crossover),
			PriceVs200DMA:  vals[6].(contracts.PricePosition),
			DMACross:       vals[7].(contracts.MACross),
			BBPosition:     vals[8].(contracts.BandPosition),
			OBVTrend:       vals[9].(contracts.VolumeTrend),
			VolumeSignal:   vals[10].(contracts.VolumeLevel),
		}
	})
}

func TestScoreBoundsProperty(t *testing.T) {
	scorer, err := NewScorer(DefaultWeights(), logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	inRange := func(v float64) bool { return v >= -100 && v <= 100 }

	properties.Property("every sub-score and the composite stay in [-100,100]", prop.ForAll(
		func(snap *contracts.IndicatorSnapshot) bool {
			score := scorer.Score(snap)
			return inRange(score.Trend) &&
				inRange(score.Momentum) &&
				inRange(score.Volume) &&
				inRange(score.Volatility) &&
				inRange(score.RelativeStrength) &&
				inRange(score.Composite)
		},
		genSnapshot(),
	))

	properties.Property("signal agrees with the composite thresholds", prop.ForAll(
		func(snap *contracts.IndicatorSnapshot) bool {
			score := scorer.Score(snap)
			return score.Signal == contracts.SignalFor(score.Composite)
		},
		genSnapshot(),
	))

	properties.TestingRun(t)
}
