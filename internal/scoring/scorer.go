package scoring

import (
	"fmt"
	"math"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

// Weights distributes the five sub-scores into the composite. They must
// sum to 1.0.
type Weights struct {
	Trend            float64
	Momentum         float64
	Volume           float64
	Volatility       float64
	RelativeStrength float64
}

func DefaultWeights() Weights {
	return Weights{
		Trend:            0.30,
		Momentum:         0.30,
		Volume:           0.20,
		Volatility:       0.10,
		RelativeStrength: 0.10,
	}
}

func (w Weights) Validate() error {
	sum := w.Trend + w.Momentum + w.Volume + w.Volatility + w.RelativeStrength
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Scorer reduces an indicator snapshot to five weighted sub-scores, a
// composite in [-100,100], and a categorical signal.
type Scorer struct {
	weights Weights
	logger  *logger.Logger
}

func NewScorer(weights Weights, log *logger.Logger) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scorer weights: %w", err)
	}
	return &Scorer{weights: weights, logger: log}, nil
}

func (s *Scorer) Score(snap *contracts.IndicatorSnapshot) contracts.CompositeScore {
	trend := trendScore(snap)
	momentum := momentumScore(snap)
	volume := volumeScore(snap)
	volatility := volatilityScore(snap)
	relStrength := relativeStrengthScore(snap)

	composite := s.weights.Trend*trend +
		s.weights.Momentum*momentum +
		s.weights.Volume*volume +
		s.weights.Volatility*volatility +
		s.weights.RelativeStrength*relStrength

	composite = round1(composite)

	return contracts.CompositeScore{
		Trend:            trend,
		Momentum:         momentum,
		Volume:           volume,
		Volatility:       volatility,
		RelativeStrength: relStrength,
		Composite:        composite,
		Signal:           contracts.SignalFor(composite),
	}
}

func trendScore(snap *contracts.IndicatorSnapshot) float64 {
	score := 0.0
	if snap.PriceVs200DMA == contracts.PriceAbove {
		score += 30
	} else {
		score -= 30
	}

	switch snap.DMACross {
	case contracts.MACrossGolden:
		score += 40
	case contracts.MACrossDeath:
		score -= 40
	}

	// A strong directional reading amplifies whichever way the trend
	// already points; a weak one dampens it.
	switch {
	case snap.ADX > 30:
		if score > 0 {
			score += 20
		} else if score < 0 {
			score -= 20
		}
	case snap.ADX < 15:
		score *= 0.5
	}

	return clamp(score)
}

func momentumScore(snap *contracts.IndicatorSnapshot) float64 {
	score := 0.0

	// Only one RSI zone applies per reading.
	switch {
	case snap.RSI14 < 30:
		score += 40
	case snap.RSI14 > 70:
		score -= 40
	case snap.RSI14 < 45:
		score += 15
	case snap.RSI14 > 55:
		score -= 15
	}

	switch snap.MACDCrossover {
	case contracts.CrossoverBullish:
		score += 35
	case contracts.CrossoverBearish:
		score -= 35
	}

	if snap.StochRSI < 20 {
		score += 25
	} else if snap.StochRSI > 80 {
		score -= 25
	}

	return clamp(score)
}

func volumeScore(snap *contracts.IndicatorSnapshot) float64 {
	elevated := snap.VolumeSignal == contracts.VolumeSurge || snap.VolumeSignal == contracts.VolumeHigh

	switch {
	case elevated && snap.OBVTrend == contracts.VolumeRising:
		return 60
	case elevated && snap.OBVTrend == contracts.VolumeFalling:
		return -40
	case snap.OBVTrend == contracts.VolumeRising:
		return 25
	case snap.OBVTrend == contracts.VolumeFalling:
		return -25
	default:
		return 0
	}
}

func volatilityScore(snap *contracts.IndicatorSnapshot) float64 {
	switch snap.BBPosition {
	case contracts.BandLower:
		return 40
	case contracts.BandUpper:
		return -40
	default:
		return 0
	}
}

func relativeStrengthScore(snap *contracts.IndicatorSnapshot) float64 {
	score := 0.0
	if snap.PctFrom52WHigh > -5 {
		score += 40
	}
	if snap.PctFrom52WHigh < -30 {
		score -= 30
	}
	if snap.PctFrom52WLow < 5 {
		score -= 20
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < -100 {
		return -100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
