package contracts

import "time"

// Signal is the discrete trading signal derived from the composite score.
type Signal string

const (
	SignalStrongBuy  Signal = "STRONG_BUY"
	SignalBuy        Signal = "BUY"
	SignalHold       Signal = "HOLD"
	SignalSell       Signal = "SELL"
	SignalStrongSell Signal = "STRONG_SELL"

	// SignalNone marks instruments without technical coverage
	// (for example mutual fund schemes with no price history).
	SignalNone Signal = "N/A"
)

// Composite score thresholds. Boundaries are inclusive on the lower
// edge of each band.
const (
	ThresholdStrongBuy = 60.0
	ThresholdBuy       = 20.0
	ThresholdHoldLower = -20.0
	ThresholdSell      = -60.0
)

// SignalFor maps a composite score to its trading signal. It is a pure,
// monotonic step function of the score.
func SignalFor(composite float64) Signal {
	switch {
	case composite >= ThresholdStrongBuy:
		return SignalStrongBuy
	case composite >= ThresholdBuy:
		return SignalBuy
	case composite >= ThresholdHoldLower:
		return SignalHold
	case composite >= ThresholdSell:
		return SignalSell
	default:
		return SignalStrongSell
	}
}

// CompositeScore holds the five weighted sub-scores and the composite
// they reduce to. Every sub-score and the composite lie in [-100, 100].
type CompositeScore struct {
	Trend            float64 `json:"trend_score"`
	Momentum         float64 `json:"momentum_score"`
	Volume           float64 `json:"volume_score"`
	Volatility       float64 `json:"volatility_score"`
	RelativeStrength float64 `json:"relative_strength_score"`
	Composite        float64 `json:"composite_score"`
	Signal           Signal  `json:"signal"`
}

// InstrumentAnalysis is the full technical result for one instrument:
// the latest indicator snapshot plus its composite score. Immutable
// once produced by a pipeline run.
type InstrumentAnalysis struct {
	Symbol   string            `json:"symbol"`
	AsOf     time.Time         `json:"as_of"`
	Close    float64           `json:"close"`
	Snapshot IndicatorSnapshot `json:"snapshot"`
	Score    CompositeScore    `json:"score"`
}

// SignalMap indexes instrument analyses by instrument code.
type SignalMap map[string]*InstrumentAnalysis

// ScoreFor returns the composite score for a code, or zero with
// SignalNone when the instrument has no technical coverage.
func (m SignalMap) ScoreFor(code string) (float64, Signal) {
	if a, ok := m[code]; ok {
		return a.Score.Composite, a.Score.Signal
	}
	return 0, SignalNone
}

// SectorStrength is one sector index's relative strength against the
// benchmark, plus its own technical composite.
type SectorStrength struct {
	Sector string `json:"sector"`
	Symbol string `json:"symbol"`

	// Relative strength (sector return minus benchmark return) over
	// 5, 22 and 66 trading-day windows, in percentage points.
	RS1W float64 `json:"rs_1w"`
	RS1M float64 `json:"rs_1m"`
	RS3M float64 `json:"rs_3m"`

	RSI   float64       `json:"rsi"`
	Trend PricePosition `json:"trend"`

	Score CompositeScore `json:"score"`
	Rank  int            `json:"rank"`
}
