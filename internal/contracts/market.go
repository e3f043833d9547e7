package contracts

import (
	"errors"
	"time"
)

// ErrInsufficientData is returned when a price series is too short for
// indicator computation. It is an expected condition, not a failure.
var ErrInsufficientData = errors.New("insufficient price history")

// PricePoint is one instrument's OHLCV bar for one trading day.
// Series are chronologically ordered, oldest first, unique per date.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Crossover labels a MACD line/signal crossing on the latest bar.
type Crossover string

const (
	CrossoverBullish Crossover = "BULLISH"
	CrossoverBearish Crossover = "BEARISH"
	CrossoverNeutral Crossover = "NEUTRAL"
)

// MACross labels a 50/200 day moving average crossing on the latest bar.
type MACross string

const (
	MACrossGolden MACross = "GOLDEN_CROSS"
	MACrossDeath  MACross = "DEATH_CROSS"
	MACrossNone   MACross = "NONE"
)

// PricePosition labels the close relative to the 200-day moving average.
type PricePosition string

const (
	PriceAbove PricePosition = "ABOVE"
	PriceBelow PricePosition = "BELOW"
)

// BandPosition labels the close relative to the Bollinger bands.
type BandPosition string

const (
	BandUpper  BandPosition = "UPPER"
	BandMiddle BandPosition = "MIDDLE"
	BandLower  BandPosition = "LOWER"
)

// TrendStrength labels ADX-based trend strength.
type TrendStrength string

const (
	TrendStrong TrendStrength = "STRONG_TREND"
	TrendWeak   TrendStrength = "WEAK_TREND"
	TrendNone   TrendStrength = "NO_TREND"
)

// VolumeTrend labels OBV relative to its 20-period mean.
type VolumeTrend string

const (
	VolumeRising  VolumeTrend = "RISING"
	VolumeFalling VolumeTrend = "FALLING"
	VolumeFlat    VolumeTrend = "FLAT"
)

// VolumeLevel labels current volume against its 20-period mean.
type VolumeLevel string

const (
	VolumeSurge  VolumeLevel = "SURGE"
	VolumeHigh   VolumeLevel = "HIGH"
	VolumeLow    VolumeLevel = "LOW"
	VolumeNormal VolumeLevel = "NORMAL"
)

// IndicatorSnapshot is the derived, per-date record of all indicator
// values for one instrument. Produced once per series evaluation and
// never mutated.
type IndicatorSnapshot struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`

	RSI14 float64 `json:"rsi_14"`

	MACDLine       float64   `json:"macd_line"`
	MACDSignalLine float64   `json:"macd_signal_line"`
	MACDHistogram  float64   `json:"macd_histogram"`
	MACDCrossover  Crossover `json:"macd_crossover"`

	SMA50         float64       `json:"sma_50"`
	SMA200        float64       `json:"sma_200"`
	PriceVs200DMA PricePosition `json:"price_vs_200dma"`
	DMACross      MACross       `json:"dma_cross"`

	BBUpper    float64      `json:"bb_upper"`
	BBMiddle   float64      `json:"bb_middle"`
	BBLower    float64      `json:"bb_lower"`
	BBPosition BandPosition `json:"bb_position"`

	ADX      float64       `json:"adx"`
	ADXTrend TrendStrength `json:"adx_trend"`
	ATR      float64       `json:"atr"`

	OBV      float64     `json:"obv"`
	OBVTrend VolumeTrend `json:"obv_trend"`

	VolumeRatio  float64     `json:"volume_ratio"`
	VolumeSignal VolumeLevel `json:"volume_signal"`

	StochRSI float64 `json:"stoch_rsi"`

	High52W       float64 `json:"high_52w"`
	Low52W        float64 `json:"low_52w"`
	PctFrom52WHigh float64 `json:"pct_from_52w_high"`
	PctFrom52WLow  float64 `json:"pct_from_52w_low"`
}
