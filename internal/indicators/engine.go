package indicators

import (
	"fmt"
	"math"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

// MinBars is the minimum number of price bars required before any
// indicator is computed.
const MinBars = 50

// Config holds the indicator periods. The defaults match the standard
// parameterizations (RSI 14, MACD 12/26/9, Bollinger 20/2, ADX 14).
type Config struct {
	RSIPeriod      int
	MACDFast       int
	MACDSlow       int
	MACDSignal     int
	SMAShort       int
	SMALong        int
	BBPeriod       int
	BBStdDev       float64
	ADXPeriod      int
	VolumePeriod   int
	StochRSIPeriod int
	YearWindow     int
}

func DefaultConfig() Config {
	return Config{
		RSIPeriod:      14,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
		SMAShort:       50,
		SMALong:        200,
		BBPeriod:       20,
		BBStdDev:       2.0,
		ADXPeriod:      14,
		VolumePeriod:   20,
		StochRSIPeriod: 14,
		YearWindow:     252,
	}
}

// Engine computes the full indicator snapshot for one instrument from
// its chronological price history.
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

func NewEngine(cfg Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, logger: log}
}

// Compute derives the indicator snapshot from the given bars, oldest
// first. It returns ErrInsufficientData when fewer than MinBars bars
// are available. Values that need a longer history than supplied (for
// example the 200-day SMA on a short series) are reported as zero with
// their categorical labels at the conservative default.
func (e *Engine) Compute(prices []contracts.PricePoint) (*contracts.IndicatorSnapshot, error) {
	n := len(prices)
	if n < MinBars {
		return nil, fmt.Errorf("%w: got %d bars, need %d", contracts.ErrInsufficientData, n, MinBars)
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, p := range prices {
		closes[i] = p.Close
		highs[i] = p.High
		lows[i] = p.Low
		volumes[i] = float64(p.Volume)
	}
	last := n - 1

	snap := &contracts.IndicatorSnapshot{
		Date:  prices[last].Date,
		Close: closes[last],
	}

	// RSI and stochastic RSI.
	rsi := rsiSeries(closes, e.cfg.RSIPeriod)
	snap.RSI14 = round2(sanitize(rsi[last]))
	snap.StochRSI = round2(sanitize(stochRSIAt(rsi, e.cfg.StochRSIPeriod)))

	// MACD.
	fast := emaSeries(closes, e.cfg.MACDFast)
	slow := emaSeries(closes, e.cfg.MACDSlow)
	macd := make([]float64, n)
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signal := emaSeries(macd, e.cfg.MACDSignal)
	hist := make([]float64, n)
	for i := range hist {
		hist[i] = macd[i] - signal[i]
	}
	snap.MACDLine = round2(macd[last])
	snap.MACDSignalLine = round2(signal[last])
	snap.MACDHistogram = round2(hist[last])
	snap.MACDCrossover = crossoverLabel(hist)

	// Moving averages.
	sma50 := rollingMean(closes, e.cfg.SMAShort)
	sma200 := rollingMean(closes, e.cfg.SMALong)
	snap.SMA50 = round2(sanitize(sma50[last]))
	snap.SMA200 = round2(sanitize(sma200[last]))
	if !math.IsNaN(sma200[last]) && closes[last] > sma200[last] {
		snap.PriceVs200DMA = contracts.PriceAbove
	} else {
		snap.PriceVs200DMA = contracts.PriceBelow
	}
	snap.DMACross = maCrossLabel(sma50, sma200)

	// Bollinger bands.
	bbMid := rollingMean(closes, e.cfg.BBPeriod)
	bbStd := rollingStd(closes, e.cfg.BBPeriod)
	upper := bbMid[last] + e.cfg.BBStdDev*bbStd[last]
	lower := bbMid[last] - e.cfg.BBStdDev*bbStd[last]
	snap.BBUpper = round2(sanitize(upper))
	snap.BBMiddle = round2(sanitize(bbMid[last]))
	snap.BBLower = round2(sanitize(lower))
	snap.BBPosition = bandPosition(closes[last], upper, lower)

	// ADX and ATR.
	adx, atr := adxSeries(highs, lows, closes, e.cfg.ADXPeriod)
	snap.ADX = round2(sanitize(adx[last]))
	snap.ADXTrend = adxLabel(adx[last])
	snap.ATR = round2(sanitize(atr[last]))

	// On-balance volume against its own recent mean.
	obv := obvSeries(closes, volumes)
	obvMean := rollingMean(obv, e.cfg.VolumePeriod)
	snap.OBV = obv[last]
	snap.OBVTrend = obvLabel(obv[last], obvMean[last])

	// Volume relative to its recent mean.
	volMean := rollingMean(volumes, e.cfg.VolumePeriod)
	ratio := math.NaN()
	if !math.IsNaN(volMean[last]) && volMean[last] > 0 {
		ratio = volumes[last] / volMean[last]
	}
	snap.VolumeRatio = round2(sanitize(ratio))
	snap.VolumeSignal = volumeLabel(ratio)

	// 52-week range, bounded by the history actually supplied.
	window := e.cfg.YearWindow
	if n < window {
		window = n
	}
	high52 := rollingMax(highs, window)[last]
	low52 := rollingMin(lows, window)[last]
	snap.High52W = round2(sanitize(high52))
	snap.Low52W = round2(sanitize(low52))
	if !math.IsNaN(high52) && high52 != 0 {
		snap.PctFrom52WHigh = round2((closes[last] - high52) / high52 * 100)
	}
	if !math.IsNaN(low52) && low52 != 0 {
		snap.PctFrom52WLow = round2((closes[last] - low52) / low52 * 100)
	}

	return snap, nil
}

// rsiSeries implements Wilder's RSI: the first average is a simple mean
// of the first period deltas, after which gains and losses are smoothed
// as avg = (prev*(period-1) + current) / period. A window with zero
// average loss reads as RSI 100.
func rsiSeries(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if n <= period {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// stochRSIAt is the stochastic oscillator applied to the RSI series,
// evaluated at the final bar. A flat RSI window reads as 50.
func stochRSIAt(rsi []float64, period int) float64 {
	hi := rollingMax(rsi, period)
	lo := rollingMin(rsi, period)
	last := len(rsi) - 1
	if last < 0 || math.IsNaN(hi[last]) || math.IsNaN(lo[last]) {
		return math.NaN()
	}
	if hi[last] == lo[last] {
		return 50
	}
	return (rsi[last] - lo[last]) / (hi[last] - lo[last]) * 100
}

// adxSeries returns the ADX and ATR series. Directional movement uses
// the standard sequential zeroing: when up and down movement compete,
// only the larger survives for the bar.
func adxSeries(highs, lows, closes []float64, period int) (adx, atr []float64) {
	n := len(highs)
	tr := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	if n > 0 {
		tr[0] = highs[0] - lows[0]
	}
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))

		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > 0 {
			plusDM[i] = up
		}
		if down > 0 {
			minusDM[i] = down
		}
		if plusDM[i] < minusDM[i] {
			plusDM[i] = 0
		}
		if minusDM[i] < plusDM[i] {
			minusDM[i] = 0
		}
	}

	atr = rollingMean(tr, period)
	smPlus := rollingMean(plusDM, period)
	smMinus := rollingMean(minusDM, period)

	dx := nanSeries(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) || atr[i] == 0 {
			continue
		}
		pDI := 100 * smPlus[i] / atr[i]
		mDI := 100 * smMinus[i] / atr[i]
		if pDI+mDI == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(pDI-mDI) / (pDI + mDI)
	}

	adx = rollingMean(dx, period)
	return adx, atr
}

// obvSeries is cumulative volume signed by the direction of each close.
func obvSeries(closes, volumes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-1]:
			out[i] = out[i-1] + volumes[i]
		case closes[i] < closes[i-1]:
			out[i] = out[i-1] - volumes[i]
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// crossoverLabel inspects the last two bars of the MACD histogram for a
// sign change.
func crossoverLabel(hist []float64) contracts.Crossover {
	n := len(hist)
	if n < 2 || math.IsNaN(hist[n-1]) || math.IsNaN(hist[n-2]) {
		return contracts.CrossoverNeutral
	}
	switch {
	case hist[n-2] <= 0 && hist[n-1] > 0:
		return contracts.CrossoverBullish
	case hist[n-2] >= 0 && hist[n-1] < 0:
		return contracts.CrossoverBearish
	default:
		return contracts.CrossoverNeutral
	}
}

// maCrossLabel detects a 50/200 crossing on the final bar.
func maCrossLabel(short, long []float64) contracts.MACross {
	n := len(short)
	if n < 2 {
		return contracts.MACrossNone
	}
	s1, s0 := short[n-1], short[n-2]
	l1, l0 := long[n-1], long[n-2]
	if math.IsNaN(s1) || math.IsNaN(s0) || math.IsNaN(l1) || math.IsNaN(l0) {
		return contracts.MACrossNone
	}
	switch {
	case s0 <= l0 && s1 > l1:
		return contracts.MACrossGolden
	case s0 >= l0 && s1 < l1:
		return contracts.MACrossDeath
	default:
		return contracts.MACrossNone
	}
}

func bandPosition(close, upper, lower float64) contracts.BandPosition {
	if math.IsNaN(upper) || math.IsNaN(lower) {
		return contracts.BandMiddle
	}
	switch {
	case close >= upper:
		return contracts.BandUpper
	case close <= lower:
		return contracts.BandLower
	default:
		return contracts.BandMiddle
	}
}

func adxLabel(adx float64) contracts.TrendStrength {
	switch {
	case math.IsNaN(adx):
		return contracts.TrendNone
	case adx > 25:
		return contracts.TrendStrong
	case adx > 20:
		return contracts.TrendWeak
	default:
		return contracts.TrendNone
	}
}

func obvLabel(obv, mean float64) contracts.VolumeTrend {
	if math.IsNaN(mean) {
		return contracts.VolumeFlat
	}
	switch {
	case obv > mean:
		return contracts.VolumeRising
	case obv < mean:
		return contracts.VolumeFalling
	default:
		return contracts.VolumeFlat
	}
}

func volumeLabel(ratio float64) contracts.VolumeLevel {
	switch {
	case math.IsNaN(ratio):
		return contracts.VolumeNormal
	case ratio > 2.0:
		return contracts.VolumeSurge
	case ratio > 1.3:
		return contracts.VolumeHigh
	case ratio < 0.5:
		return contracts.VolumeLow
	default:
		return contracts.VolumeNormal
	}
}

// sanitize maps NaN to zero so snapshots serialize cleanly; callers
// that need availability checks consult the categorical labels instead.
func sanitize(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
