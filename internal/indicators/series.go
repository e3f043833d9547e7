package indicators

import "math"

// Rolling-window helpers over chronological series. Warm-up positions
// (where a full window is not yet available) are NaN, and a NaN inside
// a window propagates to the result, so downstream label logic can
// treat NaN uniformly as "not yet available".

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func rollingMean(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}

	for i := window - 1; i < len(vals); i++ {
		sum := 0.0
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			sum += vals[j]
		}
		if ok {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// rollingStd is the sample standard deviation (n-1 divisor).
func rollingStd(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window < 2 || len(vals) < window {
		return out
	}

	means := rollingMean(vals, window)
	for i := window - 1; i < len(vals); i++ {
		if math.IsNaN(means[i]) {
			continue
		}
		sumSq := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := vals[j] - means[i]
			sumSq += d * d
		}
		out[i] = math.Sqrt(sumSq / float64(window-1))
	}
	return out
}

func rollingMax(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}

	for i := window - 1; i < len(vals); i++ {
		max := math.Inf(-1)
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			if vals[j] > max {
				max = vals[j]
			}
		}
		if ok {
			out[i] = max
		}
	}
	return out
}

func rollingMin(vals []float64, window int) []float64 {
	out := nanSeries(len(vals))
	if window <= 0 || len(vals) < window {
		return out
	}

	for i := window - 1; i < len(vals); i++ {
		min := math.Inf(1)
		ok := true
		for j := i - window + 1; j <= i; j++ {
			if math.IsNaN(vals[j]) {
				ok = false
				break
			}
			if vals[j] < min {
				min = vals[j]
			}
		}
		if ok {
			out[i] = min
		}
	}
	return out
}

// emaSeries is the recursive exponential moving average seeded from the
// first value, alpha = 2/(span+1). Sequential by construction: each
// element depends on the previous one.
func emaSeries(vals []float64, span int) []float64 {
	out := nanSeries(len(vals))
	if len(vals) == 0 || span <= 0 {
		return out
	}

	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
