package core

import (
	"gonum.org/v1/gonum/stat"

	m "stockintel/models"
)

// BuildSummary derives the point-in-time projection from an annotated
// series. It is a read-side aggregation, recomputed on demand rather than
// maintained as separate state. High, low, average close and total days
// cover the trailing 252-bar window; average volume and average daily return
// cover the whole series; the volatility score is carried over from the
// latest bar, nulls included. Returns nil for an empty series.
func BuildSummary(symbol string, bars []*m.AnnotatedBar) *m.Summary {
	if len(bars) == 0 {
		return nil
	}

	window := bars
	if len(window) > Week52Window {
		window = window[len(window)-Week52Window:]
	}

	closes := make([]float64, len(window))
	high, low := window[0].High, window[0].Low
	for i, bar := range window {
		closes[i] = bar.Close
		if bar.High > high {
			high = bar.High
		}
		if bar.Low < low {
			low = bar.Low
		}
	}

	volumes := make([]float64, len(bars))
	returns := make([]float64, len(bars))
	for i, bar := range bars {
		volumes[i] = float64(bar.Volume)
		returns[i] = bar.DailyReturn
	}

	last := bars[len(bars)-1]

	return &m.Summary{
		Symbol:                symbol,
		Week52High:            high,
		Week52Low:             low,
		AvgClose:              stat.Mean(closes, nil),
		CurrentPrice:          last.Close,
		AvgDailyReturnPercent: stat.Mean(returns, nil) * 100,
		VolatilityScore:       last.VolatilityScore,
		AvgVolume:             stat.Mean(volumes, nil),
		TotalDays:             len(window),
	}
}
