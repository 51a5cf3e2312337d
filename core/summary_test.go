package core

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	ex "stockintel/extensions"
)

func Test_BuildSummary_EmptySeriesIsNil(t *testing.T) {
	ex.AssertNillability(t, "summary", true, BuildSummary("TEST.NS", nil))
}

func Test_BuildSummary_ShortSeries(t *testing.T) {
	bars := makeBars(30)

	annotated, err := Annotate("TEST.NS", bars)
	if err != nil {
		t.Fatalf("error annotating series: %s", err)
	}

	summary := BuildSummary("TEST.NS", annotated)
	ex.AssertNillability(t, "summary", false, summary)

	ex.AssertAreEqual(t, "symbol", "TEST.NS", summary.Symbol)
	ex.AssertAreEqual(t, "total days", 30, summary.TotalDays)
	assertClose(t, "current price", bars[len(bars)-1].Close, summary.CurrentPrice)

	// whole series fits inside the 252-bar window
	high, low := bars[0].High, bars[0].Low
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		high = math.Max(high, bar.High)
		low = math.Min(low, bar.Low)
		closes[i] = bar.Close
	}
	assertClose(t, "52w high", high, summary.Week52High)
	assertClose(t, "52w low", low, summary.Week52Low)
	assertClose(t, "avg close", stat.Mean(closes, nil), summary.AvgClose)

	last := annotated[len(annotated)-1]
	ex.AssertAreEqual(t, "volatility validity", true, summary.VolatilityScore.Valid)
	assertClose(t, "volatility", last.VolatilityScore.Float64, summary.VolatilityScore.Float64)
}

// A single-bar series has no volatility score yet, and the summary must say
// so rather than reporting a zero.
func Test_BuildSummary_SingleBarHasNullVolatility(t *testing.T) {
	annotated, err := Annotate("TEST.NS", makeBars(1))
	if err != nil {
		t.Fatalf("error annotating series: %s", err)
	}

	summary := BuildSummary("TEST.NS", annotated)
	ex.AssertNillability(t, "summary", false, summary)
	ex.AssertAreEqual(t, "total days", 1, summary.TotalDays)
	if summary.VolatilityScore.Valid {
		t.Fatalf("expected null volatility for a single bar series, got %v", summary.VolatilityScore.Float64)
	}
}

func Test_BuildSummary_LongSeriesUsesTrailingWindow(t *testing.T) {
	bars := makeBars(300)

	annotated, err := Annotate("TEST.NS", bars)
	if err != nil {
		t.Fatalf("error annotating series: %s", err)
	}

	summary := BuildSummary("TEST.NS", annotated)
	ex.AssertNillability(t, "summary", false, summary)
	ex.AssertAreEqual(t, "total days", Week52Window, summary.TotalDays)

	// high/low/avg close come from the trailing 252 bars only
	window := bars[len(bars)-Week52Window:]
	high, low := window[0].High, window[0].Low
	closes := make([]float64, len(window))
	for i, bar := range window {
		high = math.Max(high, bar.High)
		low = math.Min(low, bar.Low)
		closes[i] = bar.Close
	}
	assertClose(t, "52w high", high, summary.Week52High)
	assertClose(t, "52w low", low, summary.Week52Low)
	assertClose(t, "avg close", stat.Mean(closes, nil), summary.AvgClose)

	// volume and return averages cover the whole stored series
	volumes := make([]float64, len(annotated))
	returns := make([]float64, len(annotated))
	for i, bar := range annotated {
		volumes[i] = float64(bar.Volume)
		returns[i] = bar.DailyReturn
	}
	assertClose(t, "avg volume", stat.Mean(volumes, nil), summary.AvgVolume)
	assertClose(t, "avg daily return percent", stat.Mean(returns, nil)*100, summary.AvgDailyReturnPercent)
}
