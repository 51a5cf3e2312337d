package core

import (
	"fmt"
	"math"

	"github.com/guregu/null/v6"

	ex "stockintel/extensions"
	m "stockintel/models"
)

const (
	MAWindow           = 7
	VolatilityWindow   = 20
	Week52Window       = 252
	TradingDaysPerYear = 252
)

// Annotate is the metrics engine: a single left-to-right pass over a
// canonical series that adds daily return, the trailing 7-bar close mean,
// trailing 252-bar high/low and the annualized 20-bar volatility score.
// Windows shrink at the start of the series; the volatility score is null on
// the first bar, where a sample standard deviation does not exist.
//
// Field-level validity is the cleaning stage's contract. Structural breaks
// (unsorted or duplicate dates, zero open) mean that contract was violated
// upstream, so the engine aborts instead of producing wrong metrics.
func Annotate(symbol string, bars []m.Bar) ([]*m.AnnotatedBar, error) {
	for i, bar := range bars {
		if i > 0 && !bars[i-1].Date.Before(bar.Date) {
			return nil, fmt.Errorf("%w: series not strictly ascending at %s", ErrInvariantViolation, ex.FmtShort(bar.Date))
		}
		if bar.Open == 0 {
			return nil, fmt.Errorf("%w: zero open on %s escaped validation", ErrInvariantViolation, ex.FmtShort(bar.Date))
		}
	}

	annotated := make([]*m.AnnotatedBar, len(bars))

	var closeSum float64
	var returnSum, returnSumSq float64
	var highIdx, lowIdx []int // monotonic index deques over the extrema window

	for i, bar := range bars {
		dailyReturn := (bar.Close - bar.Open) / bar.Open

		// trailing 7-bar close mean with a running sum
		closeSum += bar.Close
		if i >= MAWindow {
			closeSum -= bars[i-MAWindow].Close
		}
		ma7 := closeSum / float64(min(i+1, MAWindow))

		// trailing 252-bar extrema via monotonic deques, O(1) amortized
		cutoff := i - Week52Window + 1
		for len(highIdx) > 0 && highIdx[0] < cutoff {
			highIdx = highIdx[1:]
		}
		for len(lowIdx) > 0 && lowIdx[0] < cutoff {
			lowIdx = lowIdx[1:]
		}
		for len(highIdx) > 0 && bars[highIdx[len(highIdx)-1]].High <= bar.High {
			highIdx = highIdx[:len(highIdx)-1]
		}
		highIdx = append(highIdx, i)
		for len(lowIdx) > 0 && bars[lowIdx[len(lowIdx)-1]].Low >= bar.Low {
			lowIdx = lowIdx[:len(lowIdx)-1]
		}
		lowIdx = append(lowIdx, i)

		// trailing 20-bar return stddev from incremental sum and sum of squares
		returnSum += dailyReturn
		returnSumSq += dailyReturn * dailyReturn
		if i >= VolatilityWindow {
			leaving := annotated[i-VolatilityWindow].DailyReturn
			returnSum -= leaving
			returnSumSq -= leaving * leaving
		}

		var volatility null.Float
		if n := min(i+1, VolatilityWindow); n >= 2 {
			variance := (returnSumSq - returnSum*returnSum/float64(n)) / float64(n-1)
			if variance < 0 {
				variance = 0 // float cancellation can push a near-zero variance negative
			}
			volatility = null.FloatFrom(math.Sqrt(variance) * math.Sqrt(TradingDaysPerYear) * 100)
		}

		annotated[i] = &m.AnnotatedBar{
			Symbol:          symbol,
			Bar:             bar,
			DailyReturn:     dailyReturn,
			MA7:             ma7,
			Week52High:      bars[highIdx[0]].High,
			Week52Low:       bars[lowIdx[0]].Low,
			VolatilityScore: volatility,
		}
	}

	return annotated, nil
}
