package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/guregu/null/v6"

	ex "stockintel/extensions"
	m "stockintel/models"
)

// CleanBars turns a raw, possibly messy source response into a canonical
// series: rows with missing, non-finite or inconsistent fields are dropped,
// duplicate dates collapse keeping the last-seen row (sources emit
// corrections), and the result is sorted ascending by date. Dropping some
// rows is not an error, the caller just gets a smaller series; dropping all
// of them is ErrValidation.
func CleanBars(raw []m.RawBar) ([]m.Bar, error) {
	valid := ex.FilterMultiple(raw, isValidRaw)

	byDate := make(map[string]m.Bar, len(valid))
	for _, rb := range valid {
		byDate[ex.FmtShort(rb.Date)] = toBar(rb)
	}

	bars := make([]m.Bar, 0, len(byDate))
	for _, bar := range byDate {
		bars = append(bars, bar)
	}

	slices.SortFunc(bars, func(a, b m.Bar) int { return a.Date.Compare(b.Date) })

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %d raw rows, none survived cleaning", ErrValidation, len(raw))
	}

	return bars, nil
}

func isValidRaw(rb m.RawBar) bool {
	if rb.Date.IsZero() {
		return false
	}

	for _, field := range []null.Float{rb.Open, rb.High, rb.Low, rb.Close} {
		if !field.Valid || !isFinitePositive(field.Float64) {
			return false
		}
	}

	if !rb.Volume.Valid || rb.Volume.Int64 < 0 {
		return false
	}

	// low <= open,close <= high
	if rb.Low.Float64 > rb.Open.Float64 || rb.Low.Float64 > rb.Close.Float64 {
		return false
	}
	if rb.High.Float64 < rb.Open.Float64 || rb.High.Float64 < rb.Close.Float64 {
		return false
	}

	return true
}

func isFinitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func toBar(rb m.RawBar) m.Bar {
	return m.Bar{
		Date:   rb.Date,
		Open:   rb.Open.Float64,
		High:   rb.High.Float64,
		Low:    rb.Low.Float64,
		Close:  rb.Close.Float64,
		Volume: rb.Volume.Int64,
	}
}
