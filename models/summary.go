package models

import "github.com/guregu/null/v6"

// Summary is the point-in-time projection over a symbol's stored series.
// High, low and average close cover the trailing 252-bar window; average
// volume and average daily return cover the whole stored series; the
// volatility score is the latest bar's value and stays null while the series
// is too short for one.
type Summary struct {
	Symbol                string     `json:"symbol"`
	Week52High            float64    `json:"52_week_high"`
	Week52Low             float64    `json:"52_week_low"`
	AvgClose              float64    `json:"avg_close"`
	CurrentPrice          float64    `json:"current_price"`
	AvgDailyReturnPercent float64    `json:"avg_daily_return_percent"`
	VolatilityScore       null.Float `json:"volatility_score"`
	AvgVolume             float64    `json:"avg_volume"`
	TotalDays             int        `json:"total_days"`
}
