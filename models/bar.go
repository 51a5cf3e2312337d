package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// RawBar is one reported trading day exactly as the source feed handed it
// over. The feed pads its arrays with JSON nulls for halted sessions, so
// every numeric field is nullable here. RawBars only live long enough to be
// cleaned into Bars.
type RawBar struct {
	Date   time.Time
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Int
}

// Bar is a validated trading day: all fields present and finite,
// low <= open,close <= high, volume >= 0. A cleaned series is sorted
// ascending by date with no duplicate dates.
type Bar struct {
	Date   time.Time `db:"date" json:"date"`
	Open   float64   `db:"open" json:"open"`
	High   float64   `db:"high" json:"high"`
	Low    float64   `db:"low" json:"low"`
	Close  float64   `db:"close" json:"close"`
	Volume int64     `db:"volume" json:"volume"`
}

// AnnotatedBar is a Bar plus the derived metric columns. VolatilityScore is
// null on the first bar of a series, where a sample standard deviation does
// not exist yet.
type AnnotatedBar struct {
	Symbol string `db:"symbol" json:"symbol"`
	Bar
	DailyReturn     float64    `db:"daily_return" json:"daily_return"`
	MA7             float64    `db:"ma_7" json:"ma_7"`
	Week52High      float64    `db:"week_52_high" json:"week_52_high"`
	Week52Low       float64    `db:"week_52_low" json:"week_52_low"`
	VolatilityScore null.Float `db:"volatility_score" json:"volatility_score"`
}
