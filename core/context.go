package core

import (
	"context"
	"time"

	m "stockintel/models"
	r "stockintel/repos"
)

// BarSource supplies raw daily bars for a symbol over a date range. The one
// network call in the pipeline lives behind this interface.
type BarSource interface {
	GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]m.RawBar, error)
}

type ServiceContext struct {
	PostgresConnection *r.Postgres
	Source             BarSource

	locks symbolLocks
}
