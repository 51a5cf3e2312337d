package repos

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	m "stockintel/models"
	q "stockintel/queries"
)

// GetBars returns the most recent limit bars for a symbol in ascending
// date order.
func (pg *Postgres) GetBars(ctx context.Context, symbol string, limit int) ([]*m.AnnotatedBar, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
		"limit":  limit,
	}

	res, err := Query[m.AnnotatedBar](ctx, pg, q.Get(q.QueryHelper.Select.BarsBySymbolDesc), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query bars by symbol (%s): %w", symbol, err)
	}

	// query is newest-first so the limit grabs the tail; callers want ascending
	slices.Reverse(res)
	return res, nil
}

func (pg *Postgres) GetAllBars(ctx context.Context, symbol string) ([]*m.AnnotatedBar, error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	res, err := Query[m.AnnotatedBar](ctx, pg, q.Get(q.QueryHelper.Select.AllBarsBySymbol), args)
	if err != nil {
		return nil, fmt.Errorf("unable to query all bars by symbol (%s): %w", symbol, err)
	}
	return res, nil
}

// ClearBars drops every stored bar for a symbol.
func (pg *Postgres) ClearBars(ctx context.Context, symbol string, tx *pgx.Tx) (err error) {
	args := pgx.NamedArgs{
		"symbol": symbol,
	}

	query := q.Get(q.QueryHelper.Delete.BarsBySymbol)
	if tx == nil {
		_, err = pg.db.Exec(ctx, query, args)
	} else {
		_, err = (*tx).Exec(ctx, query, args)
	}

	return
}

// UpsertBars writes every annotated bar under its (symbol, date) key,
// inserting new rows and overwriting the derived columns of existing ones.
// The whole batch goes through a single round trip; pass a transaction to
// make the batch atomic with the last_updated bump.
func (pg *Postgres) UpsertBars(ctx context.Context, bars []*m.AnnotatedBar, tx *pgx.Tx) (int64, error) {
	query := q.Get(q.QueryHelper.Insert.UpsertBar)

	batch := &pgx.Batch{}
	for _, bar := range bars {
		batch.Queue(query, pgx.NamedArgs{
			"symbol":           bar.Symbol,
			"date":             bar.Date,
			"open":             bar.Open,
			"high":             bar.High,
			"low":              bar.Low,
			"close":            bar.Close,
			"volume":           bar.Volume,
			"daily_return":     bar.DailyReturn,
			"ma_7":             bar.MA7,
			"week_52_high":     bar.Week52High,
			"week_52_low":      bar.Week52Low,
			"volatility_score": bar.VolatilityScore,
		})
	}

	var br pgx.BatchResults
	if tx == nil {
		br = pg.db.SendBatch(ctx, batch)
	} else {
		br = (*tx).SendBatch(ctx, batch)
	}
	defer br.Close()

	var written int64
	for range bars {
		ct, err := br.Exec()
		if err != nil {
			return written, fmt.Errorf("error upserting bar batch: %w", err)
		}
		written += ct.RowsAffected()
	}

	return written, nil
}
