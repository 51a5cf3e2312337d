package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"stockintel/api/yahoo"
	m "stockintel/models"
)

const (
	// lookbackCalendarDays covers a year of trading days plus enough buffer
	// for the trailing windows to be warm before the served window starts.
	lookbackCalendarDays = 400

	maxConcurrentRefreshes = 4
)

// RefreshSymbol runs the full pipeline for one symbol: fetch raw bars, clean
// them into a canonical series, annotate with metrics, and upsert the whole
// batch plus the last_updated bump in one transaction. Refreshes of the same
// symbol are serialized; distinct symbols can run concurrently.
func (sc *ServiceContext) RefreshSymbol(ctx context.Context, symbol string) (*m.RefreshSummary, error) {
	lock := sc.locks.get(symbol)
	lock.Lock()
	defer lock.Unlock()

	company, err := sc.PostgresConnection.GetCompanyBySymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("error loading company %s: %w", symbol, err)
	}

	if company == nil {
		log.Printf("adding new symbol to db: %s", symbol)
		company = &m.Company{Symbol: symbol, DisplayName: symbol}
		if err := sc.PostgresConnection.InsertCompany(ctx, company, nil); err != nil {
			return nil, fmt.Errorf("error adding %s to db: %w", symbol, err)
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -lookbackCalendarDays)

	raw, err := sc.Source.GetDailyBars(ctx, symbol, start, end)
	if err != nil {
		if errors.Is(err, yahoo.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: source returned no rows for %s", ErrDataUnavailable, symbol)
	}

	bars, err := CleanBars(raw)
	if err != nil {
		return nil, err
	}

	annotated, err := Annotate(symbol, bars)
	if err != nil {
		return nil, err
	}

	lastUpdated := time.Now()

	tx, err := sc.PostgresConnection.GetTransaction(ctx)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	written, err := sc.PostgresConnection.UpsertBars(ctx, annotated, &tx)
	if err != nil {
		return nil, fmt.Errorf("error upserting bars for %s: %w", symbol, err)
	}

	if err := sc.PostgresConnection.UpdateLastUpdated(ctx, symbol, lastUpdated, &tx); err != nil {
		return nil, fmt.Errorf("error updating last_updated for %s: %w", symbol, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("error committing refresh for %s: %w", symbol, err)
	}

	log.Printf("symbol %s fetched %d raw rows, kept %d after cleaning, wrote %d", symbol, len(raw), len(bars), written)

	return &m.RefreshSummary{
		Symbol:      symbol,
		RowsFetched: len(raw),
		RowsCleaned: len(bars),
		RowsWritten: written,
		LastUpdated: lastUpdated,
	}, nil
}

// RefreshUniverse refreshes every seeded symbol with bounded concurrency and
// returns the summaries of the refreshes that succeeded. A failed symbol is
// logged and skipped, it must not cancel its siblings.
func (sc *ServiceContext) RefreshUniverse(ctx context.Context) []*m.RefreshSummary {
	var mu sync.Mutex
	summaries := make([]*m.RefreshSummary, 0, len(Universe))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentRefreshes)

	for _, company := range Universe {
		g.Go(func() error {
			summary, err := sc.RefreshSymbol(ctx, company.Symbol)
			if err != nil {
				log.Printf("refresh failed for %s: %v", company.Symbol, err)
				return nil
			}

			mu.Lock()
			summaries = append(summaries, summary)
			mu.Unlock()
			return nil
		})
	}

	g.Wait()
	return summaries
}
