package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/guregu/null/v6"
	"github.com/joho/godotenv"

	"stockintel/api/yahoo"
	ex "stockintel/extensions"
	m "stockintel/models"
	r "stockintel/repos"
)

type fakeSource struct {
	bars []m.RawBar
	err  error
}

func (f *fakeSource) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]m.RawBar, error) {
	return f.bars, f.err
}

func getServiceContext(t *testing.T, ctx context.Context, source BarSource) *ServiceContext {
	t.Helper()

	godotenv.Load("../.env")
	connectionString := os.Getenv("DATABASE_URL")
	if connectionString == "" {
		t.Skip("DATABASE_URL not set, skipping database tests")
	}

	pg, err := r.GetPostgresConnection(ctx, connectionString)
	if err != nil {
		t.Fatalf("error getting postgres connection: %s", err)
	}

	if err := pg.InitSchema(ctx); err != nil {
		t.Fatalf("error initializing schema: %s", err)
	}

	t.Cleanup(func() {
		pg.Close()
	})

	return &ServiceContext{
		PostgresConnection: pg,
		Source:             source,
	}
}

func toRawBars(bars []m.Bar) []m.RawBar {
	raw := make([]m.RawBar, len(bars))
	for i, bar := range bars {
		raw[i] = m.RawBar{
			Date:   bar.Date,
			Open:   null.FloatFrom(bar.Open),
			High:   null.FloatFrom(bar.High),
			Low:    null.FloatFrom(bar.Low),
			Close:  null.FloatFrom(bar.Close),
			Volume: null.IntFrom(bar.Volume),
		}
	}
	return raw
}

func Test_RefreshSymbol_IsIdempotent(t *testing.T) {
	symbol := "_TEST.PIPE"
	ctx := context.Background()

	source := &fakeSource{bars: toRawBars(makeBars(40))}
	sc := getServiceContext(t, ctx, source)
	t.Cleanup(func() {
		if err := sc.PostgresConnection.ClearBars(ctx, symbol, nil); err != nil {
			t.Errorf("cleanup bars failed: %s", err)
		}
	})

	first, err := sc.RefreshSymbol(ctx, symbol)
	if err != nil {
		t.Fatalf("error on first refresh: %s", err)
	}
	ex.AssertAreEqual(t, "rows fetched", 40, first.RowsFetched)
	ex.AssertAreEqual(t, "rows cleaned", 40, first.RowsCleaned)
	ex.AssertAreEqual(t, "rows written", int64(40), first.RowsWritten)

	storedOnce, err := sc.PostgresConnection.GetAllBars(ctx, symbol)
	if err != nil {
		t.Fatalf("error reading stored bars: %s", err)
	}

	// identical source data, refreshed again: same row set, no duplication
	second, err := sc.RefreshSymbol(ctx, symbol)
	if err != nil {
		t.Fatalf("error on second refresh: %s", err)
	}
	ex.AssertAreEqual(t, "rows written again", int64(40), second.RowsWritten)

	storedTwice, err := sc.PostgresConnection.GetAllBars(ctx, symbol)
	if err != nil {
		t.Fatalf("error re-reading stored bars: %s", err)
	}

	ex.AssertAreEqual(t, "stored row count", len(storedOnce), len(storedTwice))
	for i := range storedOnce {
		ex.AssertAreEqual(t, fmt.Sprintf("row %d", i), *storedOnce[i], *storedTwice[i])
	}

	company, err := sc.PostgresConnection.GetCompanyBySymbol(ctx, symbol)
	if err != nil {
		t.Fatalf("error reading company: %s", err)
	}
	ex.AssertAreEqual(t, "last updated set", true, company.LastUpdated.Valid)
}

// selectiveSource fails one symbol and serves the same series to the rest.
type selectiveSource struct {
	bars []m.RawBar
	fail string
}

func (s *selectiveSource) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]m.RawBar, error) {
	if symbol == s.fail {
		return nil, fmt.Errorf("connection reset by peer")
	}
	return s.bars, nil
}

func Test_RefreshUniverse_RefreshesEverySeededSymbol(t *testing.T) {
	ctx := context.Background()

	source := &selectiveSource{bars: toRawBars(makeBars(10)), fail: Universe[0].Symbol}
	sc := getServiceContext(t, ctx, source)
	t.Cleanup(func() {
		for _, company := range Universe {
			if err := sc.PostgresConnection.ClearBars(ctx, company.Symbol, nil); err != nil {
				t.Errorf("cleanup bars failed for %s: %s", company.Symbol, err)
			}
		}
	})

	if err := sc.SeedUniverse(ctx); err != nil {
		t.Fatalf("error seeding universe: %s", err)
	}
	for _, company := range Universe {
		if err := sc.PostgresConnection.ClearBars(ctx, company.Symbol, nil); err != nil {
			t.Fatalf("error clearing bars for %s: %s", company.Symbol, err)
		}
	}

	summaries := sc.RefreshUniverse(ctx)

	// one symbol fails, its siblings must still land
	ex.AssertAreEqual(t, "successful refreshes", len(Universe)-1, len(summaries))
	for _, summary := range summaries {
		if summary.Symbol == Universe[0].Symbol {
			t.Fatalf("failed symbol %s must not report a summary", summary.Symbol)
		}
		ex.AssertAreEqual(t, summary.Symbol+" rows written", int64(10), summary.RowsWritten)
	}

	for _, company := range Universe[1:] {
		bars, err := sc.PostgresConnection.GetAllBars(ctx, company.Symbol)
		if err != nil {
			t.Fatalf("error reading bars for %s: %s", company.Symbol, err)
		}
		ex.AssertAreEqual(t, company.Symbol+" stored rows", 10, len(bars))
	}

	failed, err := sc.PostgresConnection.GetAllBars(ctx, Universe[0].Symbol)
	if err != nil {
		t.Fatalf("error reading bars for the failed symbol: %s", err)
	}
	ex.AssertAreEqual(t, "failed symbol stored rows", 0, len(failed))
}

func Test_RefreshSymbol_MapsSourceFailures(t *testing.T) {
	ctx := context.Background()

	notFound := &fakeSource{err: fmt.Errorf("%w: _TEST.PIPE", yahoo.ErrSymbolNotFound)}
	sc := getServiceContext(t, ctx, notFound)

	if _, err := sc.RefreshSymbol(ctx, "_TEST.PIPE"); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for an unknown symbol, got %v", err)
	}

	sc.Source = &fakeSource{err: fmt.Errorf("connection reset by peer")}
	if _, err := sc.RefreshSymbol(ctx, "_TEST.PIPE"); !errors.Is(err, ErrSource) {
		t.Fatalf("expected ErrSource for a transport failure, got %v", err)
	}

	sc.Source = &fakeSource{bars: []m.RawBar{}}
	if _, err := sc.RefreshSymbol(ctx, "_TEST.PIPE"); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for an empty response, got %v", err)
	}

	// a response where nothing survives cleaning is a validation failure,
	// and nothing may be written
	bad := makeBars(3)
	raw := toRawBars(bad)
	for i := range raw {
		raw[i].Volume = null.IntFrom(-1)
	}
	sc.Source = &fakeSource{bars: raw}
	if _, err := sc.RefreshSymbol(ctx, "_TEST.PIPE"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation when every row is rejected, got %v", err)
	}

	stored, err := sc.PostgresConnection.GetAllBars(ctx, "_TEST.PIPE")
	if err != nil {
		t.Fatalf("error reading stored bars: %s", err)
	}
	ex.AssertAreEqual(t, "stored rows after failed refreshes", 0, len(stored))
}
