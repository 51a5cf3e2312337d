package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	c "stockintel/api"
	m "stockintel/models"
)

// public
const (
	HostDefault = "query1.finance.yahoo.com"
)

// private
const (
	defaultTimeout = time.Second * 10
	chartPath      = "v8/finance/chart"
)

// ErrSymbolNotFound means the feed does not know the symbol at all, as
// opposed to a transient transport or provider failure.
var ErrSymbolNotFound = errors.New("symbol not found on chart feed")

type ChartClient struct {
	*c.Client
}

func GetClient() ChartClient {
	return ChartClient{
		c.ClientFactory(HostDefault, defaultTimeout),
	}
}

// wire shapes for the v8 chart endpoint. The quote arrays are padded with
// JSON nulls for sessions with no trade, hence the null types.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []chartQuote `json:"quote"`
	} `json:"indicators"`
}

type chartQuote struct {
	Open   []null.Float `json:"open"`
	High   []null.Float `json:"high"`
	Low    []null.Float `json:"low"`
	Close  []null.Float `json:"close"`
	Volume []null.Int   `json:"volume"`
}

// GetDailyBars fetches the daily OHLCV history for a symbol over [start, end].
// Rows come back raw and unordered; cleaning is the pipeline's job, not ours.
func (cc *ChartClient) GetDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]m.RawBar, error) {
	endpoint := cc.buildRequestPath(symbol, start, end)

	response, err := cc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error requesting chart data for %s: %w", symbol, err)
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart feed returned status %d for %s", response.StatusCode, symbol)
	}

	return parseChartBody(response.Body, symbol)
}

func (cc *ChartClient) buildRequestPath(symbol string, start, end time.Time) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = fmt.Sprintf("%s/%s", chartPath, symbol)

	query := endpoint.Query()
	query.Set("interval", "1d")
	query.Set("events", "history")
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	endpoint.RawQuery = query.Encode()

	return endpoint
}

func parseChartBody(reader io.Reader, symbol string) ([]m.RawBar, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var parsed chartResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling chart response: %w", err)
	}

	if parsed.Chart.Error != nil {
		if parsed.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrSymbolNotFound, symbol, parsed.Chart.Error.Description)
		}
		return nil, fmt.Errorf("chart feed error for %s: %s: %s", symbol, parsed.Chart.Error.Code, parsed.Chart.Error.Description)
	}

	if len(parsed.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	result := parsed.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return []m.RawBar{}, nil
	}

	location := getTimeZone(result.Meta.ExchangeTimezoneName)
	quote := result.Indicators.Quote[0]

	bars := make([]m.RawBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		bars = append(bars, m.RawBar{
			Date:   toCalendarDate(ts, location),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  at(quote.Close, i),
			Volume: at(quote.Volume, i),
		})
	}

	return bars, nil
}

// at indexes a quote array defensively, the feed occasionally ships arrays
// shorter than the timestamp list
func at[T any](values []T, i int) (res T) {
	if i < len(values) {
		return values[i]
	}
	return
}

// toCalendarDate converts an epoch timestamp to a UTC midnight calendar date
// in the exchange's local day.
func toCalendarDate(ts int64, location *time.Location) time.Time {
	local := time.Unix(ts, 0).In(location)
	year, month, day := local.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func getTimeZone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}

	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("time zone %s is not recognized, falling back to UTC", name)
		return time.UTC
	}

	return location
}
