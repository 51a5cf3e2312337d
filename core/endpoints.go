package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	ex "stockintel/extensions"
	m "stockintel/models"
)

const (
	DefaultAddr = ":8080"

	defaultServedDays = 30
)

type BarsPayload struct {
	Symbol       string            `json:"symbol"`
	DaysReturned int               `json:"days_returned"`
	Data         []*m.AnnotatedBar `json:"data"`
}

type CompaniesPayload struct {
	Companies []*m.Company `json:"companies"`
}

type RefreshAllPayload struct {
	Refreshed int                 `json:"refreshed"`
	Failed    int                 `json:"failed"`
	Summaries []*m.RefreshSummary `json:"summaries"`
}

func GetHttpServer(sc *ServiceContext) *http.Server {
	engine := gin.Default()

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/api", apiInfo)
	engine.GET("/api/ping", func(c *gin.Context) { ping(c, sc) })
	engine.GET("/api/companies", func(c *gin.Context) { getCompanies(c, sc) })
	engine.GET("/api/data/:symbol", func(c *gin.Context) { getData(c, sc) })
	engine.GET("/api/data/:symbol/csv", func(c *gin.Context) { getDataCsv(c, sc) })
	engine.GET("/api/summary/:symbol", func(c *gin.Context) { getSummary(c, sc) })
	engine.POST("/api/refresh/:symbol", func(c *gin.Context) { refresh(c, sc) })
	engine.POST("/api/refresh", func(c *gin.Context) { refreshAll(c, sc) })

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = DefaultAddr
	}

	server := &http.Server{
		Addr:           addr,
		Handler:        engine,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return server
}

func apiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Stock Data Intelligence API",
		"endpoints": gin.H{
			"/api/companies":        "list of all tracked companies",
			"/api/data/:symbol":     "last N days of annotated bars (?days=30)",
			"/api/data/:symbol/csv": "same window as CSV download",
			"/api/summary/:symbol":  "52-week summary statistics",
			"/api/refresh/:symbol":  "POST, re-ingest and recompute the symbol",
			"/api/refresh":          "POST, re-ingest the whole tracked universe",
		},
		"example_symbols": []string{"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS"},
	})
}

func ping(c *gin.Context, sc *ServiceContext) {
	if err := sc.PostgresConnection.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, m.GetServiceResponseError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func getCompanies(c *gin.Context, sc *ServiceContext) {
	companies, err := sc.PostgresConnection.GetAllCompanies(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, m.GetServiceResponseError(err.Error()))
		return
	}

	payload := CompaniesPayload{Companies: companies}
	c.JSON(http.StatusOK, m.GetServiceResponseOk(&payload))
}

func getData(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultServedDays)))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, m.GetServiceResponseError("invalid days parameter"))
		return
	}

	bars, err := sc.loadBars(c.Request.Context(), symbol, days)
	if err != nil {
		c.JSON(statusForError(err), m.GetServiceResponseError(err.Error()))
		return
	}

	payload := BarsPayload{
		Symbol:       symbol,
		DaysReturned: len(bars),
		Data:         bars,
	}
	c.JSON(http.StatusOK, m.GetServiceResponseOk(&payload))
}

func getDataCsv(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(defaultServedDays)))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, m.GetServiceResponseError("invalid days parameter"))
		return
	}

	bars, err := sc.loadBars(c.Request.Context(), symbol, days)
	if err != nil {
		c.JSON(statusForError(err), m.GetServiceResponseError(err.Error()))
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_data.csv", symbol))

	// headers are already out, so a mid-stream failure can only be logged
	if err := writeBarsCsv(c.Writer, bars); err != nil {
		log.Printf("error streaming csv for %s: %v", symbol, err)
	}
}

func writeBarsCsv(out io.Writer, bars []*m.AnnotatedBar) error {
	w := csv.NewWriter(out)
	w.Write([]string{"date", "open", "high", "low", "close", "volume",
		"daily_return", "ma_7", "week_52_high", "week_52_low", "volatility_score"})

	for _, bar := range bars {
		volatility := ""
		if bar.VolatilityScore.Valid {
			volatility = strconv.FormatFloat(bar.VolatilityScore.Float64, 'f', -1, 64)
		}
		w.Write([]string{
			ex.FmtShort(bar.Date),
			strconv.FormatFloat(bar.Open, 'f', -1, 64),
			strconv.FormatFloat(bar.High, 'f', -1, 64),
			strconv.FormatFloat(bar.Low, 'f', -1, 64),
			strconv.FormatFloat(bar.Close, 'f', -1, 64),
			strconv.FormatInt(bar.Volume, 10),
			strconv.FormatFloat(bar.DailyReturn, 'f', -1, 64),
			strconv.FormatFloat(bar.MA7, 'f', -1, 64),
			strconv.FormatFloat(bar.Week52High, 'f', -1, 64),
			strconv.FormatFloat(bar.Week52Low, 'f', -1, 64),
			volatility,
		})
	}

	w.Flush()
	return w.Error()
}

func getSummary(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")
	ctx := c.Request.Context()

	bars, err := sc.PostgresConnection.GetAllBars(ctx, symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, m.GetServiceResponseError(err.Error()))
		return
	}

	if len(bars) == 0 {
		if _, err := sc.RefreshSymbol(ctx, symbol); err != nil {
			c.JSON(statusForError(err), m.GetServiceResponseError(err.Error()))
			return
		}
		if bars, err = sc.PostgresConnection.GetAllBars(ctx, symbol); err != nil {
			c.JSON(http.StatusInternalServerError, m.GetServiceResponseError(err.Error()))
			return
		}
	}

	summary := BuildSummary(symbol, bars)
	if summary == nil {
		c.JSON(http.StatusNotFound, m.GetServiceResponseError(fmt.Sprintf("no data found for symbol %s", symbol)))
		return
	}

	c.JSON(http.StatusOK, m.GetServiceResponseOk(summary))
}

func refresh(c *gin.Context, sc *ServiceContext) {
	symbol := c.Param("symbol")

	summary, err := sc.RefreshSymbol(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(statusForError(err), m.GetServiceResponseError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, m.GetServiceResponseOk(summary))
}

func refreshAll(c *gin.Context, sc *ServiceContext) {
	summaries := sc.RefreshUniverse(c.Request.Context())

	payload := RefreshAllPayload{
		Refreshed: len(summaries),
		Failed:    len(Universe) - len(summaries),
		Summaries: summaries,
	}
	c.JSON(http.StatusOK, m.GetServiceResponseOk(&payload))
}

// loadBars serves the stored series, running a refresh inline the first time
// a known-but-empty symbol is requested.
func (sc *ServiceContext) loadBars(ctx context.Context, symbol string, days int) ([]*m.AnnotatedBar, error) {
	bars, err := sc.PostgresConnection.GetBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		if _, err := sc.RefreshSymbol(ctx, symbol); err != nil {
			return nil, err
		}
		if bars, err = sc.PostgresConnection.GetBars(ctx, symbol, days); err != nil {
			return nil, err
		}
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}

	return bars, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, ErrSource):
		return http.StatusBadGateway
	case errors.Is(err, ErrValidation):
		return http.StatusBadGateway
	case errors.Is(err, ErrInvariantViolation):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
