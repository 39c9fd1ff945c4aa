package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stock-predictor/src/export"
	"stock-predictor/src/helpers"
	"stock-predictor/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getIndex(c *gin.Context) {
	horizon, err := parseHorizon(c)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.Dashboard.Render(c.Request.Context(), c.Query("ticker"), horizon)
	if err != nil {
		if helpers.IsValidation(err) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		s.Errors.Handle(err, "render "+c.Query("ticker"))
		c.String(http.StatusInternalServerError, "Internal Server Error: %v", err)
		return
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, newPageData(s.Dashboard.Tickers(), view)); err != nil {
		s.Errors.Handle(err, "template")
		c.String(http.StatusInternalServerError, "Internal Server Error: %v", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getTickers(c *gin.Context) {
	tickers := s.Dashboard.Tickers()
	c.JSON(http.StatusOK, gin.H{
		"tickers": tickers,
		"default": tickers[0],
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHistory(c *gin.Context) {
	result, err := s.Dashboard.Fetch(c.Request.Context(), c.Query("ticker"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if result.Failed {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result.Series)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getForecast(c *gin.Context) {
	horizon, err := parseHorizon(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	result, err := s.Dashboard.Run(c.Request.Context(), c.Query("ticker"), horizon)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if result.Failed {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// -----------------------------------------------------------------------------

// getExport is the download button of the raw table.
func (s *DashboardServer) getExport(c *gin.Context) {
	exporter := export.NewExporter(c.Query("format"))
	if exporter == nil {
		s.writeError(c, helpers.NewValidationError("unsupported format %q, use one of %v", c.Query("format"), export.Formats()))
		return
	}

	result, err := s.Dashboard.Fetch(c.Request.Context(), c.Query("ticker"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if result.Failed {
		c.JSON(http.StatusBadGateway, result)
		return
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, result.Series); err != nil {
		s.writeError(c, fmt.Errorf("export %s: %w", result.Ticker, err))
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", result.Ticker, time.Now().Format("20060102"), exporter.Extension())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"connections":    s.Connections(),
		"errors":         s.Errors.ErrorCount(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
	})
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// writeError maps validation problems to 400 and everything else to 500.
func (s *DashboardServer) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if helpers.IsValidation(err) {
		status = http.StatusBadRequest
	} else {
		s.Errors.Handle(err, c.Request.URL.Path)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseHorizon reads ?horizon=, 0 when absent.
func parseHorizon(c *gin.Context) (int, error) {
	raw := c.Query("horizon")
	if raw == "" {
		return 0, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil {
		return 0, helpers.NewValidationError("horizon must be an integer, got %q", raw)
	}
	return h, nil
}

// -----------------------------------------------------------------------------

type tableRow struct {
	Date      string
	Open      string
	High      string
	Low       string
	Close     string
	Volume    int64
	Dividends string
	Splits    string
}

type pageData struct {
	Tickers       []string
	Selected      string
	Horizon       int
	Failed        bool
	Message       string
	Rows          []tableRow
	PriceChart    string
	ForecastChart string
}

func newPageData(tickers []string, view *models.MDashboardView) pageData {
	r := view.Result
	data := pageData{
		Tickers:  tickers,
		Selected: r.Ticker,
		Horizon:  r.Horizon,
		Failed:   r.Failed,
		Message:  r.Message,
	}
	if r.Failed {
		return data
	}

	data.PriceChart = string(view.PriceChart)
	data.ForecastChart = string(view.ForecastChart)
	data.Rows = make([]tableRow, 0, r.Series.Len())
	for _, b := range r.Series.Bars {
		data.Rows = append(data.Rows, tableRow{
			Date:      b.Date.Format("2006-01-02 15:04:05"),
			Open:      strconv.FormatFloat(b.Open, 'f', 6, 64),
			High:      strconv.FormatFloat(b.High, 'f', 6, 64),
			Low:       strconv.FormatFloat(b.Low, 'f', 6, 64),
			Close:     strconv.FormatFloat(b.Close, 'f', 6, 64),
			Volume:    b.Volume,
			Dividends: strconv.FormatFloat(b.Dividends, 'f', -1, 64),
			Splits:    strconv.FormatFloat(b.StockSplits, 'f', -1, 64),
		})
	}
	return data
}
