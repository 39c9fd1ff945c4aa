// Package chart renders price and forecast tables as standalone interactive
// HTML documents.
package chart

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"stock-predictor/src/logger"
	"stock-predictor/src/models"
)

const axisDateLayout = "2006-01-02"

type Renderer struct {
	Config models.MChartConfig
	Logger *logger.Logger
}

func NewRenderer(cfg *models.MConfig) *Renderer {
	r := &Renderer{Logger: logger.NewLogger(cfg, "ChartRenderer")}
	if cfg != nil {
		r.Config = cfg.Chart
	}
	return r
}

// -----------------------------------------------------------------------------

// PriceChart draws the open and close columns over time.
func (r *Renderer) PriceChart(series *models.MPriceSeries, ticker string) ([]byte, error) {
	opens := make([]opts.LineData, 0, series.Len())
	closes := make([]opts.LineData, 0, series.Len())
	if series != nil {
		for _, b := range series.Bars {
			opens = append(opens, point(b.Date.Format(axisDateLayout), b.Open))
			closes = append(closes, point(b.Date.Format(axisDateLayout), b.Close))
		}
	}

	line := r.newLine(fmt.Sprintf("Stock Price Chart for %s", ticker))
	line.AddSeries("Stock Open", opens).
		AddSeries("Stock Close", closes)

	return r.render(line)
}

// -----------------------------------------------------------------------------

// ForecastChart draws predicted close over history and horizon against the
// observed close.
func (r *Renderer) ForecastChart(frame []models.MFrameRow, table *models.MForecastTable, ticker string) ([]byte, error) {
	predicted := make([]opts.LineData, 0, table.Len())
	if table != nil {
		for _, p := range table.Points {
			predicted = append(predicted, point(p.Date.Format(axisDateLayout), p.YHat))
		}
	}
	actual := make([]opts.LineData, 0, len(frame))
	for _, row := range frame {
		actual = append(actual, point(row.DS.Format(axisDateLayout), row.Y))
	}

	line := r.newLine(fmt.Sprintf("Stock Price Prediction for %s", ticker))
	line.AddSeries("Predicted Close Price", predicted).
		AddSeries("Actual Close Price", actual)

	return r.render(line)
}

// -----------------------------------------------------------------------------

func (r *Renderer) newLine(title string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  title,
			Width:      r.Config.Width,
			Height:     r.Config.Height,
			AssetsHost: r.Config.AssetsHost,
			Theme:      r.Config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Price", Scale: true}),
		// range slider under the x axis
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	return line
}

func (r *Renderer) render(line *charts.Line) ([]byte, error) {
	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func point(date string, value float64) opts.LineData {
	return opts.LineData{Value: []interface{}{date, value}}
}
