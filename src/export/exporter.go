// Package export writes the raw price table in downloadable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"stock-predictor/src/models"
)

const dateLayout = "2006-01-02"

// Exporter serializes one price series.
type Exporter interface {
	Extension() string
	ContentType() string
	Write(w io.Writer, series *models.MPriceSeries) error
}

// NewExporter returns the exporter for csv, json or parquet, or nil when the
// format is not supported.
func NewExporter(format string) Exporter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "csv":
		return CSVExporter{}
	case "json":
		return JSONExporter{}
	case "parquet":
		return ParquetExporter{}
	default:
		return nil
	}
}

// Formats lists the names NewExporter accepts.
func Formats() []string {
	return []string{"csv", "json", "parquet"}
}

// -----------------------------------------------------------------------------

// CSVExporter writes the table with a Date,Open,High,Low,Close,Volume,
// Dividends,Stock Splits header.
type CSVExporter struct{}

func (CSVExporter) Extension() string   { return "csv" }
func (CSVExporter) ContentType() string { return "text/csv" }

func (CSVExporter) Write(out io.Writer, series *models.MPriceSeries) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume", "Dividends", "Stock Splits"}); err != nil {
		return err
	}
	if series != nil {
		for _, b := range series.Bars {
			if err := w.Write([]string{
				b.Date.Format(dateLayout),
				floatStr(b.Open),
				floatStr(b.High),
				floatStr(b.Low),
				floatStr(b.Close),
				strconv.FormatInt(b.Volume, 10),
				floatStr(b.Dividends),
				floatStr(b.StockSplits),
			}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// -----------------------------------------------------------------------------

// JSONExporter writes the series as one JSON document.
type JSONExporter struct{}

func (JSONExporter) Extension() string   { return "json" }
func (JSONExporter) ContentType() string { return "application/json" }

func (JSONExporter) Write(w io.Writer, series *models.MPriceSeries) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(series)
}

// -----------------------------------------------------------------------------

type parquetRow struct {
	Date        string  `parquet:"date"`
	Open        float64 `parquet:"open"`
	High        float64 `parquet:"high"`
	Low         float64 `parquet:"low"`
	Close       float64 `parquet:"close"`
	Volume      int64   `parquet:"volume"`
	Dividends   float64 `parquet:"dividends"`
	StockSplits float64 `parquet:"stock_splits"`
}

// ParquetExporter writes one row group with the columns of the raw table.
type ParquetExporter struct{}

func (ParquetExporter) Extension() string   { return "parquet" }
func (ParquetExporter) ContentType() string { return "application/vnd.apache.parquet" }

func (ParquetExporter) Write(w io.Writer, series *models.MPriceSeries) error {
	rows := make([]parquetRow, 0, series.Len())
	if series != nil {
		for _, b := range series.Bars {
			rows = append(rows, parquetRow{
				Date:        b.Date.Format(dateLayout),
				Open:        b.Open,
				High:        b.High,
				Low:         b.Low,
				Close:       b.Close,
				Volume:      b.Volume,
				Dividends:   b.Dividends,
				StockSplits: b.StockSplits,
			})
		}
	}
	return parquet.Write(w, rows)
}
