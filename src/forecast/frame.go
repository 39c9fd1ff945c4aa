package forecast

import (
	"math"
	"sort"
	"time"

	"stock-predictor/src/models"
)

// Reshape turns a price series into the (ds, y) frame the model fits on,
// using the close column.
func Reshape(series *models.MPriceSeries) []models.MFrameRow {
	if series.Empty() {
		return nil
	}
	return Normalize(rawFrame(series))
}

// rawFrame is Reshape without normalization, so rows with a missing close
// keep their date.
func rawFrame(series *models.MPriceSeries) []models.MFrameRow {
	if series.Empty() {
		return nil
	}
	frame := make([]models.MFrameRow, 0, series.Len())
	for _, b := range series.Bars {
		frame = append(frame, models.MFrameRow{DS: b.Date, Y: b.Close})
	}
	return frame
}

// SeriesFromFrame is the inverse of Reshape, filling only the close column.
func SeriesFromFrame(ticker string, frame []models.MFrameRow) *models.MPriceSeries {
	series := &models.MPriceSeries{Ticker: ticker, Bars: make([]models.MPriceBar, 0, len(frame))}
	for _, r := range frame {
		series.Bars = append(series.Bars, models.MPriceBar{Date: r.DS, Close: r.Y})
	}
	return series
}

// -----------------------------------------------------------------------------

// Normalize drops non-finite values, strips zone information, sorts by date
// and keeps the last value for repeated dates. Applying it twice yields the
// same rows as applying it once.
func Normalize(frame []models.MFrameRow) []models.MFrameRow {
	out := make([]models.MFrameRow, 0, len(frame))
	for _, r := range frame {
		if math.IsNaN(r.Y) || math.IsInf(r.Y, 0) {
			continue
		}
		out = append(out, models.MFrameRow{DS: stripZone(r.DS), Y: r.Y})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DS.Before(out[j].DS) })

	dedup := out[:0]
	for _, r := range out {
		if k := len(dedup); k > 0 && dedup[k-1].DS.Equal(r.DS) {
			dedup[k-1] = r
			continue
		}
		dedup = append(dedup, r)
	}
	return dedup
}

// distinctDates returns the sorted distinct zone-stripped dates of frame,
// whatever the values.
func distinctDates(frame []models.MFrameRow) []time.Time {
	dates := make([]time.Time, 0, len(frame))
	for _, r := range frame {
		dates = append(dates, stripZone(r.DS))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := dates[:0]
	for _, d := range dates {
		if k := len(out); k > 0 && out[k-1].Equal(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// -----------------------------------------------------------------------------

// stripZone keeps the wall clock of t and pins it to UTC.
func stripZone(t time.Time) time.Time {
	if t.Location() == time.UTC {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
