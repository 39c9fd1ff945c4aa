package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stock-predictor/src/helpers"
	"stock-predictor/src/interfaces"
	"stock-predictor/src/logger"
	"stock-predictor/src/models"
	"stock-predictor/src/network"
)

type YahooFinanceSource struct {
	Config       *models.MConfig
	SourceConfig models.MDataSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	// Now is replaceable in tests.
	Now func() time.Time
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func NewYahooFinanceSource(cfg *models.MConfig, netMgr interfaces.INetworkManager) *YahooFinanceSource {
	return &YahooFinanceSource{
		Config:       cfg,
		SourceConfig: cfg.DataSource,
		Network:      netMgr,
		Logger:       logger.NewLogger(nil, "YahooFinanceSource-"+cfg.DataSource.Name),
		Now:          time.Now,
	}
}

// -----------------------------------------------------------------------------

// FetchHistory fetches daily bars over the lookback period. One request, no
// retry beyond what the network manager is configured for.
func (s *YahooFinanceSource) FetchHistory(ctx context.Context, ticker, period string) (*models.MPriceSeries, error) {
	window, err := ParsePeriod(period, s.Now())
	if err != nil {
		return nil, err
	}

	params := window.Params()
	params["interval"] = "1d"
	params["includePrePost"] = "false"
	params["events"] = "div,splits"

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", strings.TrimRight(s.SourceConfig.BaseURL, "/"), url.PathEscape(ticker))

	respBytes, err := s.Network.Get(ctx, endpoint, params)
	if err != nil {
		// The provider answers unknown symbols with a JSON error and a 404.
		var statusErr *network.StatusError
		if errors.As(err, &statusErr) {
			if _, perr := s.parseChartResponse(ticker, statusErr.Body); perr != nil {
				return nil, fmt.Errorf("fetch %s: %w", ticker, perr)
			}
		}
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}

	series, err := s.parseChartResponse(ticker, respBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ticker, err)
	}
	series.Period = period
	return series, nil
}

// -----------------------------------------------------------------------------

type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency             string  `json:"currency"`
				Symbol               string  `json:"symbol"`
				ExchangeName         string  `json:"exchangeName"`
				InstrumentType       string  `json:"instrumentType"`
				Gmtoffset            int     `json:"gmtoffset"`
				Timezone             string  `json:"timezone"`
				ExchangeTimezoneName string  `json:"exchangeTimezoneName"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				DataGranularity      string  `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp []int64 `json:"timestamp"`
			Events    struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64   `json:"date"`
					Numerator   float64 `json:"numerator"`
					Denominator float64 `json:"denominator"`
				} `json:"splits"`
			} `json:"events"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"` // Use pointers to handle null
					Low    []*float64 `json:"low"`
					Open   []*float64 `json:"open"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// -----------------------------------------------------------------------------

func (s *YahooFinanceSource) parseChartResponse(ticker string, data []byte) (*models.MPriceSeries, error) {
	var resp YahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, helpers.NewDataSourceError("json unmarshal failed", err)
	}

	if resp.Chart.Error != nil {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("yahoo api error: %s - %s", resp.Chart.Error.Code, resp.Chart.Error.Description), nil)
	}

	series := &models.MPriceSeries{Ticker: ticker}

	// An empty result is "no data", not a malformed payload.
	if len(resp.Chart.Result) == 0 {
		return series, nil
	}

	result := resp.Chart.Result[0]
	meta := result.Meta
	series.Currency = meta.Currency
	series.Exchange = meta.ExchangeName

	if len(result.Timestamp) == 0 {
		return series, nil
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, helpers.NewDataSourceError(fmt.Sprintf("no quote data in response for %s", ticker), nil)
	}

	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)

	// Validation: Alignment check
	if len(quote.Close) != n || len(quote.Open) != n || len(quote.High) != n ||
		len(quote.Low) != n || len(quote.Volume) != n {
		s.Logger.Info("Data alignment error for %s: Mismatched array lengths", ticker)
		return nil, helpers.NewDataSourceError(fmt.Sprintf("data alignment error for %s", ticker), nil)
	}

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == n {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	loc := exchangeLocation(meta.ExchangeTimezoneName, meta.Gmtoffset)

	type dataPoint struct {
		timestamp int64
		bar       models.MPriceBar
	}

	points := make([]dataPoint, 0, n)
	for i := 0; i < n; i++ {
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			// holidays and half-filled rows
			continue
		}

		bar := models.MPriceBar{
			Date:  NaiveDay(result.Timestamp[i], loc),
			Open:  *quote.Open[i],
			High:  *quote.High[i],
			Low:   *quote.Low[i],
			Close: *quote.Close[i],
		}
		if quote.Volume[i] != nil {
			bar.Volume = int64(*quote.Volume[i])
		}

		if s.SourceConfig.AutoAdjust && adjClose != nil && adjClose[i] != nil && bar.Close != 0 {
			ratio := *adjClose[i] / bar.Close
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			bar.Close = *adjClose[i]
		}

		points = append(points, dataPoint{timestamp: result.Timestamp[i], bar: bar})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].timestamp < points[j].timestamp
	})

	// Dedup by calendar day, keeping the latest row (the live bar repeats the
	// last session).
	bars := make([]models.MPriceBar, 0, len(points))
	for _, p := range points {
		if k := len(bars); k > 0 && !p.bar.Date.After(bars[k-1].Date) {
			bars[k-1] = p.bar
			continue
		}
		bars = append(bars, p.bar)
	}

	index := make(map[time.Time]int, len(bars))
	for i, b := range bars {
		index[b.Date] = i
	}
	for _, d := range result.Events.Dividends {
		if i, ok := index[NaiveDay(d.Date, loc)]; ok {
			bars[i].Dividends += d.Amount
		}
	}
	for _, sp := range result.Events.Splits {
		if sp.Denominator == 0 {
			continue
		}
		if i, ok := index[NaiveDay(sp.Date, loc)]; ok {
			bars[i].StockSplits = sp.Numerator / sp.Denominator
		}
	}

	series.Bars = bars

	if len(bars) > 0 {
		s.Logger.Info("Fetched %s: %d rows [%s -> %s]", ticker, len(bars),
			bars[0].Date.Format("2006-01-02"), bars[len(bars)-1].Date.Format("2006-01-02"))
	}
	return series, nil
}

// -----------------------------------------------------------------------------

func exchangeLocation(name string, gmtoffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange"+strconv.Itoa(gmtoffset), gmtoffset)
}

// -----------------------------------------------------------------------------

// NaiveDay converts an epoch second to the exchange's calendar day at
// midnight, with the zone dropped (stored as UTC wall-clock).
func NaiveDay(ts int64, loc *time.Location) time.Time {
	local := time.Unix(ts, 0).In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
