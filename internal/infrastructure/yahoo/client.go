package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"titan-screener/internal/domain"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches candles from the Yahoo Finance chart API. It throttles
// itself with a pre-call delay and retries a bounded number of times;
// Yahoo starts returning 401s under sustained request pressure.
type Client struct {
	baseURL    string
	httpClient *http.Client
	throttle   time.Duration
	retries    int
	minBars    int
	log        zerolog.Logger
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Throttle time.Duration
	Retries  int
	MinBars  int
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 2
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = 50
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		throttle:   cfg.Throttle,
		retries:    cfg.Retries,
		minBars:    cfg.MinBars,
		log:        log,
	}
}

// chartResponse is the shape of /v8/finance/chart. Quote fields come back
// as nullable numbers (null on holidays and halted sessions).
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return 0
}

// Candles implements domain.CandleFeed. An empty or too-short response is
// domain.ErrNoData by contract, never a transport failure.
func (c *Client) Candles(ctx context.Context, symbol, interval string, limit int) (domain.Series, error) {
	if c.throttle > 0 {
		select {
		case <-time.After(c.throttle):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		series, err := c.fetchChart(ctx, symbol, interval, rangeFor(interval, limit))
		if err != nil {
			lastErr = err
			c.log.Debug().Str("symbol", symbol).Int("attempt", attempt+1).Err(err).Msg("yahoo fetch failed")
			continue
		}
		if len(series) < c.minBars {
			return nil, fmt.Errorf("%s: %d bars: %w", symbol, len(series), domain.ErrNoData)
		}
		if len(series) > limit {
			series = series[len(series)-limit:]
		}
		return series, nil
	}
	return nil, fmt.Errorf("yahoo: %s: %w", symbol, lastErr)
}

func (c *Client) fetchChart(ctx context.Context, symbol, interval, rng string) (domain.Series, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(symbol), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNoData)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNoData)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, domain.ErrNoData)
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Open) != len(result.Timestamp) ||
		len(quote.High) != len(result.Timestamp) ||
		len(quote.Low) != len(result.Timestamp) ||
		len(quote.Close) != len(result.Timestamp) ||
		len(quote.Volume) != len(result.Timestamp) {
		return nil, fmt.Errorf("%s: misaligned quote arrays: %w", symbol, domain.ErrNoData)
	}

	series := make(domain.Series, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue // null bar (holiday, halt)
		}
		series = append(series, domain.Candle{
			Time:   time.Unix(ts, 0),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: toFloat(quote.Volume[i]),
		})
	}

	sort.Slice(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
	return series, nil
}

// rangeFor maps a requested daily bar count onto Yahoo's range buckets.
func rangeFor(interval string, limit int) string {
	if interval != "1d" {
		return "6mo"
	}
	switch {
	case limit <= 22:
		return "1mo"
	case limit <= 66:
		return "3mo"
	case limit <= 126:
		return "6mo"
	case limit <= 252:
		return "1y"
	case limit <= 504:
		return "2y"
	case limit <= 1260:
		return "5y"
	default:
		return "max"
	}
}
