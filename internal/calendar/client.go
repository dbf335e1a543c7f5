package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/commodity-desk/pricer/internal/httpclient"
	"github.com/commodity-desk/pricer/internal/metrics"
	"github.com/commodity-desk/pricer/internal/rate"
)

const dateLayout = "2006-01-02"

// Client fetches trading days from a calendar data service over HTTP.
type Client struct {
	logger  *zap.Logger
	baseURL string
	apiKey  string
	exec    *httpclient.Executor
}

// NewClient constructs a calendar API client. apiKey may be empty for
// unauthenticated sources.
func NewClient(logger *zap.Logger, baseURL, apiKey string, limiter *rate.Limiter) *Client {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	exec := httpclient.New(logger, limiter, httpClient, 2, "calendar", func(status int, body []byte) error {
		logger.Warn("calendar.non_200",
			zap.Int("status", status),
			zap.String("body", string(body)))
		return fmt.Errorf("calendar service returned %d", status)
	})
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		apiKey:  apiKey,
		exec:    exec,
	}
}

type tradingDaysResponse struct {
	ExchangeCode string   `json:"exchange_code"`
	TradingDays  []string `json:"trading_days"` // YYYY-MM-DD
}

// TradingDays returns the ordered trading days for the exchange calendar
// within [start, end]. Any failure surfaces as *UnavailableError.
func (c *Client) TradingDays(ctx context.Context, exchangeCode string, start, end time.Time) ([]time.Time, error) {
	reqStart := time.Now()
	defer metrics.ObserveDuration(metrics.CalendarRequestDuration, reqStart, exchangeCode)

	endpoint := fmt.Sprintf("%s/calendars/%s/trading-days?start=%s&end=%s",
		c.baseURL, url.PathEscape(exchangeCode), start.Format(dateLayout), end.Format(dateLayout))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UnavailableError{ExchangeCode: exchangeCode, Start: start, End: end, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	var resp tradingDaysResponse
	if err := c.exec.DoJSON(ctx, req, &resp); err != nil {
		metrics.IncError("calendar", "request_failed")
		return nil, &UnavailableError{ExchangeCode: exchangeCode, Start: start, End: end, Err: err}
	}

	days := make([]time.Time, 0, len(resp.TradingDays))
	for _, d := range resp.TradingDays {
		day, err := time.Parse(dateLayout, d)
		if err != nil {
			return nil, &UnavailableError{
				ExchangeCode: exchangeCode, Start: start, End: end,
				Err: fmt.Errorf("malformed trading day %q: %w", d, err),
			}
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
