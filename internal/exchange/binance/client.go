package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"

	"p2p-report/internal/logger"
	"p2p-report/internal/metrics"
	"p2p-report/internal/types"
)

const maxErrorBody = 200

// Params configures a C2C order history client.
type Params struct {
	APIKey      string
	APISecret   string
	BaseURL     string
	Endpoint    string
	Timeout     time.Duration
	RowsPerPage int
	MaxPages    int
	PageDelay   time.Duration
	Metrics     *metrics.Recorder
}

// Client pages through /sapi/v1/c2c/orderMatch/listUserOrderHistory.
type Client struct {
	apiKey     string
	secretKey  string
	url        string
	rows       int
	maxPages   int
	httpClient *http.Client
	pacer      *rate.Limiter
	metrics    *metrics.Recorder
	now        func() time.Time
}

func NewClient(p Params) *Client {
	// One token, refilled every PageDelay: consecutive requests are spaced
	// by at least the delay and the first one goes out immediately.
	limit := rate.Inf
	if p.PageDelay > 0 {
		limit = rate.Every(p.PageDelay)
	}
	return &Client{
		apiKey:     p.APIKey,
		secretKey:  p.APISecret,
		url:        p.BaseURL + p.Endpoint,
		rows:       p.RowsPerPage,
		maxPages:   p.MaxPages,
		httpClient: &http.Client{Timeout: p.Timeout},
		pacer:      rate.NewLimiter(limit, 1),
		metrics:    p.Metrics,
		now:        time.Now,
	}
}

// FetchOrders returns the orders of one side created within [start, end].
// On a failed page it returns the orders gathered so far and a *PageError.
func (c *Client) FetchOrders(ctx context.Context, side types.TradeSide, start, end time.Time) ([]types.RawOrder, error) {
	var orders []types.RawOrder

	for page := 1; page <= c.maxPages; page++ {
		if err := c.pacer.Wait(ctx); err != nil {
			return orders, &PageError{Side: side, Page: page, Err: err}
		}

		rows, err := c.fetchPage(ctx, side, start, end, page)
		if err != nil {
			return orders, err
		}
		if len(rows) == 0 {
			break
		}

		orders = append(orders, rows...)
		c.metrics.PageFetched(string(side), len(rows))
		logger.Page(ctx, string(side), page, len(rows))

		if len(rows) < c.rows {
			break
		}
	}

	return orders, nil
}

func (c *Client) fetchPage(ctx context.Context, side types.TradeSide, start, end time.Time, page int) ([]types.RawOrder, error) {
	params := url.Values{}
	params.Set("tradeType", string(side))
	params.Set("startTimestamp", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTimestamp", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("page", strconv.Itoa(page))
	params.Set("rows", strconv.Itoa(c.rows))
	params.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, c.pageError(side, page, 0, err)
	}
	req.URL.RawQuery = signedQuery(params, c.secretKey)
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.pageError(side, page, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.pageError(side, page, 0, fmt.Errorf("error reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.pageError(side, page, resp.StatusCode, fmt.Errorf("API error: %s", truncate(string(body), maxErrorBody)))
	}

	var out orderHistoryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, c.pageError(side, page, 0, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	return out.Data, nil
}

func (c *Client) pageError(side types.TradeSide, page, status int, err error) *PageError {
	pe := &PageError{Side: side, Page: page, StatusCode: status, Err: err}
	c.metrics.FetchError(string(side), pe.Reason())
	return pe
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
