package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"p2p-report/internal/metrics"
	"p2p-report/internal/types"
)

const (
	testKey    = "test-api-key"
	testSecret = "test-api-secret"
	testPath   = "/sapi/v1/c2c/orderMatch/listUserOrderHistory"
)

func pageJSON(side string, n, offset int) string {
	rows := make([]string, n)
	for i := 0; i < n; i++ {
		rows[i] = fmt.Sprintf(`{"orderNumber":"%d","tradeType":"%s","asset":"USDT","fiat":"VES",`+
			`"amount":"10.5","totalPrice":"100","unitPrice":10,"orderStatus":"COMPLETED","createTime":1704067200000}`,
			offset+i, side)
	}
	return `{"code":"000000","message":"success","data":[` + strings.Join(rows, ",") + `],"total":0,"success":true}`
}

func newTestClient(srv *httptest.Server, rows, maxPages int, rec *metrics.Recorder) *Client {
	c := NewClient(Params{
		APIKey:      testKey,
		APISecret:   testSecret,
		BaseURL:     srv.URL,
		Endpoint:    testPath,
		Timeout:     5 * time.Second,
		RowsPerPage: rows,
		MaxPages:    maxPages,
		Metrics:     rec,
	})
	c.now = func() time.Time { return time.UnixMilli(1704153600000) }
	return c
}

var (
	windowStart = time.UnixMilli(1701561600000)
	windowEnd   = time.UnixMilli(1704153600000)
)

func TestFetchOrdersStopsOnShortPage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, pageJSON("BUY", 3, 0))
	}))
	defer srv.Close()

	orders, err := newTestClient(srv, 100, 10, nil).FetchOrders(context.Background(), types.SideBuy, windowStart, windowEnd)

	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "no request may follow a short page")
	assert.Equal(t, types.NumericString("10"), orders[0].UnitPrice, "bare JSON numbers are kept verbatim")
	assert.Equal(t, types.NumericString("10.5"), orders[0].Amount)
}

func TestFetchOrdersHonoursPageCap(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, pageJSON("SELL", 2, int(n)*2))
	}))
	defer srv.Close()

	rec := metrics.New()
	orders, err := newTestClient(srv, 2, 3, rec).FetchOrders(context.Background(), types.SideSell, windowStart, windowEnd)

	require.NoError(t, err)
	assert.Len(t, orders, 6)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.PagesFetched.WithLabelValues("SELL")))
	assert.Equal(t, 6.0, testutil.ToFloat64(rec.OrdersFetched.WithLabelValues("SELL")))
}

func TestFetchOrdersStopsOnEmptyPage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, pageJSON("BUY", 2, 0))
			return
		}
		fmt.Fprint(w, `{"code":"000000","message":"success","data":[],"success":true}`)
	}))
	defer srv.Close()

	orders, err := newTestClient(srv, 2, 10, nil).FetchOrders(context.Background(), types.SideBuy, windowStart, windowEnd)

	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchOrdersKeepsPartialResultsOnHTTPError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			fmt.Fprint(w, pageJSON("BUY", 2, 0))
			return
		}
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"code":-1003,"msg":"Too many requests"}`)
	}))
	defer srv.Close()

	rec := metrics.New()
	orders, err := newTestClient(srv, 2, 10, rec).FetchOrders(context.Background(), types.SideBuy, windowStart, windowEnd)

	assert.Len(t, orders, 2)
	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, types.SideBuy, pe.Side)
	assert.Equal(t, 2, pe.Page)
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "http_status", pe.Reason())
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls), "no retry after a failed page")
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.FetchErrors.WithLabelValues("BUY", "http_status")))
}

func TestFetchOrdersMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": [`)
	}))
	defer srv.Close()

	orders, err := newTestClient(srv, 100, 10, nil).FetchOrders(context.Background(), types.SideSell, windowStart, windowEnd)

	assert.Empty(t, orders)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "decode", pe.Reason())
}

func TestFetchOrdersTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(srv, 100, 10, nil)
	srv.Close()

	orders, err := c.FetchOrders(context.Background(), types.SideBuy, windowStart, windowEnd)

	assert.Empty(t, orders)
	var pe *PageError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 0, pe.StatusCode)
	assert.Equal(t, "transport", pe.Reason())
}

func TestFetchOrdersSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testPath, r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, testKey, r.Header.Get("X-MBX-APIKEY"))

		raw := r.URL.RawQuery
		idx := strings.LastIndex(raw, "&signature=")
		if !assert.True(t, idx > 0, "signature must be the last parameter") {
			return
		}
		assert.Equal(t, sign(testSecret, raw[:idx]), raw[idx+len("&signature="):])

		q := r.URL.Query()
		assert.Equal(t, "SELL", q.Get("tradeType"))
		assert.Equal(t, "1701561600000", q.Get("startTimestamp"))
		assert.Equal(t, "1704153600000", q.Get("endTimestamp"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "100", q.Get("rows"))
		assert.Equal(t, "1704153600000", q.Get("timestamp"))

		fmt.Fprint(w, pageJSON("SELL", 1, 0))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 100, 10, nil).FetchOrders(context.Background(), types.SideSell, windowStart, windowEnd)
	require.NoError(t, err)
}

func TestFetchOrdersSpacesPages(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, pageJSON("BUY", 1, 0))
	}))
	defer srv.Close()

	c := NewClient(Params{
		BaseURL:     srv.URL,
		Endpoint:    testPath,
		Timeout:     5 * time.Second,
		RowsPerPage: 1,
		MaxPages:    3,
		PageDelay:   50 * time.Millisecond,
	})

	begin := time.Now()
	orders, err := c.FetchOrders(context.Background(), types.SideBuy, windowStart, windowEnd)
	require.NoError(t, err)
	assert.Len(t, orders, 3)
	assert.GreaterOrEqual(t, time.Since(begin), 90*time.Millisecond, "two gaps between three pages")
}

func TestFetchOrdersCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected with a canceled context")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv, 100, 10, nil).FetchOrders(ctx, types.SideBuy, windowStart, windowEnd)
	assert.Error(t, err)
}
