package binance

import (
	"context"
	"errors"
	"fmt"

	"p2p-report/internal/types"
)

// orderHistoryResponse is the envelope of listUserOrderHistory.
type orderHistoryResponse struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Data    []types.RawOrder `json:"data"`
	Total   int              `json:"total"`
	Success bool             `json:"success"`
}

var ErrMalformedResponse = errors.New("malformed response")

// PageError stops pagination for one side. Orders gathered before it are still valid.
type PageError struct {
	Side       types.TradeSide
	Page       int
	StatusCode int
	Err        error
}

func (e *PageError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s page %d: HTTP %d: %v", e.Side, e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s page %d: %v", e.Side, e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Reason is a short label for metrics.
func (e *PageError) Reason() string {
	switch {
	case e.StatusCode != 0:
		return "http_status"
	case errors.Is(e.Err, ErrMalformedResponse):
		return "decode"
	case errors.Is(e.Err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(e.Err, context.Canceled):
		return "canceled"
	default:
		return "transport"
	}
}
