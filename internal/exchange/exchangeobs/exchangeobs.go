package exchangeobs

import (
	"context"
	"time"

	"p2p-report/internal/interfaces"
	"p2p-report/internal/logger"
	"p2p-report/internal/trace"
	"p2p-report/internal/types"
)

// observableFetcher wraps an OrderFetcher with observability (logging & tracing)
type observableFetcher struct {
	fetcher interfaces.OrderFetcher
}

// Compile-time interface check
var _ interfaces.OrderFetcher = (*observableFetcher)(nil)

// Wrap wraps a fetcher with observability middleware
func Wrap(fetcher interfaces.OrderFetcher) interfaces.OrderFetcher {
	return &observableFetcher{
		fetcher: fetcher,
	}
}

// FetchOrders fetches one side of the order history with observability
func (of *observableFetcher) FetchOrders(ctx context.Context, side types.TradeSide, start, end time.Time) ([]types.RawOrder, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.FetchOrders")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Fetching order history",
		"side", string(side),
		"from", start.Format(time.RFC3339),
		"to", end.Format(time.RFC3339),
	)

	begin := time.Now()
	orders, err := of.fetcher.FetchOrders(ctx, side, start, end)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order history fetch stopped early", err,
			"side", string(side),
			"orders_kept", len(orders),
		)
		return orders, err
	}

	logger.InfoSkip(ctx, 1, "Order history fetched",
		"side", string(side),
		"orders", len(orders),
		"duration_ms", time.Since(begin).Milliseconds(),
	)
	return orders, nil
}
