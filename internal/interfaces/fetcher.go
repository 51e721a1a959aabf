package interfaces

import (
	"context"
	"time"

	"p2p-report/internal/types"
)

// OrderFetcher pages through the user's C2C order history for one side.
// A non-nil error may come with partial results; callers decide whether it is fatal.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, side types.TradeSide, start, end time.Time) ([]types.RawOrder, error)
}
