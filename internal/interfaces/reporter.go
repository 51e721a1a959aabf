package interfaces

import (
	"context"

	"p2p-report/internal/types"
)

// ReportWriter persists the single JSON artifact of a run and returns its path.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *types.Report) (string, error)
	WriteFailure(ctx context.Context, failure *types.FailureReport) (string, error)
}
