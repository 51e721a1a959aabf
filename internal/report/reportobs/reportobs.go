package reportobs

import (
	"context"
	"time"

	"p2p-report/internal/interfaces"
	"p2p-report/internal/logger"
	"p2p-report/internal/trace"
	"p2p-report/internal/types"
)

type observableWriter struct {
	writer interfaces.ReportWriter
}

var _ interfaces.ReportWriter = (*observableWriter)(nil)

func Wrap(w interfaces.ReportWriter) interfaces.ReportWriter {
	return &observableWriter{
		writer: w,
	}
}

func (ow *observableWriter) WriteReport(ctx context.Context, report *types.Report) (string, error) {
	ctx, span := trace.StartSpan(ctx, "report.WriteReport")
	defer span.End()

	start := time.Now()
	path, err := ow.writer.WriteReport(ctx, report)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to save report", err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Report saved",
		"path", path,
		"days", len(report.Days),
		"operations", report.TotalOperations,
		"profit", report.TotalProfit.StringFixed(2),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

func (ow *observableWriter) WriteFailure(ctx context.Context, failure *types.FailureReport) (string, error) {
	ctx, span := trace.StartSpan(ctx, "report.WriteFailure")
	defer span.End()

	path, err := ow.writer.WriteFailure(ctx, failure)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to save failure payload", err)
		return "", err
	}

	logger.WarnSkip(ctx, 1, "Failure payload saved",
		"path", path,
		"message", failure.Message,
	)
	return path, nil
}
