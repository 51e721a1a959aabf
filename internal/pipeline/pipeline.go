// Package pipeline runs one fetch, aggregate and save cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"p2p-report/internal/aggregate"
	"p2p-report/internal/interfaces"
	"p2p-report/internal/logger"
	"p2p-report/internal/metrics"
	"p2p-report/internal/types"
)

const (
	MsgNoOrders      = "no orders found"
	MsgNoCompleted   = "no completed orders to analyze"
	MsgFetchFailed   = "failed to fetch data from Binance"
	failureTimestamp = "2006-01-02T15:04:05.000000"
)

type Params struct {
	Fetcher         interfaces.OrderFetcher
	Writer          interfaces.ReportWriter
	Aggregator      *aggregate.Aggregator
	Metrics         *metrics.Recorder
	MetricsTextfile string
	DaysBack        int
	Location        *time.Location
}

// Result describes how a run ended. Exactly one of Report and Failure is set
// once the run reaches SAVED.
type Result struct {
	RunID    string
	State    types.RunState
	ExitCode int
	Path     string
	Orders   int
	Report   *types.Report
	Failure  *types.FailureReport
	Err      error
}

type Runner struct {
	fetcher     interfaces.OrderFetcher
	writer      interfaces.ReportWriter
	agg         *aggregate.Aggregator
	metrics     *metrics.Recorder
	textfile    string
	daysBack    int
	loc         *time.Location
	now         func() time.Time
	newID       func() string
	transitions []types.RunState
}

func New(p Params) *Runner {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		fetcher:  p.Fetcher,
		writer:   p.Writer,
		agg:      p.Aggregator,
		metrics:  p.Metrics,
		textfile: p.MetricsTextfile,
		daysBack: p.DaysBack,
		loc:      loc,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Transitions lists the states visited by the last Run, in order.
func (r *Runner) Transitions() []types.RunState {
	return append([]types.RunState(nil), r.transitions...)
}

func (r *Runner) enter(ctx context.Context, res *Result, s types.RunState) {
	res.State = s
	r.transitions = append(r.transitions, s)
	logger.Debug(ctx, "Run state changed", "state", string(s), "run_id", res.RunID)
}

// Window returns the lookback window ending now.
func (r *Runner) Window() (start, end time.Time) {
	end = r.now()
	start = end.Add(-time.Duration(r.daysBack) * 24 * time.Hour)
	return start, end
}

// FetchAll fetches every side in order. A failed page only truncates its
// own side; the error is returned only when ctx is done.
func (r *Runner) FetchAll(ctx context.Context, start, end time.Time) ([]types.RawOrder, error) {
	var all []types.RawOrder
	for _, side := range types.Sides {
		orders, err := r.fetcher.FetchOrders(ctx, side, start, end)
		all = append(all, orders...)
		if err == nil {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return all, fmt.Errorf("fetch %s orders: %w", side, ctxErr)
		}
		logger.Warn(ctx, "Keeping partial results for side",
			"side", string(side),
			"orders", len(orders),
			"error", err.Error(),
		)
	}
	return all, nil
}

// Run executes the whole cycle and always tries to leave a file behind.
func (r *Runner) Run(ctx context.Context) (res *Result) {
	r.transitions = nil
	res = &Result{RunID: r.newID()}

	timer := logger.StartOperation(ctx, "pipeline.Run", "run_id", res.RunID)
	ctx = timer.GetContext()

	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, res, fmt.Errorf("panic: %v", p))
		}
		r.finish(ctx, res)
		if res.Err != nil {
			timer.EndWithError(res.Err, "state", string(res.State), "exit_code", res.ExitCode)
			return
		}
		timer.End("state", string(res.State), "exit_code", res.ExitCode)
	}()

	r.enter(ctx, res, types.StateInit)
	start, end := r.Window()

	r.enter(ctx, res, types.StateFetching)
	orders, err := r.FetchAll(ctx, start, end)
	res.Orders = len(orders)
	if err != nil {
		r.fail(ctx, res, err)
		return res
	}
	logger.Info(ctx, "Orders fetched", "total", len(orders), "days_back", r.daysBack)

	r.enter(ctx, res, types.StateAggregating)
	if len(orders) == 0 {
		r.save(ctx, res, &types.FailureReport{Message: MsgNoOrders})
		return res
	}

	report, ok := r.agg.Build(orders, res.RunID)
	if !ok {
		total := len(orders)
		r.metrics.Completed(0)
		r.save(ctx, res, &types.FailureReport{Message: MsgNoCompleted, TotalOrders: &total})
		return res
	}
	r.metrics.Completed(report.Metadata.OrdersAnalyzed)

	path, err := r.writer.WriteReport(ctx, report)
	if err != nil {
		r.fail(ctx, res, fmt.Errorf("save report: %w", err))
		return res
	}
	res.Path = path
	res.Report = report
	r.enter(ctx, res, types.StateSaved)
	return res
}

// save writes a no-data payload. These runs still exit 0.
func (r *Runner) save(ctx context.Context, res *Result, failure *types.FailureReport) {
	failure.GeneratedAt = r.now().In(r.loc).Format(failureTimestamp)
	logger.Warn(ctx, "Run produced no report data", "message", failure.Message)

	path, err := r.writer.WriteFailure(ctx, failure)
	if err != nil {
		res.Err = fmt.Errorf("save failure payload: %w", err)
		res.ExitCode = 1
		return
	}
	res.Path = path
	res.Failure = failure
	r.enter(ctx, res, types.StateSaved)
}

// fail moves the run to ERROR and writes the error payload with a detached
// context so a canceled run still leaves a file.
func (r *Runner) fail(ctx context.Context, res *Result, cause error) {
	r.enter(ctx, res, types.StateError)
	res.Err = cause
	res.ExitCode = 1
	res.Report = nil

	failure := &types.FailureReport{
		Message:     MsgFetchFailed,
		Error:       cause.Error(),
		GeneratedAt: r.now().In(r.loc).Format(failureTimestamp),
	}
	logger.ErrorWithErr(ctx, "Run failed", cause, "run_id", res.RunID)

	path, err := r.writer.WriteFailure(context.WithoutCancel(ctx), failure)
	if err != nil {
		res.Err = errors.Join(cause, fmt.Errorf("save failure payload: %w", err))
		return
	}
	res.Path = path
	res.Failure = failure
	r.enter(ctx, res, types.StateSaved)
}

func (r *Runner) finish(ctx context.Context, res *Result) {
	r.metrics.RunFinished(res.Report != nil, r.now())
	if err := r.metrics.WriteTextfile(r.textfile); err != nil {
		logger.Warn(ctx, "Failed to write metrics textfile", "path", r.textfile, "error", err.Error())
	}
}
