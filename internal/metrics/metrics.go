// Package metrics collects per-run counters for the report job and exports
// them in the node_exporter textfile format. All methods are nil-safe so
// callers can run without metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Recorder struct {
	reg *prometheus.Registry

	PagesFetched    *prometheus.CounterVec
	OrdersFetched   *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	CompletedOrders prometheus.Gauge
	ReportSuccess   prometheus.Gauge
	LastRun         prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		PagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "p2p_pages_fetched_total",
			Help: "Order history pages fetched, by trade side.",
		}, []string{"side"}),
		OrdersFetched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "p2p_orders_fetched_total",
			Help: "Raw orders received, by trade side.",
		}, []string{"side"}),
		FetchErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "p2p_fetch_errors_total",
			Help: "Page requests that stopped pagination, by side and reason.",
		}, []string{"side", "reason"}),
		CompletedOrders: f.NewGauge(prometheus.GaugeOpts{
			Name: "p2p_completed_orders",
			Help: "Completed orders included in the last report.",
		}),
		ReportSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name: "p2p_report_success",
			Help: "1 if the last run wrote a successful report, 0 otherwise.",
		}),
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "p2p_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
}

func (r *Recorder) PageFetched(side string, rows int) {
	if r == nil {
		return
	}
	r.PagesFetched.WithLabelValues(side).Inc()
	r.OrdersFetched.WithLabelValues(side).Add(float64(rows))
}

func (r *Recorder) FetchError(side, reason string) {
	if r == nil {
		return
	}
	r.FetchErrors.WithLabelValues(side, reason).Inc()
}

func (r *Recorder) Completed(n int) {
	if r == nil {
		return
	}
	r.CompletedOrders.Set(float64(n))
}

func (r *Recorder) RunFinished(success bool, at time.Time) {
	if r == nil {
		return
	}
	if success {
		r.ReportSuccess.Set(1)
	} else {
		r.ReportSuccess.Set(0)
	}
	r.LastRun.Set(float64(at.Unix()))
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
