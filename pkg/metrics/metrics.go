// Package metrics exports engine telemetry as Prometheus metrics.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/petrijr/fundo/pkg/api"
)

// Observer implements api.Observer over a set of Prometheus collectors.
// Combine it with other observers via api.NewCompositeObserver.
type Observer struct {
	replayed   prometheus.Counter
	completed  prometheus.Counter
	retries    prometheus.Counter
	warnings   prometheus.Counter
	faults     prometheus.Counter
	queueDepth prometheus.Gauge
	duration   prometheus.Histogram
}

var _ api.Observer = (*Observer)(nil)

// NewObserver registers the engine metrics with reg and returns the
// observer. Pass prometheus.DefaultRegisterer outside tests.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		replayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundo_operations_replayed_total",
			Help: "Operations recovered from the durable store at startup.",
		}),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundo_operations_completed_total",
			Help: "Operations processed to completion.",
		}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundo_operation_retries_total",
			Help: "Retry attempts across all operations.",
		}),
		warnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundo_warnings_total",
			Help: "Warnings reported by the engine.",
		}),
		faults: factory.NewCounter(prometheus.CounterOpts{
			Name: "fundo_faults_total",
			Help: "Unrecoverable faults raised by the engine.",
		}),
		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fundo_queue_depth",
			Help: "Pending operations in the work queue, updated on replay and progress observations.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundo_operation_duration_seconds",
			Help:    "Wall time from an operation's first attempt to its completion.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (o *Observer) OnReplay(ctx context.Context, pending int) {
	o.replayed.Add(float64(pending))
	o.queueDepth.Set(float64(pending))
}

func (o *Observer) OnOperationCompleted(ctx context.Context, op api.Operation, retries int, d time.Duration) {
	o.completed.Inc()
	o.retries.Add(float64(retries))
	o.duration.Observe(d.Seconds())
}

func (o *Observer) OnProgress(ctx context.Context, p api.Progress) {
	o.queueDepth.Set(float64(p.Remaining))
}

func (o *Observer) OnWarning(ctx context.Context, msg string, err error) {
	o.warnings.Inc()
}

func (o *Observer) OnFault(ctx context.Context, msg string, err error) {
	o.faults.Inc()
}
