package middleware

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/fxsml/dispatch"
)

// Metrics holds the measurements of a single dispatched request.
type Metrics struct {
	Request  string
	Start    time.Time
	Duration time.Duration
	InFlight int

	Error error
}

// Success returns a numeric indicator of success (1 for success, 0 otherwise).
func (m *Metrics) Success() int {
	if m.Error == nil {
		return 1
	}
	return 0
}

// Failure returns a numeric indicator of failure (1 for failure, 0 otherwise).
func (m *Metrics) Failure() int {
	if m.Error != nil {
		return 1
	}
	return 0
}

// MetricsCollector receives the metrics of every completed request.
// Collectors are called synchronously and must not block.
type MetricsCollector func(metrics *Metrics)

// Measure returns a behavior reporting the metrics of every request to
// collect once the inner pipeline returned.
func Measure[Req, Res any](collect MetricsCollector) dispatch.BehaviorFunc[Req, Res] {
	inFlight := atomic.Int32{}
	return func(ctx context.Context, req Req, next dispatch.NextFunc[Res]) (Res, error) {
		m := &Metrics{
			Request:  RequestName(req),
			Start:    time.Now(),
			InFlight: int(inFlight.Add(1)),
		}

		res, err := next()

		m.Duration = time.Since(m.Start)
		inFlight.Add(-1)
		m.Error = err

		collect(m)

		return res, err
	}
}

// DefaultMetricsBuffer is the number of metrics a MetricsDistributor queues
// when no size is given.
const DefaultMetricsBuffer = 256

// MetricsDistributor hands metrics to collectors on a separate goroutine.
// Collect never blocks: metrics arriving while the queue is full are dropped
// and counted.
type MetricsDistributor struct {
	ctx     context.Context
	ch      chan *Metrics
	done    chan struct{}
	dropped atomic.Uint64
}

// DistributeMetrics starts a MetricsDistributor feeding every collector with
// a queue of the given size (DefaultMetricsBuffer when size <= 0). Distribution
// stops when ctx is done, after the queued metrics were delivered.
func DistributeMetrics(ctx context.Context, size int, collectors ...MetricsCollector) *MetricsDistributor {
	if size <= 0 {
		size = DefaultMetricsBuffer
	}
	d := &MetricsDistributor{
		ctx:  ctx,
		ch:   make(chan *Metrics, size),
		done: make(chan struct{}),
	}

	distribute := func(m *Metrics) {
		for _, collect := range collectors {
			collect(m)
		}
	}

	go func() {
		defer close(d.done)
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case m := <-d.ch:
						distribute(m)
					default:
						return
					}
				}
			case m := <-d.ch:
				distribute(m)
			}
		}
	}()

	return d
}

// Collect queues m for distribution. It is a MetricsCollector.
func (d *MetricsDistributor) Collect(m *Metrics) {
	if d.ctx.Err() != nil {
		d.dropped.Add(1)
		return
	}
	select {
	case d.ch <- m:
	default:
		d.dropped.Add(1)
	}
}

// Dropped returns the number of metrics discarded so far.
func (d *MetricsDistributor) Dropped() uint64 {
	return d.dropped.Load()
}

// Done is closed once the distribution goroutine exited.
func (d *MetricsDistributor) Done() <-chan struct{} {
	return d.done
}

// NewMetricsLogger creates a MetricsCollector writing one record per request
// to logger. Failed requests are logged at warn level.
func NewMetricsLogger(logger dispatch.Logger, args ...any) MetricsCollector {
	return func(m *Metrics) {
		fields := appendArgs(args, []any{
			"request", m.Request,
			"duration", m.Duration,
			"in_flight", m.InFlight,
		})
		if m.Error != nil {
			logger.Warn("Request completed with error", append(fields, "error", m.Error)...)
			return
		}
		logger.Debug("Request completed", fields...)
	}
}
