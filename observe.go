package dirsearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Outcome labels on dirsearch_sdk_calls_total.
const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeBackend  = "backend"
	outcomeCanceled = "canceled"
)

type sdkMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dirsearch",
		Subsystem: "sdk",
		Name:      "calls_total",
		Help:      "SDK calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dirsearch",
		Subsystem: "sdk",
		Name:      "call_duration_seconds",
		Help:      "SDK call latency, backend round trip included.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	var err error
	if calls, err = adopt(reg, calls); err != nil {
		return nil, err
	}
	if latency, err = adopt(reg, latency); err != nil {
		return nil, err
	}
	return &sdkMetrics{calls: calls, latency: latency}, nil
}

// adopt registers c, or hands back the collector a previous client already
// registered under the same name.
func adopt[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var dup prometheus.AlreadyRegisteredError
	if !errors.As(err, &dup) {
		return c, fmt.Errorf("dirsearch: register collector: %w", err)
	}
	prev, ok := dup.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("dirsearch: collector registered as %T", dup.ExistingCollector)
	}
	return prev, nil
}

// outcome buckets an SDK error into a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrCanceled):
		return outcomeCanceled
	case errors.Is(err, ErrInvalidFoundingYear),
		errors.Is(err, ErrInvalidPage),
		errors.Is(err, ErrInvalidPageSize),
		errors.Is(err, ErrUnknownFilter),
		errors.Is(err, ErrSuggestionOutOfRange):
		return outcomeInvalid
	default:
		return outcomeBackend
	}
}

type observer struct {
	logger  *zap.Logger
	metrics *sdkMetrics
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// begin starts timing op. Call the returned func with the final error:
//
//	defer c.obs.begin("search")(&err)
func (o *observer) begin(op string) func(errp *error) {
	started := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		o.finish(op, time.Since(started), err)
	}
}

func (o *observer) finish(op string, took time.Duration, err error) {
	if o == nil {
		return
	}
	label := outcome(err)
	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(op, label).Inc()
		o.metrics.latency.WithLabelValues(op).Observe(took.Seconds())
	}
	if o.logger == nil {
		return
	}
	fields := []zap.Field{zap.String("op", op), zap.String("outcome", label), zap.Duration("took", took)}
	if err == nil {
		o.logger.Debug("sdk call", fields...)
		return
	}
	o.logger.Warn("sdk call failed", append(fields, zap.Error(err))...)
}
