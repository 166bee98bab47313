package store

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zombor/billed/internal/bill"
)

// Metrics holds the persistence API client metrics
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billed_store_requests_total",
			Help: "Persistence API calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billed_store_request_duration_seconds",
			Help:    "Persistence API call latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Instrumented wraps a Store and records metrics for every call.
// Results and errors pass through untouched.
type Instrumented struct {
	next    Store
	metrics *Metrics
}

// Instrument wraps next with metrics
func Instrument(next Store, metrics *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (i *Instrumented) List(ctx context.Context) ([]bill.Bill, error) {
	start := time.Now()
	bills, err := i.next.List(ctx)
	i.metrics.observe("list", start, err)
	return bills, err
}

func (i *Instrumented) Create(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	start := time.Now()
	created, err := i.next.Create(ctx, b)
	i.metrics.observe("create", start, err)
	return created, err
}

func (i *Instrumented) Update(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	start := time.Now()
	updated, err := i.next.Update(ctx, b)
	i.metrics.observe("update", start, err)
	return updated, err
}

func (i *Instrumented) Upload(ctx context.Context, u Upload) (Attachment, error) {
	start := time.Now()
	attachment, err := i.next.Upload(ctx, u)
	i.metrics.observe("upload", start, err)
	return attachment, err
}
