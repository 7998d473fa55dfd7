// Package metrics provides Prometheus instrumentation for postcodes.io
// requests.
package metrics

import (
	"context"
	"errors"
	"strconv"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourusername/postcodes-io/postcode"
)

// Outcome label values besides the HTTP status of a failed response.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the request metrics.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  prometheus.Registerer
	clock     clockwork.Clock

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewRecorder creates the metrics and registers them.
func NewRecorder(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		namespace: "postcodes",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "postcodes.io requests by operation and outcome.",
	}, []string{"operation", "outcome"})
	r.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "postcodes.io request latency by operation.",
		Buckets:   r.buckets,
	}, []string{"operation"})
	r.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: "client",
		Name:      "requests_in_flight",
		Help:      "postcodes.io requests currently awaiting a response.",
	})

	for _, c := range []prometheus.Collector{r.requests, r.duration, r.inFlight} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Requests exposes the request counter, mainly for tests.
func (r *Recorder) Requests() *prometheus.CounterVec { return r.requests }

// Duration exposes the latency histogram, mainly for tests.
func (r *Recorder) Duration() *prometheus.HistogramVec { return r.duration }

// Wrap returns a Transport recording every request made through next.
// The operation label comes from postcode.OperationFromContext.
func (r *Recorder) Wrap(next postcode.Transport) postcode.Transport {
	return &instrumented{next: next, rec: r}
}

func (r *Recorder) observe(ctx context.Context, call func() error) error {
	op := postcode.OperationFromContext(ctx)
	if op == "" {
		op = "unknown"
	}
	r.inFlight.Inc()
	defer r.inFlight.Dec()

	start := r.clock.Now()
	err := call()
	r.duration.WithLabelValues(op).Observe(r.clock.Since(start).Seconds())
	r.requests.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var re *postcode.ResponseError
	if errors.As(err, &re) {
		return strconv.Itoa(re.StatusCode)
	}
	return OutcomeError
}

type instrumented struct {
	next postcode.Transport
	rec  *Recorder
}

func (t *instrumented) Get(ctx context.Context, url string, out any) error {
	return t.rec.observe(ctx, func() error { return t.next.Get(ctx, url, out) })
}

func (t *instrumented) Post(ctx context.Context, url string, body, out any) error {
	return t.rec.observe(ctx, func() error { return t.next.Post(ctx, url, body, out) })
}
