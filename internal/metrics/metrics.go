// Package metrics exposes payment submission and session metrics to prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/diewo77/invoice-pay/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics implements checkout.Observer and prometheus.Collector.
type Metrics struct {
	mSubmissions *prometheus.CounterVec
	mDuration    prometheus.Histogram
	mSessions    prometheus.Gauge

	sessions func() int
}

// New creates the collectors. sessions, if not nil, is read on every scrape
// to report the number of open checkout sessions.
func New(sessions func() int) *Metrics {
	return &Metrics{
		sessions: sessions,
		mSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "invoicepay_submissions_total",
			Help: "Settled payment submissions by outcome.",
		}, []string{"outcome"}),
		mDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoicepay_submission_duration_seconds",
			Help:    "Duration of a single payment collaborator call.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		mSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "invoicepay_open_sessions",
			Help: "Checkout sessions currently held in memory.",
		}),
	}
}

func (m *Metrics) ObserveSubmission(status models.AttemptStatus, elapsed time.Duration) {
	m.mSubmissions.WithLabelValues(string(status)).Inc()
	m.mDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.mSubmissions.Describe(ch)
	m.mDuration.Describe(ch)
	m.mSessions.Describe(ch)
}

func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	if m.sessions != nil {
		m.mSessions.Set(float64(m.sessions()))
	}
	m.mSubmissions.Collect(ch)
	m.mDuration.Collect(ch)
	m.mSessions.Collect(ch)
}

type logFunc func(v ...interface{})

func (l logFunc) Println(v ...interface{}) {
	l(v...)
}

// Handler serves the metrics of g in the prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	sugar := zap.L().Named("metrics").Sugar()
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      logFunc(sugar.Warn),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
