package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's prometheus collectors.
type Metrics struct {
	files         *prometheus.CounterVec
	records       prometheus.Counter
	batchDuration prometheus.Histogram
}

// Outcome labels of the files counter.
const (
	outcomeOK        = "ok"
	outcomeDataError = "data_error"
	outcomeFatal     = "fatal"
	outcomeSkipped   = "skipped"
)

// NewMetrics registers the collectors on reg. openSessions is sampled at scrape time.
func NewMetrics(reg prometheus.Registerer, openSessions func() int) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cellkpi",
			Name:      "files_total",
			Help:      "Uploaded files by processing outcome.",
		}, []string{"outcome"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cellkpi",
			Name:      "records_appended_total",
			Help:      "Summary records appended to session stores.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cellkpi",
			Name:      "upload_duration_seconds",
			Help:      "Time to process one upload request.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	sessions := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "cellkpi",
		Name:      "sessions_open",
		Help:      "Sessions currently open.",
	}, func() float64 { return float64(openSessions()) })

	reg.MustRegister(m.files, m.records, m.batchDuration, sessions)
	return m
}
