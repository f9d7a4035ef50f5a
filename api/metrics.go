package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/meikuraledutech/pipeline"
)

type metrics struct {
	requests *prometheus.CounterVec
	nodes    prometheus.Histogram
	edges    prometheus.Histogram
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	f := promauto.With(reg)
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 8)

	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pipeline_parse_requests_total",
			Help: "Parse requests by result (dag, cyclic, invalid)",
		}, []string{"result"}),
		nodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_parse_nodes",
			Help:    "Nodes per parsed pipeline",
			Buckets: sizeBuckets,
		}),
		edges: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_parse_edges",
			Help:    "Edges per parsed pipeline",
			Buckets: sizeBuckets,
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pipeline_parse_duration_seconds",
			Help:    "Acyclicity check duration",
			Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
	}
}

func (m *metrics) observe(r pipeline.Result, d time.Duration) {
	label := "cyclic"
	if r.IsDAG {
		label = "dag"
	}
	m.requests.WithLabelValues(label).Inc()
	m.nodes.Observe(float64(r.NumNodes))
	m.edges.Observe(float64(r.NumEdges))
	m.duration.Observe(d.Seconds())
}

func (m *metrics) observeInvalid() {
	m.requests.WithLabelValues("invalid").Inc()
}
