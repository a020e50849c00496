package person

import "github.com/prometheus/client_golang/prometheus"

var (
	opsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "person_store_ops_total", Help: "Record store operations"},
		[]string{"op", "result"},
	)
	storageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "person_storage_failures_total", Help: "Swallowed storage read/write failures"},
		[]string{"op"},
	)
	persistedBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "person_storage_write_bytes",
		Help:    "Size of the serialized collection per write",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	})
	workspacesLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "person_workspaces_loaded",
		Help: "Workspaces currently held in memory",
	})
)

func init() {
	prometheus.MustRegister(opsTotal, storageFailures, persistedBytes, workspacesLoaded)
}

func observeOp(op string, ok bool) {
	res := "ok"
	if !ok {
		res = "noop"
	}
	opsTotal.WithLabelValues(op, res).Inc()
}
