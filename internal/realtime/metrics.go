package realtime

import "github.com/prometheus/client_golang/prometheus"

var (
	updatesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_realtime_updates_received_total",
		Help: "Updates accepted by realtime managers.",
	})
	updatesDispatched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_realtime_updates_dispatched_total",
		Help: "Updates delivered to realtime listeners.",
	})
	flushes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "themeforge_realtime_flushes_total",
		Help: "Non-empty batch flushes.",
	})
	batchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "themeforge_realtime_batch_size",
		Help:    "Updates per flushed batch.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
	connectedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "themeforge_realtime_connected",
		Help: "1 while the realtime subscription is connected.",
	})
)

func init() {
	prometheus.MustRegister(updatesReceived, updatesDispatched, flushes, batchSize, connectedGauge)
}
