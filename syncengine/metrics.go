package syncengine

import "github.com/prometheus/client_golang/prometheus"

// metrics are the engine's Prometheus instruments. registerer may be nil, in
// which case the gauges/counters are created but never registered --
// useful for tests that construct many Engines in one process without
// hitting prometheus's duplicate-registration panic.
type metrics struct {
	syncHeight prometheus.Gauge
	batchSize  prometheus.Gauge
	reorgs     prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		syncHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletcore",
			Subsystem: "sync",
			Name:      "height",
			Help:      "Last block height ingested by the sync engine.",
		}),
		batchSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletcore",
			Subsystem: "sync",
			Name:      "batch_size",
			Help:      "Current adaptive block batch size.",
		}),
		reorgs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "walletcore",
			Subsystem: "sync",
			Name:      "reorgs_total",
			Help:      "Number of chain reorganizations handled.",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.syncHeight, m.batchSize, m.reorgs)
	}
	return m
}
