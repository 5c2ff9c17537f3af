package zone

import "github.com/prometheus/client_golang/prometheus"

// Metrics метрики сборки зон
type Metrics struct {
	assembleSeconds prometheus.Histogram
	blocksLoaded    prometheus.Counter
	blocksAbsent    prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		assembleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zone",
			Name:      "bundle_assemble_seconds",
			Help:      "Длительность сборки зоны из файлов.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		blocksLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zone",
			Name:      "blocks_loaded_total",
			Help:      "Число загруженных блоков.",
		}),
		blocksAbsent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "zone",
			Name:      "blocks_absent_total",
			Help:      "Число пустых ячеек сетки при сборке.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.assembleSeconds, m.blocksLoaded, m.blocksAbsent)
	}
	return m
}
