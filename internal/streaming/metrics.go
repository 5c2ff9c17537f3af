package streaming

import "github.com/prometheus/client_golang/prometheus"

// Результаты запросов для zone_requests_total
const (
	resultReady    = "ready"
	resultDegraded = "degraded"
	resultFailed   = "failed"
	resultCached   = "cached"
)

// Metrics метрики контроллера
type Metrics struct {
	requestsInflight prometheus.Gauge
	requestsTotal    *prometheus.CounterVec
	spawnedZones     prometheus.Gauge
	readyTicks       prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zone",
			Name:      "requests_inflight",
			Help:      "Активные запросы загрузки зон.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zone",
			Name:      "requests_total",
			Help:      "Завершённые запросы загрузки зон по результату.",
		}, []string{"result"}),
		spawnedZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zone",
			Name:      "spawned_zones",
			Help:      "Число зон с созданной сценой.",
		}),
		readyTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "zone",
			Name:      "ready_ticks",
			Help:      "Тиков от создания сцены до готовности зоны.",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 11),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.requestsInflight, m.requestsTotal, m.spawnedZones, m.readyTicks)
	}
	return m
}
