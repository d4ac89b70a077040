package metrics

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector exports EngineMetrics as Prometheus gauges/counters,
// additive to (not a replacement for) the Histogram above, which remains
// the structure strategies and tests query directly. Grounded on
// github.com/prometheus/client_golang usage already present in the
// teacher's go.mod dependency surface.
type PrometheusCollector struct {
	metrics *EngineMetrics

	ticksRouted    *prometheus.Desc
	hedgesExecuted *prometheus.Desc
	hedgeVolume    *prometheus.Desc
	latencyP50     *prometheus.Desc
	latencyP95     *prometheus.Desc
	latencyP99     *prometheus.Desc
	latencyMax     *prometheus.Desc
}

// NewPrometheusCollector wraps m for registration with a
// prometheus.Registry.
func NewPrometheusCollector(m *EngineMetrics) *PrometheusCollector {
	ns := "hedge_engine"
	return &PrometheusCollector{
		metrics:        m,
		ticksRouted:    prometheus.NewDesc(ns+"_ticks_routed_total", "Ticks routed by the engine.", nil, nil),
		hedgesExecuted: prometheus.NewDesc(ns+"_hedges_executed_total", "Hedge executions recorded.", nil, nil),
		hedgeVolume:    prometheus.NewDesc(ns+"_hedge_volume_mwh", "Cumulative absolute hedge volume.", nil, nil),
		latencyP50:     prometheus.NewDesc(ns+"_tick_latency_ns_p50", "Tick routing latency, 50th percentile.", nil, nil),
		latencyP95:     prometheus.NewDesc(ns+"_tick_latency_ns_p95", "Tick routing latency, 95th percentile.", nil, nil),
		latencyP99:     prometheus.NewDesc(ns+"_tick_latency_ns_p99", "Tick routing latency, 99th percentile.", nil, nil),
		latencyMax:     prometheus.NewDesc(ns+"_tick_latency_ns_max", "Tick routing latency, max observed.", nil, nil),
	}
}

func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ticksRouted
	ch <- c.hedgesExecuted
	ch <- c.hedgeVolume
	ch <- c.latencyP50
	ch <- c.latencyP95
	ch <- c.latencyP99
	ch <- c.latencyMax
}

func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.ticksRouted, prometheus.CounterValue, float64(c.metrics.TicksRouted()))
	ch <- prometheus.MustNewConstMetric(c.hedgesExecuted, prometheus.CounterValue, float64(c.metrics.HedgesExecuted()))
	ch <- prometheus.MustNewConstMetric(c.hedgeVolume, prometheus.GaugeValue, c.metrics.HedgeVolume())
	ch <- prometheus.MustNewConstMetric(c.latencyP50, prometheus.GaugeValue, float64(c.metrics.TickLatency.Percentile(0.50)))
	ch <- prometheus.MustNewConstMetric(c.latencyP95, prometheus.GaugeValue, float64(c.metrics.TickLatency.Percentile(0.95)))
	ch <- prometheus.MustNewConstMetric(c.latencyP99, prometheus.GaugeValue, float64(c.metrics.TickLatency.Percentile(0.99)))
	ch <- prometheus.MustNewConstMetric(c.latencyMax, prometheus.GaugeValue, float64(c.metrics.TickLatency.Max()))
}
