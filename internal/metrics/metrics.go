package metrics

import "sync/atomic"

// EngineMetrics is the engine-wide metrics object: a tick-latency
// histogram plus running counters for ticks processed and hedges executed.
type EngineMetrics struct {
	TickLatency   *Histogram
	ticksRouted   uint64
	hedgesExecuted uint64
	hedgeVolume   uint64 // fixed-point accumulated abs quantity, scale 100
}

// NewEngineMetrics constructs an empty EngineMetrics.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{TickLatency: NewHistogram()}
}

// RecordTick records one tick's end-to-end routing latency and bumps the
// tick counter.
func (m *EngineMetrics) RecordTick(latencyNs int64) {
	m.TickLatency.Record(latencyNs)
	atomic.AddUint64(&m.ticksRouted, 1)
}

// RecordHedgeExecution records one hedge execution's (count, volume).
func (m *EngineMetrics) RecordHedgeExecution(quantityAbs float64) {
	atomic.AddUint64(&m.hedgesExecuted, 1)
	atomic.AddUint64(&m.hedgeVolume, uint64(quantityAbs*100))
}

func (m *EngineMetrics) TicksRouted() uint64    { return atomic.LoadUint64(&m.ticksRouted) }
func (m *EngineMetrics) HedgesExecuted() uint64 { return atomic.LoadUint64(&m.hedgesExecuted) }
func (m *EngineMetrics) HedgeVolume() float64 {
	return float64(atomic.LoadUint64(&m.hedgeVolume)) / 100
}
