package hedging

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quantcore/hedge-engine/internal/clock"
	"gonum.org/v1/gonum/stat"
)

const mvhrScale = 10000

// MVHRStrategy computes the Minimum-Variance Hedge Ratio from a sliding
// window of paired (spot, futures) observations. Statistics use
// gonum.org/v1/gonum/stat; its unbiased (n-1 denominator) Variance and
// Covariance give the standard sample-based hedge ratio directly, with no
// hand-rolled summation loop needed.
type MVHRStrategy struct {
	mu      sync.RWMutex
	spot    []float64
	futures []float64

	windowSize          int
	recalcIntervalNanos int64

	ratio      int64 // fixed-point, scale 10000
	lastCalcNs int64
}

// NewMVHRStrategy constructs an MVHR strategy with the given observation
// window size (paired spot/futures prices) and recalculation interval
// in hours.
func NewMVHRStrategy(windowSize int, recalcIntervalHours int) *MVHRStrategy {
	return &MVHRStrategy{
		windowSize:          windowSize,
		recalcIntervalNanos: int64(recalcIntervalHours) * int64(time.Hour),
		ratio:               mvhrScale, // default ratio 1.0 before first successful calc
	}
}

// AddObservation appends a (spot, futures) mid-price pair. When the window
// exceeds capacity, the oldest pair is dropped from both sides jointly.
func (m *MVHRStrategy) AddObservation(spot, futures float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spot = append(m.spot, spot)
	m.futures = append(m.futures, futures)
	if len(m.spot) > m.windowSize {
		m.spot = m.spot[1:]
		m.futures = m.futures[1:]
	}
}

func returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	r := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		r[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return r
}

// CalculateOptimalRatio recomputes cov(spot_returns, futures_returns) /
// var(futures_returns) over the current window and, if the result passes
// the degeneracy and sanity checks, publishes it into the cached atomic
// and returns (ratio, true). Requires >= 3 observations, a non-degenerate
// futures variance (>1e-10), and |ratio| <= 5.
func (m *MVHRStrategy) CalculateOptimalRatio() (float64, bool) {
	m.mu.RLock()
	spot := append([]float64(nil), m.spot...)
	futures := append([]float64(nil), m.futures...)
	m.mu.RUnlock()

	if len(spot) < 3 {
		return 0, false
	}

	spotReturns := returns(spot)
	futuresReturns := returns(futures)

	variance := stat.Variance(futuresReturns, nil)
	if math.Abs(variance) < 1e-10 {
		return 0, false
	}
	covariance := stat.Covariance(spotReturns, futuresReturns, nil)
	ratio := covariance / variance
	if math.Abs(ratio) > 5 {
		return 0, false
	}

	atomic.StoreInt64(&m.ratio, int64(ratio*mvhrScale))
	atomic.StoreInt64(&m.lastCalcNs, int64(clock.NowNs()))
	return ratio, true
}

// GetHedgeRatio returns the cached ratio (default 1.0 before first
// successful CalculateOptimalRatio).
func (m *MVHRStrategy) GetHedgeRatio() float64 {
	return float64(atomic.LoadInt64(&m.ratio)) / mvhrScale
}

// NeedsRecalculation reports whether the configured recalculation interval
// has elapsed since the last successful calculation.
func (m *MVHRStrategy) NeedsRecalculation() bool {
	last := atomic.LoadInt64(&m.lastCalcNs)
	return int64(clock.NowNs())-last >= m.recalcIntervalNanos
}

// MVHRStatistics is a diagnostic summary: ratio plus Pearson correlation
// and per-side volatility.
type MVHRStatistics struct {
	Ratio             float64
	Correlation       float64
	SpotVolatility    float64
	FuturesVolatility float64
	Observations      int
}

// GetStatistics returns the current MVHR statistics; requires >= 3
// observations, same as CalculateOptimalRatio.
func (m *MVHRStrategy) GetStatistics() (MVHRStatistics, bool) {
	m.mu.RLock()
	spot := append([]float64(nil), m.spot...)
	futures := append([]float64(nil), m.futures...)
	m.mu.RUnlock()

	if len(spot) < 3 {
		return MVHRStatistics{}, false
	}

	spotReturns := returns(spot)
	futuresReturns := returns(futures)
	spotStd := stat.StdDev(spotReturns, nil)
	futuresStd := stat.StdDev(futuresReturns, nil)
	correlation := stat.Correlation(spotReturns, futuresReturns, nil)

	return MVHRStatistics{
		Ratio:             m.GetHedgeRatio(),
		Correlation:       correlation,
		SpotVolatility:    spotStd,
		FuturesVolatility: futuresStd,
		Observations:      len(spot),
	}, true
}
