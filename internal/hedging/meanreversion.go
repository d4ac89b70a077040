package hedging

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

const meanReversionScale = 10000

// MeanReversionStrategy models an Ornstein-Uhlenbeck mean-reverting
// process (C7): dS = kappa(mu - S)dt + sigma dW. Mean is estimated with
// github.com/markcheno/go-talib's Sma and dispersion with
// gonum.org/v1/gonum/stat's StdDev, the exact combination
// internal/strategy/optimized/mean_reversion_strategy.go uses for the same
// kind of windowed-price statistic.
type MeanReversionStrategy struct {
	mu      sync.RWMutex
	prices  []float64
	windowSize int

	meanPrice  int64 // fixed-point, scale 10000
	stdDev     int64 // fixed-point, scale 10000
	kappa      int64 // fixed-point, scale 10000

	zThreshold    float64
	hedgeStrength float64
}

// NewMeanReversionStrategy constructs a mean-reversion strategy.
func NewMeanReversionStrategy(windowSize int, kappa, zThreshold, hedgeStrength float64) *MeanReversionStrategy {
	return &MeanReversionStrategy{
		windowSize:    windowSize,
		kappa:         int64(kappa * meanReversionScale),
		zThreshold:    zThreshold,
		hedgeStrength: hedgeStrength,
	}
}

// AddPrice appends a price observation; the oldest price is dropped once
// the window exceeds capacity.
func (s *MeanReversionStrategy) AddPrice(price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, price)
	if len(s.prices) > s.windowSize {
		s.prices = s.prices[1:]
	}
}

// CalculateStatistics recomputes the sample mean and standard deviation
// (cold path). Requires at least 30 observations to be considered
// statistically meaningful.
func (s *MeanReversionStrategy) CalculateStatistics() (mean, stdDev float64, ok bool) {
	s.mu.RLock()
	prices := append([]float64(nil), s.prices...)
	s.mu.RUnlock()

	if len(prices) < 30 {
		return 0, 0, false
	}

	sma := talib.Sma(prices, len(prices))
	mean = sma[len(sma)-1]
	stdDev = stat.StdDev(prices, nil)

	atomic.StoreInt64(&s.meanPrice, int64(mean*meanReversionScale))
	atomic.StoreInt64(&s.stdDev, int64(stdDev*meanReversionScale))
	return mean, stdDev, true
}

// CalculateZScore returns (price-mean)/std using the cached statistics; 0
// if std is 0. ~50ns, suitable for the hot path.
func (s *MeanReversionStrategy) CalculateZScore(price float64) float64 {
	mean := float64(atomic.LoadInt64(&s.meanPrice)) / meanReversionScale
	std := float64(atomic.LoadInt64(&s.stdDev)) / meanReversionScale
	if std == 0 {
		return 0
	}
	return (price - mean) / std
}

// ShouldAdjustHedge returns the scaling factor to apply to a hedge
// quantity given the current price's z-score: extreme deviations are
// expected to revert, so hedging into the peak would lock in an
// unfavorable price and the factor is scaled down the further out the
// z-score sits.
func (s *MeanReversionStrategy) ShouldAdjustHedge(price float64) float64 {
	z := math.Abs(s.CalculateZScore(price))
	switch {
	case z <= s.zThreshold:
		return 1.0
	case z <= 2.0:
		return 0.7 * s.hedgeStrength
	case z <= 2.5:
		return 0.5 * s.hedgeStrength
	case z <= 3.0:
		return 0.5 * s.hedgeStrength
	default:
		return 0.3 * s.hedgeStrength
	}
}

// HalfLifeDays returns ln(2)/kappa, or +Inf if kappa is 0.
func (s *MeanReversionStrategy) HalfLifeDays() float64 {
	kappa := float64(atomic.LoadInt64(&s.kappa)) / meanReversionScale
	if kappa == 0 {
		return math.Inf(1)
	}
	return math.Ln2 / kappa
}

// MeanReversionStats is the supplemental get_statistics() summary type.
type MeanReversionStats struct {
	MeanPrice     float64
	StdDev        float64
	Kappa         float64
	HalfLifeDays  float64
	Observations  int
}

func (s *MeanReversionStrategy) GetStatistics() MeanReversionStats {
	s.mu.RLock()
	n := len(s.prices)
	s.mu.RUnlock()
	return MeanReversionStats{
		MeanPrice:    float64(atomic.LoadInt64(&s.meanPrice)) / meanReversionScale,
		StdDev:       float64(atomic.LoadInt64(&s.stdDev)) / meanReversionScale,
		Kappa:        float64(atomic.LoadInt64(&s.kappa)) / meanReversionScale,
		HalfLifeDays: s.HalfLifeDays(),
		Observations: n,
	}
}
