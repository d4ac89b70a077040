// Package engine implements the tick dispatcher / hedge engine: it routes
// ticks into the order books and strategy windows under a strict latency
// budget and composes the delta, MVHR, mean-reversion and spark-spread
// strategies into a closed set of recommendations.
package engine

import (
	"fmt"
	"math"

	"github.com/quantcore/hedge-engine/internal/clock"
	"github.com/quantcore/hedge-engine/internal/hedging"
	"github.com/quantcore/hedge-engine/internal/marketdata"
	"github.com/quantcore/hedge-engine/internal/metrics"
	herrors "github.com/quantcore/hedge-engine/pkg/errors"
	"go.uber.org/zap"
)

// meanReversionEmergencyZ is the z-score above which an already-High delta
// recommendation is escalated to Emergency.
const meanReversionEmergencyZ = 3.0

// targetLatencyNs is the hot-path budget (~200-400ns); health status is
// reported relative to it.
const targetLatencyNs = 400

const (
	HealthStatusHealthy   = "healthy"
	HealthStatusDegraded  = "degraded"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusCritical  = "critical"
)

const (
	mvhrRecalcHours        = 24
	meanReversionKappa     = 0.20
	meanReversionZThresh   = 2.0
	meanReversionStrength  = 0.70
)

// Engine is the hedge engine: three order books (spot/power id=1,
// futures/gas id=2, CO2 id=3), the delta hedger, the optional statistical
// overlays, the optional spark-spread peer strategy, and metrics. All
// fields are heap-allocated once at construction and live for the
// engine's lifetime — no hot-path allocation.
type Engine struct {
	spotBook    *marketdata.OrderBook
	futuresBook *marketdata.OrderBook
	co2Book     *marketdata.OrderBook

	delta         *hedging.DeltaHedge
	mvhr          *hedging.MVHRStrategy
	meanReversion *hedging.MeanReversionStrategy
	sparkSpread   *hedging.SparkSpreadStrategy

	sparkSpreadHoursAhead float64

	metrics *metrics.EngineMetrics
	logger  *zap.Logger
}

// New validates config and constructs the engine. A Config error here is
// fatal to this engine instance.
func New(config hedging.HedgeConfig, logger *zap.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		spotBook:    marketdata.NewOrderBook(marketdata.InstrumentSpot),
		futuresBook: marketdata.NewOrderBook(marketdata.InstrumentFutures),
		co2Book:     marketdata.NewOrderBook(marketdata.InstrumentCO2),
		delta:       hedging.NewDeltaHedge(config.InitialPosition, config.DefaultHedgeRatio, config.RehedgeThresholdBps),
		metrics:     metrics.NewEngineMetrics(),
		logger:      logger,
	}

	if config.EnableMVHR {
		e.mvhr = hedging.NewMVHRStrategy(config.StatisticsWindowHours, mvhrRecalcHours)
	}
	if config.EnableMeanReversion {
		e.meanReversion = hedging.NewMeanReversionStrategy(config.StatisticsWindowHours, meanReversionKappa, meanReversionZThresh, meanReversionStrength)
	}
	if config.EnableSparkSpread {
		e.sparkSpread = hedging.NewSparkSpreadStrategy(
			config.SparkSpreadCapacityMW, config.SparkSpreadHeatRate,
			config.SparkSpreadEmissionFactor, config.SparkSpreadTargetSpread)
		e.sparkSpreadHoursAhead = config.SparkSpreadHoursAhead
	}

	return e, nil
}

// OnTick is the hot path (~200-400ns target): dispatch by instrument id,
// publish into the matching book at level 0 using the tick's own
// timestamp, feed the enabled strategy windows, and record routing
// latency. The CO2 book is only ever read by the spark-spread strategy,
// so it is updated unconditionally regardless of whether spark-spread is
// enabled. Unknown instrument ids are dropped.
func (e *Engine) OnTick(tick marketdata.Tick) {
	t0 := clock.NowNs()

	switch tick.InstrumentID {
	case marketdata.InstrumentSpot:
		if tick.IsBid() {
			e.spotBook.UpdateBid(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		} else {
			e.spotBook.UpdateAsk(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		}
		if e.meanReversion != nil {
			e.meanReversion.AddPrice(tick.PriceF64())
		}
	case marketdata.InstrumentFutures:
		if tick.IsBid() {
			e.futuresBook.UpdateBid(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		} else {
			e.futuresBook.UpdateAsk(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		}
		if e.mvhr != nil {
			// Sampling mid_price() without checking both sides are populated
			// can poison early observations if one side is still zero; left
			// unguarded deliberately rather than silently patched over.
			e.mvhr.AddObservation(e.spotBook.MidPrice(), e.futuresBook.MidPrice())
		}
	case marketdata.InstrumentCO2:
		if tick.IsBid() {
			e.co2Book.UpdateBid(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		} else {
			e.co2Book.UpdateAsk(0, tick.PriceFP, uint64(tick.Quantity), tick.TimestampNs)
		}
	default:
		e.logger.Debug("dropping tick for unknown instrument", zap.Uint8("instrument_id", tick.InstrumentID))
	}

	t1 := clock.NowNs()
	e.metrics.RecordTick(int64(t1 - t0))
}

// GetHedgeRecommendation is the cold path. It composes every enabled
// strategy into a single closed set of recommendations, known at
// construction: the delta hedger's base recommendation (refreshed by MVHR's
// hedge ratio and scaled by mean-reversion's z-score factor, each
// annotating rec.Reason), followed by the spark-spread strategy's
// three-leg set if spark-spread is enabled and fires. Returns (nil, false)
// only if nothing fired.
func (e *Engine) GetHedgeRecommendation() ([]*hedging.HedgeRecommendation, bool) {
	var recs []*hedging.HedgeRecommendation

	if rec, ok := e.delta.GetRecommendation(e.futuresBook); ok {
		if e.mvhr != nil {
			ratio := e.mvhr.GetHedgeRatio()
			e.delta.UpdateHedgeRatio(ratio)
			rec.Reason += fmt.Sprintf(" [MVHR ratio: %.3f]", ratio)
		}

		if e.meanReversion != nil {
			price := e.spotBook.MidPrice()
			factor := e.meanReversion.ShouldAdjustHedge(price)
			rec.Quantity *= factor
			rec.Reason += fmt.Sprintf(" [MR adjustment: %.2f]", factor)

			// Emergency escalation: an already-High delta signal compounded
			// by an extreme (|z|>3.0) mean-reversion deviation.
			if rec.Urgency == hedging.UrgencyHigh {
				z := e.meanReversion.CalculateZScore(price)
				if math.Abs(z) > meanReversionEmergencyZ {
					rec.Urgency = hedging.UrgencyEmergency
					rec.Reason += fmt.Sprintf(" [MR z-score %.2f emergency escalation]", z)
				}
			}
		}

		recs = append(recs, rec)
	}

	if e.sparkSpread != nil {
		if ss, ok := e.sparkSpread.GetRecommendations(e.spotBook, e.futuresBook, e.co2Book, e.sparkSpreadHoursAhead); ok {
			recs = append(recs, &ss.Power, &ss.Gas, &ss.CO2)
		}
	}

	return recs, len(recs) > 0
}

// ExecuteHedge advances the delta hedger's position with the given
// delta-strategy recommendation and records the execution into metrics.
// Fails only for a nil recommendation (InvalidState); there is no
// position-limit check.
func (e *Engine) ExecuteHedge(rec *hedging.HedgeRecommendation) error {
	if rec == nil {
		return herrors.New(herrors.KindInvalidState, "cannot execute a nil recommendation")
	}
	e.delta.ExecuteHedge(rec.Quantity, rec.Side)
	e.metrics.RecordHedgeExecution(rec.Quantity)
	return nil
}

// ExecuteSparkSpreadHedge records a fill across all three spark-spread
// legs (power sold, gas and CO2 bought) and records the execution into
// metrics. Pass the same volumes used to build the recommendation set
// GetHedgeRecommendation returned. Fails if spark-spread is not enabled.
func (e *Engine) ExecuteSparkSpreadHedge(powerVolume, gasVolume, co2Volume float64) error {
	if e.sparkSpread == nil {
		return herrors.New(herrors.KindInvalidState, "spark-spread strategy is not enabled")
	}
	e.sparkSpread.ExecuteHedge(powerVolume, gasVolume, co2Volume)
	e.metrics.RecordHedgeExecution(powerVolume + gasVolume + co2Volume)
	return nil
}

func (e *Engine) GetPosition() float64       { return e.delta.GetPosition() }
func (e *Engine) GetHedgePosition() float64  { return e.delta.GetHedgePosition() }
func (e *Engine) SpotOrderBook() *marketdata.OrderBook    { return e.spotBook }
func (e *Engine) FuturesOrderBook() *marketdata.OrderBook { return e.futuresBook }
func (e *Engine) CO2OrderBook() *marketdata.OrderBook     { return e.co2Book }
func (e *Engine) Metrics() *metrics.EngineMetrics         { return e.metrics }

// HealthStatus buckets the average tick-routing latency against
// targetLatencyNs.
func (e *Engine) HealthStatus() string {
	avg := e.metrics.TickLatency.Average()
	switch {
	case avg < targetLatencyNs/2:
		return HealthStatusHealthy
	case avg < targetLatencyNs:
		return HealthStatusDegraded
	case avg < targetLatencyNs*2:
		return HealthStatusUnhealthy
	default:
		return HealthStatusCritical
	}
}
