package engine

import (
	"math"
	"testing"

	"github.com/quantcore/hedge-engine/internal/hedging"
	"github.com/quantcore/hedge-engine/internal/marketdata"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, cfg hedging.HedgeConfig) *Engine {
	t.Helper()
	e, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	return e
}

// S1 Full workflow.
func TestScenarioS1FullWorkflow(t *testing.T) {
	cfg := hedging.SimpleConfig(-10_000.0, 1.125)
	cfg.RehedgeThresholdBps = 500
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 48.20, 150, marketdata.SideBid, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(2, 48.25, 130, marketdata.SideAsk, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(3, 50.10, 120, marketdata.SideBid, marketdata.InstrumentFutures))
	e.OnTick(marketdata.NewTick(4, 50.15, 140, marketdata.SideAsk, marketdata.InstrumentFutures))

	recs, ok := e.GetHedgeRecommendation()
	require.True(t, ok)
	require.Len(t, recs, 1)
	rec := recs[0]
	require.Equal(t, marketdata.SideAsk, rec.Side)
	require.Equal(t, 50.15, rec.Price)
	require.GreaterOrEqual(t, rec.Quantity, 11_050.0)
	require.LessOrEqual(t, rec.Quantity, 11_450.0)
	require.Equal(t, hedging.UrgencyHigh, rec.Urgency)
}

// S2 Below threshold, S3 above threshold.
func TestScenarioS2S3ThresholdGate(t *testing.T) {
	cfg := hedging.SimpleConfig(-10_000.0, 1.125)
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 48.20, 150, marketdata.SideBid, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(2, 48.25, 130, marketdata.SideAsk, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(3, 50.10, 120, marketdata.SideBid, marketdata.InstrumentFutures))
	e.OnTick(marketdata.NewTick(4, 50.15, 140, marketdata.SideAsk, marketdata.InstrumentFutures))

	recs, ok := e.GetHedgeRecommendation()
	require.True(t, ok)
	require.Len(t, recs, 1)
	require.NoError(t, e.ExecuteHedge(recs[0]))
	// Net exposure after one execute: -10,000 + 11,250 = 1,250.
	require.Less(t, math.Abs(e.GetPosition()+e.GetHedgePosition()), 2_000.0)

	// S2: change position to -10,100 (1% move, below 5% threshold).
	e.delta.SetPosition(-10_100.0)
	_, ok = e.GetHedgeRecommendation()
	require.False(t, ok)

	// S3: change position to -11,000 (well above threshold).
	e.delta.SetPosition(-11_000.0)
	_, ok = e.GetHedgeRecommendation()
	require.True(t, ok)
}

// S4 MVHR convergence.
func TestScenarioS4MVHRConvergence(t *testing.T) {
	cfg := hedging.DefaultConfig()
	cfg.InitialPosition = -10_000.0
	cfg.EnableMVHR = true
	cfg.EnableMeanReversion = false
	cfg.StatisticsWindowHours = 200
	e := newTestEngine(t, cfg)

	for i := 0; i < 50; i++ {
		spot := 45.0 + 0.1*float64(i)
		futures := 50.0 + 0.12*float64(i)
		e.mvhr.AddObservation(spot, futures)
	}

	ratio, ok := e.mvhr.CalculateOptimalRatio()
	require.True(t, ok)
	require.Greater(t, ratio, 0.3)
	require.Less(t, ratio, 1.5)

	stats, ok := e.mvhr.GetStatistics()
	require.True(t, ok)
	require.Greater(t, stats.Correlation, 0.9)
}

// S5 Mean-reversion suppression.
func TestScenarioS5MeanReversionSuppression(t *testing.T) {
	cfg := hedging.DefaultConfig()
	cfg.EnableMVHR = false
	cfg.EnableMeanReversion = true
	cfg.StatisticsWindowHours = 200
	e := newTestEngine(t, cfg)

	for i := 0; i < 40; i++ {
		price := 45.0
		if i%2 == 0 {
			price = 43.0
		} else {
			price = 47.0
		}
		e.meanReversion.AddPrice(price)
	}
	e.meanReversion.CalculateStatistics()

	factor := e.meanReversion.ShouldAdjustHedge(55.0)
	require.InDelta(t, 0.3*0.70, factor, 0.05)
}

func TestOnTickRecordsLatencyAndDropsUnknownInstrument(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 10.0, 1, marketdata.SideBid, 99))
	require.Equal(t, uint64(1), e.Metrics().TicksRouted())

	bid, _ := e.SpotOrderBook().BestBid()
	require.Equal(t, 0.0, bid)
}

func TestOnTickPublishesToCorrectBook(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 45.50, 100, marketdata.SideBid, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(2, 50.15, 120, marketdata.SideAsk, marketdata.InstrumentFutures))

	spotBid, _ := e.SpotOrderBook().BestBid()
	require.Equal(t, 45.50, spotBid)

	futuresAsk, _ := e.FuturesOrderBook().BestAsk()
	require.Equal(t, 50.15, futuresAsk)
}

func TestHealthStatusHealthyWithNoLoad(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)
	require.Equal(t, HealthStatusHealthy, e.HealthStatus())
}

func TestExecuteHedgeRejectsNilRecommendation(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)
	err := e.ExecuteHedge(nil)
	require.Error(t, err)
}

func TestOnTickRoutesCO2Ticks(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 80.0, 50, marketdata.SideBid, marketdata.InstrumentCO2))

	bid, size := e.CO2OrderBook().BestBid()
	require.Equal(t, 80.0, bid)
	require.Equal(t, uint64(50), size)
}

// S6 Spark spread, wired through the engine rather than the strategy
// directly: power/gas/CO2 ticks feed the engine's three books and
// GetHedgeRecommendation folds the strategy's three-leg set into its
// result alongside (or instead of) the delta-based recommendation.
func TestSparkSpreadFoldedIntoGetHedgeRecommendation(t *testing.T) {
	cfg := hedging.SimpleConfig(0, 1.0)
	cfg.EnableSparkSpread = true
	cfg.SparkSpreadCapacityMW = 400
	cfg.SparkSpreadHeatRate = 2.0
	cfg.SparkSpreadEmissionFactor = 0.202
	cfg.SparkSpreadTargetSpread = 50
	cfg.SparkSpreadHoursAhead = 24
	e := newTestEngine(t, cfg)

	e.OnTick(marketdata.NewTick(1, 100.0, 10, marketdata.SideBid, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(2, 40.0, 10, marketdata.SideAsk, marketdata.InstrumentFutures))
	e.OnTick(marketdata.NewTick(3, 80.0, 10, marketdata.SideAsk, marketdata.InstrumentCO2))

	recs, ok := e.GetHedgeRecommendation()
	require.True(t, ok)
	require.Len(t, recs, 3) // no delta signal fires at a zero initial position

	power, gas, co2 := recs[0], recs[1], recs[2]
	require.Equal(t, marketdata.SideBid, power.Side)
	require.InDelta(t, 9600.0, power.Quantity, 0.1)
	require.Equal(t, marketdata.SideAsk, gas.Side)
	require.InDelta(t, 19200.0, gas.Quantity, 0.1)
	require.Equal(t, marketdata.SideAsk, co2.Side)
	require.InDelta(t, 3878.4, co2.Quantity, 0.1)

	require.NoError(t, e.ExecuteSparkSpreadHedge(power.Quantity, gas.Quantity, co2.Quantity))
}

func TestExecuteSparkSpreadHedgeRejectsWhenDisabled(t *testing.T) {
	cfg := hedging.DefaultConfig()
	e := newTestEngine(t, cfg)
	err := e.ExecuteSparkSpreadHedge(100, 200, 40)
	require.Error(t, err)
}

// Emergency escalation: an already-High delta signal compounded by an
// extreme mean-reversion z-score (|z| > 3.0) escalates to Emergency.
func TestMeanReversionEmergencyEscalation(t *testing.T) {
	cfg := hedging.SimpleConfig(-10_000.0, 1.125)
	cfg.EnableMeanReversion = true
	cfg.StatisticsWindowHours = 200
	e := newTestEngine(t, cfg)

	for i := 0; i < 40; i++ {
		price := 44.9
		if i%2 == 0 {
			price = 45.1
		}
		e.OnTick(marketdata.NewTick(uint64(i), price, 10, marketdata.SideBid, marketdata.InstrumentSpot))
	}
	e.meanReversion.CalculateStatistics()

	e.OnTick(marketdata.NewTick(100, 54.90, 10, marketdata.SideBid, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(101, 55.10, 10, marketdata.SideAsk, marketdata.InstrumentSpot))
	e.OnTick(marketdata.NewTick(102, 50.10, 120, marketdata.SideBid, marketdata.InstrumentFutures))
	e.OnTick(marketdata.NewTick(103, 50.15, 140, marketdata.SideAsk, marketdata.InstrumentFutures))

	recs, ok := e.GetHedgeRecommendation()
	require.True(t, ok)
	require.Len(t, recs, 1)
	require.Equal(t, hedging.UrgencyEmergency, recs[0].Urgency)
}
