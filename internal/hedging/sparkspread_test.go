package hedging

import (
	"testing"

	"github.com/quantcore/hedge-engine/internal/marketdata"
	"github.com/stretchr/testify/require"
)

func priceFP(price float64) int64 {
	return int64(price * marketdata.PriceScale)
}

func TestSparkSpreadCalculation(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 50.0)
	spread := s.CalculateSpread(100.0, 40.0, 80.0)
	require.InDelta(t, 63.84, spread, 0.01)
}

func TestSparkSpreadProfitability(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 50.0)
	require.True(t, s.IsProfitable(65.0))
	require.False(t, s.IsProfitable(45.0))
}

func TestSparkSpreadHedgeVolumes(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 50.0)
	power, gas, co2 := s.CalculateHedgeVolumes(24.0)
	require.Equal(t, 2400.0, power)
	require.Equal(t, 4800.0, gas)
	require.InDelta(t, 969.6, co2, 0.1)
}

func TestSparkSpreadScenarioS6(t *testing.T) {
	s := NewSparkSpreadStrategy(400.0, 2.0, 0.202, 50.0)

	powerBook := marketdata.NewOrderBook(marketdata.InstrumentSpot)
	powerBook.UpdateBid(0, priceFP(100.0), 100, 1)
	gasBook := marketdata.NewOrderBook(marketdata.InstrumentFutures)
	gasBook.UpdateAsk(0, priceFP(40.0), 100, 1)
	co2Book := marketdata.NewOrderBook(marketdata.InstrumentCO2)
	co2Book.UpdateAsk(0, priceFP(80.0), 100, 1)

	recs, ok := s.GetRecommendations(powerBook, gasBook, co2Book, 24.0)
	require.True(t, ok)
	require.InDelta(t, 9600.0, recs.Power.Quantity, 0.1)
	require.InDelta(t, 19200.0, recs.Gas.Quantity, 0.1)
	require.InDelta(t, 3878.4, recs.CO2.Quantity, 0.1)
	require.InDelta(t, 13.84, recs.ProfitPerMWh, 0.01)
	require.Equal(t, marketdata.SideBid, recs.Power.Side)
	require.Equal(t, marketdata.SideAsk, recs.Gas.Side)
	require.Equal(t, marketdata.SideAsk, recs.CO2.Side)
}

func TestSparkSpreadRehedgeGate(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 50.0)

	powerBook := marketdata.NewOrderBook(marketdata.InstrumentSpot)
	powerBook.UpdateBid(0, priceFP(100.0), 100, 1)
	gasBook := marketdata.NewOrderBook(marketdata.InstrumentFutures)
	gasBook.UpdateAsk(0, priceFP(40.0), 100, 1)
	co2Book := marketdata.NewOrderBook(marketdata.InstrumentCO2)
	co2Book.UpdateAsk(0, priceFP(80.0), 100, 1)

	recs, ok := s.GetRecommendations(powerBook, gasBook, co2Book, 24.0)
	require.True(t, ok)
	s.ExecuteHedge(recs.Power.Quantity, recs.Gas.Quantity, recs.CO2.Quantity)

	_, ok = s.GetRecommendations(powerBook, gasBook, co2Book, 24.0)
	require.False(t, ok, "identical volumes should not clear the rehedge threshold")
}

func TestSparkSpreadExecuteAndPnL(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 50.0)
	s.ExecuteHedge(100.0, 200.0, 40.4)

	pos := s.GetPositions()
	require.Equal(t, -100.0, pos.PowerMW)
	require.Equal(t, 200.0, pos.GasMWh)
	require.InDelta(t, 40.4, pos.CO2Tons, 0.001)

	pnl := s.CalculatePnL(100.0, 40.0, 80.0)
	require.Less(t, pnl, 0.0)
	require.Greater(t, pnl, -2000.0)
}

func TestSparkSpreadUrgencyEscalation(t *testing.T) {
	s := NewSparkSpreadStrategy(100.0, 2.0, 0.202, 10.0)
	powerBook := marketdata.NewOrderBook(marketdata.InstrumentSpot)
	powerBook.UpdateBid(0, priceFP(100.0), 100, 1)
	gasBook := marketdata.NewOrderBook(marketdata.InstrumentFutures)
	gasBook.UpdateAsk(0, priceFP(1.0), 100, 1)
	co2Book := marketdata.NewOrderBook(marketdata.InstrumentCO2)
	co2Book.UpdateAsk(0, priceFP(1.0), 100, 1)

	recs, ok := s.GetRecommendations(powerBook, gasBook, co2Book, 1.0)
	require.True(t, ok)
	require.Equal(t, UrgencyEmergency, recs.Power.Urgency)
}
