package hedging

import (
	"testing"

	"github.com/quantcore/hedge-engine/internal/marketdata"
	"github.com/stretchr/testify/require"
)

func TestDeltaHedgeFiresOnInitialNonzeroDelta(t *testing.T) {
	d := NewDeltaHedge(1000.0, 1.0, 500)
	delta, fire := d.CalculateHedgeDelta()
	require.True(t, fire)
	require.Equal(t, -1000.0, delta)
}

func TestDeltaHedgeGateSuppressesSmallMovement(t *testing.T) {
	d := NewDeltaHedge(1000.0, 1.0, 500)
	d.ExecuteHedge(1000.0, marketdata.SideBid) // hedge_position = -1000, matches target

	_, fire := d.CalculateHedgeDelta()
	require.False(t, fire)

	d.UpdateHedgeRatio(1.001) // tiny ratio change, well under 500bps
	_, fire = d.CalculateHedgeDelta()
	require.False(t, fire)
}

func TestDeltaHedgeGateFiresOnLargeMovement(t *testing.T) {
	d := NewDeltaHedge(1000.0, 1.0, 500)
	d.ExecuteHedge(1000.0, marketdata.SideBid)

	d.UpdateHedgeRatio(1.2) // 20% ratio change >> 5% threshold
	delta, fire := d.CalculateHedgeDelta()
	require.True(t, fire)
	require.InDelta(t, -200.0, delta, 0.001)
}

func TestDeltaHedgeRecommendationSides(t *testing.T) {
	book := marketdata.NewOrderBook(marketdata.InstrumentFutures)
	book.UpdateBid(0, 99_0000, 10, 1)
	book.UpdateAsk(0, 101_0000, 10, 1)

	long := NewDeltaHedge(1000.0, 1.0, 500)
	rec, ok := long.GetRecommendation(book)
	require.True(t, ok)
	require.Equal(t, marketdata.SideBid, rec.Side)
	require.Equal(t, 99.0, rec.Price)

	short := NewDeltaHedge(-1000.0, 1.0, 500)
	rec, ok = short.GetRecommendation(book)
	require.True(t, ok)
	require.Equal(t, marketdata.SideAsk, rec.Side)
	require.Equal(t, 101.0, rec.Price)
}

func TestDeltaHedgeUrgencyEscalatesOnLargeDelta(t *testing.T) {
	book := marketdata.NewOrderBook(marketdata.InstrumentFutures)
	book.UpdateBid(0, 99_0000, 10, 1)
	book.UpdateAsk(0, 101_0000, 10, 1)

	d := NewDeltaHedge(1000.0, 1.0, 500)
	rec, ok := d.GetRecommendation(book)
	require.True(t, ok)
	require.Equal(t, UrgencyHigh, rec.Urgency) // |delta|=1000 == 100% of position > 10%
}

func TestDeltaHedgeExecuteUpdatesPosition(t *testing.T) {
	d := NewDeltaHedge(0, 1.0, 500)
	d.ExecuteHedge(50.0, marketdata.SideAsk)
	require.Equal(t, 50.0, d.GetHedgePosition())
	d.ExecuteHedge(20.0, marketdata.SideBid)
	require.Equal(t, 30.0, d.GetHedgePosition())
}
