package hedging

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/quantcore/hedge-engine/internal/marketdata"
)

const (
	positionScale   = 100
	hedgeRatioScale = 10000
)

// DeltaHedge is the fixed-point position/hedge accumulator. Three
// independent atomics back its state (position, hedge_position, ratio) plus
// an immutable threshold; a transition of (position, hedge_position) is not
// atomic as a pair, which is an accepted trade-off because the rehedge
// gate is a threshold test that tolerates stale reads.
type DeltaHedge struct {
	position     int64 // fixed-point, scale 100
	hedgePosition int64 // fixed-point, scale 100
	hedgeRatio   int64 // fixed-point, scale 10000
	thresholdBps int64 // immutable
}

// NewDeltaHedge constructs a delta hedger with the given initial physical
// position, hedge ratio and rehedge basis-point threshold.
func NewDeltaHedge(initialPosition, defaultHedgeRatio float64, thresholdBps int64) *DeltaHedge {
	return &DeltaHedge{
		position:     int64(initialPosition * positionScale),
		hedgeRatio:   int64(defaultHedgeRatio * hedgeRatioScale),
		thresholdBps: thresholdBps,
	}
}

func (d *DeltaHedge) GetPosition() float64 {
	return float64(atomic.LoadInt64(&d.position)) / positionScale
}

// SetPosition replaces the physical position, e.g. when an external
// position-keeping system reports a new net exposure. The rehedge gate
// (CalculateHedgeDelta) re-evaluates against this new value on the next
// call; hedge_position is left untouched.
func (d *DeltaHedge) SetPosition(position float64) {
	atomic.StoreInt64(&d.position, int64(position*positionScale))
}

func (d *DeltaHedge) GetHedgePosition() float64 {
	return float64(atomic.LoadInt64(&d.hedgePosition)) / positionScale
}

func (d *DeltaHedge) GetHedgeRatio() float64 {
	return float64(atomic.LoadInt64(&d.hedgeRatio)) / hedgeRatioScale
}

// UpdateHedgeRatio replaces the cached ratio, typically with the MVHR
// strategy's latest optimal ratio (engine composition step).
func (d *DeltaHedge) UpdateHedgeRatio(ratio float64) {
	atomic.StoreInt64(&d.hedgeRatio, int64(ratio*hedgeRatioScale))
}

// CalculateHedgeDelta returns the signed delta (natural units, MWh) the
// hedge position should move by, and whether the rehedge gate fires.
//
// Target hedge = -position * ratio (opposite sign of the physical
// position). Gate: if current hedge is zero, any nonzero delta fires;
// otherwise the gate fires iff |delta|*10000/|current_hedge| exceeds
// threshold_bps.
func (d *DeltaHedge) CalculateHedgeDelta() (delta float64, fire bool) {
	position := d.GetPosition()
	ratio := d.GetHedgeRatio()
	currentHedge := d.GetHedgePosition()

	targetHedge := -position * ratio
	delta = targetHedge - currentHedge

	if currentHedge == 0 {
		return delta, delta != 0
	}
	movementBps := math.Abs(delta) * hedgeRatioScale / math.Abs(currentHedge)
	return delta, movementBps > float64(d.thresholdBps)
}

// GetRecommendation converts a firing delta into a HedgeRecommendation
// against the given futures book: delta > 0 means BUY (Ask side) at the
// book's best ask, delta < 0 means SELL (Bid side) at best bid. Urgency is
// High when |delta| exceeds 10% of the absolute physical position.
func (d *DeltaHedge) GetRecommendation(futuresBook *marketdata.OrderBook) (*HedgeRecommendation, bool) {
	delta, fire := d.CalculateHedgeDelta()
	if !fire {
		return nil, false
	}

	var side marketdata.Side
	var price float64
	if delta > 0 {
		side = marketdata.SideAsk
		price, _ = futuresBook.BestAsk()
	} else {
		side = marketdata.SideBid
		price, _ = futuresBook.BestBid()
	}

	position := d.GetPosition()
	urgency := UrgencyNormal
	if math.Abs(delta) > 0.10*math.Abs(position) {
		urgency = UrgencyHigh
	}

	rec := newRecommendation(side, price, math.Abs(delta), urgency,
		fmt.Sprintf("delta hedge: position=%.2f ratio=%.4f delta=%.2f", position, d.GetHedgeRatio(), delta))
	return &rec, true
}

// ExecuteHedge adds to the hedge position: +quantity for Ask (BUY, go
// longer), -quantity for Bid (SELL, go shorter). Fetch-add, no validation
// against max_position and no check that side matches the sign of the last
// computed delta — a caller passing a mismatched side will corrupt the
// opposite-sign invariant. This is a known, deliberately preserved latent
// risk rather than a guard added here; callers are expected to pass
// through GetRecommendation's own side.
func (d *DeltaHedge) ExecuteHedge(quantityAbs float64, side marketdata.Side) {
	qFP := int64(quantityAbs * positionScale)
	if side == marketdata.SideAsk {
		atomic.AddInt64(&d.hedgePosition, qFP)
	} else {
		atomic.AddInt64(&d.hedgePosition, -qFP)
	}
}
